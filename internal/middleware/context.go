// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware of the menu service:
// language and device detection, rate limiting, CSRF and response headers.
package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ContextKey is the type of request context keys set by this package.
type ContextKey string

// Context keys
const (
	ContextKeyLanguage ContextKey = "language"
	ContextKeyDevice   ContextKey = "device"
)

// ClientIP returns the host part of the request's remote address. Run
// chi's RealIP middleware first to honour proxy headers.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
