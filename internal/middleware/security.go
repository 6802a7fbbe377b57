// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS.
	IsDevelopment bool

	ContentSecurityPolicy string

	// HSTSMaxAge is the Strict-Transport-Security max-age in seconds; 0 disables it.
	HSTSMaxAge int

	// FrameAncestors lists the storefront origins allowed to frame the menu.
	// Empty means same origin only.
	FrameAncestors []string

	ReferrerPolicy string
}

// DefaultSecurityHeadersConfig returns a config for the menu endpoints.
func DefaultSecurityHeadersConfig(isDev bool) SecurityHeadersConfig {
	return SecurityHeadersConfig{
		IsDevelopment: isDev,
		ContentSecurityPolicy: strings.Join([]string{
			"default-src 'self'",
			"script-src 'self'",
			"style-src 'self' 'unsafe-inline'",
			"img-src 'self' data: https:",
			"connect-src 'self'",
			"object-src 'none'",
			"base-uri 'self'",
		}, "; "),
		HSTSMaxAge:     31536000,
		ReferrerPolicy: "strict-origin-when-cross-origin",
	}
}

// SecurityHeaders returns a middleware that adds security headers to responses.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	csp := cfg.ContentSecurityPolicy
	ancestors := "'self'"
	if len(cfg.FrameAncestors) > 0 {
		ancestors += " " + strings.Join(cfg.FrameAncestors, " ")
	}
	if csp != "" {
		csp += "; frame-ancestors " + ancestors
	}

	hsts := ""
	if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge) + "; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			if cfg.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	}
}
