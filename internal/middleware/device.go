// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"github.com/olegiv/ocms-megamenu/internal/megamenu"
)

// Device classifies the client from its User-Agent and stores the result in
// the request context for the layout selector.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		device := megamenu.DetectDevice(r.UserAgent())
		ctx := context.WithValue(r.Context(), ContextKeyDevice, device)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetDevice returns the device class of the request. Requests that did not
// pass through Device are classified on the fly.
func GetDevice(r *http.Request) megamenu.Device {
	if d, ok := r.Context().Value(ContextKeyDevice).(megamenu.Device); ok {
		return d
	}
	return megamenu.DetectDevice(r.UserAgent())
}
