// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// BasicAuth returns a middleware admitting requests whose basic auth
// credentials match user and the argon2id hash.
func BasicAuth(realm, user, hash string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, pass, ok := r.BasicAuth()
			if ok && subtle.ConstantTimeCompare([]byte(u), []byte(user)) == 1 {
				valid, err := CheckPassword(pass, hash)
				if err != nil {
					logger.Error("admin password hash unusable", "error", err)
				}
				if valid {
					next.ServeHTTP(w, r)
					return
				}
			}
			if ok {
				logger.Warn("admin authentication failed", "user", u, "remote", r.RemoteAddr)
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`", charset="UTF-8"`)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		})
	}
}
