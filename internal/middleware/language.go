// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-megamenu/internal/i18n"
)

// LanguageCookieName is the cookie name for language preference.
const LanguageCookieName = "megamenu_lang"

// Language detects the request language and stores it in the context.
// Priority order:
// 1. Query parameter ?lang=XX (also updates the cookie)
// 2. Cookie preference
// 3. Accept-Language header
// 4. Default language
func Language() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ""

			if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lang"))); q != "" && i18n.IsSupported(q) {
				lang = q
				SetLanguageCookie(w, lang)
			}

			if lang == "" {
				if cookie, err := r.Cookie(LanguageCookieName); err == nil && i18n.IsSupported(strings.ToLower(cookie.Value)) {
					lang = strings.ToLower(cookie.Value)
				}
			}

			if lang == "" {
				lang = i18n.MatchLanguage(r.Header.Get("Accept-Language"))
			}

			ctx := context.WithValue(r.Context(), ContextKeyLanguage, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLanguage returns the language detected for the request, or the
// default language.
func GetLanguage(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLanguage()
}

// SetLanguageCookie stores the language preference for a year.
func SetLanguageCookie(w http.ResponseWriter, lang string) {
	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
