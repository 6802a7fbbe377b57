// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, logger *slog.Logger, message string, statusCode int, logMsg string, args ...any) {
	logger.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logger *slog.Logger, logMsg string, args ...any) {
	logAndHTTPError(w, logger, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// queryBool reads a boolean query parameter. "1", "true" and "yes" are
// true; anything else, including a missing parameter, is false.
func queryBool(r *http.Request, name string) bool {
	v := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name)))
	if v == "yes" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// queryBoolPtr is queryBool for optional overrides: nil when the parameter
// is absent.
func queryBoolPtr(r *http.Request, name string) *bool {
	if !r.URL.Query().Has(name) {
		return nil
	}
	b := queryBool(r, name)
	return &b
}
