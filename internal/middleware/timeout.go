// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Timeout runs the handler with a deadline. When the deadline passes before
// the handler has written anything, the client gets 503 and later writes by
// the handler fail with http.ErrHandlerTimeout. Panics in the handler are
// re-raised on the serving goroutine so Recoverer still sees them.
//
// The state stream is long-lived and must be mounted outside this middleware.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{ResponseWriter: w}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case p := <-panicked:
				panic(p)
			case <-ctx.Done():
				tw.expire(r)
			}
		})
	}
}

// timeoutWriter serializes writes and tracks whether the response started.
type timeoutWriter struct {
	http.ResponseWriter
	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

// expire answers 503 unless the handler already started the response.
func (tw *timeoutWriter) expire(r *http.Request) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.timedOut = true
	if tw.wroteHeader {
		return
	}
	tw.wroteHeader = true

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		tw.ResponseWriter.Header().Set("Content-Type", "application/json; charset=utf-8")
		tw.ResponseWriter.WriteHeader(http.StatusServiceUnavailable)
		_, _ = tw.ResponseWriter.Write([]byte(`{"error":"request timeout","status":503}` + "\n"))
		return
	}
	tw.ResponseWriter.Header().Set("Content-Type", "text/plain; charset=utf-8")
	tw.ResponseWriter.WriteHeader(http.StatusServiceUnavailable)
	_, _ = tw.ResponseWriter.Write([]byte("Request timeout"))
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.wroteHeader = true
		tw.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (tw *timeoutWriter) Unwrap() http.ResponseWriter {
	return tw.ResponseWriter
}
