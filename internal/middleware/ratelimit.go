// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// DefaultLimiterEntries bounds the number of tracked clients.
const DefaultLimiterEntries = 10000

// limiterCache holds one token bucket per key. The least recently seen
// clients are dropped once the cache is full.
type limiterCache[K comparable] struct {
	limiters *lru.Cache[K, *rate.Limiter]
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst, size int) *limiterCache[K] {
	if size <= 0 {
		size = DefaultLimiterEntries
	}
	limiters, _ := lru.New[K, *rate.Limiter](size)
	return &limiterCache[K]{
		limiters: limiters,
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the limiter for key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	if limiter, ok := lc.limiters.Get(key); ok {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if limiter, ok := lc.limiters.Get(key); ok {
		return limiter
	}
	limiter := rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters.Add(key, limiter)
	return limiter
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	cache *limiterCache[string]
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst for each client IP.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{cache: newLimiterCache[string](rps, burst, DefaultLimiterEntries)}
}

// Allow reports whether a request from ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.cache.get(ip).Allow()
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !rl.Allow(ip) {
			slog.Warn("menu event rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
