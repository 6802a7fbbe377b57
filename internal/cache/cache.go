// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the byte-oriented cache backends used for menu
// trees and region seller lookups, plus a typed JSON wrapper on top.
package cache

import (
	"context"
	"time"
)

// Cacher is implemented by every cache backend. Implementations must be safe
// for concurrent use.
type Cacher interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero TTL uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	Clear(ctx context.Context) error

	Has(ctx context.Context, key string) (bool, error)

	Close() error
}

// Stats holds hit/miss counters of a cache.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
	Size    int64   `json:"size"`
}

// StatsProvider is implemented by caches that track statistics.
type StatsProvider interface {
	Stats() Stats
	ResetStats()
}

// Error is a sentinel cache error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
