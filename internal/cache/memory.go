// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxEntries bounds a memory cache created without MaxSize.
const DefaultMaxEntries = 10000

// MemoryCache is an in-process LRU cache with per-entry expiry.
type MemoryCache struct {
	entries    *lru.Cache[string, *memoryEntry]
	defaultTTL time.Duration
	stopCh     chan struct{}
	closed     atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
	size   atomic.Int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryCacheOptions configures the memory cache.
type MemoryCacheOptions struct {
	DefaultTTL      time.Duration
	MaxSize         int           // Maximum number of entries (0 = DefaultMaxEntries)
	CleanupInterval time.Duration // 0 disables the background sweep
}

// NewMemoryCache creates a memory cache. Least recently used entries are
// evicted once MaxSize is reached.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	size := opts.MaxSize
	if size <= 0 {
		size = DefaultMaxEntries
	}

	c := &MemoryCache{
		defaultTTL: opts.DefaultTTL,
		stopCh:     make(chan struct{}),
	}
	// lru.NewWithEvict only fails for a non-positive size.
	c.entries, _ = lru.NewWithEvict(size, func(_ string, e *memoryEntry) {
		c.size.Add(-int64(len(e.value)))
	})

	if opts.CleanupInterval > 0 {
		go c.cleanupLoop(opts.CleanupInterval)
	}
	return c
}

// NewSimpleMemoryCache creates a memory cache with only a default TTL.
func NewSimpleMemoryCache(ttl time.Duration) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      ttl,
		CleanupInterval: time.Minute,
	})
}

// Get returns a copy of the cached value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	entry, ok := c.entries.Get(key)
	if !ok || entry.expired(time.Now()) {
		if ok {
			c.entries.Remove(key)
		}
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}

	c.hits.Add(1)
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a copy of value.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	buf := make([]byte, len(value))
	copy(buf, value)

	// Remove first so the eviction callback accounts for the old size.
	c.entries.Remove(key)
	c.entries.Add(key, &memoryEntry{value: buf, expiresAt: time.Now().Add(ttl)})
	c.size.Add(int64(len(buf)))
	c.sets.Add(1)
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.entries.Remove(key)
	return nil
}

// DeleteByPrefix removes all keys starting with prefix.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	for _, key := range c.entries.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.entries.Remove(key)
		}
	}
	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(_ context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.entries.Purge()
	c.size.Store(0)
	return nil
}

// Has reports whether key is present and not expired.
func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	if c.closed.Load() {
		return false, ErrCacheClosed
	}
	entry, ok := c.entries.Peek(key)
	if !ok {
		return false, nil
	}
	if entry.expired(time.Now()) {
		c.entries.Remove(key)
		return false, nil
	}
	return true, nil
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns current cache statistics.
func (c *MemoryCache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Items:   c.entries.Len(),
		HitRate: hitRate(hits, misses),
		Size:    c.size.Load(),
	}
}

// ResetStats resets the counters.
func (c *MemoryCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
}

// Keys returns all keys, oldest first, including expired ones.
func (c *MemoryCache) Keys() []string {
	return c.entries.Keys()
}

func (c *MemoryCache) removeExpired() {
	now := time.Now()
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok && entry.expired(now) {
			c.entries.Remove(key)
		}
	}
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

var (
	_ Cacher        = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
