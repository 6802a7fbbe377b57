// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"
)

// TypedCache stores values of one type as JSON in a Cacher. Concurrent
// misses on the same key share a single load.
type TypedCache[T any] struct {
	cache      Cacher
	prefix     string
	defaultTTL time.Duration
	group      singleflight.Group
}

// NewTypedCache wraps cache. Keys are namespaced with prefix.
func NewTypedCache[T any](cache Cacher, prefix string, defaultTTL time.Duration) *TypedCache[T] {
	return &TypedCache[T]{
		cache:      cache,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

func (c *TypedCache[T]) key(k string) string {
	return c.prefix + k
}

// Get returns the cached value and true, or nil and false on a miss or
// an undecodable entry.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.cache.Get(ctx, c.key(key))
	if err != nil {
		return nil, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false
	}
	return &value, true
}

// Set stores value with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value *T) error {
	return c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL stores value with a custom TTL.
func (c *TypedCache[T]) SetWithTTL(ctx context.Context, key string, value *T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, c.key(key), data, ttl)
}

// Delete removes key.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, c.key(key))
}

// Invalidate removes every key of this typed cache.
func (c *TypedCache[T]) Invalidate(ctx context.Context) error {
	return c.cache.DeleteByPrefix(ctx, c.prefix)
}

// Has reports whether key is cached.
func (c *TypedCache[T]) Has(ctx context.Context, key string) bool {
	has, _ := c.cache.Has(ctx, c.key(key))
	return has
}

// GetOrSet returns the cached value or computes, stores and returns it.
// Errors from fn are returned and nothing is stored.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, fn func() (*T, error)) (*T, error) {
	return c.GetOrSetWithTTL(ctx, key, c.defaultTTL, fn)
}

// GetOrSetWithTTL is GetOrSet with a custom TTL.
func (c *TypedCache[T]) GetOrSetWithTTL(ctx context.Context, key string, ttl time.Duration, fn func() (*T, error)) (*T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := fn()
		if err != nil {
			return nil, err
		}
		// A failed store still returns a valid value.
		_ = c.SetWithTTL(ctx, key, value, ttl)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}
