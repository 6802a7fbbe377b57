// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	// Type is "memory" or "redis". Redis is used whenever RedisURL is set.
	Type     string
	RedisURL string
	Prefix   string

	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration

	// FallbackToMemory serves from memory when Redis is unreachable.
	FallbackToMemory bool
}

// DefaultConfig returns the memory backend defaults.
func DefaultConfig() Config {
	return Config{
		Type:             BackendMemory,
		Prefix:           "megamenu:",
		DefaultTTL:       10 * time.Minute,
		MaxSize:          DefaultMaxEntries,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	}
}

// Result is a created cache together with the backend actually in use.
type Result struct {
	Cache      Cacher
	Backend    string
	IsFallback bool
}

// New creates the configured backend.
func New(cfg Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.RedisURL != "" || cfg.Type == BackendRedis {
		rc, err := NewRedisCacheFromURL(cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
		if err == nil {
			logger.Info("cache backend ready", "backend", BackendRedis, "url", SanitizeRedisURL(cfg.RedisURL))
			return &Result{Cache: rc, Backend: BackendRedis}, nil
		}
		if !cfg.FallbackToMemory {
			return nil, fmt.Errorf("creating redis cache: %w", err)
		}
		logger.Warn("redis unavailable, falling back to memory cache",
			"url", SanitizeRedisURL(cfg.RedisURL), "error", err)
		return &Result{Cache: newMemoryFromConfig(cfg), Backend: BackendMemory, IsFallback: true}, nil
	}

	logger.Info("cache backend ready", "backend", BackendMemory, "max_entries", cfg.MaxSize)
	return &Result{Cache: newMemoryFromConfig(cfg), Backend: BackendMemory}, nil
}

func newMemoryFromConfig(cfg Config) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	})
}

// SanitizeRedisURL masks the password of a Redis URL for logging.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
