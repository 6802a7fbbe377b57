// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session issues the visitor cookie that ties browser requests to
// their server-side menu state.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/olegiv/ocms-megamenu/internal/cache"
)

// VisitorKey is the session key holding the visitor id.
const VisitorKey = "visitor_id"

// keyPrefix namespaces session data inside the shared cache.
const keyPrefix = "session:"

// New creates a session manager persisting session data in store.
func New(store scs.Store, lifetime time.Duration, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = store

	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime
	sm.Cookie.Name = "megamenu_session"
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-megamenu_session"
	}

	return sm
}

// VisitorID returns the visitor id of the request session, assigning a new
// one on first use. The request must pass through sm.LoadAndSave.
func VisitorID(ctx context.Context, sm *scs.SessionManager) string {
	if id := sm.GetString(ctx, VisitorKey); id != "" {
		return id
	}
	id := uuid.NewString()
	sm.Put(ctx, VisitorKey, id)
	return id
}

// ExistingVisitorID returns the visitor id stored in the request's session
// cookie without creating or touching the session. Used by long-lived
// requests that cannot pass through sm.LoadAndSave. Returns "" when the
// request carries no known session.
func ExistingVisitorID(r *http.Request, sm *scs.SessionManager) string {
	cookie, err := r.Cookie(sm.Cookie.Name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	ctx, err := sm.Load(r.Context(), cookie.Value)
	if err != nil {
		return ""
	}
	return sm.GetString(ctx, VisitorKey)
}

// CacheStore stores sessions in a cache backend, so visitors keep their id
// across restarts when Redis is configured.
type CacheStore struct {
	cache cache.Cacher
}

// NewCacheStore creates a session store on top of c.
func NewCacheStore(c cache.Cacher) *CacheStore {
	return &CacheStore{cache: c}
}

// Find returns the data of token.
func (s *CacheStore) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

// Commit stores b under token until expiry.
func (s *CacheStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

// Delete removes token.
func (s *CacheStore) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

// FindCtx returns the data of token.
func (s *CacheStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	b, err := s.cache.Get(ctx, keyPrefix+token)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// CommitCtx stores b under token until expiry.
func (s *CacheStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return s.DeleteCtx(ctx, token)
	}
	return s.cache.Set(ctx, keyPrefix+token, b, ttl)
}

// DeleteCtx removes token.
func (s *CacheStore) DeleteCtx(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, keyPrefix+token)
}
