// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package megamenu

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-megamenu/internal/model"
	"github.com/olegiv/ocms-megamenu/internal/scheduler"
)

// Session is the menu state of one visitor: the store plus the controllers
// rendering it.
type Session struct {
	ID       string
	State    *State
	Standard *Horizontal
	Home     *Horizontal
	Vertical *Vertical

	mu        sync.Mutex
	revision  string
	requested model.GlobalConfig
	lastSeen  time.Time
	mountedAt [2]string
	mounted   [2]bool
}

// Controller returns the horizontal controller of a scope.
func (s *Session) Controller(scope Scope) *Horizontal {
	if scope == ScopeHome {
		return s.Home
	}
	return s.Standard
}

// Load stores freshly fetched data. An empty department list still marks the
// state loaded, so the widget renders nothing instead of its skeleton. The
// default department of the active scope is applied whenever it changes.
func (s *Session) Load(departments []*model.MenuItem, cfg model.GlobalConfig) {
	s.State.SetConfig(cfg)
	if len(departments) == 0 {
		s.State.SetDepartments(nil)
		return
	}
	s.State.SetDepartments(departments)

	scope := ScopeFor(cfg.HomeVersion)

	s.mu.Lock()
	remount := !s.mounted[scope] || s.mountedAt[scope] != cfg.DefaultDepartmentActive
	s.mounted[scope] = true
	s.mountedAt[scope] = cfg.DefaultDepartmentActive
	s.mu.Unlock()

	if remount {
		s.Controller(scope).Mount()
	}
}

// Sync loads departments and cfg unless the session already holds data
// revision rev under the same requested configuration. Re-loading unchanged
// data would bump the state version and wake every stream subscriber for
// nothing. Without an explicit orientation in cfg the layout is chosen from
// device at load time and kept until the next load. Reports whether a load
// happened.
func (s *Session) Sync(rev string, departments []*model.MenuItem, cfg model.GlobalConfig, device Device) bool {
	s.mu.Lock()
	unchanged := rev != "" && s.revision == rev && s.State.Loaded() && s.requested == cfg
	if !unchanged {
		s.revision = rev
		s.requested = cfg
	}
	s.mu.Unlock()

	if unchanged {
		return false
	}
	cfg.Orientation = SelectOrientation(cfg.Orientation, device)
	s.Load(departments, cfg)
	return true
}

// Dispatch routes an event to the controller it targets. Toggle events go
// to the vertical accordion; their outcome is returned.
func (s *Session) Dispatch(env Envelope) Action {
	s.touch()
	if t, ok := env.Event.(ToggleEvent); ok {
		return s.Vertical.Click(t.ItemID)
	}
	s.Controller(ScopeFor(env.Home)).Dispatch(env.Event)
	return Action{}
}

// Close stops every pending timer of the session.
func (s *Session) Close() {
	s.Standard.Unmount()
	s.Home.Unmount()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns the time of the last access.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// RegistryOptions configures new sessions.
type RegistryOptions struct {
	Timing Timing
	Clock  scheduler.Clock
	Logger *slog.Logger
}

// Registry owns the sessions of all visitors.
type Registry struct {
	opts     RegistryOptions
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Registry{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// newSession builds a session with its own store and controllers.
func (r *Registry) newSession(id string) *Session {
	state := NewState()
	logger := r.opts.Logger.With("session", id)
	return &Session{
		ID:       id,
		State:    state,
		Standard: NewHorizontal(state, ScopeStandard, r.opts.Timing, r.opts.Clock, logger),
		Home:     NewHorizontal(state, ScopeHome, r.opts.Timing, r.opts.Clock, logger),
		Vertical: NewVertical(state),
		lastSeen: time.Now(),
	}
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// GetOrCreate returns the session with id, creating it when missing. An
// empty id creates a session with a fresh random id.
func (r *Registry) GetOrCreate(id string) *Session {
	if id != "" {
		if s, ok := r.Get(id); ok {
			return s
		}
	} else {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := r.newSession(id)
	r.sessions[id] = s
	r.opts.Logger.Debug("menu session created", "session", id)
	return s
}

// Evict closes and removes sessions idle for longer than idle.
// Returns the number of evicted sessions.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
