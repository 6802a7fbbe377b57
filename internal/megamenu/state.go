// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package megamenu holds the mega menu interaction state, the horizontal and
// vertical interaction controllers and the layout selector.
package megamenu

import (
	"sync"

	"github.com/olegiv/ocms-megamenu/internal/model"
)

// Scope separates the home page menu from the site-wide menu. The two never
// share selection or open state.
type Scope int

// Scope values
const (
	ScopeStandard Scope = iota
	ScopeHome
)

// String returns the scope name used in logs and JSON.
func (s Scope) String() string {
	if s == ScopeHome {
		return "home"
	}
	return "standard"
}

// ScopeFor returns the scope used by a menu instance.
func ScopeFor(homeVersion bool) Scope {
	if homeVersion {
		return ScopeHome
	}
	return ScopeStandard
}

// Snapshot is a consistent copy of the state at one point in time.
// Department pointers are shared with the store and must be treated as
// read-only.
type Snapshot struct {
	Config           model.GlobalConfig `json:"config"`
	Departments      []*model.MenuItem  `json:"-"`
	DepartmentActive *model.MenuItem    `json:"-"`
	ActiveHome       *model.MenuItem    `json:"-"`
	IsOpenMenu       bool               `json:"isOpenMenu"`
	IsOpenMenuHome   bool               `json:"isOpenMenuHome"`
	Version          uint64             `json:"version"`
}

// Active returns the active department for scope.
func (s Snapshot) Active(scope Scope) *model.MenuItem {
	if scope == ScopeHome {
		return s.ActiveHome
	}
	return s.DepartmentActive
}

// Open returns the open flag for scope.
func (s Snapshot) Open(scope Scope) bool {
	if scope == ScopeHome {
		return s.IsOpenMenuHome
	}
	return s.IsOpenMenu
}

// Listener is notified after every mutation.
type Listener func(Snapshot)

// State is the single source of truth for menu selection and visibility.
// It is only mutated through its methods and is safe for concurrent use.
// Listeners run synchronously on the mutating goroutine, outside the lock.
type State struct {
	mu          sync.RWMutex
	config      model.GlobalConfig
	departments []*model.MenuItem
	active      [2]*model.MenuItem
	open        [2]bool
	loaded      bool
	version     uint64

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int
}

// NewState creates an empty state. The home menu starts open, the standard
// menu starts closed.
func NewState() *State {
	s := &State{listeners: make(map[int]Listener)}
	s.open[ScopeHome] = true
	return s
}

// Subscribe registers l and returns a function that removes it.
func (s *State) Subscribe(l Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// mutate applies fn under the write lock and notifies listeners afterwards.
func (s *State) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.listenersMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l(snap)
	}
}

// SetConfig replaces the configuration wholesale.
func (s *State) SetConfig(cfg model.GlobalConfig) {
	s.mutate(func() { s.config = cfg })
}

// SetDepartments replaces the department list wholesale. Active selections
// are re-resolved by id against the new top-level departments and cleared
// when no department carries that id any more.
func (s *State) SetDepartments(departments []*model.MenuItem) {
	s.mutate(func() {
		s.departments = departments
		s.loaded = true
		for i, active := range s.active {
			if active != nil {
				s.active[i] = resolveDepartment(departments, active)
			}
		}
	})
}

// resolveDepartment returns the top-level department matching active, by
// identity first and then by id.
func resolveDepartment(departments []*model.MenuItem, active *model.MenuItem) *model.MenuItem {
	for _, d := range departments {
		if d == active {
			return d
		}
	}
	for _, d := range departments {
		if d != nil && d.ID == active.ID {
			return d
		}
	}
	return nil
}

// SetDepartmentActive sets or clears (nil) the active department of scope.
func (s *State) SetDepartmentActive(item *model.MenuItem, scope Scope) {
	s.mutate(func() { s.active[scope] = item })
}

// OpenMenu sets the open flag of scope.
func (s *State) OpenMenu(open bool, scope Scope) {
	s.mutate(func() { s.open[scope] = open })
}

// UpdateMenu derives the open flag of scope from its current value in a
// single step, e.g. UpdateMenu(func(v bool) bool { return !v }, scope).
func (s *State) UpdateMenu(update func(open bool) bool, scope Scope) {
	s.mutate(func() { s.open[scope] = update(s.open[scope]) })
}

// Categories returns the children of the active department of scope, or, with
// nothing active, every department's children concatenated in order.
func (s *State) Categories(scope Scope) []*model.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if active := s.active[scope]; active != nil {
		return append([]*model.MenuItem{}, active.Menu...)
	}

	categories := []*model.MenuItem{}
	for _, d := range s.departments {
		if d != nil && len(d.Menu) > 0 {
			categories = append(categories, d.Menu...)
		}
	}
	return categories
}

// Config returns the current configuration.
func (s *State) Config() model.GlobalConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Departments returns the current department list.
func (s *State) Departments() []*model.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.departments
}

// DepartmentActive returns the active department of scope, or nil.
func (s *State) DepartmentActive(scope Scope) *model.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[scope]
}

// IsOpen returns the open flag of scope.
func (s *State) IsOpen(scope Scope) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open[scope]
}

// Loaded reports whether departments have been set at least once.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a consistent copy of the state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Config:           s.config,
		Departments:      s.departments,
		DepartmentActive: s.active[ScopeStandard],
		ActiveHome:       s.active[ScopeHome],
		IsOpenMenu:       s.open[ScopeStandard],
		IsOpenMenuHome:   s.open[ScopeHome],
		Version:          s.version,
	}
}
