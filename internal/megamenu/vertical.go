// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package megamenu

import (
	"sync"

	"github.com/olegiv/ocms-megamenu/internal/model"
)

// Action is the outcome of clicking a vertical menu row.
type Action struct {
	// Navigate is set when the click follows a link.
	Navigate string
	// Expanded is the node's new state when the click toggled it.
	Expanded bool
	Toggled  bool
}

// Vertical keeps the accordion state of the mobile menu: one independent
// expanded flag per node.
type Vertical struct {
	state    *State
	mu       sync.RWMutex
	expanded map[string]bool
}

// NewVertical creates an accordion with every node collapsed.
func NewVertical(state *State) *Vertical {
	return &Vertical{
		state:    state,
		expanded: make(map[string]bool),
	}
}

// Expandable reports whether the node renders as an accordion toggle. Nodes
// with zero or one visible child render as a direct link.
func Expandable(item *model.MenuItem) bool {
	return item != nil && len(item.VisibleChildren()) > 1
}

// Click handles a click on the node with the given id.
func (v *Vertical) Click(id string) Action {
	item := model.FindByID(v.state.Departments(), id)
	if item == nil {
		return Action{}
	}
	if !Expandable(item) || !v.state.Config().AllowsOpen(model.OrientationVertical) {
		return Action{Navigate: item.Slug}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.expanded[id] = !v.expanded[id]
	return Action{Expanded: v.expanded[id], Toggled: true}
}

// Expanded reports whether the node is expanded.
func (v *Vertical) Expanded(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.expanded[id]
}

// ExpandedIDs returns a copy of the expanded flags.
func (v *Vertical) ExpandedIDs() map[string]bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]bool, len(v.expanded))
	for id, open := range v.expanded {
		if open {
			out[id] = true
		}
	}
	return out
}

// Reset collapses every node.
func (v *Vertical) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expanded = make(map[string]bool)
}
