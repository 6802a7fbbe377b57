// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package megamenu

import (
	"log/slog"
	"time"

	"github.com/olegiv/ocms-megamenu/internal/model"
	"github.com/olegiv/ocms-megamenu/internal/scheduler"
)

// Deferred task keys of the horizontal controller.
const (
	taskSelect = "select"
	taskClose  = "close"
	taskScroll = "scroll"
)

// Timing holds the interaction delays of the horizontal menu.
type Timing struct {
	// HoverDelay is the hover intent delay before a hovered department
	// becomes active.
	HoverDelay time.Duration
	// CloseDelay absorbs accidental pointer exits before the menu closes.
	CloseDelay time.Duration
	// ScrollDebounce coalesces scroll events.
	ScrollDebounce time.Duration
	// ScrollThreshold is the page offset in pixels past which the menu is
	// force-closed.
	ScrollThreshold int
}

// DefaultTiming returns the standard interaction delays.
func DefaultTiming() Timing {
	return Timing{
		HoverDelay:      200 * time.Millisecond,
		CloseDelay:      800 * time.Millisecond,
		ScrollDebounce:  100 * time.Millisecond,
		ScrollThreshold: 640,
	}
}

// Horizontal drives the desktop dropdown for one scope. Each controller owns
// its deferred tasks, so controllers of different scopes never cancel each
// other's timers.
type Horizontal struct {
	state    *State
	scope    Scope
	timing   Timing
	deferred *scheduler.Deferred
	logger   *slog.Logger
}

// NewHorizontal creates a controller for scope. A nil clock uses the wall
// clock.
func NewHorizontal(state *State, scope Scope, timing Timing, clock scheduler.Clock, logger *slog.Logger) *Horizontal {
	if clock == nil {
		clock = scheduler.RealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("scope", scope.String())
	return &Horizontal{
		state:  state,
		scope:  scope,
		timing: timing,
		deferred: scheduler.NewDeferred(
			scheduler.WithClock(clock),
			scheduler.WithLogger(logger),
		),
		logger: logger,
	}
}

// Scope returns the scope driven by the controller.
func (h *Horizontal) Scope() Scope {
	return h.scope
}

// Mount activates the configured default department, without delay.
func (h *Horizontal) Mount() {
	cfg := h.state.Config()
	if cfg.DefaultDepartmentActive == "" {
		return
	}
	if d := model.FindDepartment(h.state.Departments(), cfg.DefaultDepartmentActive); d != nil {
		h.state.SetDepartmentActive(d, h.scope)
		h.logger.Debug("default department activated", "department", d.ID)
	}
}

// Unmount cancels every pending task. Nothing fires afterwards.
func (h *Horizontal) Unmount() {
	h.deferred.Stop()
}

// Dispatch applies an interaction event. Unknown events are ignored.
func (h *Horizontal) Dispatch(ev Event) {
	switch e := ev.(type) {
	case HoverEvent:
		h.hover(e.DepartmentID)
	case EnterEvent:
		h.deferred.Cancel(taskClose)
	case LeaveEvent:
		h.leave()
	case OutsideClickEvent:
		if !e.Region.Inside() {
			h.closeNow()
		}
	case ScrollEvent:
		h.scroll(e.OffsetY)
	case TriggerEnterEvent:
		h.triggerEnter()
	case NavigateEvent:
		h.deferred.CancelAll()
		h.state.OpenMenu(false, h.scope)
	}
}

// hover schedules the department to become active after the hover intent
// delay, replacing any pending selection.
func (h *Horizontal) hover(id string) {
	h.deferred.Cancel(taskClose)

	var target *model.MenuItem
	for _, d := range h.state.Departments() {
		if d != nil && d.ID == id && d.Display {
			target = d
			break
		}
	}
	if target == nil {
		h.logger.Debug("hover on unknown department ignored", "department", id)
		return
	}

	h.deferred.Schedule(taskSelect, h.timing.HoverDelay, func() {
		h.state.SetDepartmentActive(target, h.scope)
	})
}

func (h *Horizontal) leave() {
	h.deferred.Cancel(taskSelect)
	h.deferred.Schedule(taskClose, h.timing.CloseDelay, func() {
		h.state.SetDepartmentActive(nil, h.scope)
		h.state.OpenMenu(false, h.scope)
	})
}

// closeNow clears the selection and closes the menu within the call.
func (h *Horizontal) closeNow() {
	h.deferred.CancelAll()
	h.state.SetDepartmentActive(nil, h.scope)
	h.state.OpenMenu(false, h.scope)
}

func (h *Horizontal) scroll(offsetY int) {
	h.deferred.Schedule(taskScroll, h.timing.ScrollDebounce, func() {
		if offsetY >= h.timing.ScrollThreshold {
			h.state.OpenMenu(false, h.scope)
		}
	})
}

func (h *Horizontal) triggerEnter() {
	if h.scope == ScopeHome || h.state.IsOpen(h.scope) {
		return
	}
	if !h.state.Config().AllowsOpen(model.OrientationHorizontal) {
		return
	}
	h.state.OpenMenu(true, h.scope)
}

// PendingTasks returns the number of scheduled but not yet fired tasks.
func (h *Horizontal) PendingTasks() int {
	return h.deferred.PendingCount()
}
