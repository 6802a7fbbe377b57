// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the mega menu service.
package testutil

import (
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/olegiv/ocms-megamenu/internal/model"
	"github.com/olegiv/ocms-megamenu/internal/scheduler"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// ManualClock is a scheduler.Clock whose time only moves on Advance.
// Callbacks run synchronously inside Advance, in due order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock   *ManualClock
	due     time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewManualClock returns a clock at time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// AfterFunc implements scheduler.Clock.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) scheduler.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{clock: c, due: c.now + d, seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward by d and fires every timer that became due.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.stopped = true
		c.now = next.due
		c.mu.Unlock()

		next.fn()
	}
}

// nextDueLocked returns the earliest live timer due at or before target.
func (c *ManualClock) nextDueLocked(target time.Duration) *manualTimer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	c.timers = live

	sort.Slice(c.timers, func(i, j int) bool {
		if c.timers[i].due == c.timers[j].due {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].due < c.timers[j].due
	})
	if len(c.timers) == 0 || c.timers[0].due > target {
		return nil
	}
	return c.timers[0]
}

// Live returns the number of timers that have neither fired nor been stopped.
func (c *ManualClock) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// SampleDepartments returns a small department tree used across tests:
// A (leaf), B (two categories, one with subcategories), C (hidden).
func SampleDepartments() []*model.MenuItem {
	return []*model.MenuItem{
		{ID: "A", Name: "Appliances", Slug: "/appliances", Display: true, EnableSty: true, Order: 0},
		{ID: "B", Name: "Books", Slug: "/books", Display: true, Order: 1, Menu: []*model.MenuItem{
			{ID: "B1", Name: "Novels", Slug: "/books/novels", Display: true, Menu: []*model.MenuItem{
				{ID: "B11", Name: "Classics", Slug: "/books/novels/classics", Display: true},
				{ID: "B12", Name: "Crime", Slug: "/books/novels/crime", Display: true},
			}},
			{ID: "B2", Name: "Comics", Slug: "/books/comics", Display: true},
		}},
		{ID: "C", Name: "Clearance", Slug: "/clearance", Display: false, Order: 2, Menu: []*model.MenuItem{
			{ID: "C1", Name: "Outlet", Slug: "/clearance/outlet", Display: true},
		}},
	}
}
