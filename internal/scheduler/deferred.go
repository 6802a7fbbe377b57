// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"log/slog"
	"sync"
	"time"
)

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The real clock is backed by time.AfterFunc;
// tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall clock.
func RealClock() Clock {
	return realClock{}
}

// deferredTask is one pending callback. Identity is what matters: a fired
// timer only runs if its task is still the one registered under its key.
type deferredTask struct {
	timer     Timer
	fn        func()
	scheduled time.Time
}

// Deferred runs at most one pending task per key. Scheduling under a key
// replaces whatever was pending for that key, so the last caller wins.
type Deferred struct {
	clock   Clock
	logger  *slog.Logger
	pending map[string]*deferredTask
	stopped bool
	mu      sync.Mutex
}

// DeferredOption configures a Deferred.
type DeferredOption func(*Deferred)

// WithClock overrides the clock used to schedule tasks.
func WithClock(c Clock) DeferredOption {
	return func(d *Deferred) { d.clock = c }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) DeferredOption {
	return func(d *Deferred) { d.logger = l }
}

// NewDeferred creates an empty task set.
func NewDeferred(opts ...DeferredOption) *Deferred {
	d := &Deferred{
		clock:   RealClock(),
		logger:  slog.Default(),
		pending: make(map[string]*deferredTask),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schedule cancels the task pending under key and registers fn to run after
// delay. A non-positive delay runs fn synchronously after the cancellation.
// Scheduling on a stopped Deferred is a no-op.
func (d *Deferred) Schedule(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.cancelLocked(key)

	if delay <= 0 {
		d.mu.Unlock()
		fn()
		return
	}

	task := &deferredTask{fn: fn, scheduled: time.Now()}
	task.timer = d.clock.AfterFunc(delay, func() { d.fire(key, task) })
	d.pending[key] = task
	d.mu.Unlock()

	d.logger.Debug("deferred task scheduled", "key", key, "delay", delay)
}

// fire runs task if it has not been superseded or cancelled meanwhile.
func (d *Deferred) fire(key string, task *deferredTask) {
	d.mu.Lock()
	if d.stopped || d.pending[key] != task {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	task.fn()
}

// Cancel drops the task pending under key. Reports whether one was pending.
func (d *Deferred) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked(key)
}

// CancelAll drops every pending task.
func (d *Deferred) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.pending {
		d.cancelLocked(key)
	}
}

// cancelLocked must be called with d.mu held.
func (d *Deferred) cancelLocked(key string) bool {
	task, ok := d.pending[key]
	if !ok {
		return false
	}
	task.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending reports whether a task is waiting under key.
func (d *Deferred) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// PendingCount returns the number of waiting tasks.
func (d *Deferred) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels every pending task. Nothing scheduled before or after Stop
// will run.
func (d *Deferred) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.pending {
		d.cancelLocked(key)
	}
	d.stopped = true
}
