// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler_test

import (
	"testing"
	"time"

	"github.com/olegiv/ocms-megamenu/internal/scheduler"
	"github.com/olegiv/ocms-megamenu/internal/testutil"
)

func newDeferred() (*scheduler.Deferred, *testutil.ManualClock) {
	clock := testutil.NewManualClock()
	return scheduler.NewDeferred(
		scheduler.WithClock(clock),
		scheduler.WithLogger(testutil.TestLoggerSilent()),
	), clock
}

func TestDeferred_RunsAfterDelay(t *testing.T) {
	d, clock := newDeferred()
	ran := 0

	d.Schedule("select", 100*time.Millisecond, func() { ran++ })

	clock.Advance(99 * time.Millisecond)
	if ran != 0 {
		t.Fatal("task ran before its delay elapsed")
	}
	if !d.Pending("select") {
		t.Error("task should be pending")
	}

	clock.Advance(time.Millisecond)
	if ran != 1 {
		t.Fatalf("ran = %d; want 1", ran)
	}
	if d.PendingCount() != 0 {
		t.Errorf("PendingCount = %d; want 0", d.PendingCount())
	}
}

func TestDeferred_LastScheduleWins(t *testing.T) {
	d, clock := newDeferred()
	var got []string

	d.Schedule("select", 100*time.Millisecond, func() { got = append(got, "B") })
	clock.Advance(50 * time.Millisecond)
	d.Schedule("select", 100*time.Millisecond, func() { got = append(got, "A") })

	clock.Advance(time.Second)

	if len(got) != 1 || got[0] != "A" {
		t.Errorf("ran %v; want only [A]", got)
	}
}

func TestDeferred_KeysAreIndependent(t *testing.T) {
	d, clock := newDeferred()
	var got []string

	d.Schedule("select", 10*time.Millisecond, func() { got = append(got, "select") })
	d.Schedule("close", 20*time.Millisecond, func() { got = append(got, "close") })

	clock.Advance(time.Second)

	if len(got) != 2 || got[0] != "select" || got[1] != "close" {
		t.Errorf("ran %v; want [select close]", got)
	}
}

func TestDeferred_Cancel(t *testing.T) {
	d, clock := newDeferred()
	ran := false

	d.Schedule("close", 10*time.Millisecond, func() { ran = true })
	if !d.Cancel("close") {
		t.Error("Cancel should report a pending task")
	}
	if d.Cancel("close") {
		t.Error("second Cancel should report nothing pending")
	}

	clock.Advance(time.Second)
	if ran {
		t.Error("cancelled task ran")
	}
}

func TestDeferred_ZeroDelayRunsImmediately(t *testing.T) {
	d, clock := newDeferred()
	var got []string

	d.Schedule("select", 50*time.Millisecond, func() { got = append(got, "old") })
	d.Schedule("select", 0, func() { got = append(got, "now") })

	if len(got) != 1 || got[0] != "now" {
		t.Fatalf("ran %v; want [now]", got)
	}

	clock.Advance(time.Second)
	if len(got) != 1 {
		t.Errorf("superseded task ran: %v", got)
	}
}

func TestDeferred_StopPreventsFutureRuns(t *testing.T) {
	d, clock := newDeferred()
	ran := 0

	d.Schedule("a", 10*time.Millisecond, func() { ran++ })
	d.Schedule("b", 20*time.Millisecond, func() { ran++ })
	d.Stop()
	d.Schedule("c", 0, func() { ran++ })

	clock.Advance(time.Second)
	if ran != 0 {
		t.Errorf("ran = %d after Stop; want 0", ran)
	}
	if clock.Live() != 0 {
		t.Errorf("live timers = %d after Stop; want 0", clock.Live())
	}
}

func TestDeferred_RealClock(t *testing.T) {
	d := scheduler.NewDeferred()
	done := make(chan struct{})

	d.Schedule("tick", time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run on the real clock")
	}
}
