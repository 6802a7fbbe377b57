// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package megamenu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-megamenu/internal/model"
	"github.com/olegiv/ocms-megamenu/internal/testutil"
)

type horizontalFixture struct {
	state  *State
	clock  *testutil.ManualClock
	depts  []*model.MenuItem
	timing Timing
}

func newHorizontalFixture(t *testing.T, cfg model.GlobalConfig) *horizontalFixture {
	t.Helper()
	f := &horizontalFixture{
		state:  NewState(),
		clock:  testutil.NewManualClock(),
		depts:  testutil.SampleDepartments(),
		timing: DefaultTiming(),
	}
	f.state.SetConfig(cfg)
	f.state.SetDepartments(f.depts)
	return f
}

func (f *horizontalFixture) controller(scope Scope) *Horizontal {
	return NewHorizontal(f.state, scope, f.timing, f.clock, testutil.TestLoggerSilent())
}

func TestMountActivatesDefaultDepartment(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{DefaultDepartmentActive: "  BOOKS "})
	h := f.controller(ScopeStandard)

	h.Mount()

	active := f.state.DepartmentActive(ScopeStandard)
	require.NotNil(t, active, "default department applied without delay")
	assert.Equal(t, "B", active.ID)
	assert.Equal(t, []string{"B1", "B2"}, ids(f.state.Categories(ScopeStandard)))
	assert.Nil(t, f.state.DepartmentActive(ScopeHome))
}

func TestMountUnknownDefaultDepartment(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{DefaultDepartmentActive: "Garden"})
	h := f.controller(ScopeStandard)

	h.Mount()

	assert.Nil(t, f.state.DepartmentActive(ScopeStandard))
}

func TestHoverIntentDelay(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	h := f.controller(ScopeStandard)

	h.Dispatch(HoverEvent{DepartmentID: "B"})
	assert.Nil(t, f.state.DepartmentActive(ScopeStandard), "nothing before the delay")

	f.clock.Advance(f.timing.HoverDelay - time.Millisecond)
	assert.Nil(t, f.state.DepartmentActive(ScopeStandard))

	f.clock.Advance(time.Millisecond)
	require.NotNil(t, f.state.DepartmentActive(ScopeStandard))
	assert.Equal(t, "B", f.state.DepartmentActive(ScopeStandard).ID)
}

func TestHoverLastWins(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	h := f.controller(ScopeStandard)

	var changes []string
	f.state.Subscribe(func(s Snapshot) {
		if a := s.Active(ScopeStandard); a != nil {
			changes = append(changes, a.ID)
		}
	})

	h.Dispatch(HoverEvent{DepartmentID: "B"})
	f.clock.Advance(f.timing.HoverDelay / 2)
	h.Dispatch(HoverEvent{DepartmentID: "A"})
	f.clock.Advance(f.timing.HoverDelay * 3)

	assert.Equal(t, []string{"A"}, changes, "only the last hovered department becomes active")
	assert.Equal(t, 0, h.PendingTasks())
}

func TestHoverHiddenOrUnknownIgnored(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	h := f.controller(ScopeStandard)

	h.Dispatch(HoverEvent{DepartmentID: "C"})
	h.Dispatch(HoverEvent{DepartmentID: "nope"})
	f.clock.Advance(time.Second)

	assert.Nil(t, f.state.DepartmentActive(ScopeStandard))
}

func TestLeaveClosesAfterDelay(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	h := f.controller(ScopeStandard)
	f.state.OpenMenu(true, ScopeStandard)
	f.state.SetDepartmentActive(f.depts[1], ScopeStandard)

	h.Dispatch(LeaveEvent{})
	f.clock.Advance(f.timing.CloseDelay - time.Millisecond)
	assert.True(t, f.state.IsOpen(ScopeStandard), "still open inside the grace period")
	assert.NotNil(t, f.state.DepartmentActive(ScopeStandard))

	f.clock.Advance(time.Millisecond)
	assert.False(t, f.state.IsOpen(ScopeStandard))
	assert.Nil(t, f.state.DepartmentActive(ScopeStandard))
}

func TestReEnterCancelsClose(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	h := f.controller(ScopeStandard)
	f.state.OpenMenu(true, ScopeStandard)
	f.state.SetDepartmentActive(f.depts[1], ScopeStandard)

	h.Dispatch(LeaveEvent{})
	f.clock.Advance(f.timing.CloseDelay / 2)
	h.Dispatch(EnterEvent{})
	f.clock.Advance(f.timing.CloseDelay * 2)

	assert.True(t, f.state.IsOpen(ScopeStandard))
	assert.Equal(t, "B", f.state.DepartmentActive(ScopeStandard).ID)
}

func TestLeaveCancelsPendingHover(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	h := f.controller(ScopeStandard)

	h.Dispatch(HoverEvent{DepartmentID: "B"})
	h.Dispatch(LeaveEvent{})
	f.clock.Advance(f.timing.CloseDelay * 2)

	assert.Nil(t, f.state.DepartmentActive(ScopeStandard))
}

func TestOutsideClickClosesImmediately(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	h := f.controller(ScopeStandard)
	f.state.OpenMenu(true, ScopeStandard)
	h.Dispatch(HoverEvent{DepartmentID: "B"})
	f.clock.Advance(f.timing.HoverDelay)
	require.NotNil(t, f.state.DepartmentActive(ScopeStandard))

	h.Dispatch(HoverEvent{DepartmentID: "A"})
	h.Dispatch(OutsideClickEvent{Region: RegionOutside})

	assert.False(t, f.state.IsOpen(ScopeStandard), "closed within the call")
	assert.Nil(t, f.state.DepartmentActive(ScopeStandard))
	assert.Equal(t, 0, h.PendingTasks())

	f.clock.Advance(time.Second)
	assert.Nil(t, f.state.DepartmentActive(ScopeStandard), "cancelled hover never fires")
}

func TestClickInsideKeepsMenu(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	h := f.controller(ScopeStandard)
	f.state.OpenMenu(true, ScopeStandard)

	for _, r := range []Region{RegionNav, RegionSubmenu, RegionTrigger} {
		h.Dispatch(OutsideClickEvent{Region: r})
		assert.True(t, f.state.IsOpen(ScopeStandard), "region %s", r)
	}
}

func TestScrollPastThresholdCloses(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		wantOpen bool
	}{
		{"below threshold", 639, true},
		{"at threshold", 640, false},
		{"above threshold", 2000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHorizontalFixture(t, model.GlobalConfig{})
			h := f.controller(ScopeStandard)
			f.state.OpenMenu(true, ScopeStandard)

			h.Dispatch(ScrollEvent{OffsetY: tt.offset})
			assert.True(t, f.state.IsOpen(ScopeStandard), "debounced")

			f.clock.Advance(f.timing.ScrollDebounce)
			assert.Equal(t, tt.wantOpen, f.state.IsOpen(ScopeStandard))
		})
	}
}

func TestScrollDebounceUsesLastOffset(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	h := f.controller(ScopeStandard)
	f.state.OpenMenu(true, ScopeStandard)

	h.Dispatch(ScrollEvent{OffsetY: 900})
	f.clock.Advance(f.timing.ScrollDebounce / 2)
	h.Dispatch(ScrollEvent{OffsetY: 10})
	f.clock.Advance(f.timing.ScrollDebounce)

	assert.True(t, f.state.IsOpen(ScopeStandard))
}

func TestTriggerEnterOpens(t *testing.T) {
	t.Run("standard scope opens", func(t *testing.T) {
		f := newHorizontalFixture(t, model.GlobalConfig{})
		h := f.controller(ScopeStandard)

		h.Dispatch(TriggerEnterEvent{})
		assert.True(t, f.state.IsOpen(ScopeStandard))
	})

	t.Run("home scope ignores trigger", func(t *testing.T) {
		f := newHorizontalFixture(t, model.GlobalConfig{HomeVersion: true})
		f.state.OpenMenu(false, ScopeHome)
		h := f.controller(ScopeHome)

		h.Dispatch(TriggerEnterEvent{})
		assert.False(t, f.state.IsOpen(ScopeHome))
	})

	t.Run("openOnly vertical blocks horizontal", func(t *testing.T) {
		f := newHorizontalFixture(t, model.GlobalConfig{OpenOnly: model.OrientationVertical})
		h := f.controller(ScopeStandard)

		h.Dispatch(TriggerEnterEvent{})
		assert.False(t, f.state.IsOpen(ScopeStandard))
	})
}

func TestNavigateClosesMenu(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	h := f.controller(ScopeStandard)
	f.state.OpenMenu(true, ScopeStandard)
	h.Dispatch(LeaveEvent{})

	h.Dispatch(NavigateEvent{Slug: "/books"})

	assert.False(t, f.state.IsOpen(ScopeStandard))
	assert.Equal(t, 0, h.PendingTasks())
}

func TestHomeAndStandardTimersIndependent(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	standard := f.controller(ScopeStandard)
	home := f.controller(ScopeHome)

	home.Dispatch(HoverEvent{DepartmentID: "A"})
	standard.Dispatch(HoverEvent{DepartmentID: "B"})
	standard.Dispatch(OutsideClickEvent{Region: RegionOutside})
	f.clock.Advance(f.timing.HoverDelay)

	assert.Nil(t, f.state.DepartmentActive(ScopeStandard))
	require.NotNil(t, f.state.DepartmentActive(ScopeHome), "standard close must not cancel home hover")
	assert.Equal(t, "A", f.state.DepartmentActive(ScopeHome).ID)
}

func TestUnmountCancelsEverything(t *testing.T) {
	f := newHorizontalFixture(t, model.GlobalConfig{})
	h := f.controller(ScopeStandard)
	f.state.OpenMenu(true, ScopeStandard)

	h.Dispatch(HoverEvent{DepartmentID: "B"})
	h.Dispatch(ScrollEvent{OffsetY: 1000})
	h.Unmount()
	f.clock.Advance(time.Minute)

	assert.Nil(t, f.state.DepartmentActive(ScopeStandard))
	assert.True(t, f.state.IsOpen(ScopeStandard))
	assert.Equal(t, 0, f.clock.Live())

	h.Dispatch(LeaveEvent{})
	f.clock.Advance(time.Minute)
	assert.True(t, f.state.IsOpen(ScopeStandard), "no tasks after unmount")
}
