// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package megamenu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-megamenu/internal/model"
	"github.com/olegiv/ocms-megamenu/internal/testutil"
)

func ids(items []*model.MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestNewStateInitialFlags(t *testing.T) {
	s := NewState()

	assert.False(t, s.IsOpen(ScopeStandard), "standard menu starts closed")
	assert.True(t, s.IsOpen(ScopeHome), "home menu starts open")
	assert.Nil(t, s.DepartmentActive(ScopeStandard))
	assert.Nil(t, s.DepartmentActive(ScopeHome))
	assert.False(t, s.Loaded())
	assert.NotNil(t, s.Categories(ScopeStandard))
	assert.Empty(t, s.Categories(ScopeStandard))
}

func TestCategories(t *testing.T) {
	s := NewState()
	depts := testutil.SampleDepartments()
	s.SetDepartments(depts)

	t.Run("nothing active concatenates all children", func(t *testing.T) {
		assert.Equal(t, []string{"B1", "B2", "C1"}, ids(s.Categories(ScopeStandard)))
	})

	t.Run("active department returns its children", func(t *testing.T) {
		s.SetDepartmentActive(depts[1], ScopeStandard)
		assert.Equal(t, []string{"B1", "B2"}, ids(s.Categories(ScopeStandard)))
	})

	t.Run("active leaf returns empty", func(t *testing.T) {
		s.SetDepartmentActive(depts[0], ScopeStandard)
		got := s.Categories(ScopeStandard)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("home scope is independent", func(t *testing.T) {
		assert.Equal(t, []string{"B1", "B2", "C1"}, ids(s.Categories(ScopeHome)))
	})
}

func TestCategoriesReturnsCopy(t *testing.T) {
	s := NewState()
	depts := testutil.SampleDepartments()
	s.SetDepartments(depts)
	s.SetDepartmentActive(depts[1], ScopeStandard)

	got := s.Categories(ScopeStandard)
	got[0] = nil

	assert.Equal(t, "B1", depts[1].Menu[0].ID)
}

func TestScopeIndependence(t *testing.T) {
	s := NewState()
	depts := testutil.SampleDepartments()
	s.SetDepartments(depts)

	s.SetDepartmentActive(depts[0], ScopeHome)
	s.OpenMenu(true, ScopeStandard)

	assert.Same(t, depts[0], s.DepartmentActive(ScopeHome))
	assert.Nil(t, s.DepartmentActive(ScopeStandard))
	assert.True(t, s.IsOpen(ScopeStandard))
	assert.True(t, s.IsOpen(ScopeHome))

	s.OpenMenu(false, ScopeHome)
	assert.True(t, s.IsOpen(ScopeStandard))
	assert.False(t, s.IsOpen(ScopeHome))
}

func TestUpdateMenu(t *testing.T) {
	s := NewState()
	toggle := func(v bool) bool { return !v }

	s.UpdateMenu(toggle, ScopeStandard)
	assert.True(t, s.IsOpen(ScopeStandard))

	s.UpdateMenu(toggle, ScopeStandard)
	assert.False(t, s.IsOpen(ScopeStandard))

	s.UpdateMenu(toggle, ScopeHome)
	assert.False(t, s.IsOpen(ScopeHome))
}

func TestSetDepartmentsReResolvesActive(t *testing.T) {
	s := NewState()
	first := testutil.SampleDepartments()
	s.SetDepartments(first)
	s.SetDepartmentActive(first[1], ScopeStandard)
	s.SetDepartmentActive(first[0], ScopeHome)

	second := testutil.SampleDepartments()
	second = second[1:] // drop A
	s.SetDepartments(second)

	active := s.DepartmentActive(ScopeStandard)
	require.NotNil(t, active)
	assert.Same(t, second[0], active, "active must point into the new tree")
	assert.Nil(t, s.DepartmentActive(ScopeHome), "missing id is cleared")
}

func TestSetDepartmentsIgnoresNestedIDs(t *testing.T) {
	s := NewState()
	first := testutil.SampleDepartments()
	s.SetDepartments(first)
	s.SetDepartmentActive(first[0], ScopeStandard)

	// "A" now names a category below Books, not a department.
	second := testutil.SampleDepartments()[1:]
	second[0].Menu = append(second[0].Menu, &model.MenuItem{ID: "A", Name: "Atlases", Display: true})
	s.SetDepartments(second)

	assert.Nil(t, s.DepartmentActive(ScopeStandard))
}

func TestSetConfigReplacesWholesale(t *testing.T) {
	s := NewState()
	s.SetConfig(model.GlobalConfig{Title: "Shop", DefaultDepartmentActive: "B"})
	s.SetConfig(model.GlobalConfig{Title: "Other"})

	cfg := s.Config()
	assert.Equal(t, "Other", cfg.Title)
	assert.Empty(t, cfg.DefaultDepartmentActive)
}

func TestSubscribe(t *testing.T) {
	s := NewState()
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
	})

	s.OpenMenu(true, ScopeStandard)
	s.SetDepartments(testutil.SampleDepartments())

	require.Len(t, got, 2)
	assert.True(t, got[0].IsOpenMenu)
	assert.Len(t, got[1].Departments, 3)
	assert.Greater(t, got[1].Version, got[0].Version)

	unsubscribe()
	s.OpenMenu(false, ScopeStandard)
	assert.Len(t, got, 2)
}

func TestListenerMayReadState(t *testing.T) {
	s := NewState()
	var open bool
	s.Subscribe(func(Snapshot) {
		open = s.IsOpen(ScopeStandard)
	})

	s.OpenMenu(true, ScopeStandard)
	assert.True(t, open)
}

func TestSnapshotAccessors(t *testing.T) {
	s := NewState()
	depts := testutil.SampleDepartments()
	s.SetDepartments(depts)
	s.SetDepartmentActive(depts[1], ScopeHome)

	snap := s.Snapshot()
	assert.Same(t, depts[1], snap.Active(ScopeHome))
	assert.Nil(t, snap.Active(ScopeStandard))
	assert.True(t, snap.Open(ScopeHome))
	assert.False(t, snap.Open(ScopeStandard))
}

func TestScope(t *testing.T) {
	assert.Equal(t, ScopeHome, ScopeFor(true))
	assert.Equal(t, ScopeStandard, ScopeFor(false))
	assert.Equal(t, "home", ScopeHome.String())
	assert.Equal(t, "standard", ScopeStandard.String())
}
