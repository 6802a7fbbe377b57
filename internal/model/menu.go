// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"slices"
	"sort"
	"strings"
)

// Orientation selects how the menu is laid out.
type Orientation string

// Orientation values
const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
)

// DefaultTitle is the heading used when no title is configured.
const DefaultTitle = "Departments"

// IsValid reports whether o is one of the known orientations.
func (o Orientation) IsValid() bool {
	return o == OrientationHorizontal || o == OrientationVertical
}

// ParseOrientation normalizes s into an Orientation.
// Unknown values yield the empty orientation (no override).
func ParseOrientation(s string) Orientation {
	o := Orientation(strings.ToLower(strings.TrimSpace(s)))
	if o.IsValid() {
		return o
	}
	return ""
}

// MenuItem is a node of the department/category tree.
// A node without children is a leaf and is always rendered as a link.
type MenuItem struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Slug         string      `json:"slug"`
	Icon         string      `json:"icon"`
	UploadedIcon string      `json:"uploadedIcon,omitempty"`
	Styles       string      `json:"styles"`
	Display      bool        `json:"display"`
	EnableSty    bool        `json:"enableSty"`
	Order        int         `json:"order"`
	SellerIDs    string      `json:"sellerIDs,omitempty"`
	SlugRoot     string      `json:"slugRoot,omitempty"`
	SlugRelative string      `json:"slugRelative,omitempty"`
	Banner       string      `json:"banner,omitempty"`
	BannerLink   string      `json:"bannerLink,omitempty"`
	OptionalText string      `json:"optionalText,omitempty"`
	Menu         []*MenuItem `json:"menu,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (m *MenuItem) IsLeaf() bool {
	return len(m.Menu) == 0
}

// VisibleChildren returns the children flagged for display, in order.
func (m *MenuItem) VisibleChildren() []*MenuItem {
	return Visible(m.Menu)
}

// HasBanner reports whether a banner image is configured.
func (m *MenuItem) HasBanner() bool {
	return m.Banner != ""
}

// SellerIDList splits the comma separated SellerIDs field.
func (m *MenuItem) SellerIDList() []string {
	if strings.TrimSpace(m.SellerIDs) == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(m.SellerIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// EligibleFor reports whether the node may be shown to a shopper whose region
// is served by sellers. Nodes without seller restrictions are always eligible.
func (m *MenuItem) EligibleFor(sellers map[string]struct{}) bool {
	ids := m.SellerIDList()
	if len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		if _, ok := sellers[id]; ok {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the subtree rooted at m.
func (m *MenuItem) Clone() *MenuItem {
	if m == nil {
		return nil
	}
	c := *m
	if m.Menu != nil {
		c.Menu = make([]*MenuItem, len(m.Menu))
		for i, child := range m.Menu {
			c.Menu[i] = child.Clone()
		}
	}
	return &c
}

// Visible filters items down to the ones flagged for display.
func Visible(items []*MenuItem) []*MenuItem {
	out := make([]*MenuItem, 0, len(items))
	for _, it := range items {
		if it != nil && it.Display {
			out = append(out, it)
		}
	}
	return out
}

// Walk visits every node in pre-order. Returning false from fn stops the walk.
func Walk(items []*MenuItem, fn func(item *MenuItem, depth int) bool) {
	walk(items, 1, fn)
}

func walk(items []*MenuItem, depth int, fn func(*MenuItem, int) bool) bool {
	for _, it := range items {
		if it == nil {
			continue
		}
		if !fn(it, depth) {
			return false
		}
		if !walk(it.Menu, depth+1, fn) {
			return false
		}
	}
	return true
}

// FindByID returns the node with the given id anywhere in the tree.
func FindByID(items []*MenuItem, id string) *MenuItem {
	var found *MenuItem
	Walk(items, func(it *MenuItem, _ int) bool {
		if it.ID == id {
			found = it
			return false
		}
		return true
	})
	return found
}

// Contains reports whether target (by identity) is reachable from items.
func Contains(items []*MenuItem, target *MenuItem) bool {
	if target == nil {
		return false
	}
	found := false
	Walk(items, func(it *MenuItem, _ int) bool {
		if it == target {
			found = true
			return false
		}
		return true
	})
	return found
}

// FindDepartment matches name against the top-level nodes, ignoring case and
// surrounding whitespace.
func FindDepartment(departments []*MenuItem, name string) *MenuItem {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return nil
	}
	for _, d := range departments {
		if d != nil && strings.ToLower(strings.TrimSpace(d.Name)) == want {
			return d
		}
	}
	return nil
}

// SortByOrder sorts every level of the tree by Order, keeping the original
// sequence for equal values.
func SortByOrder(items []*MenuItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})
	for _, it := range items {
		SortByOrder(it.Menu)
	}
}

// FilterEligible returns a pruned copy of the tree holding only the nodes
// eligible for the given seller set.
func FilterEligible(items []*MenuItem, sellers map[string]struct{}) []*MenuItem {
	out := make([]*MenuItem, 0, len(items))
	for _, it := range items {
		if it == nil || !it.EligibleFor(sellers) {
			continue
		}
		c := *it
		if it.Menu != nil {
			c.Menu = FilterEligible(it.Menu, sellers)
		}
		out = append(out, &c)
	}
	return out
}

// GlobalConfig is the widget configuration. It is replaced wholesale on every
// load and never patched.
type GlobalConfig struct {
	Title                   string      `json:"title,omitempty"`
	Orientation             Orientation `json:"orientation,omitempty"`
	DefaultDepartmentActive string      `json:"defaultDepartmentActive,omitempty"`
	OpenOnly                Orientation `json:"openOnly,omitempty"`
	HomeVersion             bool        `json:"homeVersion,omitempty"`
}

// AllowsOpen reports whether a menu rendered with orientation o may open.
func (c GlobalConfig) AllowsOpen(o Orientation) bool {
	return c.OpenOnly == "" || c.OpenOnly == o
}

// MenusResponse is the envelope returned by the menus query.
type MenusResponse struct {
	Menus []*MenuItem `json:"menus"`
	// Revision changes every time the menus are reloaded from their source.
	Revision string `json:"revision,omitempty"`
}

// Depth returns the depth of the deepest node, 0 for an empty tree.
func Depth(items []*MenuItem) int {
	maxDepth := 0
	Walk(items, func(_ *MenuItem, depth int) bool {
		maxDepth = max(maxDepth, depth)
		return true
	})
	return maxDepth
}

// IDs returns the ids of items in order.
func IDs(items []*MenuItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return slices.Clip(ids)
}
