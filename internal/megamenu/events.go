// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package megamenu

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEvent is returned when an event type is not recognised.
var ErrUnknownEvent = errors.New("unknown menu event")

// Event types as sent by the client script.
const (
	EventHover        = "hover"
	EventEnter        = "enter"
	EventLeave        = "leave"
	EventOutsideClick = "outside_click"
	EventScroll       = "scroll"
	EventTriggerEnter = "trigger_enter"
	EventNavigate     = "navigate"
	EventToggle       = "toggle"
)

// Region identifies where a pointer event landed.
type Region string

// Region values
const (
	RegionNav     Region = "nav"
	RegionSubmenu Region = "submenu"
	RegionTrigger Region = "trigger"
	RegionOutside Region = "outside"
)

// Inside reports whether the region belongs to the menu chrome.
func (r Region) Inside() bool {
	return r == RegionNav || r == RegionSubmenu || r == RegionTrigger
}

// Event is an interaction event dispatched to a controller.
type Event interface {
	Type() string
}

// HoverEvent means the pointer entered a department row.
type HoverEvent struct {
	DepartmentID string
}

// EnterEvent means the pointer (re-)entered the menu region.
type EnterEvent struct{}

// LeaveEvent means the pointer left the whole menu region.
type LeaveEvent struct{}

// OutsideClickEvent is a pointer down captured at document level.
type OutsideClickEvent struct {
	Region Region
}

// ScrollEvent reports the vertical page offset in pixels.
type ScrollEvent struct {
	OffsetY int
}

// TriggerEnterEvent means the pointer entered the trigger button.
type TriggerEnterEvent struct{}

// NavigateEvent means a menu link was followed.
type NavigateEvent struct {
	Slug string
}

// ToggleEvent expands or collapses a node of the vertical menu.
type ToggleEvent struct {
	ItemID string
}

func (HoverEvent) Type() string        { return EventHover }
func (EnterEvent) Type() string        { return EventEnter }
func (LeaveEvent) Type() string        { return EventLeave }
func (OutsideClickEvent) Type() string { return EventOutsideClick }
func (ScrollEvent) Type() string       { return EventScroll }
func (TriggerEnterEvent) Type() string { return EventTriggerEnter }
func (NavigateEvent) Type() string     { return EventNavigate }
func (ToggleEvent) Type() string       { return EventToggle }

// eventPayload is the wire format of an event.
type eventPayload struct {
	Type         string `json:"type"`
	DepartmentID string `json:"departmentId,omitempty"`
	ItemID       string `json:"itemId,omitempty"`
	Region       string `json:"region,omitempty"`
	OffsetY      int    `json:"offsetY,omitempty"`
	Slug         string `json:"slug,omitempty"`
	Home         bool   `json:"home,omitempty"`
}

// Envelope is a decoded event together with the menu instance it targets.
type Envelope struct {
	Event Event
	Home  bool
}

// DecodeEvent parses the JSON wire format into a typed event.
func DecodeEvent(data []byte) (Envelope, error) {
	var p eventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Envelope{}, fmt.Errorf("decoding event: %w", err)
	}

	var ev Event
	switch strings.ToLower(p.Type) {
	case EventHover:
		if p.DepartmentID == "" {
			return Envelope{}, errors.New("hover event requires departmentId")
		}
		ev = HoverEvent{DepartmentID: p.DepartmentID}
	case EventEnter:
		ev = EnterEvent{}
	case EventLeave:
		ev = LeaveEvent{}
	case EventOutsideClick:
		region := Region(p.Region)
		if region == "" {
			region = RegionOutside
		}
		ev = OutsideClickEvent{Region: region}
	case EventScroll:
		ev = ScrollEvent{OffsetY: p.OffsetY}
	case EventTriggerEnter:
		ev = TriggerEnterEvent{}
	case EventNavigate:
		ev = NavigateEvent{Slug: p.Slug}
	case EventToggle:
		if p.ItemID == "" {
			return Envelope{}, errors.New("toggle event requires itemId")
		}
		ev = ToggleEvent{ItemID: p.ItemID}
	default:
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownEvent, p.Type)
	}

	return Envelope{Event: ev, Home: p.Home}, nil
}
