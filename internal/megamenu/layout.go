// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package megamenu

import (
	"github.com/mileusna/useragent"

	"github.com/olegiv/ocms-megamenu/internal/model"
)

// Device is the coarse client class used for layout decisions.
type Device string

// Device values
const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
	DeviceTablet  Device = "tablet"
	DeviceBot     Device = "bot"
)

// IsMobile reports whether the device gets the touch (vertical) layout.
func (d Device) IsMobile() bool {
	return d == DeviceMobile || d == DeviceTablet
}

// DetectDevice classifies a User-Agent header.
func DetectDevice(uaString string) Device {
	ua := useragent.Parse(uaString)

	switch {
	case ua.Mobile:
		return DeviceMobile
	case ua.Tablet:
		return DeviceTablet
	case ua.Bot:
		return DeviceBot
	default:
		return DeviceDesktop
	}
}

// SelectOrientation picks the layout. An explicit orientation always wins;
// otherwise mobile devices get the vertical menu and everything else the
// horizontal one.
func SelectOrientation(explicit model.Orientation, device Device) model.Orientation {
	if explicit.IsValid() {
		return explicit
	}
	if device.IsMobile() {
		return model.OrientationVertical
	}
	return model.OrientationHorizontal
}
