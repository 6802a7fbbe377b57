// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteMenu serves the rendered menu.
	RouteMenu = "/menu"
	// RouteMenuEvents receives interaction events.
	RouteMenuEvents = RouteMenu + "/events"
	// RouteMenuState returns the visitor's state snapshot.
	RouteMenuState = RouteMenu + "/state"
	// RouteMenuStream streams state changes as server-sent events.
	RouteMenuStream = RouteMenu + "/stream"
	// RouteAPIMenus returns the menus envelope.
	RouteAPIMenus = "/api/menus"

	// RouteAdmin is the admin prefix.
	RouteAdmin = "/admin"
	// RouteAdminMegaMenu shows the export control.
	RouteAdminMegaMenu = "/megamenu"
	// RouteAdminExport downloads the category export.
	RouteAdminExport = RouteAdminMegaMenu + "/export"

	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness route.
	RouteHealthLive = RouteHealth + "/live"
	// RouteHealthReady is the readiness route.
	RouteHealthReady = RouteHealth + "/ready"
	// RouteMetrics exposes Prometheus metrics.
	RouteMetrics = "/metrics"
	// RouteStatic serves the client script.
	RouteStatic = "/static/*"

	// ScriptPath is the URL of the client script.
	ScriptPath = "/static/megamenu.js"
)

// Query parameters
const (
	paramOrientation = "orientation"
	paramHome        = "home"
	paramRegion      = "region"
	paramFilter      = "filter"
	paramFragment    = "fragment"
	paramFormat      = "format"
)

// Utility constants used by main.go.
const (
	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"
	// MaxEventBodySize bounds the body of an interaction event.
	MaxEventBodySize = 4 << 10
)
