// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/ocms-megamenu/internal/cache"
	"github.com/olegiv/ocms-megamenu/internal/model"
)

// Health check statuses
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// healthProbeKey is written and read back to verify the cache backend.
const healthProbeKey = "health:probe"

// MenuLister returns every department.
type MenuLister interface {
	All(ctx context.Context) ([]*model.MenuItem, error)
}

// SessionCounter reports the number of live visitor sessions.
type SessionCounter interface {
	Len() int
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	cache     cache.Cacher
	menus     MenuLister
	sessions  SessionCounter
	version   string
	verbose   bool
	startTime time.Time
}

// NewHealthHandler creates a new health handler. verbose allows
// ?verbose=true to include runtime details.
func NewHealthHandler(c cache.Cacher, menus MenuLister, sessions SessionCounter, version string, verbose bool) *HealthHandler {
	if version == "" {
		version = "dev"
	}
	return &HealthHandler{
		cache:     c,
		menus:     menus,
		sessions:  sessions,
		version:   version,
		verbose:   verbose,
		startTime: time.Now(),
	}
}

// StartTime returns when the handler (and application) was started.
func (h *HealthHandler) StartTime() time.Time {
	return h.startTime
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Sessions  int              `json:"sessions"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health. A failing menu source makes the service
// degraded, not unhealthy: visitors still get the loading skeleton.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	cacheCheck := h.checkCache(r.Context())
	menuCheck := h.checkMenus(r.Context())

	overall := statusHealthy
	switch {
	case cacheCheck.Status == statusUnhealthy:
		overall = statusUnhealthy
	case menuCheck.Status != statusHealthy:
		overall = statusDegraded
	}

	status := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks: map[string]Check{
			"cache": cacheCheck,
			"menus": menuCheck,
		},
	}
	if h.sessions != nil {
		status.Sessions = h.sessions.Len()
	}
	if h.verbose && queryBool(r, "verbose") {
		status.System = getSystemInfo()
	}

	code := http.StatusOK
	if overall == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready. The service is ready once menu data
// can be served.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if check := h.checkMenus(r.Context()); check.Status != statusHealthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": check.Message,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// checkCache writes and reads back a probe key.
func (h *HealthHandler) checkCache(ctx context.Context) Check {
	if h.cache == nil {
		return Check{Status: statusHealthy, Message: "No cache configured"}
	}

	start := time.Now()
	err := h.cache.Set(ctx, healthProbeKey, []byte("ok"), time.Minute)
	if err == nil {
		_, err = h.cache.Get(ctx, healthProbeKey)
	}
	latency := time.Since(start)

	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency.String()}
	}
	return Check{Status: statusHealthy, Message: "Connected", Latency: latency.String()}
}

// checkMenus verifies that menu data can be loaded.
func (h *HealthHandler) checkMenus(ctx context.Context) Check {
	if h.menus == nil {
		return Check{Status: statusDegraded, Message: "No menu source configured"}
	}

	start := time.Now()
	menus, err := h.menus.All(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{Status: statusDegraded, Message: err.Error(), Latency: latency.String()}
	}
	return Check{
		Status:  statusHealthy,
		Message: fmt.Sprintf("%d departments", len(menus)),
		Latency: latency.String(),
	}
}

// getSystemInfo returns system-level metrics.
func getSystemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
