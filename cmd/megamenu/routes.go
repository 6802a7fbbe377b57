// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/ocms-megamenu/internal/auth"
	"github.com/olegiv/ocms-megamenu/internal/config"
	"github.com/olegiv/ocms-megamenu/internal/handler"
	"github.com/olegiv/ocms-megamenu/internal/metrics"
	"github.com/olegiv/ocms-megamenu/internal/middleware"
)

const (
	requestTimeout = 30 * time.Second
	staticMaxAge   = 3600
	adminRealm     = "megamenu admin"
)

type routerDeps struct {
	cfg      *config.Config
	metrics  *metrics.Metrics
	sm       *scs.SessionManager
	menu     *handler.MenuHandler
	export   *handler.ExportHandler // nil without a commerce backend
	health   *handler.HealthHandler
	staticFS fs.FS
	logger   *slog.Logger
}

func newRouter(d routerDeps) http.Handler {
	cfg := d.cfg

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	securityConfig.FrameAncestors = cfg.FrameAncestors

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig(
		[]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.TrustedOrigins...))
	eventLimiter := middleware.NewRateLimiter(cfg.EventRateLimit, cfg.EventRateBurst)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(chimw.RedirectSlashes)
	r.Use(middleware.SecurityHeaders(securityConfig))

	// Probes and metrics
	r.Get(handler.RouteHealth, d.health.Health)
	r.Get(handler.RouteHealthLive, d.health.Liveness)
	r.Get(handler.RouteHealthReady, d.health.Readiness)
	r.Handle(handler.RouteMetrics, d.metrics.Handler())

	r.With(middleware.StaticCache(staticMaxAge)).
		Handle(handler.RouteStatic, http.StripPrefix("/static/", http.FileServerFS(d.staticFS)))

	// The state stream is long-lived: no timeout, compression or session
	// write-back.
	r.With(middleware.NoStore).Get(handler.RouteMenuStream, d.menu.Stream)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(middleware.Language())
		r.Use(middleware.Device)

		r.Get(handler.RouteAPIMenus, d.menu.Menus)

		r.Group(func(r chi.Router) {
			r.Use(d.sm.LoadAndSave)
			r.Use(middleware.NoStore)

			r.Get(handler.RouteMenu, d.menu.Menu)
			r.Get(handler.RouteMenuState, d.menu.State)
			r.With(eventLimiter.Middleware, csrfMiddleware).Post(handler.RouteMenuEvents, d.menu.Event)
		})

		if d.export != nil && cfg.AdminEnabled() {
			r.Route(handler.RouteAdmin, func(r chi.Router) {
				r.Use(auth.BasicAuth(adminRealm, cfg.AdminUser, cfg.AdminPasswordHash, d.logger))
				r.Use(middleware.NoStore)
				r.Get(handler.RouteAdminMegaMenu, d.export.Control)
				r.Get(handler.RouteAdminExport, d.export.Export)
			})
		}
	})

	return r
}
