// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-megamenu/internal/auth"
	"github.com/olegiv/ocms-megamenu/internal/cache"
	"github.com/olegiv/ocms-megamenu/internal/commerce"
	"github.com/olegiv/ocms-megamenu/internal/config"
	"github.com/olegiv/ocms-megamenu/internal/geoip"
	"github.com/olegiv/ocms-megamenu/internal/handler"
	"github.com/olegiv/ocms-megamenu/internal/i18n"
	"github.com/olegiv/ocms-megamenu/internal/logging"
	"github.com/olegiv/ocms-megamenu/internal/megamenu"
	"github.com/olegiv/ocms-megamenu/internal/metrics"
	"github.com/olegiv/ocms-megamenu/internal/render"
	"github.com/olegiv/ocms-megamenu/internal/scheduler"
	"github.com/olegiv/ocms-megamenu/internal/service"
	"github.com/olegiv/ocms-megamenu/internal/session"
	"github.com/olegiv/ocms-megamenu/internal/transfer"
	"github.com/olegiv/ocms-megamenu/internal/version"
	"github.com/olegiv/ocms-megamenu/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Background job schedules
const (
	sessionEvictSpec = "@every 1m"
	geoIPReloadSpec  = "@daily"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	hashPassword := flag.String("hash-password", "", "Print the argon2id hash of a password for MEGAMENU_ADMIN_PASSWORD_HASH")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "megamenu - storefront department menu server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MEGAMENU_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MEGAMENU_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MEGAMENU_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MEGAMENU_SOURCE_PATH       Menu file, JSON or CSV (default: ./data/menus.json)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MEGAMENU_SOURCE_URL        Menu endpoint, overrides the file (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MEGAMENU_COMMERCE_ACCOUNT  Commerce account for regions and exports (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MEGAMENU_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MEGAMENU_GEOIP_DB_PATH     GeoLite2-Country database (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MEGAMENU_ADMIN_PASSWORD_HASH  Enables the admin export endpoint (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		_, _ = fmt.Printf("megamenu %s\n", info)
		os.Exit(0)
	}

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "hashing password: %v\n", err)
			os.Exit(1)
		}
		_, _ = fmt.Println(hash)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	m := metrics.New()

	logger := logging.New(os.Stdout, logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDevelopment(),
		Sink: func(e logging.Entry) {
			m.Logs.Increment(e.Level.String(), e.Category)
		},
	})
	slog.SetDefault(logger)
	slog.Info("starting megamenu", "version", versionInfo.Short(), "env", cfg.Env)

	if err := i18n.Init(logger, cfg.DefaultLanguage); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisURL = cfg.RedisURL
	cacheCfg.Prefix = cfg.CachePrefix
	cacheCfg.DefaultTTL = cfg.CacheTTL
	cacheCfg.MaxSize = cfg.CacheMaxSize
	cacheResult, err := cache.New(cacheCfg, logger)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	appCache := cacheResult.Cache
	defer func() {
		if err := appCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if sp, ok := appCache.(cache.StatsProvider); ok {
		m.RegisterGauge("cache_hit_rate", "Cache hit rate in percent.", func() float64 {
			return sp.Stats().HitRate
		})
	}

	lookup, err := geoip.NewLookup(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip disabled", "error", err)
	}
	defer func() { _ = lookup.Close() }()
	regions := geoip.NewRegionResolver(lookup, cfg.CountryRegions, cfg.DefaultRegion)

	var commerceClient *commerce.Client
	var sellers service.SellerLookup
	if cfg.CommerceEnabled() {
		commerceClient, err = commerce.NewClient(commerce.Options{
			Account:   cfg.CommerceAccount,
			BaseURL:   cfg.CommerceBaseURL,
			Token:     cfg.CommerceToken,
			Timeout:   cfg.CommerceTimeout,
			Retries:   cfg.CommerceRetries,
			SellerTTL: cfg.CommerceSellerTTL,
			Cache:     appCache,
			Logger:    logger,
			Upstream:  m.Upstream,
		})
		if err != nil {
			return fmt.Errorf("initializing commerce client: %w", err)
		}
		sellers = commerceClient
		slog.Info("commerce backend enabled", "base_url", commerceClient.BaseURL())
	}

	var source service.Source
	if cfg.MenuSourceURL != "" {
		source = service.NewHTTPSource(cfg.MenuSourceURL, cfg.CommerceTimeout, cfg.CommerceRetries, logger)
		slog.Info("menu source", "url", cfg.MenuSourceURL)
	} else {
		source = service.NewFileSource(cfg.MenuSourcePath)
		slog.Info("menu source", "path", cfg.MenuSourcePath)
	}

	menuService := service.NewMenuService(service.MenuServiceOptions{
		Source:    source,
		Sellers:   sellers,
		Cache:     appCache,
		TTL:       cfg.CacheTTL,
		Logger:    logger,
		Refreshes: m.Refreshes,
	})

	warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := menuService.Refresh(warmCtx); err != nil {
		slog.Warn("initial menu load failed, will retry on schedule", "error", err)
	}
	warmCancel()

	sessions := megamenu.NewRegistry(megamenu.RegistryOptions{
		Timing: megamenu.Timing{
			HoverDelay:      cfg.HoverDelay,
			CloseDelay:      cfg.CloseDelay,
			ScrollDebounce:  cfg.ScrollDebounce,
			ScrollThreshold: cfg.ScrollThreshold,
		},
		Logger: logger,
	})
	defer sessions.Close()
	m.RegisterGauge("sessions", "Live visitor menu sessions.", func() float64 {
		return float64(sessions.Len())
	})

	sessionManager := session.New(session.NewCacheStore(appCache), cfg.SessionIdleTTL, cfg.IsDevelopment())

	renderer, err := render.New(render.Config{TemplatesFS: web.TemplatesFS()})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	menuHandler := handler.NewMenuHandler(handler.MenuHandlerOptions{
		Menus:    menuService,
		Sessions: sessions,
		SM:       sessionManager,
		Renderer: renderer,
		Regions:  regions,
		Widget:   cfg.Widget(),
		Renders:  m.Renders,
		Events:   m.Events,
		Logger:   logger,
	})

	var exportHandler *handler.ExportHandler
	if commerceClient != nil {
		exportHandler = handler.NewExportHandler(transfer.NewExporter(commerceClient, logger), renderer, m.Exports, logger)
	}

	healthHandler := handler.NewHealthHandler(appCache, menuService, sessions, versionInfo.Short(), cfg.IsDevelopment())

	sched := scheduler.New(logger)
	jobs := []scheduler.Job{
		{Name: "refresh-menus", Schedule: cfg.RefreshSpec, Run: menuService.Refresh},
		{Name: "evict-sessions", Schedule: sessionEvictSpec, Run: func(context.Context) error {
			if n := sessions.Evict(cfg.SessionIdleTTL); n > 0 {
				slog.Debug("evicted idle sessions", "count", n)
			}
			return nil
		}},
	}
	if lookup.IsEnabled() {
		jobs = append(jobs, scheduler.Job{Name: "reload-geoip", Schedule: geoIPReloadSpec, Run: func(context.Context) error {
			return lookup.Reload()
		}})
	}
	for _, job := range jobs {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("scheduling %s: %w", job.Name, err)
		}
	}
	sched.Start()
	defer sched.Stop()

	r := newRouter(routerDeps{
		cfg:      cfg,
		metrics:  m,
		sm:       sessionManager,
		menu:     menuHandler,
		export:   exportHandler,
		health:   healthHandler,
		staticFS: web.StaticFS(),
		logger:   logger,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // state streams clear their own deadline
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	srv.RegisterOnShutdown(menuHandler.Close)

	go func() {
		slog.Info("server listening", "addr", cfg.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
