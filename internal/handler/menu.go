// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-megamenu/internal/commerce"
	"github.com/olegiv/ocms-megamenu/internal/megamenu"
	"github.com/olegiv/ocms-megamenu/internal/metrics"
	"github.com/olegiv/ocms-megamenu/internal/middleware"
	"github.com/olegiv/ocms-megamenu/internal/model"
	"github.com/olegiv/ocms-megamenu/internal/render"
	"github.com/olegiv/ocms-megamenu/internal/service"
	"github.com/olegiv/ocms-megamenu/internal/session"
)

// DefaultHeartbeat is the interval of keep-alive comments on state streams.
const DefaultHeartbeat = 25 * time.Second

// MenuSource returns the menus for a query.
type MenuSource interface {
	Query(ctx context.Context, q service.Query) (service.Result, error)
}

// RegionResolver maps a client address to a commerce region.
type RegionResolver interface {
	Region(remoteAddr string) string
}

// MenuHandlerOptions configures a MenuHandler.
type MenuHandlerOptions struct {
	Menus    MenuSource
	Sessions *megamenu.Registry
	SM       *scs.SessionManager
	Renderer *render.Renderer
	// Regions is optional; without it only the region query parameter is used.
	Regions RegionResolver
	Widget  model.GlobalConfig
	Renders metrics.IncrementalCounter
	Events  metrics.IncrementalCounter
	Logger  *slog.Logger
	// Heartbeat defaults to DefaultHeartbeat.
	Heartbeat time.Duration
}

// MenuHandler serves the menu, its interaction events and state streams.
type MenuHandler struct {
	menus     MenuSource
	sessions  *megamenu.Registry
	sm        *scs.SessionManager
	renderer  *render.Renderer
	regions   RegionResolver
	widget    model.GlobalConfig
	renders   metrics.IncrementalCounter
	events    metrics.IncrementalCounter
	logger    *slog.Logger
	heartbeat time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(opts MenuHandlerOptions) *MenuHandler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = DefaultHeartbeat
	}
	return &MenuHandler{
		menus:     opts.Menus,
		sessions:  opts.Sessions,
		sm:        opts.SM,
		renderer:  opts.Renderer,
		regions:   opts.Regions,
		widget:    opts.Widget,
		renders:   opts.Renders,
		events:    opts.Events,
		logger:    opts.Logger,
		heartbeat: opts.Heartbeat,
		done:      make(chan struct{}),
	}
}

// Close ends every open state stream. Used on server shutdown.
func (h *MenuHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// visitor returns the menu session of the requesting visitor.
func (h *MenuHandler) visitor(r *http.Request) *megamenu.Session {
	return h.sessions.GetOrCreate(session.VisitorID(r.Context(), h.sm))
}

// widgetConfig applies the per-request overrides to the configured widget
// defaults. Invalid values are ignored.
func (h *MenuHandler) widgetConfig(r *http.Request) model.GlobalConfig {
	cfg := h.widget
	q := r.URL.Query()

	if o := model.ParseOrientation(q.Get(paramOrientation)); o != "" {
		cfg.Orientation = o
	}
	if o := model.ParseOrientation(q.Get("openOnly")); o != "" {
		cfg.OpenOnly = o
	}
	if home := queryBoolPtr(r, paramHome); home != nil {
		cfg.HomeVersion = *home
	}
	if d := strings.TrimSpace(q.Get("department")); d != "" {
		cfg.DefaultDepartmentActive = d
	}
	if t := strings.TrimSpace(q.Get("title")); t != "" {
		cfg.Title = t
	}
	return cfg
}

// menuQuery builds the service query. The region comes from the query string
// or, failing that, from the client address.
func (h *MenuHandler) menuQuery(r *http.Request) service.Query {
	region := strings.TrimSpace(r.URL.Query().Get(paramRegion))
	if region == "" && h.regions != nil {
		region = h.regions.Region(r.RemoteAddr)
	}
	return service.Query{Region: region, FilterByRegion: queryBool(r, paramFilter)}
}

// callerContext forwards the caller's platform credentials, taken from the
// auth header or cookie, to upstream seller lookups.
func callerContext(r *http.Request) context.Context {
	token := strings.TrimSpace(r.Header.Get(commerce.HeaderAuthToken))
	if token == "" {
		if c, err := r.Cookie(commerce.HeaderAuthToken); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		return r.Context()
	}
	return commerce.WithAuthToken(r.Context(), token)
}

// sync loads the current menus into the session. The layout is decided here
// from the request's device unless cfg fixes it.
func (h *MenuHandler) sync(r *http.Request, s *megamenu.Session, cfg model.GlobalConfig) error {
	res, err := h.menus.Query(callerContext(r), h.menuQuery(r))
	if err != nil {
		return err
	}
	if s.Sync(res.Revision, res.Menus, cfg, middleware.GetDevice(r)) {
		h.logger.Debug("menu session synced", "session", s.ID, "revision", res.Revision)
	}
	return nil
}

// Menu handles GET /menu. A failing menu source leaves the session in its
// loading state and the skeleton is rendered.
func (h *MenuHandler) Menu(w http.ResponseWriter, r *http.Request) {
	cfg := h.widgetConfig(r)
	s := h.visitor(r)
	if err := h.sync(r, s, cfg); err != nil {
		h.logger.Error("failed to load menu data", "error", err)
	}

	orientation := s.State.Config().Orientation
	if !orientation.IsValid() {
		orientation = megamenu.SelectOrientation(cfg.Orientation, middleware.GetDevice(r))
	}
	view := render.NewMenuView(s, orientation, middleware.GetLanguage(r))
	if h.renders != nil {
		h.renders.Increment(string(orientation))
	}

	var err error
	if queryBool(r, paramFragment) {
		err = h.renderer.Menu(w, view)
	} else {
		err = h.renderer.Embed(w, view, RouteMenu, ScriptPath)
	}
	if err != nil {
		logAndInternalError(w, h.logger, "failed to render menu", "error", err)
	}
}

// Menus handles GET /api/menus.
func (h *MenuHandler) Menus(w http.ResponseWriter, r *http.Request) {
	res, err := h.menus.Query(callerContext(r), h.menuQuery(r))
	if err != nil {
		h.logger.Error("failed to load menu data", "error", err)
		writeJSONError(w, http.StatusBadGateway, "menus unavailable")
		return
	}
	writeJSON(w, http.StatusOK, model.MenusResponse{Menus: res.Menus, Revision: res.Revision})
}

// stateResponse is the JSON view of a session.
type stateResponse struct {
	Version          uint64             `json:"version"`
	Loaded           bool               `json:"loaded"`
	Config           model.GlobalConfig `json:"config"`
	IsOpenMenu       bool               `json:"isOpenMenu"`
	IsOpenMenuHome   bool               `json:"isOpenMenuHome"`
	DepartmentActive string             `json:"departmentActive,omitempty"`
	ActiveHome       string             `json:"activeHome,omitempty"`
	Expanded         []string           `json:"expanded"`

	// Outcome of a vertical click
	Navigate string `json:"navigate,omitempty"`
	Toggled  bool   `json:"toggled,omitempty"`
}

func newStateResponse(s *megamenu.Session, action megamenu.Action) stateResponse {
	snap := s.State.Snapshot()
	resp := stateResponse{
		Version:        snap.Version,
		Loaded:         s.State.Loaded(),
		Config:         snap.Config,
		IsOpenMenu:     snap.IsOpenMenu,
		IsOpenMenuHome: snap.IsOpenMenuHome,
		Expanded:       slices.Sorted(maps.Keys(s.Vertical.ExpandedIDs())),
		Navigate:       action.Navigate,
		Toggled:        action.Toggled,
	}
	if d := snap.DepartmentActive; d != nil {
		resp.DepartmentActive = d.ID
	}
	if d := snap.ActiveHome; d != nil {
		resp.ActiveHome = d.ID
	}
	return resp
}

// Event handles POST /menu/events.
func (h *MenuHandler) Event(w http.ResponseWriter, r *http.Request) {
	body, status, err := readBody(w, r, MaxEventBodySize)
	if err != nil {
		msg := "invalid event"
		if status == http.StatusRequestEntityTooLarge {
			msg = "event too large"
		}
		writeJSONError(w, status, msg)
		return
	}

	env, err := megamenu.DecodeEvent(body)
	if err != nil {
		h.logger.Debug("menu event rejected", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	s := h.visitor(r)
	if !s.State.Loaded() {
		cfg := h.widget
		cfg.HomeVersion = env.Home
		if err := h.sync(r, s, cfg); err != nil {
			h.logger.Warn("menu event on a session without menu data", "session", s.ID, "error", err)
		}
	}

	action := s.Dispatch(env)
	if h.events != nil {
		h.events.Increment(env.Event.Type(), megamenu.ScopeFor(env.Home).String())
	}
	writeJSON(w, http.StatusOK, newStateResponse(s, action))
}

// State handles GET /menu/state.
func (h *MenuHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStateResponse(h.visitor(r), megamenu.Action{}))
}
