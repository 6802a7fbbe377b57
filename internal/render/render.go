// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render produces the server-side HTML of the mega menu.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/ocms-megamenu/internal/i18n"
	"github.com/olegiv/ocms-megamenu/internal/megamenu"
	"github.com/olegiv/ocms-megamenu/internal/model"
)

// Template names
const (
	TemplateHorizontal    = "horizontal"
	TemplateVertical      = "vertical"
	TemplateSkeleton      = "skeleton"
	TemplateExportError   = "export_error"
	TemplateExportControl = "export_control"
	TemplateRoot          = "root"
)

// htmlSanitizer strips anything unsafe from rendered optional text.
var htmlSanitizer = bluemonday.UGCPolicy()

// Renderer renders menu fragments from embedded templates.
type Renderer struct {
	templates *template.Template
}

// Config holds renderer configuration.
type Config struct {
	// TemplatesFS holds menu/*.html.
	TemplatesFS fs.FS
}

// New parses the menu templates.
func New(cfg Config) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(cfg.TemplatesFS, "menu/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing menu templates: %w", err)
	}

	for _, name := range []string{TemplateHorizontal, TemplateVertical, TemplateSkeleton, TemplateExportError, TemplateExportControl, TemplateRoot} {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("template %s not defined", name)
		}
	}
	return &Renderer{templates: tmpl}, nil
}

// RichText converts markdown to sanitized HTML.
func RichText(s string) template.HTML {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s)) //nolint:gosec // escaped
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"t": func(lang, key string) string {
			return i18n.T(lang, key)
		},
		"richText":   RichText,
		"visible":    model.Visible,
		"expandable": megamenu.Expandable,
		"isActive": func(item, active *model.MenuItem) bool {
			return item != nil && active != nil && item.ID == active.ID
		},
		"expanded": func(expanded map[string]bool, id string) bool {
			return expanded[id]
		},
	}
}

// MenuView is the data of one rendered menu.
type MenuView struct {
	Lang        string
	Title       string
	Orientation model.Orientation
	Home        bool
	Scope       string
	// Loaded is false until the first department list arrives.
	Loaded      bool
	Departments []*model.MenuItem
	Active      *model.MenuItem
	Open        bool
	// AllowOpen is false when openOnly restricts the other orientation.
	AllowOpen  bool
	Categories []*model.MenuItem
	Expanded   map[string]bool
	Version    uint64
}

// NewMenuView builds the view of a session for one orientation.
func NewMenuView(s *megamenu.Session, orientation model.Orientation, lang string) MenuView {
	snap := s.State.Snapshot()
	scope := megamenu.ScopeFor(snap.Config.HomeVersion)
	title := snap.Config.Title
	if title == "" {
		title = i18n.KeyTitle
	}

	return MenuView{
		Lang:        lang,
		Title:       title,
		Orientation: orientation,
		Home:        snap.Config.HomeVersion,
		Scope:       scope.String(),
		Loaded:      s.State.Loaded(),
		Departments: model.Visible(snap.Departments),
		Active:      snap.Active(scope),
		Open:        snap.Open(scope),
		AllowOpen:   snap.Config.AllowsOpen(orientation),
		Categories:  model.Visible(s.State.Categories(scope)),
		Expanded:    s.Vertical.ExpandedIDs(),
		Version:     snap.Version,
	}
}

// Menu renders v. Before data is loaded a skeleton is written; a loaded
// but empty menu writes nothing.
func (r *Renderer) Menu(w io.Writer, v MenuView) error {
	switch {
	case !v.Loaded:
		return r.execute(w, TemplateSkeleton, v)
	case len(v.Departments) == 0:
		return nil
	case v.Orientation == model.OrientationVertical:
		return r.execute(w, TemplateVertical, v)
	default:
		return r.execute(w, TemplateHorizontal, v)
	}
}

// EmbedView wraps a rendered menu in the element the client script drives.
type EmbedView struct {
	View     MenuView
	Inner    template.HTML
	Endpoint string
	Script   string
}

// Embed renders v inside the script root, for pages including the menu
// for the first time. endpoint is the menu URL the script talks to.
func (r *Renderer) Embed(w io.Writer, v MenuView, endpoint, script string) error {
	var inner bytes.Buffer
	if err := r.Menu(&inner, v); err != nil {
		return err
	}
	return r.execute(w, TemplateRoot, EmbedView{
		View:     v,
		Inner:    template.HTML(inner.String()), //nolint:gosec // rendered by html/template
		Endpoint: endpoint,
		Script:   script,
	})
}

// MessageView is the data of a translated one-message fragment.
type MessageView struct {
	Lang string
	Key  string
	URL  string
}

// ExportError writes the inline export error fragment.
func (r *Renderer) ExportError(w io.Writer, lang, key string) error {
	return r.execute(w, TemplateExportError, MessageView{Lang: lang, Key: key})
}

// ExportControl writes the export download control.
func (r *Renderer) ExportControl(w io.Writer, lang, url string) error {
	return r.execute(w, TemplateExportControl, MessageView{Lang: lang, Key: i18n.KeyExportCats, URL: url})
}

// execute renders to a buffer first so a failing template writes nothing.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	if rw, ok := w.(http.ResponseWriter); ok && rw.Header().Get("Content-Type") == "" {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	_, err := buf.WriteTo(w)
	return err
}
