// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"io/fs"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/olegiv/ocms-megamenu/internal/i18n"
	"github.com/olegiv/ocms-megamenu/internal/megamenu"
	"github.com/olegiv/ocms-megamenu/internal/model"
	"github.com/olegiv/ocms-megamenu/internal/testutil"
	"github.com/olegiv/ocms-megamenu/web"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(testutil.TestLoggerSilent(), "en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	r, err := New(Config{TemplatesFS: templates})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func newTestSession(t *testing.T) *megamenu.Session {
	t.Helper()
	reg := megamenu.NewRegistry(megamenu.RegistryOptions{
		Timing: megamenu.DefaultTiming(),
		Clock:  testutil.NewManualClock(),
		Logger: testutil.TestLoggerSilent(),
	})
	t.Cleanup(reg.Close)
	return reg.GetOrCreate("test")
}

func renderMenu(t *testing.T, r *Renderer, v MenuView) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Menu(&buf, v); err != nil {
		t.Fatalf("Menu: %v", err)
	}
	return buf.String()
}

func TestNew_MissingTemplates(t *testing.T) {
	if _, err := New(Config{TemplatesFS: os.DirFS(t.TempDir())}); err == nil {
		t.Error("expected error without templates")
	}
}

func TestMenu_SkeletonBeforeLoad(t *testing.T) {
	r := newTestRenderer(t)
	s := newTestSession(t)

	out := renderMenu(t, r, NewMenuView(s, model.OrientationHorizontal, "en"))
	if !strings.Contains(out, "data-loading") || !strings.Contains(out, "Loading menu") {
		t.Errorf("expected skeleton, got %q", out)
	}
}

func TestMenu_EmptyAfterLoad(t *testing.T) {
	r := newTestRenderer(t)
	s := newTestSession(t)
	hidden := []*model.MenuItem{{ID: "X", Name: "Hidden", Display: false}}
	s.Load(hidden, model.GlobalConfig{})

	out := renderMenu(t, r, NewMenuView(s, model.OrientationHorizontal, "en"))
	if out != "" {
		t.Errorf("menu without visible departments should render nothing, got %q", out)
	}
}

func TestMenu_EmptyDepartmentList(t *testing.T) {
	r := newTestRenderer(t)
	s := newTestSession(t)
	s.Load([]*model.MenuItem{}, model.GlobalConfig{Title: "Shop"})

	out := renderMenu(t, r, NewMenuView(s, model.OrientationHorizontal, "en"))
	if out != "" {
		t.Errorf("empty department list should render nothing, got %q", out)
	}
}

func TestMenu_HorizontalClosed(t *testing.T) {
	r := newTestRenderer(t)
	s := newTestSession(t)
	s.Load(testutil.SampleDepartments(), model.GlobalConfig{Title: model.DefaultTitle})

	out := renderMenu(t, r, NewMenuView(s, model.OrientationHorizontal, "en"))
	if !strings.Contains(out, `data-region="trigger"`) {
		t.Error("closed menu should render the trigger")
	}
	if !strings.Contains(out, `aria-expanded="false"`) {
		t.Error("trigger should not be expanded")
	}
	if strings.Contains(out, "megamenu__panel") {
		t.Error("closed menu should not render the panel")
	}
}

func TestMenu_HorizontalOpen(t *testing.T) {
	r := newTestRenderer(t)
	s := newTestSession(t)
	depts := testutil.SampleDepartments()
	depts[1].OptionalText = "**Summer** sale <script>alert(1)</script>"
	depts[1].Banner = "/img/books.png"
	depts[1].BannerLink = "/books/sale"
	s.Load(depts, model.GlobalConfig{DefaultDepartmentActive: "books"})
	s.State.OpenMenu(true, megamenu.ScopeStandard)

	out := renderMenu(t, r, NewMenuView(s, model.OrientationHorizontal, "en"))

	for _, want := range []string{
		`aria-expanded="true"`,
		`data-department-id="B"`,
		`megamenu__department is-active" data-department-id="B"`,
		"See all products",
		`href="/books/novels/classics"`,
		"<strong>Summer</strong>",
		`src="/img/books.png"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, `data-department-id="C"`) {
		t.Error("hidden department rendered")
	}
	if strings.Contains(out, "<script>") {
		t.Error("optional text was not sanitized")
	}
}

func TestMenu_OpenOnlyBlocksOtherOrientation(t *testing.T) {
	r := newTestRenderer(t)
	s := newTestSession(t)
	s.Load(testutil.SampleDepartments(), model.GlobalConfig{OpenOnly: model.OrientationVertical})
	s.State.OpenMenu(true, megamenu.ScopeStandard)

	out := renderMenu(t, r, NewMenuView(s, model.OrientationHorizontal, "en"))
	if strings.Contains(out, "megamenu__panel") {
		t.Error("horizontal menu must not open when openOnly is vertical")
	}
}

func TestMenu_HomeVersion(t *testing.T) {
	r := newTestRenderer(t)
	s := newTestSession(t)
	s.Load(testutil.SampleDepartments(), model.GlobalConfig{HomeVersion: true})
	s.State.OpenMenu(true, megamenu.ScopeHome)

	v := NewMenuView(s, model.OrientationHorizontal, "en")
	if v.Scope != megamenu.ScopeHome.String() {
		t.Errorf("Scope = %q", v.Scope)
	}

	out := renderMenu(t, r, v)
	if strings.Contains(out, `data-region="trigger"`) {
		t.Error("home version should not render the trigger")
	}
	if !strings.Contains(out, "data-deferred") {
		t.Error("home version should render the deferred submenu placeholder")
	}
}

func TestMenu_Vertical(t *testing.T) {
	r := newTestRenderer(t)
	s := newTestSession(t)
	s.Load(testutil.SampleDepartments(), model.GlobalConfig{})

	out := renderMenu(t, r, NewMenuView(s, model.OrientationVertical, "en"))
	if !strings.Contains(out, `data-toggle="B"`) {
		t.Error("department with several categories should render a toggle")
	}
	if !strings.Contains(out, `href="/appliances"`) {
		t.Error("leaf department should render as a link")
	}
	if strings.Contains(out, "megamenu__categories") {
		t.Error("collapsed department should not list categories")
	}

	if a := s.Vertical.Click("B"); !a.Expanded {
		t.Fatalf("Click(B) = %+v, want expanded", a)
	}
	out = renderMenu(t, r, NewMenuView(s, model.OrientationVertical, "es"))
	if !strings.Contains(out, `href="/books/novels"`) {
		t.Error("expanded department should list its categories")
	}
	if !strings.Contains(out, "Ver todo") {
		t.Errorf("expected translated see-all link, got %q", out)
	}
}

func TestExportFragments(t *testing.T) {
	r := newTestRenderer(t)

	rec := httptest.NewRecorder()
	if err := r.ExportError(rec, "en", i18n.KeyGetCatsError); err != nil {
		t.Fatalf("ExportError: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Could not load the categories") {
		t.Errorf("body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	var buf bytes.Buffer
	if err := r.ExportControl(&buf, "en", "/admin/megamenu/export?format=csv"); err != nil {
		t.Fatalf("ExportControl: %v", err)
	}
	if !strings.Contains(buf.String(), "Export categories") || !strings.Contains(buf.String(), "format=csv") {
		t.Errorf("control = %q", buf.String())
	}
}

func TestRichText(t *testing.T) {
	if got := RichText("   "); got != "" {
		t.Errorf("RichText(blank) = %q", got)
	}
	got := string(RichText("[shop](javascript:alert(1)) *now*"))
	if strings.Contains(got, "javascript:") {
		t.Errorf("unsafe link kept: %q", got)
	}
	if !strings.Contains(got, "<em>now</em>") {
		t.Errorf("markdown not rendered: %q", got)
	}
}

func TestEmbed(t *testing.T) {
	r := newTestRenderer(t)
	s := newTestSession(t)
	s.Load(testutil.SampleDepartments(), model.GlobalConfig{HomeVersion: true})

	var buf bytes.Buffer
	if err := r.Embed(&buf, NewMenuView(s, model.OrientationHorizontal, "en"), "/menu", "/static/megamenu.js"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`data-megamenu-root data-endpoint="/menu" data-orientation="horizontal" data-home`,
		`<nav class="megamenu megamenu--horizontal megamenu--home"`,
		`<script src="/static/megamenu.js" defer></script>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
