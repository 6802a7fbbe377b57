// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds the menu templates and the client script.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var Templates embed.FS

//go:embed all:static/dist
var Static embed.FS

// TemplatesFS returns the templates rooted at templates/, holding menu/*.html.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(Templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// StaticFS returns the static assets rooted at static/dist.
func StaticFS() fs.FS {
	sub, err := fs.Sub(Static, "static/dist")
	if err != nil {
		panic(err)
	}
	return sub
}
