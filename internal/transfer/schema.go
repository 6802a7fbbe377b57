// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer converts catalog category trees into the spreadsheet rows
// administrators use to seed mega menus, and reads those sheets back.
package transfer

import (
	"errors"
	"strings"
)

// SheetName is the name of the single worksheet in exported workbooks.
const SheetName = "Mega Menu"

// Header lists the exported columns in order.
var Header = []string{
	"id", "name", "icon", "slug", "styles", "display",
	"enableSty", "order", "slugRoot", "slugRelative", "menu",
}

// Column indexes into a Row.
const (
	colID = iota
	colName
	colIcon
	colSlug
	colStyles
	colDisplay
	colEnableSty
	colOrder
	colSlugRoot
	colSlugRelative
	colMenu
	columnCount
)

// Literal cell values written for every top-level row.
const (
	cellTrue = "TRUE"
	cellNull = "null"
)

// ErrNoCategories is returned when the catalog has nothing to export.
var ErrNoCategories = errors.New("no categories to export")

// ErrFetchCategories wraps failures of the category source.
var ErrFetchCategories = errors.New("fetching categories")

// Category is a catalog category as returned by the commerce backend.
type Category struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	Children []Category `json:"children,omitempty"`
}

// SubMenuItem is the JSON shape of a nested menu entry in the menu column.
// Menu is null for leaves.
type SubMenuItem struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Icon         string        `json:"icon"`
	Slug         string        `json:"slug"`
	Styles       string        `json:"styles"`
	Display      bool          `json:"display"`
	EnableSty    bool          `json:"enableSty"`
	Order        int           `json:"order"`
	SlugRoot     string        `json:"slugRoot"`
	SlugRelative string        `json:"slugRelative"`
	Menu         []SubMenuItem `json:"menu"`
}

// Row is one exported spreadsheet line.
type Row []string

// Format is an export file format.
type Format string

// Supported formats
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat returns the format named by s, defaulting to XLSX.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", errors.New("unsupported export format: " + s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileName returns base with the format's extension.
func (f Format) FileName(base string) string {
	return base + "." + string(f)
}
