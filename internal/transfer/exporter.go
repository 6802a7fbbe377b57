// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/olegiv/ocms-megamenu/internal/util"
)

// BuildRows flattens categories into one row per top-level category. The
// last column holds the JSON subtree, or "" for a category without children.
func BuildRows(categories []Category) ([]Row, error) {
	rows := make([]Row, 0, len(categories))
	for idx, cat := range categories {
		menu := ""
		if sub := buildSubMenu(cat.Children, cat.Slug); sub != nil {
			data, err := json.Marshal(sub)
			if err != nil {
				return nil, fmt.Errorf("encoding subtree of %q: %w", cat.Name, err)
			}
			menu = string(data)
		}

		rows = append(rows, Row{
			compositeID(cat),
			cat.Name,
			"",
			cat.Slug,
			"",
			cellTrue,
			cellTrue,
			strconv.Itoa(idx),
			cellNull,
			cellNull,
			menu,
		})
	}
	return rows, nil
}

func buildSubMenu(cats []Category, trailingSlug string) []SubMenuItem {
	if len(cats) == 0 {
		return nil
	}

	items := make([]SubMenuItem, 0, len(cats))
	for idx, cat := range cats {
		slug := util.JoinSlug(trailingSlug, cat.Slug)
		items = append(items, SubMenuItem{
			ID:        compositeID(cat),
			Name:      cat.Name,
			Slug:      slug,
			Display:   true,
			EnableSty: true,
			Order:     idx,
			Menu:      buildSubMenu(cat.Children, slug),
		})
	}
	return items
}

func compositeID(cat Category) string {
	return cat.Name + strconv.FormatInt(cat.ID, 10)
}

// WriteXLSX writes the header and rows as a workbook with a single
// "Mega Menu" sheet.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	write := func(line int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		return sw.SetRow(cell, cells)
	}

	if err := write(1, Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := write(i+2, row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteCSV writes the header and rows as CSV.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write serializes rows in the given format.
func Write(w io.Writer, format Format, rows []Row) error {
	if format == FormatCSV {
		return WriteCSV(w, rows)
	}
	return WriteXLSX(w, rows)
}

// CategorySource provides the catalog category tree.
type CategorySource interface {
	CategoryTree(ctx context.Context, depth int) ([]Category, error)
}

// DefaultDepth is the catalog depth fetched for exports:
// department, category and subcategory.
const DefaultDepth = 3

// Exporter pulls the category tree from a source and writes it out.
type Exporter struct {
	source CategorySource
	logger *slog.Logger
	depth  int
}

// NewExporter creates a new Exporter.
func NewExporter(source CategorySource, logger *slog.Logger) *Exporter {
	return &Exporter{
		source: source,
		logger: logger,
		depth:  DefaultDepth,
	}
}

// SetDepth sets the catalog depth requested from the source.
func (e *Exporter) SetDepth(depth int) {
	if depth > 0 {
		e.depth = depth
	}
}

// Rows fetches the catalog and builds the export rows.
func (e *Exporter) Rows(ctx context.Context) ([]Row, error) {
	categories, err := e.source.CategoryTree(ctx, e.depth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchCategories, err)
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	return BuildRows(categories)
}

// Export writes the catalog to w. Rows are built completely before anything
// is written, so a fetch failure leaves w untouched.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format) error {
	rows, err := e.Rows(ctx)
	if err != nil {
		return err
	}
	if err := Write(w, format, rows); err != nil {
		return fmt.Errorf("writing %s export: %w", format, err)
	}

	e.logger.Info("categories exported", "format", string(format), "rows", len(rows))
	return nil
}
