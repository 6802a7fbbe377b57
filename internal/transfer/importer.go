// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/olegiv/ocms-megamenu/internal/model"
)

// ErrInvalidRow is wrapped by every row level import error.
var ErrInvalidRow = errors.New("invalid row")

// ImportCSV reads an exported CSV sheet back into menu departments.
func ImportCSV(r io.Reader) ([]*model.MenuItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return ImportRows(records)
}

// ImportXLSX reads the "Mega Menu" sheet of an exported workbook.
func ImportXLSX(r io.Reader) ([]*model.MenuItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", SheetName, err)
	}
	return ImportRows(records)
}

// ImportRows converts exported records into departments. A leading header
// row is skipped; blank lines are ignored. Rows shorter than the export
// layout are padded, since spreadsheet readers drop trailing empty cells.
func ImportRows(records [][]string) ([]*model.MenuItem, error) {
	departments := make([]*model.MenuItem, 0, len(records))
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), Header[0]) {
			continue
		}
		if isBlank(rec) {
			continue
		}

		item, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		departments = append(departments, item)
	}
	return departments, nil
}

func parseRow(rec []string) (*model.MenuItem, error) {
	if len(rec) < colOrder+1 {
		return nil, fmt.Errorf("%w: %d columns, want %d", ErrInvalidRow, len(rec), columnCount)
	}
	if len(rec) < columnCount {
		padded := make([]string, columnCount)
		copy(padded, rec)
		rec = padded
	}

	id := strings.TrimSpace(rec[colID])
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidRow)
	}

	order, err := strconv.Atoi(strings.TrimSpace(rec[colOrder]))
	if err != nil {
		return nil, fmt.Errorf("%w: order %q", ErrInvalidRow, rec[colOrder])
	}

	item := &model.MenuItem{
		ID:           id,
		Name:         rec[colName],
		Icon:         rec[colIcon],
		Slug:         rec[colSlug],
		Styles:       rec[colStyles],
		Display:      parseBool(rec[colDisplay]),
		EnableSty:    parseBool(rec[colEnableSty]),
		Order:        order,
		SlugRoot:     nullable(rec[colSlugRoot]),
		SlugRelative: nullable(rec[colSlugRelative]),
	}

	if menu := strings.TrimSpace(rec[colMenu]); menu != "" {
		var sub []SubMenuItem
		if err := json.Unmarshal([]byte(menu), &sub); err != nil {
			return nil, fmt.Errorf("%w: menu column: %v", ErrInvalidRow, err)
		}
		item.Menu = toMenuItems(sub)
	}
	return item, nil
}

func toMenuItems(sub []SubMenuItem) []*model.MenuItem {
	if len(sub) == 0 {
		return nil
	}
	items := make([]*model.MenuItem, 0, len(sub))
	for _, s := range sub {
		items = append(items, &model.MenuItem{
			ID:           s.ID,
			Name:         s.Name,
			Icon:         s.Icon,
			Slug:         s.Slug,
			Styles:       s.Styles,
			Display:      s.Display,
			EnableSty:    s.EnableSty,
			Order:        s.Order,
			SlugRoot:     s.SlugRoot,
			SlugRelative: s.SlugRelative,
			Menu:         toMenuItems(s.Menu),
		})
	}
	return items
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func nullable(s string) string {
	if strings.TrimSpace(s) == cellNull {
		return ""
	}
	return s
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
