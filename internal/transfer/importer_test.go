// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-megamenu/internal/model"
)

func TestImportCSV_RoundTrip(t *testing.T) {
	rows, err := BuildRows(catalog())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	departments, err := ImportCSV(&buf)
	require.NoError(t, err)
	require.Len(t, departments, 2)

	books := departments[0]
	assert.Equal(t, "Books10", books.ID)
	assert.Equal(t, "books", books.Slug)
	assert.True(t, books.Display)
	assert.Empty(t, books.SlugRoot, "null placeholder is dropped")
	require.Len(t, books.Menu, 2)
	assert.Equal(t, "books/novels", books.Menu[0].Slug)
	require.Len(t, books.Menu[0].Menu, 1)
	assert.True(t, books.Menu[0].Menu[0].IsLeaf())

	garden := departments[1]
	assert.True(t, garden.IsLeaf())
	assert.Equal(t, 1, garden.Order)
	assert.Equal(t, "Books", model.FindDepartment(departments, " books ").Name)
}

func TestImportXLSX_RoundTrip(t *testing.T) {
	rows, err := BuildRows(catalog())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rows))

	departments, err := ImportXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, departments, 2)
	assert.Equal(t, []string{"Books10", "Garden20"}, model.IDs(departments))
	assert.True(t, departments[1].IsLeaf(), "trailing empty menu cell is tolerated")
}

func TestImportRows_NoHeaderAndBlankLines(t *testing.T) {
	records := [][]string{
		{"A1", "A", "", "a", "", "TRUE", "FALSE", "3", "null", "null", ""},
		{"", "  "},
	}
	departments, err := ImportRows(records)
	require.NoError(t, err)
	require.Len(t, departments, 1)
	assert.False(t, departments[0].EnableSty)
	assert.Equal(t, 3, departments[0].Order)
}

func TestImportRows_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rec  []string
	}{
		{"short", []string{"A1", "A"}},
		{"empty id", []string{"", "A", "", "a", "", "TRUE", "TRUE", "0"}},
		{"bad order", []string{"A1", "A", "", "a", "", "TRUE", "TRUE", "x"}},
		{"bad menu", []string{"A1", "A", "", "a", "", "TRUE", "TRUE", "0", "null", "null", "{"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportRows([][]string{tt.rec})
			assert.True(t, errors.Is(err, ErrInvalidRow), "got %v", err)
		})
	}
}

func TestImportCSV_Malformed(t *testing.T) {
	_, err := ImportCSV(strings.NewReader("\"unterminated"))
	assert.Error(t, err)
}
