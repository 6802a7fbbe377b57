// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/olegiv/ocms-megamenu/internal/model"
	"github.com/olegiv/ocms-megamenu/internal/transfer"
)

// MaxSourceSize caps menu documents read from files or HTTP.
const MaxSourceSize = 8 << 20

// Source provides the department trees.
type Source interface {
	Menus(ctx context.Context) ([]*model.MenuItem, error)
	Name() string
}

// FileSource reads menus from a local file. JSON files hold either a
// {"menus":[...]} envelope or a bare array; .csv and .xlsx files hold an
// exported sheet.
type FileSource struct {
	path string
}

// NewFileSource creates a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns a description for logs.
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Menus reads and decodes the file.
func (s *FileSource) Menus(_ context.Context) ([]*model.MenuItem, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening menu source: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := io.LimitReader(f, MaxSourceSize)
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".csv":
		return transfer.ImportCSV(r)
	case ".xlsx":
		return transfer.ImportXLSX(r)
	default:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading menu source: %w", err)
		}
		return DecodeMenus(data)
	}
}

// DecodeMenus accepts a {"menus":[...]} envelope or a bare JSON array.
func DecodeMenus(data []byte) ([]*model.MenuItem, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty menu document")
	}

	if data[0] == '[' {
		var items []*model.MenuItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decoding menus: %w", err)
		}
		return items, nil
	}

	var resp model.MenusResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding menus: %w", err)
	}
	return resp.Menus, nil
}

// HTTPSource fetches menus from a remote endpoint.
type HTTPSource struct {
	url    string
	client *retryablehttp.Client
}

// NewHTTPSource creates a source for url using the same retry policy as the
// commerce client.
func NewHTTPSource(url string, timeout time.Duration, retries int, logger *slog.Logger) *HTTPSource {
	rc := retryablehttp.NewClient()
	rc.RetryMax = max(retries, 0)
	rc.RetryWaitMin = 50 * time.Millisecond
	rc.RetryWaitMax = 500 * time.Millisecond
	rc.HTTPClient.Timeout = timeout
	rc.Logger = logger
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &HTTPSource{url: url, client: rc}
}

// Name returns a description for logs.
func (s *HTTPSource) Name() string {
	return "http:" + s.url
}

// Menus performs the request and decodes the response.
func (s *HTTPSource) Menus(ctx context.Context) ([]*model.MenuItem, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating menu request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("menu request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("menu source returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSourceSize))
	if err != nil {
		return nil, fmt.Errorf("reading menu response: %w", err)
	}
	return DecodeMenus(data)
}
