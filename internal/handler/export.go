// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/olegiv/ocms-megamenu/internal/i18n"
	"github.com/olegiv/ocms-megamenu/internal/metrics"
	"github.com/olegiv/ocms-megamenu/internal/middleware"
	"github.com/olegiv/ocms-megamenu/internal/render"
	"github.com/olegiv/ocms-megamenu/internal/transfer"
)

// ExportFileBase is the download name of exports, without extension.
const ExportFileBase = "megamenu"

// Exporter writes the category export.
type Exporter interface {
	Export(ctx context.Context, w io.Writer, format transfer.Format) error
}

// ExportHandler serves the category spreadsheet download.
type ExportHandler struct {
	exporter Exporter
	renderer *render.Renderer
	exports  metrics.IncrementalCounter
	logger   *slog.Logger
}

// NewExportHandler creates a new ExportHandler. exports may be nil.
func NewExportHandler(exporter Exporter, renderer *render.Renderer, exports metrics.IncrementalCounter, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{
		exporter: exporter,
		renderer: renderer,
		exports:  exports,
		logger:   logger,
	}
}

// Control handles GET /admin/megamenu and renders the download control.
func (h *ExportHandler) Control(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get(paramFormat)
	if _, err := transfer.ParseFormat(format); err != nil || format == "" {
		format = string(transfer.FormatXLSX)
	}
	url := RouteAdmin + RouteAdminExport + "?" + paramFormat + "=" + format
	if err := h.renderer.ExportControl(w, middleware.GetLanguage(r), url); err != nil {
		logAndInternalError(w, h.logger, "failed to render export control", "error", err)
	}
}

// Export handles GET /admin/megamenu/export. The file is generated in memory
// first; on failure a translated inline error replaces the download.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	format, err := transfer.ParseFormat(r.URL.Query().Get(paramFormat))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	err = h.exporter.Export(r.Context(), &buf, format)
	if h.exports != nil {
		h.exports.Increment(string(format), metrics.Result(err))
	}
	if err != nil {
		key, status := exportErrorKey(err)
		h.logger.Error("category export failed", "format", string(format), "error", err)
		w.Header().Set(HeaderContentType, "text/html; charset=utf-8")
		w.WriteHeader(status)
		if rerr := h.renderer.ExportError(w, lang, key); rerr != nil {
			h.logger.Error("failed to render export error", "error", rerr)
		}
		return
	}

	header := w.Header()
	header.Set(HeaderContentType, format.ContentType())
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(ExportFileBase)))
	header.Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// exportErrorKey maps an export failure to its message key and status.
func exportErrorKey(err error) (string, int) {
	if errors.Is(err, transfer.ErrFetchCategories) || errors.Is(err, transfer.ErrNoCategories) {
		return i18n.KeyGetCatsError, http.StatusBadGateway
	}
	return i18n.KeySaveCsvError, http.StatusInternalServerError
}
