// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging builds the service logger. Records carry the request id
// of the HTTP request they belong to and a category; records at WARN level
// and above are also forwarded to a sink (the metrics counters).
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Log categories
const (
	CategoryMenu     = "menu"
	CategoryExport   = "export"
	CategoryCommerce = "commerce"
	CategoryCache    = "cache"
	CategorySession  = "session"
	CategorySystem   = "system"
)

// Entry is a forwarded record.
type Entry struct {
	Level    slog.Level
	Category string
	Message  string
	Time     time.Time
}

// Sink receives forwarded records.
type Sink func(Entry)

// Handler is a slog.Handler that wraps another handler, adds the request id
// found in the context and forwards WARN and ERROR records to a Sink.
type Handler struct {
	inner slog.Handler
	sink  Sink
	level slog.Level // Minimum level forwarded to the sink
}

// NewHandler wraps inner. A nil sink disables forwarding.
func NewHandler(inner slog.Handler, sink Sink) *Handler {
	return &Handler{inner: inner, sink: sink, level: slog.LevelWarn}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := chimw.GetReqID(ctx); id != "" {
			r = r.Clone()
			r.AddAttrs(slog.String("request_id", id))
		}
	}

	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if h.sink != nil && r.Level >= h.level {
		h.sink(Entry{
			Level:    r.Level,
			Category: extractCategory(r),
			Message:  r.Message,
			Time:     r.Time,
		})
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs), sink: h.sink, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), sink: h.sink, level: h.level}
}

// extractCategory returns the "category" attribute, or infers one from the
// message.
func extractCategory(r slog.Record) string {
	var category string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})
	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "export"):
		return CategoryExport
	case strings.Contains(msg, "commerce") || strings.Contains(msg, "region") || strings.Contains(msg, "seller"):
		return CategoryCommerce
	case strings.Contains(msg, "cache") || strings.Contains(msg, "redis"):
		return CategoryCache
	case strings.Contains(msg, "session"):
		return CategorySession
	case strings.Contains(msg, "menu") || strings.Contains(msg, "department"):
		return CategoryMenu
	default:
		return CategorySystem
	}
}

// ParseLevel converts a level name to a slog.Level. Unknown names yield INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options configures New.
type Options struct {
	Level string
	// Format is "json" or "text". Empty selects text in development and
	// JSON otherwise.
	Format      string
	Development bool
	Sink        Sink
}

// New builds the root logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "json"
		if opts.Development {
			format = "text"
		}
	}

	var inner slog.Handler
	if format == "text" {
		inner = slog.NewTextHandler(w, handlerOpts)
	} else {
		inner = slog.NewJSONHandler(w, handlerOpts)
	}
	return slog.New(NewHandler(inner, opts.Sink))
}
