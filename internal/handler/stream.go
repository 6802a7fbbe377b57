// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/olegiv/ocms-megamenu/internal/megamenu"
	"github.com/olegiv/ocms-megamenu/internal/session"
)

// sseEventState is the event name of state messages.
const sseEventState = "state"

// writeSSE writes one server-sent event.
func writeSSE(w io.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

// Stream handles GET /menu/stream. It sends the current state right away and
// then one message per state change. Bursts of changes are coalesced into a
// single message carrying the latest state. Streams are only opened for
// visitors that already have a session; others get 204, which stops
// EventSource reconnects.
func (h *MenuHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := session.ExistingVisitorID(r, h.sm)
	if id == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s := h.sessions.GetOrCreate(id)
	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	changed := make(chan struct{}, 1)
	unsubscribe := s.State.Subscribe(func(megamenu.Snapshot) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	header := w.Header()
	header.Set(HeaderContentType, "text/event-stream")
	header.Set("Cache-Control", "no-store")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func() bool {
		if err := writeSSE(w, sseEventState, newStateResponse(s, megamenu.Action{})); err != nil {
			h.logger.Debug("menu stream closed", "session", s.ID, "error", err)
			return false
		}
		if err := rc.Flush(); err != nil {
			h.logger.Warn("menu stream cannot flush", "session", s.ID, "error", err)
			return false
		}
		return true
	}

	if !send() {
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case <-changed:
			if !send() {
				return
			}
		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
