// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/wingedpig/blockwatch/internal/chat"
	"github.com/wingedpig/blockwatch/internal/events"
	"github.com/wingedpig/blockwatch/internal/world"
)

// WorldHandler handles world-related API requests.
type WorldHandler struct {
	worlds   *world.Registry
	bus      events.EventBus
	interval time.Duration
	logger   *slog.Logger
}

// NewWorldHandler creates a new world handler. interval is the delay between
// chat polls on message streams; bus may be nil.
func NewWorldHandler(worlds *world.Registry, bus events.EventBus, interval time.Duration, logger *slog.Logger) *WorldHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorldHandler{worlds: worlds, bus: bus, interval: interval, logger: logger}
}

// SendRequest is the body of a send request.
type SendRequest struct {
	Message string `json:"message"`
}

// StatusResponse reports a world's status.
type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// List returns all configured worlds.
func (h *WorldHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.worlds.List())
}

// Get returns a single world.
func (h *WorldHandler) Get(w http.ResponseWriter, r *http.Request) {
	wld, ok := h.lookup(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, wld.Info())
}

// Logs returns the world's parsed log. The optional limit parameter keeps
// only the newest entries.
func (h *WorldHandler) Logs(w http.ResponseWriter, r *http.Request) {
	wld, ok := h.lookup(w, r)
	if !ok {
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := wld.Logs(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, ErrWorldError, err.Error())
		return
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	WriteJSON(w, http.StatusOK, entries)
}

// Messages returns the chat batch after the lastId cursor.
func (h *WorldHandler) Messages(w http.ResponseWriter, r *http.Request) {
	wld, ok := h.lookup(w, r)
	if !ok {
		return
	}
	cursor, err := parseCursor(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
		return
	}

	batch := wld.Messages(r.Context(), cursor)
	if len(batch.Log) > 0 {
		h.publish(r.Context(), events.EventWorldMessages, wld.Info().ID, map[string]any{
			"nextId": batch.NextID,
			"count":  len(batch.Log),
		})
	}
	WriteJSON(w, http.StatusOK, batch)
}

// Send posts a chat message to the world.
func (h *WorldHandler) Send(w http.ResponseWriter, r *http.Request) {
	wld, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "message is required")
		return
	}

	if err := wld.Send(r.Context(), req.Message); err != nil {
		code := ErrWorldError
		if errors.Is(err, world.ErrSendFailed) {
			code = ErrSendFailed
		}
		WriteError(w, http.StatusBadGateway, code, err.Error())
		return
	}

	h.publish(r.Context(), events.EventWorldSend, wld.Info().ID, map[string]any{"message": req.Message})
	WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// Status returns the world's status.
func (h *WorldHandler) Status(w http.ResponseWriter, r *http.Request) {
	wld, ok := h.lookup(w, r)
	if !ok {
		return
	}

	status, err := wld.Status(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, ErrWorldError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, StatusResponse{ID: wld.Info().ID, Status: status})
}

// Stream polls the world from the lastId cursor and pushes each non-empty
// batch over a WebSocket until the client goes away.
func (h *WorldHandler) Stream(w http.ResponseWriter, r *http.Request) {
	wld, ok := h.lookup(w, r)
	if !ok {
		return
	}
	cursor, err := parseCursor(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	keepalive(ctx, cancel, conn)

	id := wld.Info().ID
	poller := chat.NewPoller(wld, chat.WithInterval(h.interval), chat.WithLogger(h.logger.With("world", id)))
	last, err := poller.Run(ctx, cursor, func(ctx context.Context, batch chat.Batch) error {
		h.publish(ctx, events.EventWorldMessages, id, map[string]any{
			"nextId": batch.NextID,
			"count":  len(batch.Log),
		})
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(batch)
	})
	if err != nil {
		h.logger.Debug("message stream closed", "world", id, "cursor", last, "error", err)
	}
}

func (h *WorldHandler) lookup(w http.ResponseWriter, r *http.Request) (world.World, bool) {
	id := mux.Vars(r)["id"]
	wld, err := h.worlds.Get(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
		return nil, false
	}
	return wld, true
}

func (h *WorldHandler) publish(ctx context.Context, eventType, worldID string, payload map[string]any) {
	if h.bus == nil {
		return
	}
	if err := h.bus.Publish(ctx, events.Event{Type: eventType, World: worldID, Payload: payload}); err != nil {
		h.logger.Warn("publish failed", "type", eventType, "error", err)
	}
}

// parseCursor reads the lastId query parameter. Missing means 0.
func parseCursor(r *http.Request) (uint64, error) {
	s := r.URL.Query().Get("lastId")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.New("invalid lastId")
	}
	return n, nil
}
