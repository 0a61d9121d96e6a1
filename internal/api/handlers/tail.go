// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/wingedpig/blockwatch/internal/logs"
)

// TailHandler controls the local chat tailer.
type TailHandler struct {
	tailer *logs.Tailer
}

// NewTailHandler creates a new tail handler.
func NewTailHandler(tailer *logs.Tailer) *TailHandler {
	return &TailHandler{tailer: tailer}
}

// TailLines is a raw read of the tail buffer.
type TailLines struct {
	NextID uint64          `json:"nextId"`
	Lines  []logs.ChatLine `json:"lines"`
}

// Status returns the tailer status.
func (h *TailHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.tailer.Status())
}

// Lines returns the buffered lines from lastId on, unscoped.
func (h *TailHandler) Lines(w http.ResponseWriter, r *http.Request) {
	cursor, err := parseCursor(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
		return
	}

	lines, next := h.tailer.Buffer().Read(cursor)
	if lines == nil {
		lines = []logs.ChatLine{}
	}
	WriteJSON(w, http.StatusOK, TailLines{NextID: next, Lines: lines})
}

// Watch starts (or restarts) tailing. The buffer is cleared.
func (h *TailHandler) Watch(w http.ResponseWriter, r *http.Request) {
	if err := h.tailer.Watch(r.Context()); err != nil {
		WriteError(w, http.StatusInternalServerError, ErrTailError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, h.tailer.Status())
}

// Unwatch stops tailing.
func (h *TailHandler) Unwatch(w http.ResponseWriter, r *http.Request) {
	h.tailer.Unwatch()
	WriteJSON(w, http.StatusOK, h.tailer.Status())
}
