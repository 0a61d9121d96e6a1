// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the envelope of every JSON API reply. Exactly one of Data and
// Error is set.
type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
	Meta  *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo contains response metadata.
type MetaInfo struct {
	Timestamp time.Time `json:"timestamp"`
}

// Error codes
const (
	ErrNotFound      = "NOT_FOUND"
	ErrBadRequest    = "BAD_REQUEST"
	ErrInternalError = "INTERNAL_ERROR"
	ErrWorldError    = "WORLD_ERROR" // backend unreachable or misbehaving
	ErrSendFailed    = "SEND_FAILED"
	ErrTailError     = "TAIL_ERROR"
)

// WriteJSON writes data in the response envelope.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	writeEnvelope(w, status, Response{Data: data})
}

// WriteError writes an error in the response envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, Response{Error: &ErrorInfo{Code: code, Message: message}})
}

func writeEnvelope(w http.ResponseWriter, status int, resp Response) {
	resp.Meta = &MetaInfo{Timestamp: time.Now()}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
