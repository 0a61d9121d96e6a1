// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logs turns raw Blockheads server logs into structured entries and
// keeps a bounded tail of live chat lines.
package logs

import (
	"time"
)

// LogEntry represents a single parsed log entry.
type LogEntry struct {
	// Raw is the original line, with any continuation lines joined by "\n".
	Raw string `json:"raw"`
	// Timestamp is the time the entry was logged.
	Timestamp time.Time `json:"timestamp"`
	// Message is Raw without its date/process framing.
	Message string `json:"message"`
}

// ChatLine is one message held by a ChatBuffer.
type ChatLine struct {
	ID      uint64 `json:"id"`
	Message string `json:"message"`
}
