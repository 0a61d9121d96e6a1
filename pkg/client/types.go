// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"time"
)

// World identifies a Blockheads world served by blockwatch.
type World struct {
	// Name is the world name as shown in game.
	Name string `json:"name"`

	// ID is the world id used in API paths.
	ID string `json:"id"`

	// Backend is "cloud" for portal-hosted worlds and "mac" for worlds run
	// by the server app on the blockwatch host.
	Backend string `json:"backend"`
}

// WorldStatus reports whether a world is running.
type WorldStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// LogEntry is one parsed entry of a world's log.
type LogEntry struct {
	// Raw is the original line; continuation lines are joined with "\n".
	Raw string `json:"raw"`

	// Timestamp is when the entry was logged.
	Timestamp time.Time `json:"timestamp"`

	// Message is the entry text without date and process framing.
	Message string `json:"message"`
}

// ChatBatch is the result of one incremental chat read.
//
// Pass NextID as lastID on the following read. A NextID lower than the
// cursor that was sent means the server's chat history was reset.
type ChatBatch struct {
	NextID uint64   `json:"nextId"`
	Log    []string `json:"log"`
}

// ChatLine is one raw line of the local chat tail buffer.
type ChatLine struct {
	ID      uint64 `json:"id"`
	Message string `json:"message"`
}

// TailLines is a read of the local chat tail buffer.
type TailLines struct {
	NextID uint64     `json:"nextId"`
	Lines  []ChatLine `json:"lines"`
}

// TailStatus describes the local chat tailer.
type TailStatus struct {
	// Watching is true while the system log is being followed.
	Watching bool `json:"watching"`

	// Path is the followed log file.
	Path string `json:"path"`

	// Source is the state of the underlying tail source, if one is running.
	Source *TailSourceStatus `json:"source,omitempty"`

	// BufferSize is the number of buffered lines.
	BufferSize int `json:"buffer_size"`

	// BufferMax is the buffer capacity.
	BufferMax int `json:"buffer_max"`

	// NextID is one past the newest buffered id, 0 when empty.
	NextID uint64 `json:"nextId"`
}

// TailSourceStatus is the connection state of a tail source.
type TailSourceStatus struct {
	Connected   bool      `json:"connected"`
	Error       string    `json:"error,omitempty"`
	LastConnect time.Time `json:"last_connect,omitempty"`
	LastError   time.Time `json:"last_error,omitempty"`
	BytesRead   int64     `json:"bytes_read"`
}

// Event is a record from the blockwatch event log.
type Event struct {
	ID        string                 `json:"id"`
	Seq       uint64                 `json:"seq"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	World     string                 `json:"world,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
