// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package chat implements incremental chat retrieval. Callers keep a cursor
// (the NextID of the previous batch) and ask for everything from there on.
// Retrieval never fails: problems are expressed through the cursor.
package chat

import (
	"context"
)

// Batch is the result of one retrieval.
type Batch struct {
	// NextID is the cursor to pass on the next call.
	NextID uint64 `json:"nextId"`
	// Log holds the new chat lines, oldest first. Never nil.
	Log []string `json:"log"`
}

// Source yields chat batches.
type Source interface {
	// Messages returns the lines from lastID on. 0 means everything known.
	Messages(ctx context.Context, lastID uint64) Batch
}

// reset is the batch returned when the backend's history is no longer valid.
func reset() Batch {
	return Batch{NextID: 0, Log: []string{}}
}

// retry is the batch returned when the backend could not be reached.
func retry(lastID uint64) Batch {
	return Batch{NextID: lastID, Log: []string{}}
}
