// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"sync"
)

// DefaultChatCapacity is the number of chat lines kept by default.
const DefaultChatCapacity = 2000

// ChatBuffer is a thread-safe ring buffer of chat lines. Each appended line
// gets the next id, starting at 0. Once full, the oldest lines are evicted.
type ChatBuffer struct {
	mu      sync.RWMutex
	entries []ChatLine
	head    int    // Next write position
	size    int    // Current number of entries
	maxSize int    // Maximum capacity
	nextID  uint64 // Id for the next appended line
}

// NewChatBuffer creates a buffer holding at most maxSize lines.
func NewChatBuffer(maxSize int) *ChatBuffer {
	if maxSize <= 0 {
		maxSize = DefaultChatCapacity
	}
	return &ChatBuffer{
		entries: make([]ChatLine, maxSize),
		maxSize: maxSize,
	}
}

// Append stores message under the next id and returns the stored line.
func (b *ChatBuffer) Append(message string) ChatLine {
	b.mu.Lock()
	defer b.mu.Unlock()

	line := ChatLine{ID: b.nextID, Message: message}
	b.nextID++

	// Write at head position, overwriting the oldest when full
	b.entries[b.head] = line
	b.head = (b.head + 1) % b.maxSize

	if b.size < b.maxSize {
		b.size++
	}
	return line
}

// Snapshot returns a copy of the lines with id >= fromID, oldest first.
func (b *ChatBuffer) Snapshot(fromID uint64) []ChatLine {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked(fromID)
}

// Read returns Snapshot(fromID) together with NextID, taken atomically.
func (b *ChatBuffer) Read(fromID uint64) ([]ChatLine, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked(fromID), b.nextIDLocked()
}

func (b *ChatBuffer) snapshotLocked(fromID uint64) []ChatLine {
	if b.size == 0 {
		return nil
	}

	start := b.head - b.size
	if start < 0 {
		start += b.maxSize
	}

	// Ids are contiguous, so skip straight to the first wanted line
	oldest := b.entries[start].ID
	skip := 0
	if fromID > oldest {
		if fromID-oldest >= uint64(b.size) {
			return nil
		}
		skip = int(fromID - oldest)
	}

	result := make([]ChatLine, b.size-skip)
	for i := range result {
		result[i] = b.entries[(start+skip+i)%b.maxSize]
	}
	return result
}

// NextID returns one past the newest buffered id, or 0 when the buffer is empty.
func (b *ChatBuffer) NextID() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.nextIDLocked()
}

func (b *ChatBuffer) nextIDLocked() uint64 {
	if b.size == 0 {
		return 0
	}
	idx := b.head - 1
	if idx < 0 {
		idx = b.maxSize - 1
	}
	return b.entries[idx].ID + 1
}

// Reset drops all lines. The id counter keeps counting so ids handed out
// before the reset are never reused.
func (b *ChatBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.size = 0
}

// Len returns the current number of lines.
func (b *ChatBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the maximum capacity.
func (b *ChatBuffer) Cap() int {
	return b.maxSize
}
