// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays batches and records the cursors it was asked for.
type scriptedSource struct {
	mu      sync.Mutex
	batches []Batch
	cursors []uint64
}

func (s *scriptedSource) Messages(ctx context.Context, lastID uint64) Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors = append(s.cursors, lastID)
	if len(s.batches) == 0 {
		return Batch{NextID: lastID, Log: []string{}}
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b
}

func (s *scriptedSource) seen() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.cursors...)
}

func TestPollerAdvancesCursor(t *testing.T) {
	src := &scriptedSource{batches: []Batch{
		{NextID: 2, Log: []string{"a", "b"}},
		{NextID: 2, Log: []string{}},
		{NextID: 0, Log: []string{}},
		{NextID: 1, Log: []string{"c"}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	p := NewPoller(src, WithInterval(5*time.Millisecond))

	done := make(chan uint64)
	go func() {
		cursor, err := p.Run(ctx, 0, func(ctx context.Context, b Batch) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, b.Log...)
			return nil
		})
		assert.NoError(t, err)
		done <- cursor
	}()

	assert.Eventually(t, func() bool {
		return len(src.seen()) >= 5
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	cursor := <-done
	assert.Equal(t, uint64(1), cursor)
	assert.Equal(t, []uint64{0, 2, 2, 0, 1}, src.seen()[:5])

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestPollerHandlerError(t *testing.T) {
	src := &scriptedSource{batches: []Batch{{NextID: 1, Log: []string{"a"}}}}
	boom := errors.New("boom")

	cursor, err := NewPoller(src, WithInterval(time.Millisecond)).Run(context.Background(), 0,
		func(ctx context.Context, b Batch) error { return boom })

	require.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(0), cursor)
}

func TestPollerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cursor, err := NewPoller(&scriptedSource{}).Run(ctx, 7, func(ctx context.Context, b Batch) error {
		t.Fatal("handler should not be called")
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), cursor)
}

func TestNewPollerDefaults(t *testing.T) {
	assert.Equal(t, defaultPollInterval, NewPoller(&scriptedSource{}).Interval())
	assert.Equal(t, defaultPollInterval, NewPoller(&scriptedSource{}, WithInterval(0)).Interval())
}
