// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatBufferBasic(t *testing.T) {
	buf := NewChatBuffer(10)

	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, 10, buf.Cap())
	assert.Equal(t, uint64(0), buf.NextID())
	assert.Empty(t, buf.Snapshot(0))

	first := buf.Append("a")
	second := buf.Append("b")

	assert.Equal(t, ChatLine{ID: 0, Message: "a"}, first)
	assert.Equal(t, ChatLine{ID: 1, Message: "b"}, second)
	assert.Equal(t, 2, buf.Len())
	assert.Equal(t, uint64(2), buf.NextID())
	assert.Equal(t, []ChatLine{first, second}, buf.Snapshot(0))
}

func TestChatBufferEviction(t *testing.T) {
	buf := NewChatBuffer(DefaultChatCapacity)

	for i := 0; i <= DefaultChatCapacity; i++ {
		buf.Append(fmt.Sprintf("line %d", i))
	}

	assert.Equal(t, DefaultChatCapacity, buf.Len())

	lines := buf.Snapshot(0)
	require.Len(t, lines, DefaultChatCapacity)
	assert.Equal(t, uint64(1), lines[0].ID)
	assert.Equal(t, uint64(DefaultChatCapacity), lines[len(lines)-1].ID)
	assert.Equal(t, fmt.Sprintf("line %d", DefaultChatCapacity), lines[len(lines)-1].Message)
	assert.Equal(t, uint64(DefaultChatCapacity+1), buf.NextID())
}

func TestChatBufferSnapshotFrom(t *testing.T) {
	buf := NewChatBuffer(3)
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		buf.Append(m)
	}
	// Holds ids 2, 3, 4

	tests := []struct {
		from uint64
		want []string
	}{
		{0, []string{"c", "d", "e"}},
		{2, []string{"c", "d", "e"}},
		{3, []string{"d", "e"}},
		{4, []string{"e"}},
		{5, nil},
		{100, nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.from), func(t *testing.T) {
			var got []string
			for _, line := range buf.Snapshot(tt.from) {
				got = append(got, line.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChatBufferSnapshotIsCopy(t *testing.T) {
	buf := NewChatBuffer(2)
	buf.Append("a")

	lines := buf.Snapshot(0)
	lines[0].Message = "changed"

	assert.Equal(t, "a", buf.Snapshot(0)[0].Message)
}

func TestChatBufferResetKeepsCounting(t *testing.T) {
	buf := NewChatBuffer(5)
	buf.Append("a")
	buf.Append("b")

	buf.Reset()

	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, uint64(0), buf.NextID())
	assert.Empty(t, buf.Snapshot(0))

	line := buf.Append("c")
	assert.Equal(t, uint64(2), line.ID)
	assert.Equal(t, uint64(3), buf.NextID())
	assert.Equal(t, []ChatLine{{ID: 2, Message: "c"}}, buf.Snapshot(0))
}

func TestChatBufferDefaultSize(t *testing.T) {
	assert.Equal(t, DefaultChatCapacity, NewChatBuffer(0).Cap())
	assert.Equal(t, DefaultChatCapacity, NewChatBuffer(-5).Cap())
}

func TestChatBufferConcurrent(t *testing.T) {
	buf := NewChatBuffer(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf.Append("x")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				lines := buf.Snapshot(0)
				// Ids in a snapshot are always contiguous
				for k := 1; k < len(lines); k++ {
					if lines[k].ID != lines[k-1].ID+1 {
						t.Errorf("non-contiguous ids %d, %d", lines[k-1].ID, lines[k].ID)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, buf.Len())
	assert.Equal(t, uint64(1000), buf.NextID())
}

func TestChatBufferRead(t *testing.T) {
	buf := NewChatBuffer(5)

	lines, next := buf.Read(0)
	assert.Empty(t, lines)
	assert.Equal(t, uint64(0), next)

	buf.Append("a")
	buf.Append("b")

	lines, next = buf.Read(1)
	assert.Equal(t, []ChatLine{{ID: 1, Message: "b"}}, lines)
	assert.Equal(t, uint64(2), next)

	lines, next = buf.Read(50)
	assert.Empty(t, lines)
	assert.Equal(t, uint64(2), next)
}
