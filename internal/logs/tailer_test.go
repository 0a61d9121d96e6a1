// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/blockwatch/internal/config"
	"github.com/wingedpig/blockwatch/internal/events"
)

func newTestTailer(t *testing.T, bus events.EventBus) (*Tailer, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "system.log")
	require.NoError(t, os.WriteFile(path, []byte("Oct  5 19:49:03 host BlockheadsServer[1]: DEMO - old\n"), 0644))

	cfg := config.MacConfig{
		LogDir:  dir,
		Current: "system.log",
		Tail:    config.TailConfig{Type: "file", Flush: "20ms"},
		Buffer:  config.ChatBufferConfig{MaxEntries: 10},
	}
	tailer, err := NewTailer(cfg, bus, nil)
	require.NoError(t, err)

	tailer.newSource = func() (TailSource, error) {
		src, err := NewFileSource(path)
		if err != nil {
			return nil, err
		}
		src.SetPollInterval(20 * time.Millisecond)
		return src, nil
	}
	t.Cleanup(tailer.Unwatch)

	return tailer, path
}

func appendLog(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func bufferMessages(b *ChatBuffer) []string {
	var out []string
	for _, line := range b.Snapshot(0) {
		out = append(out, line.Message)
	}
	return out
}

func TestTailerWatch(t *testing.T) {
	tailer, path := newTestTailer(t, nil)

	require.NoError(t, tailer.Watch(context.Background()))
	assert.True(t, tailer.Watching())
	time.Sleep(100 * time.Millisecond)

	appendLog(t, path, "Oct  5 19:49:07 host BlockheadsServer[1]: DEMO - SERVER: hi\n"+
		"Oct  5 19:49:08 host kernel[0]: unrelated\n"+
		"Oct  5 19:49:09 host BlockheadsServer[1]: OTHER - BOB: Multi\n"+
		"\tLine\n")

	assert.Eventually(t, func() bool {
		return len(tailer.Buffer().Snapshot(0)) == 2
	}, 2*time.Second, 20*time.Millisecond)

	lines := tailer.Buffer().Snapshot(0)
	assert.Equal(t, ChatLine{ID: 0, Message: "DEMO - SERVER: hi"}, lines[0])
	assert.Equal(t, ChatLine{ID: 1, Message: "OTHER - BOB: Multi\nLine"}, lines[1])

	status := tailer.Status()
	assert.True(t, status.Watching)
	assert.Equal(t, path, status.Path)
	assert.Equal(t, 2, status.BufferSize)
	assert.Equal(t, 10, status.BufferMax)
	assert.Equal(t, uint64(2), status.NextID)
	require.NotNil(t, status.Source)
	assert.True(t, status.Source.Connected)
}

func TestTailerUnwatchKeepsBuffer(t *testing.T) {
	tailer, path := newTestTailer(t, nil)

	require.NoError(t, tailer.Watch(context.Background()))
	time.Sleep(100 * time.Millisecond)
	appendLog(t, path, "Oct  5 19:49:07 host BlockheadsServer[1]: DEMO - SERVER: hi\n")

	assert.Eventually(t, func() bool {
		return tailer.Buffer().Len() == 1
	}, 2*time.Second, 20*time.Millisecond)

	tailer.Unwatch()
	assert.False(t, tailer.Watching())
	assert.Nil(t, tailer.Status().Source)

	appendLog(t, path, "Oct  5 19:49:08 host BlockheadsServer[1]: DEMO - SERVER: ignored\n")
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, []string{"DEMO - SERVER: hi"}, bufferMessages(tailer.Buffer()))

	// Unwatch twice is harmless
	tailer.Unwatch()
}

func TestTailerRewatchClearsBuffer(t *testing.T) {
	tailer, path := newTestTailer(t, nil)

	require.NoError(t, tailer.Watch(context.Background()))
	time.Sleep(100 * time.Millisecond)
	appendLog(t, path, "Oct  5 19:49:07 host BlockheadsServer[1]: DEMO - one\n")
	assert.Eventually(t, func() bool {
		return tailer.Buffer().Len() == 1
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, tailer.Watch(context.Background()))
	assert.Equal(t, 0, tailer.Buffer().Len())
	assert.Equal(t, uint64(0), tailer.Buffer().NextID())
	time.Sleep(100 * time.Millisecond)

	appendLog(t, path, "Oct  5 19:49:08 host BlockheadsServer[1]: DEMO - two\n")
	assert.Eventually(t, func() bool {
		return tailer.Buffer().Len() == 1
	}, 2*time.Second, 20*time.Millisecond)

	// Ids are not reused across restarts
	assert.Equal(t, []ChatLine{{ID: 1, Message: "DEMO - two"}}, tailer.Buffer().Snapshot(0))
}

func TestTailerPublishesEvents(t *testing.T) {
	bus := events.NewMemoryEventBus(events.MemoryBusConfig{})
	defer bus.Close()

	var mu sync.Mutex
	var received []events.Event
	_, err := bus.Subscribe("chat.*", func(ctx context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e)
		return nil
	})
	require.NoError(t, err)

	tailer, path := newTestTailer(t, bus)
	require.NoError(t, tailer.Watch(context.Background()))
	time.Sleep(100 * time.Millisecond)
	appendLog(t, path, "Oct  5 19:49:07 host BlockheadsServer[1]: DEMO - SERVER: hi\n")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 2*time.Second, 20*time.Millisecond)

	tailer.Unwatch()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 3)
	assert.Equal(t, events.EventChatWatch, received[0].Type)
	assert.Equal(t, events.EventChatMessage, received[1].Type)
	assert.Equal(t, uint64(0), received[1].Payload["id"])
	assert.Equal(t, "DEMO - SERVER: hi", received[1].Payload["message"])
	assert.Equal(t, TailWorld, received[1].World)
	assert.Equal(t, events.EventChatUnwatch, received[2].Type)
}

func TestTailerSourceError(t *testing.T) {
	tailer, _ := newTestTailer(t, nil)
	tailer.newSource = func() (TailSource, error) {
		return NewCommandSource([]string{"/nonexistent/tail"})
	}

	assert.Error(t, tailer.Watch(context.Background()))
	assert.False(t, tailer.Watching())
}

func TestTailerUnwatchCommandWithDescendants(t *testing.T) {
	dir := t.TempDir()
	cfg := config.MacConfig{
		LogDir:  dir,
		Current: "system.log",
		Tail: config.TailConfig{
			Type:    "command",
			Command: []string{"sh", "-c", "sleep 1; tail -f /dev/null | cat"},
			Flush:   "20ms",
		},
	}
	tailer, err := NewTailer(cfg, nil, nil)
	require.NoError(t, err)

	require.NoError(t, tailer.Watch(context.Background()))
	time.Sleep(1500 * time.Millisecond) // let the pipeline start

	done := make(chan struct{})
	go func() {
		tailer.Unwatch()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2*commandWaitDelay + time.Second):
		t.Fatal("Unwatch did not return")
	}
	assert.False(t, tailer.Status().Watching)
}
