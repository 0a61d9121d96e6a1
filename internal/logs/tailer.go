// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/wingedpig/blockwatch/internal/config"
	"github.com/wingedpig/blockwatch/internal/events"
	"github.com/wingedpig/blockwatch/internal/watcher"
)

// TailWorld is the world name attached to events published by the tailer.
const TailWorld = "local"

// Tailer follows the live system log and keeps the messages of server
// lines in a ChatBuffer. Messages are stored with their world name prefix;
// scoping to a single world happens when they are read.
type Tailer struct {
	cfg       config.MacConfig
	buffer    *ChatBuffer
	bus       events.EventBus
	logger    *slog.Logger
	header    *regexp.Regexp
	newSource func() (TailSource, error)

	mu       sync.RWMutex
	source   TailSource
	cancel   context.CancelFunc
	done     chan struct{}
	watching bool
}

// TailerStatus represents the status of the chat tailer.
type TailerStatus struct {
	Watching   bool          `json:"watching"`
	Path       string        `json:"path"`
	Source     *SourceStatus `json:"source,omitempty"`
	BufferSize int           `json:"buffer_size"`
	BufferMax  int           `json:"buffer_max"`
	NextID     uint64        `json:"nextId"`
}

// NewTailer creates a tailer for the configured system log. bus may be nil.
func NewTailer(cfg config.MacConfig, bus events.EventBus, logger *slog.Logger) (*Tailer, error) {
	process := cfg.Process
	if process == "" {
		process = DefaultProcess
	}
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tailer{
		cfg:    cfg,
		buffer: NewChatBuffer(cfg.Buffer.MaxEntries),
		bus:    bus,
		logger: logger.With("component", "tailer"),
		header: regexp.MustCompile(`^\w\w\w ( |\d)\d \d\d:\d\d:\d\d ([\w-]+) ` + regexp.QuoteMeta(process) + `\[\d+\]: `),
	}
	t.newSource = func() (TailSource, error) {
		return NewTailSource(SourceType(cfg.Tail.Type), cfg.CurrentPath(), cfg.Tail.Command)
	}
	return t, nil
}

// Buffer returns the chat buffer.
func (t *Tailer) Buffer() *ChatBuffer {
	return t.buffer
}

// Watching reports whether the tailer is following the log.
func (t *Tailer) Watching() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.watching
}

// Watch starts following the log. A tailer that is already watching is
// restarted. The buffer is cleared either way; ids keep counting.
func (t *Tailer) Watch(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.buffer.Reset()

	source, err := t.newSource()
	if err != nil {
		return fmt.Errorf("creating tail source: %w", err)
	}

	// The tail outlives the request that started it
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	chunkCh := make(chan string, 100)
	errCh := make(chan error, 10)

	if err := source.Start(runCtx, chunkCh, errCh); err != nil {
		cancel()
		return fmt.Errorf("starting tail source: %w", err)
	}

	done := make(chan struct{})
	t.source = source
	t.cancel = cancel
	t.done = done
	t.watching = true

	go t.run(runCtx, chunkCh, errCh, done)

	t.logger.Info("watching chat", "source", source.Name())
	t.publish(events.EventChatWatch, map[string]any{"source": source.Name()})
	return nil
}

// Unwatch stops following the log. Buffered lines stay readable.
func (t *Tailer) Unwatch() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.watching {
		return
	}
	t.stopLocked()
	t.logger.Info("stopped watching chat")
	t.publish(events.EventChatUnwatch, nil)
}

func (t *Tailer) stopLocked() {
	if t.cancel != nil {
		t.cancel()
	}
	if t.source != nil {
		t.source.Stop()
	}
	if t.done != nil {
		<-t.done
	}
	t.source = nil
	t.cancel = nil
	t.done = nil
	t.watching = false
}

// Status returns the tailer status.
func (t *Tailer) Status() TailerStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	status := TailerStatus{
		Watching:   t.watching,
		Path:       t.cfg.CurrentPath(),
		BufferSize: t.buffer.Len(),
		BufferMax:  t.buffer.Cap(),
		NextID:     t.buffer.NextID(),
	}
	if t.source != nil {
		s := t.source.Status()
		status.Source = &s
	}
	return status
}

// run assembles chunks into lines until the source stops or ctx is done.
func (t *Tailer) run(ctx context.Context, chunkCh <-chan string, errCh <-chan error, done chan<- struct{}) {
	defer close(done)

	var asm Assembler
	flushCh := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(t.cfg.Tail.FlushDuration())
	defer debouncer.Stop()
	t.logger.Debug("tail running", "flush", debouncer.Duration())

	for {
		select {
		case <-ctx.Done():
			return

		case chunk, ok := <-chunkCh:
			if !ok {
				t.store(asm.Drain())
				return
			}
			t.store(asm.Feed(chunk))
			if !asm.Pending() {
				debouncer.Cancel()
				continue
			}
			// The last line may still get continuation lines
			debouncer.Trigger(func() {
				select {
				case flushCh <- struct{}{}:
				default:
				}
			})

		case <-flushCh:
			t.store(asm.Flush())

		case err := <-errCh:
			t.logger.Warn("tail source error", "error", err)
			t.publish(events.EventChatError, map[string]any{"error": err.Error()})
		}
	}
}

// store appends the message of each server line to the buffer.
func (t *Tailer) store(lines []string) {
	for _, line := range lines {
		loc := t.header.FindStringIndex(line)
		if loc == nil {
			continue
		}
		chat := t.buffer.Append(line[loc[1]:])
		t.publish(events.EventChatMessage, map[string]any{
			"id":      chat.ID,
			"message": chat.Message,
		})
	}
}

func (t *Tailer) publish(eventType string, payload map[string]any) {
	if t.bus == nil {
		return
	}
	if err := t.bus.Publish(context.Background(), events.Event{
		Type:    eventType,
		World:   TailWorld,
		Payload: payload,
	}); err != nil {
		t.logger.Debug("publish failed", "type", eventType, "error", err)
	}
}
