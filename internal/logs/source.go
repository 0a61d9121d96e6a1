// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TailSource produces raw text appended to a live log as it is written.
type TailSource interface {
	// Name returns the source name.
	Name() string

	// Start begins following the log and sends raw chunks to chunkCh.
	// Chunks may contain several lines or end mid-line.
	// chunkCh is closed when the source stops.
	// The returned error is for startup failures; runtime errors are sent to errCh.
	Start(ctx context.Context, chunkCh chan<- string, errCh chan<- error) error

	// Stop stops the source and waits for it to exit.
	Stop() error

	// Status returns the current connection status.
	Status() SourceStatus
}

// SourceStatus represents the connection status of a tail source.
type SourceStatus struct {
	Connected   bool      `json:"connected"`
	Error       string    `json:"error,omitempty"`
	LastConnect time.Time `json:"last_connect,omitempty"`
	LastError   time.Time `json:"last_error,omitempty"`
	BytesRead   int64     `json:"bytes_read"`
}

// SourceType represents the type of tail source.
type SourceType string

const (
	SourceTypeCommand SourceType = "command"
	SourceTypeFile    SourceType = "file"
)

// NewTailSource creates a tail source of the given type following path.
// command overrides the default "tail -fF -n 0 <path>" for command sources.
func NewTailSource(typ SourceType, path string, command []string) (TailSource, error) {
	switch typ {
	case SourceTypeCommand, "":
		if len(command) == 0 {
			command = []string{"tail", "-fF", "-n", "0", path}
		}
		return NewCommandSource(command)
	case SourceTypeFile:
		return NewFileSource(path)
	default:
		return nil, fmt.Errorf("unknown source type: %s", typ)
	}
}

// sourceBase holds the lifecycle and status bookkeeping shared by sources.
type sourceBase struct {
	mu     sync.RWMutex
	status SourceStatus
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Stop cancels the source goroutine and waits for it to exit.
func (s *sourceBase) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	s.status.Connected = false
	s.mu.Unlock()
	return nil
}

// Status returns the current connection status.
func (s *sourceBase) Status() SourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// begin derives the source context and records its cancel func.
func (s *sourceBase) begin(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	return ctx
}

// setConnected updates the status to connected.
func (s *sourceBase) setConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Connected = true
	s.status.LastConnect = time.Now()
	s.status.Error = ""
}

// setError updates the status with an error.
func (s *sourceBase) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Connected = false
	s.status.Error = err.Error()
	s.status.LastError = time.Now()
}

// addBytes increments the bytes read counter.
func (s *sourceBase) addBytes(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.BytesRead += int64(n)
}

// report sends err to errCh without blocking the source.
func report(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}
