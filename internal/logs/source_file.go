// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"context"
	"fmt"
	"time"

	"github.com/wingedpig/blockwatch/internal/watcher"
)

// FileSource follows a local file directly with filesystem notifications,
// for hosts without a usable tail command.
type FileSource struct {
	sourceBase
	path string
	poll time.Duration
}

// NewFileSource creates a new file-based tail source.
func NewFileSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("file source requires path")
	}
	return &FileSource{path: path}, nil
}

// Name returns the source name.
func (s *FileSource) Name() string {
	return fmt.Sprintf("file:%s", s.path)
}

// Start begins following the file.
func (s *FileSource) Start(ctx context.Context, chunkCh chan<- string, errCh chan<- error) error {
	var opts []watcher.FollowerOption
	if s.poll > 0 {
		opts = append(opts, watcher.WithPollInterval(s.poll))
	}
	follower, err := watcher.NewFollower(s.path, opts...)
	if err != nil {
		s.setError(err)
		return err
	}

	ctx = s.begin(ctx)
	s.setConnected()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(chunkCh)

		err := follower.Run(ctx, func(b []byte) {
			s.addBytes(len(b))
			select {
			case <-ctx.Done():
			case chunkCh <- string(b):
			}
		})
		if err != nil && ctx.Err() == nil {
			s.setError(err)
			report(errCh, err)
		}
	}()

	return nil
}

// SetPollInterval sets how often the file is checked between notifications.
func (s *FileSource) SetPollInterval(d time.Duration) {
	s.poll = d
}
