// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultPollInterval = time.Second

// Follower follows a growing file the way "tail -F" does: it starts at the
// end, emits bytes as they are appended, and reopens the path when the file
// is rotated, removed and recreated, or truncated.
type Follower struct {
	path string
	dir  string
	poll time.Duration

	watcher *fsnotify.Watcher
	file    *os.File
	offset  int64
	buf     []byte
}

// FollowerOption configures a Follower.
type FollowerOption func(*Follower)

// WithPollInterval sets how often the file is checked when no filesystem
// events arrive. Some platforms only report directory level events.
func WithPollInterval(d time.Duration) FollowerOption {
	return func(f *Follower) {
		if d > 0 {
			f.poll = d
		}
	}
}

// NewFollower creates a follower for path.
func NewFollower(path string, opts ...FollowerOption) (*Follower, error) {
	if path == "" {
		return nil, fmt.Errorf("follower requires path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	f := &Follower{
		path: absPath,
		dir:  filepath.Dir(absPath),
		poll: defaultPollInterval,
		buf:  make([]byte, 32*1024),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Run follows the file until ctx is done, passing appended data to emit.
// The file does not need to exist yet.
func (f *Follower) Run(ctx context.Context, emit func([]byte)) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	f.watcher = fsWatcher
	defer func() {
		f.watcher.Close()
		f.closeFile()
	}()

	if err := f.watcher.Add(f.dir); err != nil {
		return fmt.Errorf("watching %s: %w", f.dir, err)
	}

	// Existing content is history; only new data is followed
	if err := f.open(true); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-f.watcher.Events:
			if !ok {
				return nil
			}
			if err := f.handleEvent(event, emit); err != nil {
				return err
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// Missed events; a read catches up on whatever was appended
				if err := f.check(emit); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("watcher: %w", err)

		case <-ticker.C:
			if err := f.check(emit); err != nil {
				return err
			}
		}
	}
}

func (f *Follower) handleEvent(event fsnotify.Event, emit func([]byte)) error {
	if filepath.Clean(event.Name) != f.path {
		return nil
	}
	if event.Has(fsnotify.Write) {
		return f.read(emit)
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		// Events can arrive late, so trust the filesystem over the event
		return f.check(emit)
	}
	return nil
}

// check reads appended data and detects rotation, whether or not an event
// reported it.
func (f *Follower) check(emit func([]byte)) error {
	if f.file == nil {
		return f.rotate(emit)
	}

	pathInfo, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Gone; drain it and wait for a replacement
			if err := f.read(emit); err != nil {
				return err
			}
			f.closeFile()
			return nil
		}
		return err
	}
	fileInfo, err := f.file.Stat()
	if err != nil || !os.SameFile(pathInfo, fileInfo) {
		return f.rotate(emit)
	}
	return f.read(emit)
}

// rotate drains the current file and switches to whatever is at path now.
func (f *Follower) rotate(emit func([]byte)) error {
	if err := f.read(emit); err != nil {
		return err
	}
	f.closeFile()

	// A replacement file is new, so everything in it is unread
	if err := f.open(false); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return f.read(emit)
}

func (f *Follower) open(atEnd bool) error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}

	var offset int64
	if atEnd {
		offset, err = file.Seek(0, io.SeekEnd)
		if err != nil {
			file.Close()
			return fmt.Errorf("seeking %s: %w", f.path, err)
		}
	}

	// Some platforms need the file itself watched to see writes
	_ = f.watcher.Add(f.path)

	f.file = file
	f.offset = offset
	return nil
}

func (f *Follower) closeFile() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
		f.offset = 0
	}
}

// read emits everything between the saved offset and the end of the file.
func (f *Follower) read(emit func([]byte)) error {
	if f.file == nil {
		return nil
	}

	info, err := f.file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", f.path, err)
	}
	if info.Size() < f.offset {
		// Truncated in place
		if _, err := f.file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("seeking %s: %w", f.path, err)
		}
		f.offset = 0
	}

	for {
		n, err := f.file.Read(f.buf)
		if n > 0 {
			f.offset += int64(n)
			chunk := make([]byte, n)
			copy(chunk, f.buf[:n])
			emit(chunk)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.path, err)
		}
	}
}
