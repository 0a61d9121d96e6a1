// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// commandWaitDelay bounds how long a stopped command's descendants may keep
// its stdout open.
const commandWaitDelay = 2 * time.Second

// CommandSource follows a log through a command's stdout, by default
// "tail -fF -n 0 <path>" so that rotation is handled by tail itself.
type CommandSource struct {
	sourceBase
	args []string
}

// NewCommandSource creates a new command-based tail source.
func NewCommandSource(args []string) (*CommandSource, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("command source requires command")
	}
	return &CommandSource{args: args}, nil
}

// Name returns the source name.
func (s *CommandSource) Name() string {
	return fmt.Sprintf("command:%s", strings.Join(s.args, " "))
}

// Start begins running the command and forwarding its output.
func (s *CommandSource) Start(ctx context.Context, chunkCh chan<- string, errCh chan<- error) error {
	ctx = s.begin(ctx)

	cmd := exec.CommandContext(ctx, s.args[0], s.args[1:]...)
	killProcessGroup(cmd)
	cmd.WaitDelay = commandWaitDelay
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.setError(err)
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		s.setError(err)
		return fmt.Errorf("starting command: %w", err)
	}

	s.setConnected()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(chunkCh)

		// A descendant that escaped the kill can hold the pipe open forever
		stopClose := context.AfterFunc(ctx, func() {
			time.AfterFunc(commandWaitDelay, func() { stdout.Close() })
		})
		defer stopClose()

		s.forward(ctx, stdout, chunkCh, errCh)

		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			// Context cancellation is expected
			s.setError(err)
			report(errCh, fmt.Errorf("command exited: %w", err))
		}
	}()

	return nil
}

// forward copies stdout to chunkCh in the sizes the pipe delivers them.
func (s *CommandSource) forward(ctx context.Context, stdout io.Reader, chunkCh chan<- string, errCh chan<- error) {
	reader := bufio.NewReaderSize(stdout, 64*1024)
	buf := make([]byte, 32*1024)

	for {
		n, err := reader.Read(buf)
		if n > 0 {
			s.addBytes(n)
			select {
			case <-ctx.Done():
				return
			case chunkCh <- string(buf[:n]):
			}
		}
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				s.setError(err)
				report(errCh, fmt.Errorf("reading: %w", err))
			}
			return
		}
	}
}
