// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package world

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wingedpig/blockwatch/internal/chat"
	"github.com/wingedpig/blockwatch/internal/logs"
)

// ErrSendFailed is returned when the server app rejects a message.
var ErrSendFailed = errors.New("unable to send message")

// HistoryReader reads the full system log.
type HistoryReader interface {
	ReadAll(ctx context.Context) (string, error)
}

// ScriptRunner runs a JavaScript for Automation helper and returns its output.
type ScriptRunner interface {
	Run(ctx context.Context, script string, args ...string) (string, error)
}

// OsaScript runs helpers from Dir with osascript.
type OsaScript struct {
	Dir string
}

// Run executes "osascript -l JavaScript <Dir>/<script> args...".
func (o OsaScript) Run(ctx context.Context, script string, args ...string) (string, error) {
	cmdArgs := append([]string{"-l", "JavaScript", filepath.Join(o.Dir, script)}, args...)
	cmd := exec.CommandContext(ctx, "osascript", cmdArgs...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return string(out), fmt.Errorf("%s: %w: %s", script, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return string(out), fmt.Errorf("%s: %w", script, err)
	}
	return string(out), nil
}

// Local is a world run by the mac server app on this host. Every local
// world shares the system log and the chat tail buffer.
type Local struct {
	info    Info
	history HistoryReader
	parser  logs.LogParser
	chat    *chat.LocalSource
	scripts ScriptRunner
}

// NewLocal creates a mac-backed world. Its log is parsed with parser, which
// should be a syslog parser scoped to name; nil selects that default.
func NewLocal(name, id string, history HistoryReader, buffer *logs.ChatBuffer, parser logs.LogParser, scripts ScriptRunner) *Local {
	if parser == nil {
		parser = logs.NewSyslogParser(name)
	}
	if scripts == nil {
		scripts = OsaScript{}
	}
	return &Local{
		info:    Info{Name: name, ID: id, Backend: BackendMac},
		history: history,
		parser:  parser,
		chat:    chat.NewLocalSource(buffer, name),
		scripts: scripts,
	}
}

// Info returns the world identity.
func (w *Local) Info() Info {
	return w.info
}

// Logs reads and parses the system log including rotated files.
func (w *Local) Logs(ctx context.Context) ([]logs.LogEntry, error) {
	raw, err := w.history.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading system log: %w", err)
	}
	return w.parser.Parse(raw), nil
}

// Messages returns buffered chat lines from lastID on.
func (w *Local) Messages(ctx context.Context, lastID uint64) chat.Batch {
	return w.chat.Messages(ctx, lastID)
}

// Send posts a chat message through the server app.
func (w *Local) Send(ctx context.Context, message string) error {
	out, err := w.scripts.Run(ctx, "send.scpt", w.info.Name, message)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if strings.Contains(out, "fail") {
		return ErrSendFailed
	}
	return nil
}

// Status always reports online; the server app has no status query.
func (w *Local) Status(ctx context.Context) (string, error) {
	return "online", nil
}
