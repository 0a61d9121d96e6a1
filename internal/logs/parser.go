// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"fmt"
	"strings"
	"time"

	"github.com/wingedpig/blockwatch/internal/config"
)

// LogParser parses a raw log blob into structured LogEntry values.
// Parsing never fails: lines that cannot be attributed to an entry are dropped.
type LogParser interface {
	// Parse splits raw on "\n" and returns the entries in log order.
	Parse(raw string) []LogEntry

	// Name returns the parser name.
	Name() string
}

// ParserType represents the type of log parser.
type ParserType string

const (
	ParserTypeSyslog ParserType = "syslog"
	ParserTypePortal ParserType = "portal"
)

// Strategy selects the line-merging algorithm.
type Strategy string

const (
	// StrategyForward streams lines top to bottom holding one pending entry.
	StrategyForward Strategy = "forward"
	// StrategyBackward folds continuation lines upward from the bottom.
	StrategyBackward Strategy = "backward"
)

// ParseStrategy converts a config string to a Strategy. Empty selects def.
func ParseStrategy(s string, def Strategy) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return def, nil
	case StrategyForward, StrategyBackward:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown parse strategy: %s", s)
	}
}

// NewParser creates a new LogParser from configuration.
func NewParser(cfg config.LogParserConfig) (LogParser, error) {
	switch ParserType(cfg.Type) {
	case ParserTypeSyslog:
		strategy, err := ParseStrategy(cfg.Strategy, StrategyForward)
		if err != nil {
			return nil, err
		}
		opts := []SyslogOption{WithSyslogStrategy(strategy)}
		if cfg.Process != "" {
			opts = append(opts, WithProcess(cfg.Process))
		}
		return NewSyslogParser(cfg.Name, opts...), nil
	case ParserTypePortal, "":
		strategy, err := ParseStrategy(cfg.Strategy, StrategyBackward)
		if err != nil {
			return nil, err
		}
		return NewPortalParser(WithPortalStrategy(strategy)), nil
	default:
		return nil, fmt.Errorf("unknown parser type: %s", cfg.Type)
	}
}

// Dialect describes how one log variant frames its entries.
type Dialect interface {
	// IsHeader reports whether line starts a new entry.
	IsHeader(line string) bool
	// IsContinuation reports whether line extends the preceding entry.
	IsContinuation(line string) bool
	// Continuation returns the text a continuation line contributes.
	Continuation(line string) string
	// NewEntry builds an entry from a header line. now is the parse time.
	NewEntry(header string, now time.Time) LogEntry
	// Accept is called once per fully merged entry and may rewrite it.
	// Returning false drops the entry.
	Accept(entry *LogEntry) bool
}

// Parse runs the selected strategy over raw.
func Parse(d Dialect, s Strategy, raw string, now time.Time) []LogEntry {
	if s == StrategyBackward {
		return ParseBackward(d, raw, now)
	}
	return ParseForward(d, raw, now)
}

// ParseForward merges continuation lines while streaming forward.
// At most one entry is pending at a time, so the pass is O(n).
func ParseForward(d Dialect, raw string, now time.Time) []LogEntry {
	var result []LogEntry
	var pending *LogEntry

	emit := func() {
		if d.Accept(pending) {
			result = append(result, *pending)
		}
		pending = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		if pending != nil {
			if d.IsContinuation(line) {
				text := d.Continuation(line)
				pending.Raw += "\n" + text
				pending.Message += "\n" + text
				// A continuation can't also be a header
				continue
			}
			emit()
		}

		if d.IsHeader(line) {
			entry := d.NewEntry(line, now)
			pending = &entry
		}
	}

	if pending != nil {
		emit()
	}

	return result
}

// ParseBackward scans from the last line to the second, splicing each
// continuation onto the line above it. Header lines are accepted as complete
// entries; the first line is evaluated on its own afterwards. Accepted
// entries come out newest first and are reversed before returning.
func ParseBackward(d Dialect, raw string, now time.Time) []LogEntry {
	lines := strings.Split(raw, "\n")
	var reversed []LogEntry

	accept := func(line string) {
		entry := d.NewEntry(line, now)
		if d.Accept(&entry) {
			reversed = append(reversed, entry)
		}
	}

	for i := len(lines) - 1; i > 0; i-- {
		line := lines[i]
		if d.IsHeader(line) {
			accept(line)
			continue
		}
		if d.IsContinuation(line) {
			lines[i-1] += "\n" + d.Continuation(line)
		}
		lines = append(lines[:i], lines[i+1:]...)
	}

	if len(lines) > 0 && d.IsHeader(lines[0]) {
		accept(lines[0])
	}

	result := make([]LogEntry, len(reversed))
	for i, entry := range reversed {
		result[len(reversed)-1-i] = entry
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
