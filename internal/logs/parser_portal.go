// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"regexp"
	"strings"
	"time"
)

// portalStampLayout matches the "2016-11-27 19:28:49.280" prefix of a portal log line.
const portalStampLayout = "2006-01-02 15:04:05.000"

var portalHeader = regexp.MustCompile(`^\d{4}-\d\d-\d\d \d\d:\d\d:\d\d\.\d{3} blockheads_server`)

// PortalParser parses the per-world log served by the cloud portal.
// Timestamps are UTC and any line that is not a header continues the
// previous entry verbatim.
type PortalParser struct {
	strategy Strategy
}

// PortalOption configures a PortalParser.
type PortalOption func(*PortalParser)

// WithPortalStrategy selects the merge strategy (default backward).
func WithPortalStrategy(s Strategy) PortalOption {
	return func(p *PortalParser) {
		p.strategy = s
	}
}

// NewPortalParser creates a new portal log parser.
func NewPortalParser(opts ...PortalOption) *PortalParser {
	p := &PortalParser{strategy: StrategyBackward}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the parser name.
func (p *PortalParser) Name() string {
	return string(ParserTypePortal)
}

// Parse parses a portal log blob.
func (p *PortalParser) Parse(raw string) []LogEntry {
	return Parse(p, p.strategy, raw, time.Now())
}

// IsHeader reports whether line starts an entry.
func (p *PortalParser) IsHeader(line string) bool {
	return portalHeader.MatchString(line)
}

// IsContinuation reports whether line belongs to the previous entry.
func (p *PortalParser) IsContinuation(line string) bool {
	return !p.IsHeader(line)
}

// Continuation returns line unchanged.
func (p *PortalParser) Continuation(line string) string {
	return line
}

// NewEntry builds an entry from a header line.
func (p *PortalParser) NewEntry(header string, now time.Time) LogEntry {
	first, rest := splitFirstLine(header)
	message := first
	if i := strings.Index(first, "] "); i >= 0 {
		message = first[i+2:]
	}

	ts := now
	if len(first) >= len(portalStampLayout) {
		if t, err := time.Parse(portalStampLayout, first[:len(portalStampLayout)]); err == nil {
			ts = t
		}
	}

	return LogEntry{
		Raw:       header,
		Timestamp: ts,
		Message:   message + rest,
	}
}

// Accept keeps every entry.
func (p *PortalParser) Accept(entry *LogEntry) bool {
	return true
}
