// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"regexp"
	"strings"
	"time"
)

// DefaultProcess is the process name the mac server logs under.
const DefaultProcess = "BlockheadsServer"

// syslogStampLayout matches the "Oct  5 19:49:03" prefix of a system.log line.
const syslogStampLayout = "Jan _2 15:04:05"

// SyslogParser parses the macOS system log, which is shared by every server
// instance on the host. Only entries belonging to one server name survive.
type SyslogParser struct {
	header   *regexp.Regexp
	filter   NameFilter
	strategy Strategy
	now      func() time.Time
	loc      *time.Location
}

// SyslogOption configures a SyslogParser.
type SyslogOption func(*SyslogParser)

// WithProcess overrides the process name expected in header lines.
func WithProcess(process string) SyslogOption {
	return func(p *SyslogParser) {
		p.header = syslogHeader(process)
	}
}

// WithSyslogStrategy selects the merge strategy (default forward).
func WithSyslogStrategy(s Strategy) SyslogOption {
	return func(p *SyslogParser) {
		p.strategy = s
	}
}

// WithClock sets the clock used for year inference.
func WithClock(now func() time.Time) SyslogOption {
	return func(p *SyslogParser) {
		p.now = now
	}
}

// WithLocation sets the zone syslog timestamps are written in (default local).
func WithLocation(loc *time.Location) SyslogOption {
	return func(p *SyslogParser) {
		p.loc = loc
	}
}

// NewSyslogParser creates a parser scoped to serverName.
func NewSyslogParser(serverName string, opts ...SyslogOption) *SyslogParser {
	p := &SyslogParser{
		header:   syslogHeader(DefaultProcess),
		filter:   NameFilter{Name: serverName},
		strategy: StrategyForward,
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func syslogHeader(process string) *regexp.Regexp {
	return regexp.MustCompile(`^[A-Z][a-z]{2} ( |\d)\d \d\d:\d\d:\d\d ([\w\-]+) ` + regexp.QuoteMeta(process) + `\[\d+\]: `)
}

// Name returns the parser name.
func (p *SyslogParser) Name() string {
	return string(ParserTypeSyslog)
}

// ServerName returns the server name entries are scoped to.
func (p *SyslogParser) ServerName() string {
	return p.filter.Name
}

// Parse parses a system log blob.
func (p *SyslogParser) Parse(raw string) []LogEntry {
	return Parse(p, p.strategy, raw, p.now())
}

// IsHeader reports whether line starts a server entry.
func (p *SyslogParser) IsHeader(line string) bool {
	return p.header.MatchString(line)
}

// IsContinuation reports whether line is tab-indented.
func (p *SyslogParser) IsContinuation(line string) bool {
	return strings.HasPrefix(line, "\t")
}

// Continuation strips the leading tab.
func (p *SyslogParser) Continuation(line string) string {
	return line[1:]
}

// NewEntry builds an entry from a header line.
func (p *SyslogParser) NewEntry(header string, now time.Time) LogEntry {
	first, rest := splitFirstLine(header)
	message := first
	if i := strings.Index(first, "]: "); i >= 0 {
		message = first[i+3:]
	}
	return LogEntry{
		Raw:       header,
		Timestamp: p.timestamp(first, now),
		Message:   message + rest,
	}
}

// Accept applies the server name filter.
func (p *SyslogParser) Accept(entry *LogEntry) bool {
	msg, ok := p.filter.Scope(entry.Message)
	if !ok {
		return false
	}
	entry.Message = msg
	return true
}

// timestamp infers the year of a syslog stamp. The stamp is placed in the
// current year and moved back one year if that lands after now.
func (p *SyslogParser) timestamp(line string, now time.Time) time.Time {
	if len(line) < len(syslogStampLayout) {
		return now
	}
	stamp, err := time.ParseInLocation(syslogStampLayout, line[:len(syslogStampLayout)], p.loc)
	if err != nil {
		return now
	}
	year := now.In(p.loc).Year()
	ts := time.Date(year, stamp.Month(), stamp.Day(), stamp.Hour(), stamp.Minute(), stamp.Second(), 0, p.loc)
	if ts.After(now) {
		ts = ts.AddDate(-1, 0, 0)
	}
	return ts
}

// splitFirstLine splits s after its first line. rest keeps its leading "\n".
func splitFirstLine(s string) (first, rest string) {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}
