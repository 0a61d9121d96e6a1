// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"errors"
	"strings"
)

// Pattern is a compiled event type pattern. Types are dot separated and a
// "*" segment matches any single segment, except that a trailing "*"
// matches any remainder. A lone "*" matches everything.
//
//	chat.*       chat.message, chat.watch
//	*.message    chat.message
//	world.*.sent world.a.sent
type Pattern struct {
	raw      string
	segments []string
}

// CompilePattern parses pattern.
func CompilePattern(pattern string) (Pattern, error) {
	if pattern == "" {
		return Pattern{}, errors.New("empty pattern")
	}
	segments := strings.Split(pattern, ".")
	for _, s := range segments {
		if s == "" {
			return Pattern{}, errors.New("empty segment in pattern " + pattern)
		}
	}
	return Pattern{raw: pattern, segments: segments}, nil
}

// MatchType reports whether eventType matches pattern. Invalid patterns
// match nothing.
func MatchType(eventType, pattern string) bool {
	p, err := CompilePattern(pattern)
	if err != nil {
		return false
	}
	return p.Match(eventType)
}

// String returns the pattern source.
func (p Pattern) String() string {
	return p.raw
}

// Match checks if an event type matches the pattern.
func (p Pattern) Match(eventType string) bool {
	if eventType == "" || len(p.segments) == 0 {
		return false
	}
	parts := strings.Split(eventType, ".")

	last := len(p.segments) - 1
	for i, seg := range p.segments {
		if i == last && seg == "*" {
			return len(parts) > i
		}
		if i >= len(parts) {
			return false
		}
		if seg != "*" && seg != parts[i] {
			return false
		}
	}
	return len(parts) == len(p.segments)
}
