// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameFilterScope(t *testing.T) {
	f := NameFilter{Name: "DEMO"}

	tests := []struct {
		name    string
		message string
		want    string
		ok      bool
	}{
		{"chat stripped", "DEMO - SERVER: hi", "SERVER: hi", true},
		{"player chat stripped", "DEMO - BOB: hello", "BOB: hello", true},
		{"connect kept", "DEMO - Player Connected BOB | 1.2.3.4 | abc", "DEMO - Player Connected BOB | 1.2.3.4 | abc", true},
		{"disconnect kept", "DEMO - Player Disconnected BOB", "DEMO - Player Disconnected BOB", true},
		{"client disconnect kept", "DEMO - Client disconnected:abc", "DEMO - Client disconnected:abc", true},
		{"other world", "GLITCH TESTS - SERVER: hi", "", false},
		{"no prefix", "Exiting World.", "", false},
		{"name without separator", "DEMOX", "DEMOX", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.Scope(tt.message)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
