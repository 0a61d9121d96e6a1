// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"strings"
)

// keepNamePhrases are events whose message keeps the "<name>" prefix
// because consumers match on the full phrase.
var keepNamePhrases = []string{
	" - Player Connected",
	" - Player Disconnected",
	" - Client disconnected",
}

// NameFilter scopes a log shared by several server instances to one of them.
type NameFilter struct {
	Name string
}

// Scope decides whether message belongs to the server and rewrites it.
// Messages not starting with Name are rejected. Connect and disconnect
// events are returned verbatim; everything else loses its "<Name> - " prefix.
func (f NameFilter) Scope(message string) (string, bool) {
	if !strings.HasPrefix(message, f.Name) {
		return "", false
	}
	for _, phrase := range keepNamePhrases {
		if strings.HasPrefix(message, f.Name+phrase) {
			return message, true
		}
	}
	return strings.TrimPrefix(message, f.Name+" - "), true
}
