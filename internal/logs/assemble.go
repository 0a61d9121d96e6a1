// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"strings"
)

// Assembler turns raw tail output into logical lines. Chunks may end in the
// middle of a line, and a line may be followed by tab-indented continuation
// lines, which are folded into it with the tab removed.
//
// A completed line is held back until the next non-continuation line shows
// up (or Flush is called), since more continuation lines may still follow.
type Assembler struct {
	partial    string // Trailing fragment without its newline yet
	pending    string // Last complete logical line, may still grow
	hasPending bool
}

// Feed consumes a chunk and returns the logical lines it completed.
func (a *Assembler) Feed(chunk string) []string {
	if chunk == "" {
		return nil
	}

	data := a.partial + chunk
	a.partial = ""

	var out []string
	for {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			a.partial = data
			break
		}
		line := strings.TrimSuffix(data[:i], "\r")
		data = data[i+1:]

		if a.hasPending && strings.HasPrefix(line, "\t") {
			a.pending += "\n" + line[1:]
			continue
		}
		if a.hasPending {
			out = append(out, a.pending)
		}
		a.pending = line
		a.hasPending = true
	}
	return out
}

// Flush returns the held-back line. An unterminated fragment stays
// buffered until its newline arrives.
func (a *Assembler) Flush() []string {
	if !a.hasPending {
		return nil
	}
	out := []string{a.pending}
	a.pending = ""
	a.hasPending = false
	return out
}

// Drain is Flush for end of stream: the unterminated fragment is treated as
// a complete line.
func (a *Assembler) Drain() []string {
	if a.partial != "" {
		data := a.partial + "\n"
		a.partial = ""
		out := a.Feed(data)
		return append(out, a.Flush()...)
	}
	return a.Flush()
}

// Pending reports whether Flush would return anything.
func (a *Assembler) Pending() bool {
	return a.hasPending
}
