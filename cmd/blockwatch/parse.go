// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wingedpig/blockwatch/internal/config"
	"github.com/wingedpig/blockwatch/internal/logs"
)

// cmdParse parses a log file offline and prints one entry per line.
func cmdParse(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		format   string
		name     string
		process  string
		strategy string
		asJSON   bool
	)
	fs.StringVar(&format, "format", "syslog", "Log dialect: syslog or portal")
	fs.StringVar(&name, "name", "", "World name to scope syslog entries to")
	fs.StringVar(&process, "process", "", "Server process name in syslog headers")
	fs.StringVar(&strategy, "strategy", "", "Parse strategy: forward or backward")
	fs.BoolVar(&asJSON, "json", false, "Output as JSON lines")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: blockwatch parse [-format syslog|portal] [-name N] <file>")
	}
	if format == string(logs.ParserTypeSyslog) && name == "" {
		return fmt.Errorf("-name is required for syslog logs")
	}

	parser, err := logs.NewParser(config.LogParserConfig{
		Type:     format,
		Strategy: strategy,
		Process:  process,
		Name:     name,
	})
	if err != nil {
		return err
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	entries := parser.Parse(string(data))

	if asJSON {
		enc := json.NewEncoder(w)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Message)
	}
	return nil
}
