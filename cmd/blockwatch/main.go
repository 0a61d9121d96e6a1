// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// blockwatch serves the logs and chat of Blockheads worlds over HTTP and
// talks to a running server from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/wingedpig/blockwatch/internal/app"
	"github.com/wingedpig/blockwatch/internal/config"
)

var (
	version = "0.1.0"
	apiURL  = "http://localhost:8420"
)

func main() {
	if env := os.Getenv("BLOCKWATCH_API"); env != "" {
		apiURL = strings.TrimSuffix(env, "/")
	}

	// Check for subcommands before flag parsing
	if len(os.Args) > 1 && !strings.HasPrefix(os.Args[1], "-") {
		cmd, args := os.Args[1], os.Args[2:]

		var err error
		switch cmd {
		case "serve":
			err = serve(args)
		case "parse":
			err = cmdParse(args, os.Stdout)
		case "poll":
			err = cmdPoll(args, os.Stdout)
		case "worlds":
			err = cmdWorlds(args, os.Stdout)
		case "send":
			err = cmdSend(args)
		case "tail":
			err = cmdTail(args, os.Stdout)
		case "events":
			err = cmdEvents(args, os.Stdout)
		case "version":
			fmt.Printf("blockwatch %s\n", version)
		case "help":
			printUsage()
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
			printUsage()
			os.Exit(1)
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := serve(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		configPath  string
		host        string
		port        int
		showVersion bool
	)
	fs.StringVar(&configPath, "config", "", "Path to config file (default: auto-detect)")
	fs.StringVar(&configPath, "c", "", "Path to config file (short)")
	fs.StringVar(&host, "host", "", "HTTP server host (overrides config)")
	fs.IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	fs.BoolVar(&showVersion, "version", false, "Show version")
	fs.BoolVar(&showVersion, "v", false, "Show version (short)")
	fs.Parse(args)

	if showVersion {
		fmt.Printf("blockwatch %s\n", version)
		return nil
	}

	// Find config file if not specified
	if configPath == "" {
		found, err := config.NewLoader().FindConfig()
		if err != nil {
			return err
		}
		configPath = found
	}

	application, err := app.New(app.Options{
		ConfigPath: configPath,
		Host:       host,
		Port:       port,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	slog.Info("using config", "path", configPath)

	return application.Run(context.Background())
}

func printUsage() {
	fmt.Println(`blockwatch - Blockheads world log and chat server

Usage:
  blockwatch [serve] [-config file] [-host host] [-port port]
  blockwatch <command> [arguments]

Environment:
  BLOCKWATCH_API   Base URL of a running server (default: http://localhost:8420)

Commands:
  serve                    Run the server (default)
    -config, -c <file>     Config file (default: ./blockwatch.hjson)
    -host <host>           Listen host (overrides config)
    -port <port>           Listen port (overrides config)

  parse [options] <file>   Parse a log file and print its entries
    -format syslog|portal  Log dialect (default: syslog)
    -name <name>           World name to scope syslog entries to
    -process <name>        Server process name in syslog headers
    -strategy <s>          forward or backward
    -json                  Output as JSON lines

  poll -world <id>         Follow a world's chat
    -interval <duration>   Poll interval (default: 5s)
    -from <id>             Starting cursor (default: 0, everything)

  worlds [-json]           List worlds
  send -world <id> <msg>   Send a chat message
  tail [status|watch|unwatch|lines]
                           Control the local chat tail
  events [-n N] [-type T] [-world W]
                           Show recent events

  version                  Show version
  help                     Show this help`)
}
