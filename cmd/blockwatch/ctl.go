// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/wingedpig/blockwatch/pkg/client"
)

func newClient() *client.Client {
	return client.New(apiURL)
}

// printJSON outputs any value as formatted JSON
func printJSON(w io.Writer, v interface{}) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(out))
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// cmdPoll follows a world's chat until interrupted.
func cmdPoll(args []string, w io.Writer) error {
	fs := newFlagSet("poll")
	var (
		worldID  string
		interval time.Duration
		from     uint64
	)
	fs.StringVar(&worldID, "world", "", "World id")
	fs.DurationVar(&interval, "interval", 5*time.Second, "Poll interval")
	fs.Uint64Var(&from, "from", 0, "Starting cursor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if worldID == "" {
		return fmt.Errorf("usage: blockwatch poll -world <id> [-interval 5s] [-from N]")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return poll(ctx, newClient(), worldID, from, interval, w)
}

func poll(ctx context.Context, c *client.Client, worldID string, from uint64, interval time.Duration, w io.Writer) error {
	_, err := c.Worlds.Follow(ctx, worldID, from, interval, func(b *client.ChatBatch) error {
		for _, line := range b.Log {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// cmdWorlds lists the configured worlds.
func cmdWorlds(args []string, w io.Writer) error {
	fs := newFlagSet("worlds")
	asJSON := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	worlds, err := newClient().Worlds.List(context.Background())
	if err != nil {
		return err
	}

	if *asJSON {
		printJSON(w, worlds)
		return nil
	}

	fmt.Fprintf(w, "%-20s %-24s %s\n", "ID", "NAME", "BACKEND")
	for _, wld := range worlds {
		fmt.Fprintf(w, "%-20s %-24s %s\n", wld.ID, wld.Name, wld.Backend)
	}
	return nil
}

// cmdSend posts a chat message to a world.
func cmdSend(args []string) error {
	fs := newFlagSet("send")
	worldID := fs.String("world", "", "World id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	message := strings.Join(fs.Args(), " ")
	if *worldID == "" || message == "" {
		return fmt.Errorf("usage: blockwatch send -world <id> <message>")
	}

	return newClient().Worlds.Send(context.Background(), *worldID, message)
}

// cmdTail inspects or controls the local chat tail.
func cmdTail(args []string, w io.Writer) error {
	ctx := context.Background()
	c := newClient()

	action := "status"
	if len(args) > 0 {
		action = args[0]
	}

	var (
		status *client.TailStatus
		err    error
	)
	switch action {
	case "status":
		status, err = c.Tail.Status(ctx)
	case "watch":
		status, err = c.Tail.Watch(ctx)
	case "unwatch":
		status, err = c.Tail.Unwatch(ctx)
	case "lines":
		lines, err := c.Tail.Lines(ctx, 0)
		if err != nil {
			return err
		}
		for _, l := range lines.Lines {
			fmt.Fprintf(w, "%6d  %s\n", l.ID, l.Message)
		}
		return nil
	default:
		return fmt.Errorf("usage: blockwatch tail [status|watch|unwatch|lines]")
	}
	if err != nil {
		return err
	}

	state := "stopped"
	if status.Watching {
		state = "watching"
	}
	fmt.Fprintf(w, "%s %s (%d/%d lines, next id %d)\n", state, status.Path, status.BufferSize, status.BufferMax, status.NextID)
	if status.Source != nil && status.Source.Error != "" {
		fmt.Fprintf(w, "last error: %s\n", status.Source.Error)
	}
	return nil
}

// cmdEvents prints recent events.
func cmdEvents(args []string, w io.Writer) error {
	fs := newFlagSet("events")
	var (
		limit   int
		types   string
		worldID string
		asJSON  bool
	)
	fs.IntVar(&limit, "n", 50, "Number of events")
	fs.StringVar(&types, "type", "", "Comma separated event types (globs allowed)")
	fs.StringVar(&worldID, "world", "", "World filter")
	fs.BoolVar(&asJSON, "json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := &client.ListOptions{Limit: limit, World: worldID}
	if types != "" {
		opts.Types = strings.Split(types, ",")
	}

	events, err := newClient().Events.List(context.Background(), opts)
	if err != nil {
		return err
	}

	if asJSON {
		printJSON(w, events)
		return nil
	}

	fmt.Fprintf(w, "%-20s %-16s %-10s %s\n", "TIME", "TYPE", "WORLD", "DETAILS")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, evt := range events {
		keys := make([]string, 0, len(evt.Payload))
		for k := range evt.Payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, evt.Payload[k]))
		}
		fmt.Fprintf(w, "%-20s %-16s %-10s %s\n",
			evt.Timestamp.Format("2006-01-02 15:04:05"),
			evt.Type,
			evt.World,
			strings.Join(parts, " "),
		)
	}
	return nil
}
