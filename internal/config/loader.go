// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hjson/hjson-go/v4"
)

// Loader handles configuration file loading.
type Loader struct{}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the configuration from the given path.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return l.Parse(data)
}

// Parse decodes HJSON (or plain JSON) configuration bytes.
func (l *Loader) Parse(data []byte) (*Config, error) {
	// Parse HJSON to intermediate map
	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse hjson: %w", err)
	}

	// Convert to JSON and unmarshal to struct (for type safety)
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config with default values applied.
func (l *Loader) LoadWithDefaults(ctx context.Context, path string) (*Config, error) {
	cfg, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// FindConfig searches for a config file in the current directory.
// It looks for blockwatch.hjson first, then blockwatch.json.
func (l *Loader) FindConfig() (string, error) {
	candidates := []string{
		"blockwatch.hjson",
		"blockwatch.json",
	}

	for _, name := range candidates {
		path := filepath.Join(".", name)
		if _, err := os.Stat(path); err == nil {
			abs, err := filepath.Abs(path)
			if err != nil {
				return path, nil
			}
			return abs, nil
		}
	}

	return "", fmt.Errorf("config file not found (looked for blockwatch.hjson, blockwatch.json)")
}

// ApplyDefaults sets default values for missing config fields.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8420
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.PollInterval == "" {
		cfg.Server.PollInterval = "5s"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	// Portal defaults
	if cfg.Portal.URL == "" {
		cfg.Portal.URL = "http://portal.theblockheads.net"
	}
	if cfg.Portal.Timeout == "" {
		cfg.Portal.Timeout = "30s"
	}

	// Mac defaults
	if cfg.Mac.LogDir == "" {
		cfg.Mac.LogDir = "/private/var/log"
	}
	if cfg.Mac.Current == "" {
		cfg.Mac.Current = "system.log"
	}
	if cfg.Mac.RotatedPattern == "" {
		cfg.Mac.RotatedPattern = "system.log.*"
	}
	if cfg.Mac.Process == "" {
		cfg.Mac.Process = "BlockheadsServer"
	}
	if cfg.Mac.Tail.Type == "" {
		cfg.Mac.Tail.Type = "command"
	}
	if cfg.Mac.Tail.Flush == "" {
		cfg.Mac.Tail.Flush = "250ms"
	}
	if cfg.Mac.Buffer.MaxEntries == 0 {
		cfg.Mac.Buffer.MaxEntries = 2000
	}

	// World defaults
	for i := range cfg.Worlds {
		w := &cfg.Worlds[i]
		if w.Backend == "" {
			w.Backend = "cloud"
		}
		if w.Parser.Type == "" {
			if w.Backend == "mac" {
				w.Parser.Type = "syslog"
			} else {
				w.Parser.Type = "portal"
			}
		}
		if w.Parser.Type == "syslog" {
			if w.Parser.Name == "" {
				w.Parser.Name = w.Name
			}
			if w.Parser.Process == "" {
				w.Parser.Process = cfg.Mac.Process
			}
		}
		if w.ID == "" && w.Backend == "mac" {
			w.ID = w.Name
		}
	}

	// Events defaults
	if cfg.Events.History.MaxEvents == 0 {
		cfg.Events.History.MaxEvents = 10000
	}
	if cfg.Events.History.MaxAge == "" {
		cfg.Events.History.MaxAge = "1h"
	}
}
