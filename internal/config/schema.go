// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading and validation.
package config

import (
	"path/filepath"
	"time"
)

// Config is the root configuration structure for blockwatch.
type Config struct {
	Server  ServerConfig  `json:"server"`
	Logging LoggingConfig `json:"logging"`
	Portal  PortalConfig  `json:"portal"`
	Mac     MacConfig     `json:"mac"`
	Worlds  []WorldConfig `json:"worlds"`
	Events  EventsConfig  `json:"events"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         int    `json:"port"`
	Host         string `json:"host"`
	PollInterval string `json:"poll_interval"` // Chat poll delay on message streams
}

// PollIntervalDuration returns the parsed chat poll interval.
func (s ServerConfig) PollIntervalDuration() time.Duration {
	d, err := time.ParseDuration(s.PollInterval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// LoggingConfig configures blockwatch's own diagnostic logging.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text or json
}

// PortalConfig configures access to the cloud portal.
type PortalConfig struct {
	URL     string `json:"url"`
	Timeout string `json:"timeout"` // e.g. "30s"
	Cookie  string `json:"cookie"`  // Session cookie obtained out of band
}

// TimeoutDuration returns the parsed portal request timeout.
func (p PortalConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(p.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// MacConfig configures the locally hosted (mac) backend.
type MacConfig struct {
	LogDir         string           `json:"log_dir"`         // Directory holding system.log
	Current        string           `json:"current"`         // Live log file name, relative to log_dir
	RotatedPattern string           `json:"rotated_pattern"` // Glob for rotated files, relative to log_dir
	Decompress     string           `json:"decompress"`      // Optional decompress command override
	Process        string           `json:"process"`         // Process name in syslog headers
	ScriptsDir     string           `json:"scripts_dir"`     // Directory with the osascript helpers
	Tail           TailConfig       `json:"tail"`
	Buffer         ChatBufferConfig `json:"buffer"`
	Watch          *bool            `json:"watch"` // Start tailing on startup (default true)
}

// CurrentPath returns the absolute path of the live log file.
func (m MacConfig) CurrentPath() string {
	if m.Current == "" || filepath.IsAbs(m.Current) {
		return m.Current
	}
	return filepath.Join(m.LogDir, m.Current)
}

// WatchOnStart reports whether the chat tail should start with the server.
func (m MacConfig) WatchOnStart() bool {
	return m.Watch == nil || *m.Watch
}

// TailConfig configures the live tailing collaborator.
type TailConfig struct {
	Type    string   `json:"type"`    // "command" (tail -fF) or "file" (fsnotify follower)
	Command []string `json:"command"` // Command override for type "command"
	Flush   string   `json:"flush"`   // Idle period after which a pending line is flushed
}

// FlushDuration returns the parsed flush delay.
func (t TailConfig) FlushDuration() time.Duration {
	d, err := time.ParseDuration(t.Flush)
	if err != nil || d <= 0 {
		return 250 * time.Millisecond
	}
	return d
}

// ChatBufferConfig configures the bounded chat tail buffer.
type ChatBufferConfig struct {
	MaxEntries int `json:"max_entries"`
}

// WorldConfig describes one world to expose.
type WorldConfig struct {
	Name    string          `json:"name"`
	ID      string          `json:"id"`
	Backend string          `json:"backend"` // "cloud" or "mac"
	Parser  LogParserConfig `json:"parser"`
}

// LogParserConfig defines how a world's historical log is parsed.
type LogParserConfig struct {
	Type     string `json:"type"`     // "syslog" or "portal"
	Strategy string `json:"strategy"` // "forward" or "backward"
	Process  string `json:"process"`  // syslog only: process name in headers
	Name     string `json:"name"`     // syslog only: server name used for scoping
}

// EventsConfig configures the event bus.
type EventsConfig struct {
	History HistoryConfig `json:"history"`
}

// HistoryConfig configures event history retention.
type HistoryConfig struct {
	MaxEvents int    `json:"max_events"`
	MaxAge    string `json:"max_age"`
}

// MaxAgeDuration returns the parsed history max age.
func (h HistoryConfig) MaxAgeDuration() time.Duration {
	d, err := time.ParseDuration(h.MaxAge)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}
