// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validator validates configuration against schema rules.
type Validator struct{}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks configuration validity.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateServer(cfg, errs)
	v.validateLogging(cfg, errs)
	v.validatePortal(cfg, errs)
	v.validateMac(cfg, errs)
	v.validateWorlds(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateServer(cfg *Config, errs *ValidationError) {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs.Add("server.port", "must be between 0 and 65535")
	}
	validateDuration("server.poll_interval", cfg.Server.PollInterval, errs)
}

func (v *Validator) validateLogging(cfg *Config, errs *ValidationError) {
	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs.Add("logging.level", fmt.Sprintf("unknown level %q", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "", "text", "json":
	default:
		errs.Add("logging.format", fmt.Sprintf("must be text or json, got %q", cfg.Logging.Format))
	}
}

func (v *Validator) validatePortal(cfg *Config, errs *ValidationError) {
	if cfg.Portal.URL != "" {
		u, err := url.Parse(cfg.Portal.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs.Add("portal.url", "must be an absolute URL")
		}
	}
	validateDuration("portal.timeout", cfg.Portal.Timeout, errs)
}

func (v *Validator) validateMac(cfg *Config, errs *ValidationError) {
	switch cfg.Mac.Tail.Type {
	case "", "command", "file":
	default:
		errs.Add("mac.tail.type", fmt.Sprintf("must be command or file, got %q", cfg.Mac.Tail.Type))
	}
	validateDuration("mac.tail.flush", cfg.Mac.Tail.Flush, errs)
	if cfg.Mac.Buffer.MaxEntries < 0 {
		errs.Add("mac.buffer.max_entries", "must not be negative")
	}
}

func (v *Validator) validateWorlds(cfg *Config, errs *ValidationError) {
	seen := make(map[string]bool)
	for i, w := range cfg.Worlds {
		prefix := fmt.Sprintf("worlds[%d]", i)
		if w.Name == "" {
			errs.Add(prefix+".name", "is required")
		}
		switch w.Backend {
		case "", "cloud", "mac":
		default:
			errs.Add(prefix+".backend", fmt.Sprintf("must be cloud or mac, got %q", w.Backend))
		}
		if w.Backend == "cloud" && w.ID == "" {
			errs.Add(prefix+".id", "is required for cloud worlds")
		}
		if w.ID != "" {
			if seen[w.ID] {
				errs.Add(prefix+".id", fmt.Sprintf("duplicate world id %q", w.ID))
			}
			seen[w.ID] = true
		}
		switch w.Parser.Type {
		case "", "syslog", "portal":
		default:
			errs.Add(prefix+".parser.type", fmt.Sprintf("unknown parser type %q", w.Parser.Type))
		}
		switch w.Parser.Strategy {
		case "", "forward", "backward":
		default:
			errs.Add(prefix+".parser.strategy", fmt.Sprintf("unknown strategy %q", w.Parser.Strategy))
		}
	}
}

func validateDuration(field, value string, errs *ValidationError) {
	if value == "" {
		return
	}
	if _, err := time.ParseDuration(value); err != nil {
		errs.Add(field, fmt.Sprintf("invalid duration %q", value))
	}
}
