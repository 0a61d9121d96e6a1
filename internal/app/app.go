// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/wingedpig/blockwatch/internal/api"
	"github.com/wingedpig/blockwatch/internal/config"
	"github.com/wingedpig/blockwatch/internal/events"
	"github.com/wingedpig/blockwatch/internal/logging"
	"github.com/wingedpig/blockwatch/internal/logs"
	"github.com/wingedpig/blockwatch/internal/portal"
	"github.com/wingedpig/blockwatch/internal/world"
)

// App is the main application container.
type App struct {
	mu sync.RWMutex

	version   string
	config    *config.Config
	logger    *slog.Logger
	eventBus  events.EventBus
	tailer    *logs.Tailer
	worlds    *world.Registry
	apiServer *api.Server

	done     chan struct{}
	stopOnce sync.Once
}

// Options holds configuration options for the app.
type Options struct {
	ConfigPath string
	Host       string
	Port       int
	Version    string    // Application version string
	LogOutput  io.Writer // Diagnostic log destination, stderr when nil
}

// New loads and validates the configuration and creates the logger and
// event bus.
func New(opts Options) (*App, error) {
	loader := config.NewLoader()
	cfg, err := loader.LoadWithDefaults(context.Background(), opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg, opts)
}

// NewWithConfig is New for an already loaded configuration.
func NewWithConfig(cfg *config.Config, opts Options) (*App, error) {
	// Override host/port if specified
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}

	var logger *slog.Logger
	if opts.LogOutput != nil {
		logger = logging.New(opts.LogOutput, cfg.Logging)
	} else {
		logger = logging.Init(cfg.Logging)
	}

	app := &App{
		version: opts.Version,
		config:  cfg,
		logger:  logger,
		done:    make(chan struct{}),
	}

	app.eventBus = events.NewMemoryEventBus(events.MemoryBusConfig{
		HistoryMaxEvents: cfg.Events.History.MaxEvents,
		HistoryMaxAge:    cfg.Events.History.MaxAgeDuration(),
		Logger:           logger,
	})

	return app, nil
}

// Initialize sets up all components.
func (app *App) Initialize(ctx context.Context) error {
	cfg := app.config

	var hasMac, hasCloud bool
	for _, w := range cfg.Worlds {
		switch w.Backend {
		case world.BackendMac:
			hasMac = true
		default:
			hasCloud = true
		}
	}

	deps := world.Deps{Logger: app.logger}

	if hasCloud {
		client := portal.New(cfg.Portal.URL,
			portal.WithTimeout(cfg.Portal.TimeoutDuration()),
			portal.WithCookie(cfg.Portal.Cookie),
		)
		deps.Portal = client
		app.logger.Info("using cloud portal", "url", client.BaseURL())
	}

	if hasMac {
		tailer, err := logs.NewTailer(cfg.Mac, app.eventBus, app.logger)
		if err != nil {
			return fmt.Errorf("creating chat tailer: %w", err)
		}
		app.tailer = tailer
		deps.Buffer = tailer.Buffer()
		deps.History = logs.NewHistoryReader(cfg.Mac.CurrentPath(), cfg.Mac.RotatedPattern, cfg.Mac.Decompress)
		deps.Scripts = world.OsaScript{Dir: cfg.Mac.ScriptsDir}
		app.logger.Info("using mac server log", "path", cfg.Mac.CurrentPath())
	}

	worlds, err := world.Build(cfg.Worlds, deps)
	if err != nil {
		return fmt.Errorf("building worlds: %w", err)
	}
	app.worlds = worlds
	for _, info := range worlds.List() {
		app.logger.Info("world configured", "name", info.Name, "id", info.ID, "backend", info.Backend)
	}

	if _, err := app.eventBus.Subscribe(events.EventWorldSend, func(_ context.Context, e events.Event) error {
		app.logger.Info("chat message sent", "world", e.World, "message", e.Payload["message"])
		return nil
	}); err != nil {
		return fmt.Errorf("subscribing to send events: %w", err)
	}

	app.apiServer = api.NewServer(api.ServerConfig{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, api.Dependencies{
		Worlds:       worlds,
		Tailer:       app.tailer,
		EventBus:     app.eventBus,
		PollInterval: cfg.Server.PollIntervalDuration(),
		Logger:       app.logger,
		Version:      app.version,
	})

	return nil
}

// Start starts tailing (when configured) and the API server.
func (app *App) Start(ctx context.Context) error {
	if app.tailer != nil && app.config.Mac.WatchOnStart() {
		if err := app.tailer.Watch(ctx); err != nil {
			app.logger.Warn("failed to start chat tail", "error", err)
		}
	}

	// Start API server in background
	go func() {
		if err := app.apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("API server error", "error", err)
			app.Stop()
		}
	}()

	return nil
}

// Run starts the app and blocks until shutdown.
func (app *App) Run(ctx context.Context) error {
	if err := app.Initialize(ctx); err != nil {
		return err
	}

	if err := app.Start(ctx); err != nil {
		return err
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		app.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		app.logger.Info("context cancelled, shutting down")
	case <-app.done:
		app.logger.Info("shutdown requested")
	}

	return app.Shutdown(context.Background())
}

// Shutdown gracefully shuts down all components.
func (app *App) Shutdown(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop API server first to stop accepting new requests
	if app.apiServer != nil {
		if err := app.apiServer.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("error shutting down API server", "error", err)
		}
	}

	if app.tailer != nil {
		app.tailer.Unwatch()
	}

	if app.eventBus != nil {
		app.eventBus.Close()
	}

	app.logger.Info("shutdown complete")
	return nil
}

// Stop signals the app to shut down. Safe to call multiple times.
func (app *App) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}

// Config returns the effective configuration.
func (app *App) Config() *config.Config {
	return app.config
}

// Worlds returns the world registry. Nil before Initialize.
func (app *App) Worlds() *world.Registry {
	return app.worlds
}

// Tailer returns the chat tailer, or nil when no mac world is configured.
func (app *App) Tailer() *logs.Tailer {
	return app.tailer
}

// Router returns the HTTP router. Nil before Initialize.
func (app *App) Router() *mux.Router {
	if app.apiServer == nil {
		return nil
	}
	return app.apiServer.Router()
}
