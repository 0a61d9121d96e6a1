// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	_ "net/http/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/wingedpig/blockwatch/internal/api/handlers"
	"github.com/wingedpig/blockwatch/internal/api/middleware"
	"github.com/wingedpig/blockwatch/internal/api/version"
	"github.com/wingedpig/blockwatch/internal/events"
	"github.com/wingedpig/blockwatch/internal/logs"
	"github.com/wingedpig/blockwatch/internal/world"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Host string
	Port int
}

// Dependencies holds all dependencies for API handlers.
type Dependencies struct {
	Worlds       *world.Registry
	Tailer       *logs.Tailer // nil when no mac backend is configured
	EventBus     events.EventBus
	PollInterval time.Duration // Delay between polls on message streams
	Logger       *slog.Logger
	Version      string
}

// NewRouter creates a new API router.
func NewRouter(deps Dependencies) *mux.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS)
	r.Use(version.Middleware)

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"version":  deps.Version,
			"backends": deps.Worlds.Backends(),
			"tailing":  deps.Tailer != nil && deps.Tailer.Watching(),
		})
	}).Methods("GET")

	// World handlers
	worldHandler := handlers.NewWorldHandler(deps.Worlds, deps.EventBus, deps.PollInterval, logger)
	api.HandleFunc("/worlds", worldHandler.List).Methods("GET")
	api.HandleFunc("/worlds/{id}", worldHandler.Get).Methods("GET")
	api.HandleFunc("/worlds/{id}/logs", worldHandler.Logs).Methods("GET")
	api.HandleFunc("/worlds/{id}/messages", worldHandler.Messages).Methods("GET")
	api.HandleFunc("/worlds/{id}/messages/ws", worldHandler.Stream).Methods("GET")
	api.HandleFunc("/worlds/{id}/send", worldHandler.Send).Methods("POST")
	api.HandleFunc("/worlds/{id}/status", worldHandler.Status).Methods("GET")

	// Local chat tail handlers
	if deps.Tailer != nil {
		tailHandler := handlers.NewTailHandler(deps.Tailer)
		api.HandleFunc("/chat/tail", tailHandler.Status).Methods("GET")
		api.HandleFunc("/chat/tail/lines", tailHandler.Lines).Methods("GET")
		api.HandleFunc("/chat/tail/watch", tailHandler.Watch).Methods("POST")
		api.HandleFunc("/chat/tail/unwatch", tailHandler.Unwatch).Methods("POST")
	}

	// Event handlers
	if deps.EventBus != nil {
		eventHandler := handlers.NewEventHandler(deps.EventBus)
		api.HandleFunc("/events", eventHandler.History).Methods("GET")
		api.HandleFunc("/events/ws", eventHandler.WebSocket).Methods("GET")
	}

	// Debug/profiling endpoints
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// Server represents the API server.
type Server struct {
	router *mux.Router
	cfg    ServerConfig
	logger *slog.Logger

	mu     sync.Mutex
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		router: NewRouter(deps),
		cfg:    cfg,
		logger: logger,
	}
}

// Router returns the underlying router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// ListenAndServe starts the server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) ListenAndServe() error {
	addr := s.Addr()
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	s.logger.Info("API server listening", "url", "http://"+addr)
	return server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}

	s.logger.Info("shutting down API server")

	// Create a timeout context if none provided
	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	return server.Shutdown(shutdownCtx)
}
