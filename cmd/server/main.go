// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

// Package main is the entry point for the GeoPresence server application.
//
// GeoPresence is a self-hosted realtime presence relay: connected clients
// report their position and device sensor readings over HTTP, and every
// websocket subscriber receives the live set of user positions plus relayed
// chat and WebRTC signaling messages.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Registry: In-memory user presence store with stale-entry eviction
//  3. WebSocket Hub: Connection manager for realtime push to clients
//  4. Broadcaster: Periodic change-detecting position snapshot push
//  5. HTTP Server: REST ingress plus the /ws websocket endpoint
//
// All long-running components run under a suture supervision tree, split
// into a messaging layer (hub, broadcaster, sweeper) and an api layer
// (HTTP server) so a crash in one path never takes the other down.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (SERVER_PORT, REGISTRY_STALE_AFTER, LOG_LEVEL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Closes all websocket client connections
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/geopresence/internal/api"
	"github.com/tomtom215/geopresence/internal/config"
	"github.com/tomtom215/geopresence/internal/logging"
	"github.com/tomtom215/geopresence/internal/registry"
	"github.com/tomtom215/geopresence/internal/supervisor"
	"github.com/tomtom215/geopresence/internal/supervisor/services"
	ws "github.com/tomtom215/geopresence/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("listen_addr", cfg.ListenAddr()).
		Dur("stale_after", cfg.Registry.StaleAfter).
		Dur("broadcast_interval", cfg.Broadcast.Interval).
		Msg("Starting GeoPresence with supervisor tree")

	// In-memory presence store plus its stale-entry sweeper
	reg := registry.New()
	sweeper := registry.NewSweeper(reg, cfg.Registry.SweepInterval, cfg.Registry.StaleAfter)

	// WebSocket hub, message router, and change-detecting broadcaster
	wsHub := ws.NewHub()
	wsRouter := ws.NewRouter(wsHub)
	broadcaster := ws.NewBroadcaster(reg, wsHub, cfg.Broadcast.Interval)

	// HTTP boundary
	handler := api.NewHandler(reg, wsHub, wsRouter, cfg.WebSocket)
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      api.NewRouter(handler, cfg.Security),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	treeCfg := supervisor.DefaultTreeConfig()
	tree := supervisor.NewTree(slogLogger, treeCfg)

	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(broadcaster)
	tree.AddMessagingService(sweeper)
	tree.AddAPIService(services.NewHTTPServerService(httpServer, treeCfg.ShutdownTimeout))

	// Handle SIGINT/SIGTERM by canceling the supervisor context
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
