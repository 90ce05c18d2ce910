// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

// Package config provides layered application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all settings
//  2. Config File: optional YAML config file (config.yaml)
//  3. Environment Variables: override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Registry  RegistryConfig  `koanf:"registry"`
	Broadcast BroadcastConfig `koanf:"broadcast"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port is the listen port. Default: 8080
	Port int `koanf:"port"`

	// Timeout bounds request reads/writes and graceful shutdown. Default: 30s
	Timeout time.Duration `koanf:"timeout"`
}

// RegistryConfig holds user registry and eviction settings.
type RegistryConfig struct {
	// StaleAfter is how long a user may go without reporting before the
	// sweeper removes it. Default: 5m
	StaleAfter time.Duration `koanf:"stale_after"`

	// SweepInterval is how often the eviction sweeper runs. Default: 5m
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// BroadcastConfig holds change-detection broadcast settings.
type BroadcastConfig struct {
	// Interval is the broadcast tick period. A snapshot is pushed to all
	// connected clients at most once per interval, and only when it changed
	// since the last push. Default: 1s
	Interval time.Duration `koanf:"interval"`
}

// WebSocketConfig holds per-connection channel settings.
type WebSocketConfig struct {
	// SendBuffer is the per-client outbound queue size. A client whose queue
	// is full is dropped rather than allowed to stall the broadcaster.
	// Default: 256
	SendBuffer int `koanf:"send_buffer"`

	// MaxMessageSize is the largest accepted inbound frame in bytes.
	// Default: 64KB
	MaxMessageSize int64 `koanf:"max_message_size"`
}

// SecurityConfig holds ingress protection settings.
type SecurityConfig struct {
	// RateLimitReqs is the number of requests allowed per window per IP.
	// Default: 100
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limiting window. Default: 1m
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns off ingress rate limiting entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file:line in log output.
	Caller bool `koanf:"caller"`
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Registry.StaleAfter <= 0 {
		return fmt.Errorf("registry.stale_after must be positive, got %s", c.Registry.StaleAfter)
	}
	if c.Registry.SweepInterval <= 0 {
		return fmt.Errorf("registry.sweep_interval must be positive, got %s", c.Registry.SweepInterval)
	}
	if c.Broadcast.Interval <= 0 {
		return fmt.Errorf("broadcast.interval must be positive, got %s", c.Broadcast.Interval)
	}
	if c.WebSocket.SendBuffer < 1 {
		return fmt.Errorf("websocket.send_buffer must be at least 1, got %d", c.WebSocket.SendBuffer)
	}
	if c.WebSocket.MaxMessageSize < 1 {
		return fmt.Errorf("websocket.max_message_size must be positive, got %d", c.WebSocket.MaxMessageSize)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// ListenAddr returns the host:port address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
