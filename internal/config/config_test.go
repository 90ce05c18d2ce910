// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from an empty directory so no stray config.yaml is picked up.
	chdirTemp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Registry.StaleAfter != 5*time.Minute {
		t.Errorf("expected default stale_after 5m, got %s", cfg.Registry.StaleAfter)
	}
	if cfg.Registry.SweepInterval != 5*time.Minute {
		t.Errorf("expected default sweep_interval 5m, got %s", cfg.Registry.SweepInterval)
	}
	if cfg.Broadcast.Interval != time.Second {
		t.Errorf("expected default broadcast interval 1s, got %s", cfg.Broadcast.Interval)
	}
	if cfg.WebSocket.SendBuffer != 256 {
		t.Errorf("expected default send_buffer 256, got %d", cfg.WebSocket.SendBuffer)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if cfg.ListenAddr() != "0.0.0.0:8080" {
		t.Errorf("unexpected listen addr: %s", cfg.ListenAddr())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)

	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REGISTRY_STALE_AFTER", "2m")
	t.Setenv("BROADCAST_INTERVAL", "500ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_DISABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Registry.StaleAfter != 2*time.Minute {
		t.Errorf("expected stale_after 2m, got %s", cfg.Registry.StaleAfter)
	}
	if cfg.Broadcast.Interval != 500*time.Millisecond {
		t.Errorf("expected broadcast interval 500ms, got %s", cfg.Broadcast.Interval)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	if !cfg.Security.RateLimitDisabled {
		t.Error("expected rate limiting disabled")
	}
}

func TestLoad_UnknownEnvIgnored(t *testing.T) {
	chdirTemp(t)

	// Unrelated process environment must not leak into config keys.
	t.Setenv("SERVER_SECRET_BACKDOOR", "true")
	t.Setenv("PATH_INFO", "/etc")

	if _, err := Load(); err != nil {
		t.Fatalf("Load failed with unrelated env set: %v", err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
server:
  port: 3000
registry:
  stale_after: 10m
logging:
  format: console
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected port 3000 from file, got %d", cfg.Server.Port)
	}
	if cfg.Registry.StaleAfter != 10*time.Minute {
		t.Errorf("expected stale_after 10m from file, got %s", cfg.Registry.StaleAfter)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("expected console format from file, got %s", cfg.Logging.Format)
	}
	// Untouched keys keep their defaults.
	if cfg.Broadcast.Interval != time.Second {
		t.Errorf("expected default broadcast interval, got %s", cfg.Broadcast.Interval)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := chdirTemp(t)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("SERVER_PORT", "4000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("environment must beat the file, got port %d", cfg.Server.Port)
	}
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	chdirTemp(t)

	t.Setenv("SERVER_PORT", "99999")

	if _, err := Load(); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -time.Second }, true},
		{"zero stale_after", func(c *Config) { c.Registry.StaleAfter = 0 }, true},
		{"zero sweep_interval", func(c *Config) { c.Registry.SweepInterval = 0 }, true},
		{"zero broadcast interval", func(c *Config) { c.Broadcast.Interval = 0 }, true},
		{"zero send_buffer", func(c *Config) { c.WebSocket.SendBuffer = 0 }, true},
		{"zero max_message_size", func(c *Config) { c.WebSocket.MaxMessageSize = 0 }, true},
		{"zero rate limit reqs", func(c *Config) { c.Security.RateLimitReqs = 0 }, true},
		{"rate limit off ignores reqs", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, false},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

// chdirTemp switches the working directory to a fresh temp dir for the test
// so config file discovery is hermetic, and returns the dir.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}
