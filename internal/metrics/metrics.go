// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

// Package metrics defines the Prometheus instrumentation for GeoPresence:
// registry population and eviction, broadcast tick outcomes, websocket
// connection lifecycle, message routing, and HTTP request latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry metrics
	RegistryUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geopresence_registry_users",
			Help: "Current number of users in the registry",
		},
	)

	RegistryEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geopresence_registry_evictions_total",
			Help: "Total number of users removed by the eviction sweeper",
		},
	)

	// Broadcast metrics
	BroadcastTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geopresence_broadcast_ticks_total",
			Help: "Total broadcast ticks by outcome",
		},
		[]string{"result"}, // "changed", "unchanged"
	)

	// WebSocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geopresence_websocket_connections",
			Help: "Current number of open websocket connections",
		},
	)

	MessagesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geopresence_messages_routed_total",
			Help: "Total inbound messages routed, by message type",
		},
		[]string{"type"},
	)

	MessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geopresence_messages_dropped_total",
			Help: "Total inbound messages dropped, by reason",
		},
		[]string{"reason"}, // "parse_error", "missing_field", "unknown_type", "route_miss", "backpressure"
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geopresence_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geopresence_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path"},
	)
)

// Drop reasons for MessagesDropped.
const (
	DropParseError   = "parse_error"
	DropMissingField = "missing_field"
	DropUnknownType  = "unknown_type"
	DropRouteMiss    = "route_miss"
	DropBackpressure = "backpressure"
)
