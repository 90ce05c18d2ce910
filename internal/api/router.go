// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/geopresence/internal/config"
	"github.com/tomtom215/geopresence/internal/middleware"
)

// NewRouter wires all HTTP routes. Application routes sit behind per-IP rate
// limiting (unless disabled); /healthz and /metrics stay outside it so
// probes and scrapes are never throttled. Unmatched routes get chi's
// default 404.
func NewRouter(handler *Handler, sec config.SecurityConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", handler.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if !sec.RateLimitDisabled {
			r.Use(httprate.LimitByIP(sec.RateLimitReqs, sec.RateLimitWindow))
		}
		r.Use(middleware.PrometheusMetrics)

		r.Get("/positions", handler.Positions)
		r.Post("/position", handler.UpsertPosition)
		r.Get("/accelerometers", handler.Accelerometers)
		r.Post("/accelerometer", handler.UpsertAccelerometer)
		r.Delete("/users", handler.DeleteUsers)
		r.Get("/ws", handler.WebSocket)
	})

	return r
}
