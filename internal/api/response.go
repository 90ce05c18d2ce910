// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

// Package api provides the HTTP boundary: routing, request validation, and
// the websocket upgrade endpoint.
//
// The wire format predates this implementation and is fixed: success bodies
// are bare JSON objects/arrays (no envelope) and errors are {"error": "..."}
// with a French, field-specific message.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geopresence/internal/logging"
)

// errorResponse is the error body shape for every 4xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the body shape for acknowledgement-only successes.
type messageResponse struct {
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// respondError writes a {"error": message} body with the given status.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondText writes a plain-text body with the given status.
func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		logging.Error().Err(err).Msg("failed to write response")
	}
}
