// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

package api

import (
	"net/http"

	"github.com/goccy/go-json"
	gorilla "github.com/gorilla/websocket"

	"github.com/tomtom215/geopresence/internal/config"
	"github.com/tomtom215/geopresence/internal/logging"
	"github.com/tomtom215/geopresence/internal/models"
	"github.com/tomtom215/geopresence/internal/registry"
	ws "github.com/tomtom215/geopresence/internal/websocket"
)

// Handler holds the dependencies for all HTTP endpoints.
type Handler struct {
	registry *registry.Registry
	hub      *ws.Hub
	router   *ws.Router
	wsCfg    config.WebSocketConfig
	upgrader gorilla.Upgrader
}

// NewHandler creates a Handler.
func NewHandler(reg *registry.Registry, hub *ws.Hub, router *ws.Router, wsCfg config.WebSocketConfig) *Handler {
	return &Handler{
		registry: reg,
		hub:      hub,
		router:   router,
		wsCfg:    wsCfg,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The UI is served from arbitrary origins during development;
			// transport-level access control is out of the core's scope.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Positions returns the known user positions.
//
// GET /positions -> 200 [{id, pseudo, lat, lon, lastUpdated}, ...]
func (h *Handler) Positions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.PositionEntries(h.registry.Snapshot()))
}

// UpsertPosition records a position report, replacing any previous position
// for the same pseudo.
//
// POST /position {lat, lon, pseudo} -> 201 {id, pseudo, lat, lon, lastUpdated}
func (h *Handler) UpsertPosition(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if req.Pseudo == "" {
		respondError(w, http.StatusBadRequest, msgPseudoRequired)
		return
	}

	rec, err := h.registry.UpsertPosition(req.Pseudo, req.Lat, req.Lon)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgPseudoRequired)
		return
	}

	respondJSON(w, http.StatusCreated, models.PositionEntry{
		ID:          rec.ID,
		Pseudo:      rec.Pseudo,
		Lat:         rec.Position.Lat,
		Lon:         rec.Position.Lon,
		LastUpdated: rec.LastUpdated,
	})
}

// UpsertAccelerometer records a motion-sensor report.
//
// POST /accelerometer {acceleration:{x,y,z}, alpha, beta, gamma, pseudo}
// -> 201 {message} or a field-specific 400.
func (h *Handler) UpsertAccelerometer(w http.ResponseWriter, r *http.Request) {
	var req AccelerometerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if msg := validateAccelerometerRequest(&req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	acc := models.Acceleration{X: *req.Acceleration.X, Y: *req.Acceleration.Y, Z: *req.Acceleration.Z}
	rot := models.Rotation{Alpha: *req.Alpha, Beta: *req.Beta, Gamma: *req.Gamma}
	if err := h.registry.UpsertSensorReading(req.Pseudo, acc, rot); err != nil {
		respondError(w, http.StatusBadRequest, msgPseudoRequired)
		return
	}

	respondJSON(w, http.StatusCreated, messageResponse{Message: msgSensorRecorded})
}

// Accelerometers returns the known sensor readings.
//
// GET /accelerometers -> 200 [{pseudo, acceleration, rotation}, ...]
func (h *Handler) Accelerometers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.SensorEntries(h.registry.Snapshot()))
}

// DeleteUsers empties the registry.
//
// DELETE /users -> 200 plain-text confirmation
func (h *Handler) DeleteUsers(w http.ResponseWriter, r *http.Request) {
	removed := h.registry.Clear()
	logging.Info().Int("removed", removed).Msg("all users removed")
	respondText(w, http.StatusOK, msgAllUsersRemoved)
}

// Healthz reports process liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WebSocket upgrades the connection, registers it with the hub, and pushes
// the current snapshot to the new client before its pumps start.
//
// GET /ws -> 101
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, h.router, h.wsCfg.SendBuffer, h.wsCfg.MaxMessageSize)
	h.hub.Register <- client

	// New clients get the aggregate state immediately rather than waiting
	// for the next change-detection tick.
	if payload, err := ws.SnapshotPayload(h.registry.Snapshot()); err == nil {
		client.Enqueue(payload)
	} else {
		logging.Error().Err(err).Msg("failed to serialize snapshot for new client")
	}

	client.Start()
}
