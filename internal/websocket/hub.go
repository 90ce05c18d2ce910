// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

// Package websocket implements the realtime side of GeoPresence: the
// connection hub, the per-connection client pumps, the message router, and
// the change-detection broadcaster.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/geopresence/internal/logging"
	"github.com/tomtom215/geopresence/internal/metrics"
)

// Hub maintains the set of open connections and exposes the two delivery
// operations the rest of the system uses: SendTo one connection by its
// opaque id, and Broadcast to all.
//
// Lifecycle events flow through the Register/Unregister channels and are
// applied by RunWithContext; the send paths take the mutex directly so a
// routing decision and the delivery it triggers never block on the hub loop.
type Hub struct {
	clients    map[string]*Client
	mu         sync.RWMutex
	Register   chan *Client
	Unregister chan *Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// RunWithContext processes client lifecycle events until ctx is canceled,
// then closes every remaining client and returns ctx.Err(). Designed for
// suture supervision.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			logging.Info().
				Str("component", "websocket-hub").
				Msg("websocket hub stopped")
			return ctx.Err()

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketConnections.Set(float64(total))
			logging.Info().
				Str("connection_id", client.id).
				Int("total_clients", total).
				Msg("websocket client connected")

		case client := <-h.Unregister:
			h.removeClient(client.id)
		}
	}
}

// removeClient drops a client from the open set and closes its send channel.
// Idempotent: removing an id that is already gone is a no-op.
func (h *Hub) removeClient(id string) {
	h.mu.Lock()
	client, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		client.closed = true
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.WebSocketConnections.Set(float64(total))
		logging.Info().
			Str("connection_id", id).
			Int("total_clients", total).
			Msg("websocket client disconnected")
	}
}

// SendTo queues payload for the named connection. Returns false when the
// connection is absent or its buffer is full; a full client is dropped so a
// stalled reader cannot accumulate unbounded state. Never blocks.
//
// The read lock stays held across the channel send. Send channels are only
// ever closed under the write lock, so a client fetched here cannot have its
// channel closed mid-send.
func (h *Hub) SendTo(id string, payload []byte) bool {
	h.mu.RLock()
	client, ok := h.clients[id]
	if !ok {
		h.mu.RUnlock()
		return false
	}

	select {
	case client.send <- payload:
		h.mu.RUnlock()
		return true
	default:
	}
	h.mu.RUnlock()

	metrics.MessagesDropped.WithLabelValues(metrics.DropBackpressure).Inc()
	logging.Warn().
		Str("connection_id", id).
		Msg("send buffer full, dropping client")
	h.removeClient(id)
	return false
}

// Broadcast queues payload for every open connection. Clients are visited in
// id order for deterministic delivery; one client's failure never aborts the
// sends to the rest.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var toRemove []*Client
	for _, id := range ids {
		client := h.clients[id]
		select {
		case client.send <- payload:
		default:
			// Buffer full or reader gone, drop the client.
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		delete(h.clients, client.id)
		client.closed = true
		close(client.send)
		metrics.MessagesDropped.WithLabelValues(metrics.DropBackpressure).Inc()
	}
	total := len(h.clients)
	h.mu.Unlock()

	if len(toRemove) > 0 {
		metrics.WebSocketConnections.Set(float64(total))
		logging.Warn().
			Int("dropped", len(toRemove)).
			Msg("dropped unresponsive clients during broadcast")
	}
}

// closeAllClients closes every connected client. Called during shutdown.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		client := h.clients[id]
		client.closed = true
		close(client.send)
		delete(h.clients, id)
	}
	metrics.WebSocketConnections.Set(0)
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
