// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

package websocket

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/geopresence/internal/logging"
	"github.com/tomtom215/geopresence/internal/metrics"
	"github.com/tomtom215/geopresence/internal/models"
)

// Sender is the delivery surface the router needs. Satisfied by *Hub.
type Sender interface {
	SendTo(id string, payload []byte) bool
	Broadcast(payload []byte)
}

// Router classifies inbound messages by their type tag and relays them:
// targeted messages to one connection, untargeted chat to every connection.
//
// The router is a pure relay. It checks field presence and nothing else;
// offer/answer/candidate/message contents are forwarded as the exact bytes
// received, preserving end-to-end opacity between the two clients. No
// routing failure is ever surfaced to the sender and none can take the
// connection down.
type Router struct {
	sender Sender
}

// NewRouter creates a router delivering through the given sender.
func NewRouter(sender Sender) *Router {
	return &Router{sender: sender}
}

// Route handles one inbound frame from the connection identified by from.
func (r *Router) Route(from string, raw []byte) {
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		metrics.MessagesDropped.WithLabelValues(metrics.DropParseError).Inc()
		logging.Warn().Err(err).Str("from", from).Msg("dropping unparseable message")
		return
	}

	switch env.Type {
	case models.MessageTypeChat:
		r.routeChat(from, env, raw)

	case models.MessageTypeCallOffer:
		r.routeSignaling(from, env, raw, len(env.Offer) > 0)

	case models.MessageTypeCallAnswer:
		r.routeSignaling(from, env, raw, len(env.Answer) > 0)

	case models.MessageTypeIceCandidate:
		r.routeSignaling(from, env, raw, len(env.Candidate) > 0)

	default:
		// Unknown types are ignored for forward compatibility.
		metrics.MessagesDropped.WithLabelValues(metrics.DropUnknownType).Inc()
		logging.Debug().Str("type", env.Type).Str("from", from).Msg("ignoring unknown message type")
	}
}

// routeChat relays a chat message: to one connection when addressed,
// otherwise to every connection, the sender included.
func (r *Router) routeChat(from string, env models.Envelope, raw []byte) {
	if env.From == "" || len(env.Message) == 0 {
		r.dropMissingField(from, env.Type)
		return
	}

	if env.To != "" {
		if !r.sender.SendTo(env.To, raw) {
			r.dropRouteMiss(from, env)
			return
		}
	} else {
		r.sender.Broadcast(raw)
	}
	metrics.MessagesRouted.WithLabelValues(env.Type).Inc()
}

// routeSignaling relays a call-setup message verbatim to its target.
// hasPayload reports whether the type's required opaque field was present.
func (r *Router) routeSignaling(from string, env models.Envelope, raw []byte, hasPayload bool) {
	if env.From == "" || env.To == "" || !hasPayload {
		r.dropMissingField(from, env.Type)
		return
	}

	if !r.sender.SendTo(env.To, raw) {
		r.dropRouteMiss(from, env)
		return
	}
	metrics.MessagesRouted.WithLabelValues(env.Type).Inc()
}

func (r *Router) dropMissingField(from, msgType string) {
	metrics.MessagesDropped.WithLabelValues(metrics.DropMissingField).Inc()
	logging.Warn().Str("type", msgType).Str("from", from).Msg("dropping message with missing required field")
}

// dropRouteMiss logs a delivery to an absent connection. Best-effort model:
// the sender is not told.
func (r *Router) dropRouteMiss(from string, env models.Envelope) {
	metrics.MessagesDropped.WithLabelValues(metrics.DropRouteMiss).Inc()
	logging.Debug().
		Str("type", env.Type).
		Str("from", from).
		Str("to", env.To).
		Msg("dropping message for absent connection")
}
