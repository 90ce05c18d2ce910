// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

package models

import "github.com/goccy/go-json"

// Message types for client->server websocket traffic.
//
// chat is relayed to one connection when "to" is set, otherwise fanned out
// to every connection. The three signaling types are always point-to-point
// and their payloads (offer/answer/candidate) are forwarded verbatim,
// never inspected.
const (
	MessageTypeChat         = "chat"
	MessageTypeCallOffer    = "call-offer"
	MessageTypeCallAnswer   = "call-answer"
	MessageTypeIceCandidate = "ice-candidate"
)

// Envelope is the routing-relevant surface of an inbound websocket message.
// Payload fields are captured as raw JSON only to check presence; their
// contents stay opaque end to end.
type Envelope struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`

	Message   json.RawMessage `json:"message"`
	Offer     json.RawMessage `json:"offer"`
	Answer    json.RawMessage `json:"answer"`
	Candidate json.RawMessage `json:"candidate"`
}
