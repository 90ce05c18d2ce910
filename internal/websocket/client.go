// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/geopresence/internal/logging"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	defaultSendBuffer = 256
	defaultMaxMessage = 64 * 1024
)

// Client is the middleman between one websocket connection and the hub. Its
// id is the opaque connection identifier other clients address messages to;
// it is assigned at accept time and has no relation to any registry id.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	router *Router
	send   chan []byte

	// closed marks the send channel as closed. Guarded by hub.mu; set under
	// the write lock immediately before close(send), checked under the read
	// lock before any send.
	closed bool

	maxMessageSize int64
}

// NewClient creates a Client for an upgraded connection. sendBuffer and
// maxMessageSize fall back to defaults when non-positive.
func NewClient(hub *Hub, conn *websocket.Conn, router *Router, sendBuffer int, maxMessageSize int64) *Client {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	if maxMessageSize <= 0 {
		maxMessageSize = defaultMaxMessage
	}
	return &Client{
		id:             uuid.NewString(),
		hub:            hub,
		conn:           conn,
		router:         router,
		send:           make(chan []byte, sendBuffer),
		maxMessageSize: maxMessageSize,
	}
}

// ID returns the opaque connection identifier.
func (c *Client) ID() string {
	return c.id
}

// Enqueue queues a payload for delivery to this client without a hub map
// lookup; used for the snapshot pushed immediately after accept, before the
// hub loop has necessarily processed the registration. Returns false if the
// client is already closed or its buffer is full.
func (c *Client) Enqueue(payload []byte) bool {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// readPump pumps inbound frames from the connection into the router.
// Any read error deregisters the connection synchronously; the router never
// sees frames from a deregistered client afterwards.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Str("connection_id", c.id).Msg("unexpected websocket close")
			}
			break
		}
		c.router.Route(c.id, raw)
	}
}

// writePump drains the send channel to the connection and keeps the
// connection alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logging.Debug().Err(err).Str("connection_id", c.id).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins the read and write pumps for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
