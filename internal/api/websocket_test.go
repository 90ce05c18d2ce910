// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gorilla "github.com/gorilla/websocket"

	"github.com/tomtom215/geopresence/internal/models"
)

// dialWS connects a websocket client to the test server's /ws endpoint.
func dialWS(t *testing.T, server *httptest.Server) *gorilla.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *gorilla.Conn, timeout time.Duration) []byte {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("failed to set read deadline: %v", err)
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("websocket read failed: %v", err)
	}
	return payload
}

func TestWebSocket_SnapshotOnConnect(t *testing.T) {
	router, reg := setupAPI(t)
	server := httptest.NewServer(router)
	defer server.Close()

	if _, err := reg.UpsertPosition("alice", 48.85, 2.35); err != nil {
		t.Fatalf("UpsertPosition failed: %v", err)
	}

	conn := dialWS(t, server)

	// The current aggregate state arrives without waiting for a tick.
	payload := readMessage(t, conn, time.Second)
	var entries []models.PositionEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v (%s)", err, payload)
	}
	if len(entries) != 1 || entries[0].Pseudo != "alice" {
		t.Errorf("unexpected snapshot: %+v", entries)
	}
}

func TestWebSocket_SnapshotOnConnect_Empty(t *testing.T) {
	router, _ := setupAPI(t)
	server := httptest.NewServer(router)
	defer server.Close()

	conn := dialWS(t, server)

	payload := readMessage(t, conn, time.Second)
	if strings.TrimSpace(string(payload)) != "[]" {
		t.Errorf("expected empty snapshot, got %s", payload)
	}
}

func TestWebSocket_ChatBroadcast(t *testing.T) {
	router, _ := setupAPI(t)
	server := httptest.NewServer(router)
	defer server.Close()

	sender := dialWS(t, server)
	receiver := dialWS(t, server)

	// Drain the connect-time snapshots.
	readMessage(t, sender, time.Second)
	readMessage(t, receiver, time.Second)

	chat := `{"type":"chat","from":"alice","message":"bonjour"}`
	if err := sender.WriteMessage(gorilla.TextMessage, []byte(chat)); err != nil {
		t.Fatalf("websocket write failed: %v", err)
	}

	// Untargeted chat reaches every connection, the sender included.
	for name, conn := range map[string]*gorilla.Conn{"receiver": receiver, "sender": sender} {
		payload := readMessage(t, conn, time.Second)
		if string(payload) != chat {
			t.Errorf("%s got %s, want the verbatim chat frame", name, payload)
		}
	}
}

func TestWebSocket_MalformedFrameKeepsConnection(t *testing.T) {
	router, _ := setupAPI(t)
	server := httptest.NewServer(router)
	defer server.Close()

	conn := dialWS(t, server)
	readMessage(t, conn, time.Second)

	if err := conn.WriteMessage(gorilla.TextMessage, []byte(`{not json`)); err != nil {
		t.Fatalf("websocket write failed: %v", err)
	}

	// The connection survives a bad frame: a later valid chat from the same
	// connection still comes back through the broadcast path.
	time.Sleep(50 * time.Millisecond)
	chat := `{"type":"chat","from":"alice","message":"toujours là"}`
	if err := conn.WriteMessage(gorilla.TextMessage, []byte(chat)); err != nil {
		t.Fatalf("websocket write failed: %v", err)
	}

	got := readMessage(t, conn, time.Second)
	if string(got) != chat {
		t.Errorf("expected the chat frame back, got %s", got)
	}
}
