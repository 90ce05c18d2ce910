// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPrometheusMetrics_PassesThrough(t *testing.T) {
	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status %d, got %d", http.StatusTeapot, rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestPrometheusMetrics_DefaultStatus(t *testing.T) {
	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected implicit 200, got %d", rec.Code)
	}
}

func TestPrometheusMetrics_SupportsHijack(t *testing.T) {
	// Connection-takeover handlers (the websocket upgrade) assert
	// http.Hijacker on the writer they receive; the wrapper must not
	// hide it.
	result := make(chan error, 1)
	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			result <- http.ErrNotSupported
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			result <- err
			return
		}
		_ = conn.Close()
		result <- nil
	}))

	server := httptest.NewServer(handler)
	defer server.Close()

	// The handler closes the hijacked connection without writing a
	// response, so the client side errors; only the handler's view matters.
	_, _ = http.Get(server.URL)

	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("hijack through the wrapper failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}
