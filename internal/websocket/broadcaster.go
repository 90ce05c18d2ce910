// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

package websocket

import (
	"bytes"
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geopresence/internal/logging"
	"github.com/tomtom215/geopresence/internal/metrics"
	"github.com/tomtom215/geopresence/internal/models"
)

// SnapshotSource provides the registry state to broadcast.
// Satisfied by *registry.Registry.
type SnapshotSource interface {
	Snapshot() []models.UserRecord
}

// Broadcaster pushes the positions snapshot to every open connection, at
// most once per tick and only when it changed since the last push. The
// comparison key is the serialized payload itself: the snapshot is id-sorted
// and marshaled with stable field order, so identical state always yields
// identical bytes. Idle clients receive nothing while end-to-end propagation
// latency stays bounded by the tick interval.
type Broadcaster struct {
	source   SnapshotSource
	sender   Sender
	interval time.Duration

	last []byte
}

// NewBroadcaster creates a broadcaster reading from source and delivering
// through sender every interval.
func NewBroadcaster(source SnapshotSource, sender Sender, interval time.Duration) *Broadcaster {
	return &Broadcaster{
		source:   source,
		sender:   sender,
		interval: interval,
	}
}

// Serve implements suture.Service. It ticks until ctx is canceled and
// returns ctx.Err().
func (b *Broadcaster) Serve(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.tick()
		}
	}
}

// tick runs one change-detection cycle: serialize the snapshot, compare it
// to the previously broadcast payload, and push only on change.
func (b *Broadcaster) tick() {
	payload, err := SnapshotPayload(b.source.Snapshot())
	if err != nil {
		logging.Error().Err(err).Msg("failed to serialize registry snapshot")
		return
	}

	if bytes.Equal(payload, b.last) {
		metrics.BroadcastTicks.WithLabelValues("unchanged").Inc()
		return
	}

	b.sender.Broadcast(payload)
	b.last = payload
	metrics.BroadcastTicks.WithLabelValues("changed").Inc()
	logging.Debug().Int("bytes", len(payload)).Msg("broadcast updated positions snapshot")
}

// String implements fmt.Stringer for supervisor logging.
func (b *Broadcaster) String() string {
	return "change-broadcaster"
}

// SnapshotPayload serializes registry records into the positions array
// pushed to clients. Records are expected already sorted by id (Snapshot
// guarantees this), which makes the serialization a stable comparison key.
func SnapshotPayload(records []models.UserRecord) ([]byte, error) {
	return json.Marshal(models.PositionEntries(records))
}
