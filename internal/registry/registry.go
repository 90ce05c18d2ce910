// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

// Package registry holds the authoritative in-memory set of known users and
// their last-reported state. It has no knowledge of any transport: the HTTP
// layer writes into it, the broadcaster reads snapshots out of it, and the
// sweeper prunes it, all through the same lock discipline.
package registry

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/geopresence/internal/metrics"
	"github.com/tomtom215/geopresence/internal/models"
)

// ErrPseudoRequired is returned when an upsert carries no identity.
var ErrPseudoRequired = errors.New("pseudo is required")

// Registry is the in-memory user store. Records are keyed by a
// server-assigned opaque id; the pseudo index only exists to re-attach HTTP
// reports (which carry no id) to the record they previously created.
//
// All mutations are mutually exclusive. Snapshot holds the read lock only
// for the duration of the copy and returns records no caller can use to
// reach back into registry state.
type Registry struct {
	mu       sync.RWMutex
	users    map[string]*models.UserRecord
	byPseudo map[string]string // pseudo -> id

	// now is replaceable for tests.
	now func() time.Time
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		users:    make(map[string]*models.UserRecord),
		byPseudo: make(map[string]string),
		now:      time.Now,
	}
}

// UpsertPosition records a position report for the given pseudo, creating the
// record on first contact. The position is replaced whole, never merged, and
// LastUpdated is refreshed. Returns a copy of the stored record.
func (r *Registry) UpsertPosition(pseudo string, lat, lon float64) (models.UserRecord, error) {
	if pseudo == "" {
		return models.UserRecord{}, ErrPseudoRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.findOrCreateLocked(pseudo)
	rec.Position = &models.Position{Lat: lat, Lon: lon}
	rec.LastUpdated = r.now().UnixMilli()

	return rec.Clone(), nil
}

// UpsertSensorReading records a motion-sensor report for the given pseudo,
// creating the record on first contact.
func (r *Registry) UpsertSensorReading(pseudo string, acc models.Acceleration, rot models.Rotation) error {
	if pseudo == "" {
		return ErrPseudoRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.findOrCreateLocked(pseudo)
	rec.Sensor = &models.SensorReading{Acceleration: acc, Rotation: rot}
	rec.LastUpdated = r.now().UnixMilli()

	return nil
}

// findOrCreateLocked resolves a pseudo to its record, creating one with a
// fresh id if the pseudo is unknown. Caller must hold the write lock.
func (r *Registry) findOrCreateLocked(pseudo string) *models.UserRecord {
	if id, ok := r.byPseudo[pseudo]; ok {
		if rec, ok := r.users[id]; ok {
			return rec
		}
	}

	rec := &models.UserRecord{
		ID:     uuid.NewString(),
		Pseudo: pseudo,
	}
	r.users[rec.ID] = rec
	r.byPseudo[pseudo] = rec.ID
	metrics.RegistryUsers.Set(float64(len(r.users)))
	return rec
}

// Snapshot returns a deep copy of every record, sorted by id. The copy is
// safe to serialize without any lock held and is never mutated afterwards.
func (r *Registry) Snapshot() []models.UserRecord {
	r.mu.RLock()
	records := make([]models.UserRecord, 0, len(r.users))
	for _, rec := range r.users {
		records = append(records, rec.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
	return records
}

// EvictStale removes every record whose last report is at least staleAfter
// old and returns the number removed.
func (r *Registry) EvictStale(now time.Time, staleAfter time.Duration) int {
	cutoff := now.Add(-staleAfter).UnixMilli()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, rec := range r.users {
		if rec.LastUpdated <= cutoff {
			delete(r.users, id)
			if r.byPseudo[rec.Pseudo] == id {
				delete(r.byPseudo, rec.Pseudo)
			}
			removed++
		}
	}

	if removed > 0 {
		metrics.RegistryUsers.Set(float64(len(r.users)))
		metrics.RegistryEvictions.Add(float64(removed))
	}
	return removed
}

// Clear empties the registry and returns the number of records removed.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := len(r.users)
	r.users = make(map[string]*models.UserRecord)
	r.byPseudo = make(map[string]string)
	metrics.RegistryUsers.Set(0)
	return removed
}

// Len returns the current number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
