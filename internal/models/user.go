// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

// Package models defines the wire and storage types shared across the
// registry, the websocket layer, and the HTTP API.
package models

// Position is a reported geographic location.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Acceleration is a device accelerometer reading on three axes.
type Acceleration struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation is a device orientation reading (alpha/beta/gamma, degrees).
type Rotation struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// SensorReading bundles one motion-sensor report.
type SensorReading struct {
	Acceleration Acceleration `json:"acceleration"`
	Rotation     Rotation     `json:"rotation"`
}

// UserRecord is the registry entry for one reporting identity.
//
// ID is a server-assigned opaque identifier and the canonical registry key.
// Pseudo is a user-supplied display name; it is not guaranteed unique and is
// only used to re-attach HTTP reports (which carry no server id) to the
// record they previously created.
//
// Position and Sensor are nil until the first report of their kind and are
// replaced whole on every subsequent report, never merged.
type UserRecord struct {
	ID       string         `json:"id"`
	Pseudo   string         `json:"pseudo"`
	Position *Position      `json:"position,omitempty"`
	Sensor   *SensorReading `json:"sensor,omitempty"`

	// LastUpdated is the epoch-millisecond timestamp of the most recent
	// position or sensor report.
	LastUpdated int64 `json:"lastUpdated"`
}

// Clone returns a deep copy of the record. Snapshots hand out clones so a
// caller can never mutate registry state through a returned record.
func (u UserRecord) Clone() UserRecord {
	c := u
	if u.Position != nil {
		p := *u.Position
		c.Position = &p
	}
	if u.Sensor != nil {
		s := *u.Sensor
		c.Sensor = &s
	}
	return c
}

// PositionEntry is the positions projection of a UserRecord, matching the
// payload broadcast to websocket clients and returned by GET /positions.
type PositionEntry struct {
	ID          string  `json:"id"`
	Pseudo      string  `json:"pseudo"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	LastUpdated int64   `json:"lastUpdated"`
}

// SensorEntry is the sensor projection of a UserRecord, returned by
// GET /accelerometers.
type SensorEntry struct {
	Pseudo       string       `json:"pseudo"`
	Acceleration Acceleration `json:"acceleration"`
	Rotation     Rotation     `json:"rotation"`
}

// PositionEntries projects the records that have reported a position.
// Input order is preserved; records without a position are skipped.
func PositionEntries(records []UserRecord) []PositionEntry {
	entries := make([]PositionEntry, 0, len(records))
	for _, r := range records {
		if r.Position == nil {
			continue
		}
		entries = append(entries, PositionEntry{
			ID:          r.ID,
			Pseudo:      r.Pseudo,
			Lat:         r.Position.Lat,
			Lon:         r.Position.Lon,
			LastUpdated: r.LastUpdated,
		})
	}
	return entries
}

// SensorEntries projects the records that have reported a sensor reading.
func SensorEntries(records []UserRecord) []SensorEntry {
	entries := make([]SensorEntry, 0, len(records))
	for _, r := range records {
		if r.Sensor == nil {
			continue
		}
		entries = append(entries, SensorEntry{
			Pseudo:       r.Pseudo,
			Acceleration: r.Sensor.Acceleration,
			Rotation:     r.Sensor.Rotation,
		})
	}
	return entries
}
