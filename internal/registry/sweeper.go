// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

package registry

import (
	"context"
	"time"

	"github.com/tomtom215/geopresence/internal/logging"
)

// Sweeper periodically evicts stale records from a Registry. It runs as a
// supervised service: a single timer, never re-entrant, stopped by context
// cancellation.
type Sweeper struct {
	registry   *Registry
	interval   time.Duration
	staleAfter time.Duration
}

// NewSweeper creates a sweeper that runs every interval and removes records
// older than staleAfter.
func NewSweeper(registry *Registry, interval, staleAfter time.Duration) *Sweeper {
	return &Sweeper{
		registry:   registry,
		interval:   interval,
		staleAfter: staleAfter,
	}
}

// Serve implements suture.Service. It blocks until ctx is canceled and
// returns ctx.Err() so the supervisor treats the stop as a normal shutdown.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			removed := s.registry.EvictStale(now, s.staleAfter)
			if removed > 0 {
				logging.Info().
					Int("removed", removed).
					Int("remaining", s.registry.Len()).
					Msg("evicted inactive users")
			} else {
				logging.Debug().Msg("eviction sweep found no stale users")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *Sweeper) String() string {
	return "eviction-sweeper"
}
