// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package filter

import (
	"sync"
	"time"

	"github.com/tomtom215/aisfleet/internal/geo"
)

// Default thresholds: a report is worth storing if the vessel moved more
// than 100 m or at least three minutes passed since the last stored one.
const (
	DefaultMinDistanceMeters = 100.0
	DefaultMinInterval       = 180 * time.Second
)

// Reason explains a filter decision.
type Reason string

const (
	ReasonFirstSighting Reason = "first_sighting"
	ReasonMoved         Reason = "moved"
	ReasonElapsed       Reason = "elapsed"
	ReasonStale         Reason = "stale"
	ReasonTooClose      Reason = "too_close"
)

// Decision is the outcome of Evaluate.
type Decision struct {
	Emit     bool
	Reason   Reason
	Distance float64       // metres from the last emitted fix, 0 on first sighting
	Elapsed  time.Duration // time since the last emitted fix, 0 on first sighting
}

// State is the last emitted fix of one vessel.
type State struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// Config holds the filter thresholds.
type Config struct {
	MinDistanceMeters float64
	MinInterval       time.Duration
}

// Filter decides whether a position report is worth storing given the
// last stored report of the same vessel. State lives in the instance and
// is empty at startup, so the first report per vessel is always accepted.
//
// Evaluate never changes state. Callers persist an accepted report and
// then call Commit; a failed write leaves the previous state in place so
// the next report gets a fair chance.
type Filter struct {
	mu          sync.RWMutex
	last        map[int64]State
	minDistance float64
	minInterval time.Duration
}

// New creates a filter. Non-positive thresholds fall back to the defaults.
func New(cfg Config) *Filter {
	if cfg.MinDistanceMeters <= 0 {
		cfg.MinDistanceMeters = DefaultMinDistanceMeters
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	return &Filter{
		last:        make(map[int64]State),
		minDistance: cfg.MinDistanceMeters,
		minInterval: cfg.MinInterval,
	}
}

// Evaluate decides whether the fix (lat, lon, ts) for mmsi should be
// emitted. Coordinates must already be validated.
func (f *Filter) Evaluate(mmsi int64, lat, lon float64, ts time.Time) Decision {
	f.mu.RLock()
	prev, ok := f.last[mmsi]
	f.mu.RUnlock()

	if !ok {
		return Decision{Emit: true, Reason: ReasonFirstSighting}
	}

	if !ts.After(prev.Timestamp) {
		return Decision{Reason: ReasonStale, Elapsed: ts.Sub(prev.Timestamp)}
	}

	d := Decision{
		Distance: geo.DistanceMeters(prev.Latitude, prev.Longitude, lat, lon),
		Elapsed:  ts.Sub(prev.Timestamp),
	}
	switch {
	case d.Distance > f.minDistance:
		d.Emit, d.Reason = true, ReasonMoved
	case d.Elapsed >= f.minInterval:
		d.Emit, d.Reason = true, ReasonElapsed
	default:
		d.Reason = ReasonTooClose
	}
	return d
}

// ShouldEmit is Evaluate reduced to its verdict.
func (f *Filter) ShouldEmit(mmsi int64, lat, lon float64, ts time.Time) bool {
	return f.Evaluate(mmsi, lat, lon, ts).Emit
}

// Commit records (lat, lon, ts) as the last emitted fix for mmsi. It is
// called only after the report was persisted. A commit older than or
// equal to the stored fix is ignored, so time never moves backward.
func (f *Filter) Commit(mmsi int64, lat, lon float64, ts time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if prev, ok := f.last[mmsi]; ok && !ts.After(prev.Timestamp) {
		return false
	}
	f.last[mmsi] = State{Latitude: lat, Longitude: lon, Timestamp: ts}
	return true
}

// Last returns the last emitted fix for mmsi.
func (f *Filter) Last(mmsi int64) (State, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.last[mmsi]
	return s, ok
}

// Len returns the number of tracked vessels.
func (f *Filter) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.last)
}
