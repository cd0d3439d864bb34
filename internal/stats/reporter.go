// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package stats

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/aisfleet/internal/logging"
)

// DefaultInterval is the reporting period when none is configured.
const DefaultInterval = 60 * time.Second

// Snapshot is a point-in-time view of the reporter counters.
type Snapshot struct {
	// Window is the number of writes since the last report.
	Window int64 `json:"window_writes"`

	// Total is the number of writes since startup.
	Total int64 `json:"total_writes"`

	// LastWrite is the time of the most recent write, zero if none.
	LastWrite time.Time `json:"last_write,omitempty"`
}

// Reporter counts position writes and logs a summary once per interval.
// Intervals with no writes are silent.
type Reporter struct {
	interval time.Duration

	mu        sync.Mutex
	window    int64
	total     int64
	lastWrite time.Time
}

// NewReporter creates a reporter. A non-positive interval uses
// DefaultInterval.
func NewReporter(interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{interval: interval}
}

// RecordWrite counts one successful position write.
func (r *Reporter) RecordWrite(at time.Time) {
	r.mu.Lock()
	r.window++
	r.total++
	if at.After(r.lastWrite) {
		r.lastWrite = at
	}
	r.mu.Unlock()
}

// Snapshot returns the current counters.
func (r *Reporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{Window: r.window, Total: r.total, LastWrite: r.lastWrite}
}

// LastWrite returns the time of the most recent write.
func (r *Reporter) LastWrite() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastWrite
}

// Interval returns the reporting period.
func (r *Reporter) Interval() time.Duration {
	return r.interval
}

// Report logs and resets the window counter. It returns the number of
// writes reported.
func (r *Reporter) Report() int64 {
	r.mu.Lock()
	n := r.window
	total := r.total
	r.window = 0
	r.mu.Unlock()

	if n == 0 {
		return 0
	}
	logging.Info().
		Int64("writes", n).
		Int64("total_writes", total).
		Dur("interval", r.interval).
		Msg("Positions written")
	return n
}

// Run reports every interval until ctx is canceled, then flushes the
// final partial window.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Report()
			return nil
		case <-ticker.C:
			r.Report()
		}
	}
}
