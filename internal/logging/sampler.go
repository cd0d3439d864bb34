// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package logging

import (
	"time"

	"golang.org/x/time/rate"
)

// Sampler throttles a noisy log site. The first N calls always run, after
// that at most one call per interval.
//
//	var dropLog = logging.NewSampler(10, 5*time.Second)
//	dropLog.Do(func() { logging.Debug().Msg("Dropped frame") })
type Sampler struct {
	sometimes rate.Sometimes
}

// NewSampler returns a sampler that lets the first calls through and
// then one call per interval.
func NewSampler(first int, interval time.Duration) *Sampler {
	return &Sampler{sometimes: rate.Sometimes{First: first, Interval: interval}}
}

// Do runs f if the sampler allows it.
func (s *Sampler) Do(f func()) {
	s.sometimes.Do(f)
}
