// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package ingest

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/aisfleet/internal/config"
	"github.com/tomtom215/aisfleet/internal/logging"
	"github.com/tomtom215/aisfleet/internal/metrics"
	"github.com/tomtom215/aisfleet/internal/models"
)

// ErrStoreUnavailable is returned while the breaker is open.
var ErrStoreUnavailable = errors.New("store unavailable: circuit open")

// BreakerStore wraps a Store with a circuit breaker so that a dead store
// fails fast instead of every lane waiting out its write timeout.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerStore wraps next. The breaker opens after
// cfg.BreakerFailures consecutive failures and lets a trial write through after
// cfg.BreakerTimeout.
func NewBreakerStore(next Store, cfg *config.PipelineConfig) *BreakerStore {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	metrics.SetBreakerState(stateValue(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "duckdb-writes",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Writes canceled by shutdown do not count against the store.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Store circuit breaker state transition")
			metrics.SetBreakerState(stateValue(to))
		},
	})

	return &BreakerStore{next: next, cb: cb}
}

// InsertPosition forwards to the wrapped store through the breaker.
func (b *BreakerStore) InsertPosition(ctx context.Context, p *models.PositionReport) error {
	return b.execute(func() error { return b.next.InsertPosition(ctx, p) })
}

// UpsertVessel forwards to the wrapped store through the breaker.
func (b *BreakerStore) UpsertVessel(ctx context.Context, u *models.VesselUpdate) error {
	return b.execute(func() error { return b.next.UpsertVessel(ctx, u) })
}

// State returns the breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) execute(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return err
}

// stateValue maps breaker states to the gauge encoding.
func stateValue(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
