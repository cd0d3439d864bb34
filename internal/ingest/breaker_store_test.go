// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/aisfleet/internal/config"
	"github.com/tomtom215/aisfleet/internal/models"
)

type countingStore struct {
	calls int
	err   error
}

func (s *countingStore) InsertPosition(context.Context, *models.PositionReport) error {
	s.calls++
	return s.err
}

func (s *countingStore) UpsertVessel(context.Context, *models.VesselUpdate) error {
	s.calls++
	return s.err
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	next := &countingStore{err: errStoreDown}
	b := NewBreakerStore(next, &config.PipelineConfig{BreakerFailures: 2, BreakerTimeout: time.Hour})
	ctx := context.Background()
	p := &models.PositionReport{MMSI: 1}

	for i := 0; i < 2; i++ {
		if err := b.InsertPosition(ctx, p); !errors.Is(err, errStoreDown) {
			t.Fatalf("call %d: err = %v, want store error", i, err)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %s, want open", b.State())
	}

	err := b.UpsertVessel(ctx, &models.VesselUpdate{MMSI: 1})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if next.calls != 2 {
		t.Errorf("wrapped store called %d times, want 2", next.calls)
	}
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	next := &countingStore{err: context.Canceled}
	b := NewBreakerStore(next, &config.PipelineConfig{BreakerFailures: 1, BreakerTimeout: time.Hour})

	for i := 0; i < 3; i++ {
		if err := b.InsertPosition(context.Background(), &models.PositionReport{MMSI: 1}); !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %s, want closed", b.State())
	}
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	next := &countingStore{err: errStoreDown}
	b := NewBreakerStore(next, &config.PipelineConfig{BreakerFailures: 1, BreakerTimeout: 20 * time.Millisecond})
	ctx := context.Background()

	_ = b.InsertPosition(ctx, &models.PositionReport{MMSI: 1})
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %s, want open", b.State())
	}

	time.Sleep(40 * time.Millisecond)
	next.err = nil
	if err := b.InsertPosition(ctx, &models.PositionReport{MMSI: 1}); err != nil {
		t.Fatalf("half-open write: %v", err)
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %s, want closed after successful half-open write", b.State())
	}
}

func TestStateValue(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		want  int
	}{
		{gobreaker.StateClosed, 0},
		{gobreaker.StateHalfOpen, 1},
		{gobreaker.StateOpen, 2},
	}
	for _, tt := range tests {
		if got := stateValue(tt.state); got != tt.want {
			t.Errorf("stateValue(%s) = %d, want %d", tt.state, got, tt.want)
		}
	}
}
