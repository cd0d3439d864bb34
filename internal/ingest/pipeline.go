// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/tomtom215/aisfleet/internal/config"
	"github.com/tomtom215/aisfleet/internal/filter"
	"github.com/tomtom215/aisfleet/internal/logging"
	"github.com/tomtom215/aisfleet/internal/metrics"
	"github.com/tomtom215/aisfleet/internal/models"
	"github.com/tomtom215/aisfleet/internal/subscription"
	"github.com/tomtom215/aisfleet/internal/validation"
)

// Drop reasons used as metric labels.
const (
	DropInvalidFrame    = "invalid_frame"
	DropNotListed       = "not_listed"
	DropInvalidPosition = "invalid_position"
	DropInvalidStatic   = "invalid_static"
	DropQueueFull       = "queue_full"
	DropShutdown        = "shutdown"
	DropWriteFailed     = "write_failed"
)

// Store is the persistence capability the pipeline writes through.
type Store interface {
	InsertPosition(ctx context.Context, p *models.PositionReport) error
	UpsertVessel(ctx context.Context, u *models.VesselUpdate) error
}

// Publisher receives positions after they were persisted.
type Publisher interface {
	PublishPosition(ctx context.Context, p *models.PositionReport) error
}

// WriteRecorder observes successful position writes.
type WriteRecorder interface {
	RecordWrite(at time.Time)
}

// Pipeline routes classified frames to the store. HandleFrame runs on the
// stream reader goroutine and only classifies, checks and enqueues; the
// filter decision, write and state commit happen in the vessel's lane.
type Pipeline struct {
	cfg       *config.PipelineConfig
	store     Store
	filter    *filter.Filter
	policy    *subscription.Policy
	stats     WriteRecorder
	publisher Publisher

	lanes *lanes

	// writeCtx bounds every write; canceled when draining times out.
	writeCtx    context.Context
	cancelWrite context.CancelFunc
	closed      atomic.Bool

	dropLog *logging.Sampler
}

// NewPipeline wires the write path. stats may be nil.
func NewPipeline(cfg *config.PipelineConfig, store Store, f *filter.Filter, policy *subscription.Policy, stats WriteRecorder) *Pipeline {
	writeCtx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		cfg:         cfg,
		store:       store,
		filter:      f,
		policy:      policy,
		stats:       stats,
		writeCtx:    writeCtx,
		cancelWrite: cancel,
		dropLog:     logging.NewSampler(10, 5*time.Second),
	}
	p.lanes = newLanes(cfg.LaneQueueSize, p.process)
	return p
}

// SetPublisher enables publishing of persisted positions. Must be called
// before the first frame is handled.
func (p *Pipeline) SetPublisher(pub Publisher) {
	p.publisher = pub
}

// HandleFrame classifies one raw frame and submits the record. It matches
// the stream.Handler signature.
func (p *Pipeline) HandleFrame(ctx context.Context, data []byte, receivedAt time.Time) {
	rec, err := Classify(data, receivedAt)
	metrics.RecordFrame(string(rec.Kind), receivedAt)
	if err != nil {
		if errors.Is(err, ErrIgnored) {
			logging.Ctx(ctx).Trace().Err(err).Msg("Ignored frame")
			return
		}
		p.drop(ctx, DropInvalidFrame, rec.MMSI, err)
		return
	}
	p.Submit(ctx, rec)
}

// Submit checks rec against the acceptance policy and validation rules
// and queues it on its vessel's lane. It returns whether rec was queued.
func (p *Pipeline) Submit(ctx context.Context, rec Record) bool {
	if p.closed.Load() {
		p.drop(ctx, DropShutdown, rec.MMSI, nil)
		return false
	}
	if !p.policy.Accepts(rec.MMSI) {
		p.drop(ctx, DropNotListed, rec.MMSI, nil)
		return false
	}

	switch rec.Kind {
	case KindPosition:
		if rec.Position.Source == "" {
			rec.Position.Source = p.cfg.SourceLabel
		}
		if verr := validation.ValidatePosition(rec.Position); verr != nil {
			p.drop(ctx, DropInvalidPosition, rec.MMSI, verr)
			return false
		}
	case KindStatic:
		if verr := validation.ValidateVesselUpdate(rec.Vessel); verr != nil {
			p.drop(ctx, DropInvalidStatic, rec.MMSI, verr)
			return false
		}
	default:
		return false
	}

	if err := p.lanes.enqueue(rec); err != nil {
		reason := DropQueueFull
		if errors.Is(err, errLanesClosed) {
			reason = DropShutdown
		}
		p.drop(ctx, reason, rec.MMSI, nil)
		return false
	}
	return true
}

// process runs inside a vessel lane.
func (p *Pipeline) process(rec Record) {
	switch rec.Kind {
	case KindPosition:
		p.processPosition(rec.Position)
	case KindStatic:
		p.processStatic(rec.Vessel)
	}
}

func (p *Pipeline) processPosition(pos *models.PositionReport) {
	d := p.filter.Evaluate(pos.MMSI, pos.Latitude, pos.Longitude, pos.Timestamp)
	metrics.RecordFilterDecision(string(d.Reason))
	if !d.Emit {
		metrics.RecordDrop(string(d.Reason))
		logging.Trace().
			Int64("mmsi", pos.MMSI).
			Str("reason", string(d.Reason)).
			Float64("distance_m", d.Distance).
			Dur("elapsed", d.Elapsed).
			Msg("Position filtered")
		return
	}

	ctx, cancel := context.WithTimeout(p.writeCtx, p.cfg.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := p.store.InsertPosition(ctx, pos)
	metrics.RecordDBQuery("insert", "vessel_positions", time.Since(start), err)
	if err != nil {
		// State stays untouched so the next report for this vessel is
		// judged against the last fix that actually reached the store.
		metrics.RecordDrop(DropWriteFailed)
		logging.Error().
			Err(err).
			Int64("mmsi", pos.MMSI).
			Time("ts", pos.Timestamp).
			Msg("Failed to persist position")
		return
	}

	p.filter.Commit(pos.MMSI, pos.Latitude, pos.Longitude, pos.Timestamp)
	metrics.RecordPositionPersisted()
	if p.stats != nil {
		p.stats.RecordWrite(time.Now())
	}
	logging.Debug().
		Int64("mmsi", pos.MMSI).
		Str("reason", string(d.Reason)).
		Time("ts", pos.Timestamp).
		Msg("Position persisted")

	if p.publisher != nil {
		if err := p.publisher.PublishPosition(ctx, pos); err != nil {
			logging.Warn().Err(err).Int64("mmsi", pos.MMSI).Msg("Failed to publish position")
		}
	}
}

func (p *Pipeline) processStatic(u *models.VesselUpdate) {
	ctx, cancel := context.WithTimeout(p.writeCtx, p.cfg.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := p.store.UpsertVessel(ctx, u)
	metrics.RecordDBQuery("upsert", "vessels", time.Since(start), err)
	if err != nil {
		metrics.RecordDrop(DropWriteFailed)
		logging.Error().Err(err).Int64("mmsi", u.MMSI).Msg("Failed to upsert vessel")
		return
	}
	metrics.RecordVesselUpdate()
	logging.Debug().Int64("mmsi", u.MMSI).Msg("Vessel static data merged")
}

func (p *Pipeline) drop(ctx context.Context, reason string, mmsi int64, err error) {
	metrics.RecordDrop(reason)
	p.dropLog.Do(func() {
		ev := logging.Ctx(ctx).Debug().Str("reason", reason)
		if mmsi > 0 {
			ev = ev.Int64("mmsi", mmsi)
		}
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("Record dropped")
	})
}

// Pending returns the number of records queued across all lanes.
func (p *Pipeline) Pending() int {
	return p.lanes.pending()
}

// Close stops accepting records and waits for queued writes to finish.
// If ctx ends first, in-flight writes are canceled and an error returned.
func (p *Pipeline) Close(ctx context.Context) error {
	p.closed.Store(true)
	p.lanes.close()

	if p.cfg.DrainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.DrainTimeout)
		defer cancel()
	}

	err := p.lanes.wait(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Pipeline drain timed out, canceling in-flight writes")
		p.cancelWrite()
		return err
	}
	p.cancelWrite()
	logging.Info().Msg("Pipeline drained")
	return nil
}
