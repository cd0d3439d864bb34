// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package services

import (
	"context"
	"time"

	"github.com/tomtom215/aisfleet/internal/logging"
	"github.com/tomtom215/aisfleet/internal/metrics"
)

// Job is one run of a periodic maintenance task.
type Job func(ctx context.Context) error

// PeriodicConfig controls a PeriodicService.
type PeriodicConfig struct {
	// Interval between runs. Required.
	Interval time.Duration

	// RunOnStart runs the job once as soon as the service starts.
	RunOnStart bool

	// Timeout bounds a single run. Default: the interval.
	Timeout time.Duration
}

// PeriodicService runs a Job on a fixed interval. A failed run is logged
// and counted; the next tick tries again.
type PeriodicService struct {
	job    Job
	config PeriodicConfig
	name   string
}

// NewPeriodicService creates a periodic service named name.
func NewPeriodicService(name string, job Job, cfg PeriodicConfig) *PeriodicService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	return &PeriodicService{job: job, config: cfg, name: name}
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	logging.Info().
		Str("job", s.name).
		Dur("interval", s.config.Interval).
		Bool("run_on_start", s.config.RunOnStart).
		Msg("Maintenance job scheduled")

	if s.config.RunOnStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *PeriodicService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	err := s.job(runCtx)
	duration := time.Since(start)
	metrics.RecordMaintenanceRun(s.name, duration, err)

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Warn().Err(err).Str("job", s.name).Dur("duration", duration).Msg("Maintenance job failed")
		return
	}
	logging.Debug().Str("job", s.name).Dur("duration", duration).Msg("Maintenance job complete")
}

// String implements fmt.Stringer. Suture uses it in log messages.
func (s *PeriodicService) String() string {
	return s.name
}
