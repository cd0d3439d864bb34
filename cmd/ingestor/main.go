// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

// Package main is the entry point of the AIS fleet ingestor.
//
// The ingestor holds one WebSocket subscription to aisstream.io, keeps the
// position reports and static data of the vessels it cares about, and
// writes a throttled track per vessel into DuckDB.
//
// # Startup
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2).
//     Any invalid setting is fatal.
//  2. Subscription: resolve bbox or id-list mode and the acceptance policy.
//  3. Database: open DuckDB and create the schema.
//  4. Pipeline: breaker-wrapped store, position filter, per-vessel lanes,
//     optional NATS publisher.
//  5. Supervisor tree: stream manager, stats reporter, maintenance jobs
//     and the ops HTTP server.
//
// # Required environment
//
//	AISSTREAM_KEY=...                         # feed API key
//	BBOX_JSON='[[-10,35],[30,60]]'            # and/or
//	FLEET_MMSIS=244650000,211234560
//
// # Signal Handling
//
// SIGINT and SIGTERM stop the tree (the feed socket is closed with a
// normal close frame), then queued writes are drained, then the database
// is checkpointed and closed.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/aisfleet/internal/api"
	"github.com/tomtom215/aisfleet/internal/config"
	"github.com/tomtom215/aisfleet/internal/database"
	"github.com/tomtom215/aisfleet/internal/events"
	"github.com/tomtom215/aisfleet/internal/filter"
	"github.com/tomtom215/aisfleet/internal/ingest"
	"github.com/tomtom215/aisfleet/internal/logging"
	"github.com/tomtom215/aisfleet/internal/stats"
	"github.com/tomtom215/aisfleet/internal/stream"
	"github.com/tomtom215/aisfleet/internal/subscription"
	"github.com/tomtom215/aisfleet/internal/supervisor"
	"github.com/tomtom215/aisfleet/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().Msg("Starting AIS fleet ingestor")

	filterCfg, err := cfg.SubscriptionFilter()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid subscription filter")
	}
	request, mode, err := subscription.BuildRequest(cfg.Stream.APIKey, filterCfg, cfg.Stream.MessageTypes)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build subscription")
	}
	policy, err := subscription.NewPolicy(mode, filterCfg.MMSIs, cfg.Subscription.AllowNonListed)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build acceptance policy")
	}
	logging.Info().
		Str("mode", string(mode)).
		Int("bounding_boxes", len(request.BoundingBoxes)).
		Int("allowlist", policy.AllowlistSize()).
		Bool("allow_non_listed", cfg.Subscription.AllowNonListed).
		Strs("message_types", request.FilterMessageTypes).
		Msg("Subscription resolved")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	reporter := stats.NewReporter(cfg.Stats.Interval)
	positionFilter := filter.New(filter.Config{
		MinDistanceMeters: cfg.Filter.MinDistanceMeters,
		MinInterval:       cfg.Filter.MinInterval,
	})
	store := ingest.NewBreakerStore(db, &cfg.Pipeline)
	pipeline := ingest.NewPipeline(&cfg.Pipeline, store, positionFilter, policy, reporter)

	var publisher *events.Publisher
	if cfg.NATS.Enabled {
		publisher, err = events.NewPublisher(&cfg.NATS)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create NATS publisher")
		}
		pipeline.SetPublisher(publisher)
		logging.Info().Str("url", cfg.NATS.URL).Str("subject", publisher.Subject()).Msg("Position publishing enabled")
	}

	manager := stream.NewManager(&cfg.Stream, request, pipeline.HandleFrame)
	manager.OnStateChange(func(from, to stream.State) {
		logging.Debug().Str("from", from.String()).Str("to", to.String()).Msg("Stream state changed")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewComponentSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	addServices(tree, cfg, manager, reporter, db)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Stopping services")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		cancel()
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if err := pipeline.Close(context.Background()); err != nil {
		logging.Error().Err(err).Msg("Pending writes lost on shutdown")
	}
	reporter.Report()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing NATS publisher")
		}
	}

	logging.Info().Uint64("connects", manager.Status().Connects).Msg("Ingestor stopped")
}

// addServices registers every long-lived component with the tree.
func addServices(tree *supervisor.Tree, cfg *config.Config, manager *stream.Manager, reporter *stats.Reporter, db *database.DB) {
	tree.AddIngestService(services.NewRunnerService("stream", manager))
	tree.AddMaintenanceService(services.NewRunnerService("stats", reporter))

	if cfg.Maintenance.RefreshEnabled {
		tree.AddMaintenanceService(services.NewPeriodicService(
			"refresh-latest",
			services.RefreshLatestJob(db),
			services.PeriodicConfig{Interval: cfg.Maintenance.RefreshInterval, RunOnStart: true},
		))
	}

	if cfg.Maintenance.RetentionEnabled {
		tree.AddMaintenanceService(services.NewPeriodicService(
			"retention",
			services.RetentionJob(db, cfg.Maintenance.RetentionDays, cfg.Maintenance.RetentionBatchSize, nil),
			services.PeriodicConfig{Interval: cfg.Maintenance.RetentionInterval, RunOnStart: true},
		))
		logging.Info().Int("days", cfg.Maintenance.RetentionDays).Msg("Position retention enabled")
	}

	if cfg.Server.Enabled {
		handler := api.NewHandler(db, manager, reporter, cfg.Stream.IdleTimeout)
		server := api.NewHTTPServer(&cfg.Server, api.NewRouter(&cfg.Server, handler))
		tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, 10*time.Second))
		logging.Info().Str("addr", server.Addr).Msg("Ops HTTP server enabled")
	}
}
