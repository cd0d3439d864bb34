// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Stream Metrics
	StreamFramesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisfleet_stream_frames_received_total",
			Help: "Total number of frames read from the AIS stream, by classified kind",
		},
		[]string{"kind"}, // "position", "static", "ignored", "invalid"
	)

	StreamConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisfleet_stream_connect_attempts_total",
			Help: "Total number of AIS stream connection attempts",
		},
		[]string{"result"}, // "success", "failure"
	)

	StreamDisconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisfleet_stream_disconnects_total",
			Help: "Total number of AIS stream disconnects",
		},
		[]string{"cause"}, // "idle", "read_error", "write_error", "shutdown"
	)

	StreamState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aisfleet_stream_state",
			Help: "Current connection state (0=disconnected, 1=connecting, 2=open, 3=subscribed, 4=closing)",
		},
	)

	StreamBackoffSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aisfleet_stream_backoff_seconds",
			Help: "Delay before the next reconnect attempt",
		},
	)

	StreamLastFrameTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aisfleet_stream_last_frame_timestamp_seconds",
			Help: "Unix time of the last frame or pong received",
		},
	)

	StreamPingsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aisfleet_stream_pings_sent_total",
			Help: "Total number of keepalive pings sent",
		},
	)

	// Pipeline Metrics
	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisfleet_records_dropped_total",
			Help: "Total number of records dropped before persistence, by reason",
		},
		[]string{"reason"},
	)

	FilterDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisfleet_filter_decisions_total",
			Help: "Total number of position filter decisions, by reason",
		},
		[]string{"reason"}, // "first_sighting", "moved", "elapsed", "stale", "too_close"
	)

	PositionsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aisfleet_positions_persisted_total",
			Help: "Total number of vessel positions written to the store",
		},
	)

	VesselUpdatesPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aisfleet_vessel_updates_persisted_total",
			Help: "Total number of static vessel updates merged into the store",
		},
	)

	ActiveLanes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aisfleet_pipeline_active_lanes",
			Help: "Number of vessels with writes queued or in flight",
		},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aisfleet_store_breaker_state",
			Help: "Store circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aisfleet_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisfleet_duckdb_query_errors_total",
			Help: "Total number of DuckDB statement errors",
		},
		[]string{"operation", "table"},
	)

	// Maintenance Metrics
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisfleet_maintenance_runs_total",
			Help: "Total number of maintenance job runs",
		},
		[]string{"job", "status"}, // job: "refresh_latest", "retention"
	)

	MaintenanceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aisfleet_maintenance_duration_seconds",
			Help:    "Duration of maintenance job runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"job"},
	)

	RetentionRowsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aisfleet_retention_rows_deleted_total",
			Help: "Total number of position rows removed by retention",
		},
	)

	// NATS Metrics
	NATSPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisfleet_nats_published_total",
			Help: "Total number of position events published to NATS",
		},
		[]string{"result"}, // "success", "failure"
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisfleet_api_requests_total",
			Help: "Total number of ops API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aisfleet_api_request_duration_seconds",
			Help:    "Ops API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)
)

// Helper functions for recording metrics

// RecordFrame counts one frame of the given kind and stamps the receive time.
func RecordFrame(kind string, at time.Time) {
	StreamFramesReceived.WithLabelValues(kind).Inc()
	StreamLastFrameTimestamp.Set(float64(at.Unix()))
}

// RecordConnectAttempt counts a dial outcome.
func RecordConnectAttempt(err error) {
	if err != nil {
		StreamConnectAttempts.WithLabelValues("failure").Inc()
		return
	}
	StreamConnectAttempts.WithLabelValues("success").Inc()
}

func RecordDisconnect(cause string) {
	StreamDisconnects.WithLabelValues(cause).Inc()
}

func SetStreamState(state int) {
	StreamState.Set(float64(state))
}

func SetBackoff(d time.Duration) {
	StreamBackoffSeconds.Set(d.Seconds())
}

func RecordPing() {
	StreamPingsSent.Inc()
}

func RecordDrop(reason string) {
	RecordsDropped.WithLabelValues(reason).Inc()
}

func RecordFilterDecision(reason string) {
	FilterDecisions.WithLabelValues(reason).Inc()
}

func RecordPositionPersisted() {
	PositionsPersisted.Inc()
}

func RecordVesselUpdate() {
	VesselUpdatesPersisted.Inc()
}

func SetActiveLanes(n int) {
	ActiveLanes.Set(float64(n))
}

func SetBreakerState(state int) {
	BreakerState.Set(float64(state))
}

// RecordDBQuery records the duration and outcome of one store operation.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordMaintenanceRun records one periodic job run.
func RecordMaintenanceRun(job string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	MaintenanceRuns.WithLabelValues(job, status).Inc()
	MaintenanceDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func RecordRetentionDeleted(n int64) {
	RetentionRowsDeleted.Add(float64(n))
}

func RecordNATSPublish(err error) {
	if err != nil {
		NATSPublished.WithLabelValues("failure").Inc()
		return
	}
	NATSPublished.WithLabelValues("success").Inc()
}

func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
