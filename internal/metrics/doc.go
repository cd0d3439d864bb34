// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package metrics provides Prometheus metrics for the ingestor.

All collectors are registered on the default registry through promauto and
exposed by the ops HTTP server at /metrics:

	curl http://localhost:3858/metrics

# Available Metrics

Stream:
  - aisfleet_stream_frames_received_total{kind}
  - aisfleet_stream_connect_attempts_total{result}
  - aisfleet_stream_disconnects_total{cause}
  - aisfleet_stream_state (0=disconnected .. 4=closing)
  - aisfleet_stream_backoff_seconds
  - aisfleet_stream_last_frame_timestamp_seconds
  - aisfleet_stream_pings_sent_total

Pipeline:
  - aisfleet_records_dropped_total{reason}
  - aisfleet_filter_decisions_total{reason}
  - aisfleet_positions_persisted_total
  - aisfleet_vessel_updates_persisted_total
  - aisfleet_pipeline_active_lanes
  - aisfleet_store_breaker_state (0=closed, 1=half-open, 2=open)

Store and maintenance:
  - aisfleet_duckdb_query_duration_seconds{operation,table}
  - aisfleet_duckdb_query_errors_total{operation,table}
  - aisfleet_maintenance_runs_total{job,status}
  - aisfleet_maintenance_duration_seconds{job}
  - aisfleet_retention_rows_deleted_total

Publishing and API:
  - aisfleet_nats_published_total{result}
  - aisfleet_api_requests_total{method,endpoint,status_code}
  - aisfleet_api_request_duration_seconds{method,endpoint}

# Example PromQL

Persisted positions per minute:

	rate(aisfleet_positions_persisted_total[5m]) * 60

Share of frames dropped by the filter:

	sum(rate(aisfleet_filter_decisions_total{reason=~"too_close|stale"}[5m]))
	  / sum(rate(aisfleet_filter_decisions_total[5m]))

Stream silent for more than two minutes:

	time() - aisfleet_stream_last_frame_timestamp_seconds > 120
*/
package metrics
