// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package services adapts ingestor components to suture.Service.

RunnerService wraps anything with a Run(ctx) error loop: the feed
connection manager and the stats reporter.

HTTPServerService translates http.Server's blocking ListenAndServe into
a context-aware Serve with graceful shutdown.

PeriodicService runs a maintenance Job on a ticker, logging and counting
failures without stopping. RefreshLatestJob and RetentionJob are the two
jobs the ingestor schedules.
*/
package services
