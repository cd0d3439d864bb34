// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package api serves the ingestor's ops HTTP endpoints on a Chi router.

/healthz answers 503 while the feed socket is down or silent for longer
than the idle threshold, so an orchestrator can restart a wedged
process. /readyz pings DuckDB. /metrics exposes the Prometheus registry.

The /api/v1 read endpoints are rate limited per client IP (httprate) and
return the standard envelope:

	{"success":true,"data":{...},"meta":{"request_id":"...","timestamp":"..."}}
*/
package api
