// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package supervisor runs the ingestor's long-lived services under a suture
v4 tree.

	aisfleet
	├── ingest-layer
	│   └── stream (feed connection manager)
	├── maintenance-layer
	│   ├── stats (throughput reporter)
	│   ├── refresh-latest (if MAINTENANCE_REFRESH_ENABLED)
	│   └── retention (if RETENTION_ENABLED)
	└── api-layer
	    └── ops-http (if SERVER_ENABLED)

Crashed services restart with suture's failure backoff; each layer counts
failures on its own. Supervisor events are logged through the zerolog
backed slog handler (sutureslog).

Usage:

	tree := supervisor.NewTree(logging.NewComponentSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddIngestService(services.NewRunnerService("stream", manager))
	errCh := tree.ServeBackground(ctx)

The write pipeline is not a supervised service: it is drained explicitly
after the tree stops so queued positions reach the store before the
database closes.
*/
package supervisor
