// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package database is the DuckDB-backed vessel store.

Tables:

  - vessels: one row per MMSI with static attributes, merged non-destructively
  - vessel_positions: append-only position history, tagged with a source label
  - vessel_latest: newest position per vessel joined with its static data,
    rebuilt by RefreshLatest for dashboards

Writes to a single vessel are serialized by a per-MMSI mutex, and DuckDB
transaction conflicts are retried with a short exponential backoff.

Timestamps are stored as UTC in TIMESTAMP columns. Callers pass time.Time
values in any location; they are converted before binding.

Example:

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	if err := db.InsertPosition(ctx, report); err != nil {
	    return err
	}
*/
package database
