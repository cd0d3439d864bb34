// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the vessel tables. All timestamps are stored as
// naive UTC TIMESTAMP values so that no ICU extension is required.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, query := range indexCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS vessels (
			mmsi BIGINT PRIMARY KEY,
			name VARCHAR,
			imo VARCHAR,
			callsign VARCHAR,
			type VARCHAR,
			destination VARCHAR,
			length_m DOUBLE,
			beam_m DOUBLE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE SEQUENCE IF NOT EXISTS vessel_positions_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS vessel_positions (
			id BIGINT PRIMARY KEY DEFAULT nextval('vessel_positions_id_seq'),
			mmsi BIGINT NOT NULL,
			ts TIMESTAMP NOT NULL,
			lat DOUBLE NOT NULL,
			lon DOUBLE NOT NULL,
			sog_knots DOUBLE,
			cog_deg DOUBLE,
			heading_deg DOUBLE,
			nav_status INTEGER,
			destination VARCHAR,
			source VARCHAR NOT NULL DEFAULT 'terrestrial',
			received_at TIMESTAMP NOT NULL
		)`,
		// Rebuilt wholesale by RefreshLatest; one row per vessel.
		`CREATE TABLE IF NOT EXISTS vessel_latest (
			mmsi BIGINT NOT NULL,
			name VARCHAR,
			type VARCHAR,
			ts TIMESTAMP NOT NULL,
			lat DOUBLE NOT NULL,
			lon DOUBLE NOT NULL,
			sog_knots DOUBLE,
			cog_deg DOUBLE,
			heading_deg DOUBLE,
			nav_status INTEGER,
			source VARCHAR NOT NULL
		)`,
	}
}

func indexCreationQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_vessel_positions_mmsi_ts ON vessel_positions(mmsi, ts)`,
		`CREATE INDEX IF NOT EXISTS idx_vessel_positions_ts ON vessel_positions(ts)`,
	}
}
