// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/aisfleet/internal/logging"
	"github.com/tomtom215/aisfleet/internal/models"
)

const refreshLatestSQL = `
	INSERT INTO vessel_latest
	SELECT p.mmsi, v.name, v.type, p.ts, p.lat, p.lon,
		p.sog_knots, p.cog_deg, p.heading_deg, p.nav_status, p.source
	FROM (
		SELECT *, row_number() OVER (PARTITION BY mmsi ORDER BY ts DESC, id DESC) AS rn
		FROM vessel_positions
	) p
	LEFT JOIN vessels v ON v.mmsi = p.mmsi
	WHERE p.rn = 1`

// RefreshLatest rebuilds vessel_latest from the position history in one
// transaction and returns the number of vessels in the new view.
func (db *DB) RefreshLatest(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.refreshMu.Lock()
	defer db.refreshMu.Unlock()

	start := time.Now()
	var rows int64
	err := withConflictRetry(ctx, func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer rollbackQuietly(tx)

		if _, err := tx.ExecContext(ctx, "DELETE FROM vessel_latest"); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, refreshLatestSQL)
		if err != nil {
			return err
		}
		if rows, err = res.RowsAffected(); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to refresh vessel_latest: %w", err)
	}

	logging.Debug().
		Int64("vessels", rows).
		Dur("duration", time.Since(start)).
		Msg("Refreshed latest vessel positions")
	return rows, nil
}

// LatestPositions returns up to limit rows of vessel_latest, newest fix first.
func (db *DB) LatestPositions(ctx context.Context, limit int) ([]models.LatestPosition, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 1000
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT mmsi, name, type, ts, lat, lon, sog_knots, cog_deg, heading_deg, nav_status, source
		FROM vessel_latest
		ORDER BY ts DESC, mmsi
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query vessel_latest: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []models.LatestPosition
	for rows.Next() {
		var (
			lp               models.LatestPosition
			name, vesselType sql.NullString
			sog, cog, hdg    sql.NullFloat64
			nav              sql.NullInt32
		)
		if err := rows.Scan(&lp.MMSI, &name, &vesselType, &lp.Timestamp, &lp.Latitude, &lp.Longitude,
			&sog, &cog, &hdg, &nav, &lp.Source); err != nil {
			return nil, fmt.Errorf("failed to scan latest position: %w", err)
		}
		lp.Name = stringPtr(name)
		lp.Type = stringPtr(vesselType)
		lp.SOGKnots = floatPtr(sog)
		lp.COGDeg = floatPtr(cog)
		lp.HeadingDeg = floatPtr(hdg)
		lp.NavStatus = intPtr(nav)
		out = append(out, lp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate latest positions: %w", err)
	}
	return out, nil
}
