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

const insertPositionSQL = `
	INSERT INTO vessel_positions (
		mmsi, ts, lat, lon, sog_knots, cog_deg, heading_deg, nav_status, destination, source, received_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertPosition appends p to the position history. The owning vessel row
// is created in the same transaction when missing, and its name is filled
// from p.Name when still unknown.
func (db *DB) InsertPosition(ctx context.Context, p *models.PositionReport) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	source := p.Source
	if source == "" {
		source = models.SourceTerrestrial
	}
	receivedAt := p.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	mu := db.acquireVesselLock(p.MMSI)
	defer mu.Unlock()

	err := withConflictRetry(ctx, func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer rollbackQuietly(tx)

		if err := ensureVessel(ctx, tx, p.MMSI, p.Name, receivedAt); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, insertPositionSQL,
			p.MMSI,
			timestampValue(p.Timestamp),
			p.Latitude,
			p.Longitude,
			nullFloat(p.SOGKnots),
			nullFloat(p.COGDeg),
			nullFloat(p.HeadingDeg),
			nullInt(p.NavStatus),
			nullString(p.Destination),
			source,
			timestampValue(receivedAt),
		); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("failed to insert position for %d: %w", p.MMSI, err)
	}
	return nil
}

// CountPositions returns the number of stored positions. A positive mmsi
// restricts the count to that vessel.
func (db *DB) CountPositions(ctx context.Context, mmsi int64) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		n   int64
		err error
	)
	if mmsi > 0 {
		err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM vessel_positions WHERE mmsi = ?", mmsi).Scan(&n)
	} else {
		err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM vessel_positions").Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count positions: %w", err)
	}
	return n, nil
}

// PositionsFor returns up to limit positions of one vessel, oldest first.
func (db *DB) PositionsFor(ctx context.Context, mmsi int64, limit int) ([]models.PositionReport, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 1000
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT mmsi, ts, lat, lon, sog_knots, cog_deg, heading_deg, nav_status, destination, source, received_at
		FROM vessel_positions
		WHERE mmsi = ?
		ORDER BY ts, id
		LIMIT ?`, mmsi, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions for %d: %w", mmsi, err)
	}
	defer closeWithLog(rows, "rows")

	var out []models.PositionReport
	for rows.Next() {
		var (
			p             models.PositionReport
			sog, cog, hdg sql.NullFloat64
			nav           sql.NullInt32
			dest          sql.NullString
		)
		if err := rows.Scan(&p.MMSI, &p.Timestamp, &p.Latitude, &p.Longitude,
			&sog, &cog, &hdg, &nav, &dest, &p.Source, &p.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.SOGKnots = floatPtr(sog)
		p.COGDeg = floatPtr(cog)
		p.HeadingDeg = floatPtr(hdg)
		p.NavStatus = intPtr(nav)
		p.Destination = stringPtr(dest)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}
	return out, nil
}

// DeletePositionsBefore removes positions with a fix time older than
// cutoff, batchSize rows per statement, and returns the total removed.
func (db *DB) DeletePositionsBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	var total int64
	for {
		n, err := db.deletePositionBatch(ctx, cutoff, batchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(batchSize) {
			break
		}
	}

	if total > 0 {
		logging.Info().
			Int64("deleted", total).
			Time("cutoff", cutoff).
			Msg("Pruned old vessel positions")
	}
	return total, nil
}

func (db *DB) deletePositionBatch(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	err := withConflictRetry(ctx, func() error {
		res, err := db.conn.ExecContext(ctx, `
			DELETE FROM vessel_positions
			WHERE id IN (SELECT id FROM vessel_positions WHERE ts < ? LIMIT ?)`,
			timestampValue(cutoff), batchSize)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete positions before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return n, nil
}
