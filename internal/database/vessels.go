// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/aisfleet/internal/models"
)

// Every attribute is merged with COALESCE so a report that omits a field
// keeps the previously stored value.
const upsertVesselSQL = `
	INSERT INTO vessels (
		mmsi, name, imo, callsign, type, destination, length_m, beam_m, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (mmsi) DO UPDATE SET
		name = COALESCE(EXCLUDED.name, name),
		imo = COALESCE(EXCLUDED.imo, imo),
		callsign = COALESCE(EXCLUDED.callsign, callsign),
		type = COALESCE(EXCLUDED.type, type),
		destination = COALESCE(EXCLUDED.destination, destination),
		length_m = COALESCE(EXCLUDED.length_m, length_m),
		beam_m = COALESCE(EXCLUDED.beam_m, beam_m),
		updated_at = EXCLUDED.updated_at`

// ensureVesselSQL creates a bare vessel row, or fills the name of an
// existing one only while it is still unknown.
const ensureVesselSQL = `
	INSERT INTO vessels (mmsi, name, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (mmsi) DO UPDATE SET
		name = EXCLUDED.name,
		updated_at = EXCLUDED.updated_at
	WHERE name IS NULL AND EXCLUDED.name IS NOT NULL`

// acquireVesselLock acquires a per-vessel mutex lock to prevent concurrent UPSERTs
func (db *DB) acquireVesselLock(mmsi int64) *sync.Mutex {
	muInterface, _ := db.vesselLocks.LoadOrStore(mmsi, &sync.Mutex{})
	mu, ok := muInterface.(*sync.Mutex)
	if !ok {
		mu = &sync.Mutex{}
		db.vesselLocks.Store(mmsi, mu)
	}
	mu.Lock()
	return mu
}

// UpsertVessel creates the vessel or merges u into the stored row.
// Attributes that u does not carry are left untouched.
func (db *DB) UpsertVessel(ctx context.Context, u *models.VesselUpdate) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	mu := db.acquireVesselLock(u.MMSI)
	defer mu.Unlock()

	now := timestampValue(u.ReceivedAt)
	err := withConflictRetry(ctx, func() error {
		_, err := db.conn.ExecContext(ctx, upsertVesselSQL,
			u.MMSI,
			nullString(u.Name),
			nullString(u.IMO),
			nullString(u.CallSign),
			nullString(u.Type),
			nullString(u.Destination),
			nullFloat(u.LengthM),
			nullFloat(u.BeamM),
			now,
			now,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert vessel %d: %w", u.MMSI, err)
	}
	return nil
}

// EnsureVessel makes sure a vessel row exists for mmsi. A non-nil name
// fills the stored name only if none is known yet.
func (db *DB) EnsureVessel(ctx context.Context, mmsi int64, name *string, seenAt time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	mu := db.acquireVesselLock(mmsi)
	defer mu.Unlock()

	err := withConflictRetry(ctx, func() error {
		return ensureVessel(ctx, db.conn, mmsi, name, seenAt)
	})
	if err != nil {
		return fmt.Errorf("failed to ensure vessel %d: %w", mmsi, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func ensureVessel(ctx context.Context, ex execer, mmsi int64, name *string, seenAt time.Time) error {
	ts := timestampValue(seenAt)
	_, err := ex.ExecContext(ctx, ensureVesselSQL, mmsi, nullString(name), ts, ts)
	return err
}

// GetVessel returns the stored vessel or ErrNotFound.
func (db *DB) GetVessel(ctx context.Context, mmsi int64) (*models.Vessel, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		v                                     models.Vessel
		name, imo, callsign, vesselType, dest sql.NullString
		length, beam                          sql.NullFloat64
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT mmsi, name, imo, callsign, type, destination, length_m, beam_m, created_at, updated_at
		FROM vessels WHERE mmsi = ?`, mmsi).Scan(
		&v.MMSI, &name, &imo, &callsign, &vesselType, &dest, &length, &beam, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vessel %d: %w", mmsi, err)
	}

	v.Name = stringPtr(name)
	v.IMO = stringPtr(imo)
	v.CallSign = stringPtr(callsign)
	v.Type = stringPtr(vesselType)
	v.Destination = stringPtr(dest)
	v.LengthM = floatPtr(length)
	v.BeamM = floatPtr(beam)
	return &v, nil
}

// CountVessels returns the number of known vessels.
func (db *DB) CountVessels(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM vessels").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count vessels: %w", err)
	}
	return n, nil
}
