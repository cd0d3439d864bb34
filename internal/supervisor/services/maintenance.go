// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/aisfleet/internal/logging"
	"github.com/tomtom215/aisfleet/internal/metrics"
)

// LatestRefresher rebuilds the latest-position view.
type LatestRefresher interface {
	RefreshLatest(ctx context.Context) (int64, error)
}

// PositionPruner deletes positions older than a cutoff.
type PositionPruner interface {
	DeletePositionsBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

// RefreshLatestJob returns a job that rebuilds vessel_latest.
func RefreshLatestJob(store LatestRefresher) Job {
	return func(ctx context.Context) error {
		n, err := store.RefreshLatest(ctx)
		if err != nil {
			return err
		}
		logging.Debug().Int64("vessels", n).Msg("Latest positions refreshed")
		return nil
	}
}

// RetentionJob returns a job that deletes positions with a fix time older
// than days, batchSize rows per statement. now is injectable for tests.
func RetentionJob(store PositionPruner, days, batchSize int, now func() time.Time) Job {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context) error {
		if days <= 0 {
			return fmt.Errorf("retention days must be positive, got %d", days)
		}
		cutoff := now().UTC().AddDate(0, 0, -days)

		deleted, err := store.DeletePositionsBefore(ctx, cutoff, batchSize)
		metrics.RecordRetentionDeleted(deleted)
		if err != nil {
			return fmt.Errorf("retention before %s: %w", cutoff.Format(time.RFC3339), err)
		}
		if deleted > 0 {
			logging.Info().
				Int64("deleted", deleted).
				Time("cutoff", cutoff).
				Msg("Old positions deleted")
		}
		return nil
	}
}
