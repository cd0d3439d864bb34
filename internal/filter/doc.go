// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package filter implements the per-vessel position throttle.

A report is accepted when:

	no previous fix                          -> accept (first sighting)
	ts <= previous ts                        -> reject (stale)
	distance > 100 m  OR  elapsed >= 180 s   -> accept
	otherwise                                -> reject

Small movements are suppressed until enough time passes, which bounds
write volume while still capturing real motion and long idling.

Usage with a store:

	if d := f.Evaluate(p.MMSI, p.Latitude, p.Longitude, p.Timestamp); d.Emit {
	    if err := store.InsertPosition(ctx, p); err == nil {
	        f.Commit(p.MMSI, p.Latitude, p.Longitude, p.Timestamp)
	    }
	}

Evaluate and Commit for the same vessel must not interleave with another
report of that vessel; the ingest pipeline serializes them per MMSI.
*/
package filter
