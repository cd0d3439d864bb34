// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package ingest turns raw feed frames into stored vessel records.

Flow of one frame:

	stream reader -> Classify -> Policy.Accepts -> validation -> lane(MMSI)
	lane(MMSI)    -> filter.Evaluate -> Store write -> filter.Commit -> publish

Classify decodes the frame and normalizes AIS sentinels (heading 511,
speed 102.3, course 360, nav status 15) to absent values. Position and
static-data frames are routed; every other message type is ignored.

Each vessel gets its own FIFO lane so records of one MMSI are filtered,
written and committed strictly in arrival order while different vessels
are written concurrently. A lane goroutine exists only while it has
work. When a lane is full new records for that vessel are dropped and
counted.

Static data is merged into the vessel row: absent fields never clear a
stored value.

BreakerStore wraps the database with a circuit breaker so an unavailable
store fails writes immediately instead of blocking every lane.
*/
package ingest
