// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package events publishes stored positions to NATS.

Publishing is opt-in (NATS_ENABLED) and runs after the write succeeded,
so subscribers only ever see positions that are in the store. Messages
go out over core NATS on "<prefix>.position" with a JSON PositionEvent
body and Watermill metadata headers (mmsi, source).

Subscribe example:

	nats sub 'ais.position'
*/
package events
