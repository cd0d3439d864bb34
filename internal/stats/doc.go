// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

// Package stats reports write throughput. The pipeline calls RecordWrite
// after every stored position; Run logs the count once per interval and
// stays quiet when nothing was written.
package stats
