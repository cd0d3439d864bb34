// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

// Package validation checks normalized feed records with
// go-playground/validator v10 before they reach the position filter or
// the store.
//
// Rules live as struct tags on the models (latitude, longitude, gt=0 for
// MMSI, bounded course and heading). A struct-level rule registered for
// models.PositionReport rejects the (0,0) fix, reported with tag
// TagNullIsland.
//
//	if verr := validation.ValidatePosition(&report); verr != nil {
//	    metrics.RecordDropped(verr.Reason())
//	    return
//	}
package validation
