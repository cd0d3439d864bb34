// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package models

import "time"

// SourceTerrestrial labels positions received live from the terrestrial
// AIS stream, as opposed to back-filled data.
const SourceTerrestrial = "terrestrial"

// PositionReport is one vessel position extracted from a feed frame.
// Timestamp is the feed-supplied fix time, not the receipt time.
type PositionReport struct {
	MMSI        int64     `json:"mmsi" validate:"required,gt=0"`
	Timestamp   time.Time `json:"ts" validate:"required"`
	Latitude    float64   `json:"lat" validate:"latitude"`
	Longitude   float64   `json:"lon" validate:"longitude"`
	SOGKnots    *float64  `json:"sog_knots,omitempty" validate:"omitempty,gte=0"`
	COGDeg      *float64  `json:"cog_deg,omitempty" validate:"omitempty,gte=0,lt=360"`
	HeadingDeg  *float64  `json:"heading_deg,omitempty" validate:"omitempty,gte=0,lt=360"`
	NavStatus   *int      `json:"nav_status,omitempty" validate:"omitempty,gte=0,lte=15"`
	Destination *string   `json:"destination,omitempty"`

	// Name is the ship name carried in the frame metadata, if any. It is
	// used to fill an unknown vessel name, never to overwrite one.
	Name *string `json:"name,omitempty"`

	Source     string    `json:"source"`
	ReceivedAt time.Time `json:"received_at"`
}
