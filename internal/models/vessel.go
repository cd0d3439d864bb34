// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package models

import "time"

// Vessel is a tracked vessel as stored in the vessels table. Every
// attribute besides MMSI is optional and filled in as static reports
// arrive.
type Vessel struct {
	MMSI        int64     `json:"mmsi"`
	Name        *string   `json:"name,omitempty"`
	IMO         *string   `json:"imo,omitempty"`
	CallSign    *string   `json:"callsign,omitempty"`
	Type        *string   `json:"type,omitempty"`
	Destination *string   `json:"destination,omitempty"`
	LengthM     *float64  `json:"length_m,omitempty"`
	BeamM       *float64  `json:"beam_m,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VesselUpdate carries the static attributes extracted from one report.
// A nil field means the report did not carry it; the store must keep the
// previously known value.
type VesselUpdate struct {
	MMSI        int64    `json:"mmsi" validate:"required,gt=0"`
	Name        *string  `json:"name,omitempty"`
	IMO         *string  `json:"imo,omitempty"`
	CallSign    *string  `json:"callsign,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Destination *string  `json:"destination,omitempty"`
	LengthM     *float64 `json:"length_m,omitempty" validate:"omitempty,gt=0"`
	BeamM       *float64 `json:"beam_m,omitempty" validate:"omitempty,gt=0"`

	// ReceivedAt is when the frame was read off the socket.
	ReceivedAt time.Time `json:"received_at"`
}

// HasAttributes reports whether the update carries anything besides the MMSI.
func (u *VesselUpdate) HasAttributes() bool {
	return u.Name != nil || u.IMO != nil || u.CallSign != nil || u.Type != nil ||
		u.Destination != nil || u.LengthM != nil || u.BeamM != nil
}

// LatestPosition is one row of the vessel_latest table: the newest stored
// position of a vessel joined with its static data.
type LatestPosition struct {
	MMSI       int64     `json:"mmsi"`
	Name       *string   `json:"name,omitempty"`
	Type       *string   `json:"type,omitempty"`
	Timestamp  time.Time `json:"ts"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lon"`
	SOGKnots   *float64  `json:"sog_knots,omitempty"`
	COGDeg     *float64  `json:"cog_deg,omitempty"`
	HeadingDeg *float64  `json:"heading_deg,omitempty"`
	NavStatus  *int      `json:"nav_status,omitempty"`
	Source     string    `json:"source"`
}
