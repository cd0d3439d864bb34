// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package models

import (
	"fmt"
	"math"
)

// Feed message kinds requested from and sent by aisstream.io.
const (
	MessageTypePositionReport = "PositionReport"
	MessageTypeShipStaticData = "ShipStaticData"
)

// StreamMessage is one inbound aisstream.io frame.
//
//	{
//	  "MessageType": "PositionReport",
//	  "MetaData": {"MMSI": 244650000, "ShipName": "ALBATROS  ", "latitude": 51.9, "longitude": 4.1,
//	               "time_utc": "2024-03-01 10:15:02.123456789 +0000 UTC"},
//	  "Message": {"PositionReport": {"Sog": 11.2, "Cog": 84.1, "TrueHeading": 85, "NavigationalStatus": 0}}
//	}
type StreamMessage struct {
	MessageType string         `json:"MessageType"`
	MetaData    *StreamMeta    `json:"MetaData"`
	Message     StreamEnvelope `json:"Message"`
}

// StreamMeta is the metadata block common to every frame.
type StreamMeta struct {
	MMSI      int64    `json:"MMSI"`
	ShipName  string   `json:"ShipName"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	TimeUTC   string   `json:"time_utc"`
}

// StreamEnvelope holds the kind-specific payload. At most one field is set.
type StreamEnvelope struct {
	PositionReport *AISPositionReport `json:"PositionReport,omitempty"`
	ShipStaticData *AISShipStaticData `json:"ShipStaticData,omitempty"`
}

// AISPositionReport is the payload of AIS message types 1, 2 and 3.
// Raw "not available" sentinels are kept here and normalized by the
// classifier.
type AISPositionReport struct {
	Sog                *float64 `json:"Sog"`
	Cog                *float64 `json:"Cog"`
	TrueHeading        *float64 `json:"TrueHeading"`
	NavigationalStatus *int     `json:"NavigationalStatus"`
	Latitude           *float64 `json:"Latitude"`
	Longitude          *float64 `json:"Longitude"`
}

// AISShipStaticData is the payload of AIS message type 5.
type AISShipStaticData struct {
	Name        string        `json:"Name"`
	ImoNumber   int64         `json:"ImoNumber"`
	CallSign    string        `json:"CallSign"`
	Type        int           `json:"Type"`
	Destination string        `json:"Destination"`
	Dimension   *AISDimension `json:"Dimension"`
}

// AISDimension holds the antenna offsets in metres: A to bow, B to
// stern, C to port, D to starboard.
type AISDimension struct {
	A float64 `json:"A"`
	B float64 `json:"B"`
	C float64 `json:"C"`
	D float64 `json:"D"`
}

// SubscriptionRequest is the single outbound message sent after the
// socket opens. Only the filter relevant to the subscription mode is set.
type SubscriptionRequest struct {
	APIKey             string        `json:"APIKey"`
	BoundingBoxes      []BoundingBox `json:"BoundingBoxes,omitempty"`
	FiltersShipMMSI    []string      `json:"FiltersShipMMSI,omitempty"`
	FilterMessageTypes []string      `json:"FilterMessageTypes,omitempty"`
}

// BoundingBox is a pair of opposite corners, each [longitude, latitude].
type BoundingBox [2][2]float64

// Validate checks both corners are in coordinate range.
func (b BoundingBox) Validate() error {
	for i, corner := range b {
		lon, lat := corner[0], corner[1]
		if math.IsNaN(lon) || lon < -180 || lon > 180 {
			return fmt.Errorf("corner %d longitude %v out of range [-180,180]", i+1, lon)
		}
		if math.IsNaN(lat) || lat < -90 || lat > 90 {
			return fmt.Errorf("corner %d latitude %v out of range [-90,90]", i+1, lat)
		}
	}
	if b[0] == b[1] {
		return fmt.Errorf("corners are identical")
	}
	return nil
}
