// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aisfleet/internal/models"
)

// Kind is the classified type of one feed frame.
type Kind string

const (
	KindPosition Kind = "position"
	KindStatic   Kind = "static"
	KindIgnored  Kind = "ignored"
	KindInvalid  Kind = "invalid"
)

var (
	// ErrIgnored marks a well-formed frame of a kind the pipeline does not store.
	ErrIgnored = errors.New("ignored message type")

	// ErrInvalidFrame marks a frame that could not be parsed or lacks
	// required fields.
	ErrInvalidFrame = errors.New("invalid frame")
)

// Raw AIS "not available" sentinels.
const (
	headingNotAvailable   = 511
	sogNotAvailable       = 102.3
	cogNotAvailable       = 360
	navStatusNotAvailable = 15
)

// timeUTCLayout is the feed's time_utc format, e.g.
// "2024-03-01 10:15:02.123456789 +0000 UTC".
const timeUTCLayout = "2006-01-02 15:04:05.999999999 -0700 MST"

// Record is one classified frame. Exactly one of Position and Vessel is
// set for KindPosition and KindStatic.
type Record struct {
	Kind     Kind
	MMSI     int64
	Position *models.PositionReport
	Vessel   *models.VesselUpdate
}

// Classify parses one feed frame and extracts the normalized record.
// Frames of unknown kinds return ErrIgnored; unparsable frames or frames
// missing the MMSI, coordinates or payload return ErrInvalidFrame.
func Classify(data []byte, receivedAt time.Time) (Record, error) {
	var msg models.StreamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Record{Kind: KindInvalid}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	switch msg.MessageType {
	case models.MessageTypePositionReport, models.MessageTypeShipStaticData:
	default:
		return Record{Kind: KindIgnored}, fmt.Errorf("%w: %q", ErrIgnored, msg.MessageType)
	}

	if msg.MetaData == nil || msg.MetaData.MMSI <= 0 {
		return Record{Kind: KindInvalid}, fmt.Errorf("%w: missing MMSI", ErrInvalidFrame)
	}
	meta := msg.MetaData

	if msg.MessageType == models.MessageTypePositionReport {
		pos, err := classifyPosition(meta, msg.Message.PositionReport, receivedAt)
		if err != nil {
			return Record{Kind: KindInvalid, MMSI: meta.MMSI}, err
		}
		return Record{Kind: KindPosition, MMSI: meta.MMSI, Position: pos}, nil
	}

	update, err := classifyStatic(meta, msg.Message.ShipStaticData, receivedAt)
	if err != nil {
		return Record{Kind: KindInvalid, MMSI: meta.MMSI}, err
	}
	return Record{Kind: KindStatic, MMSI: meta.MMSI, Vessel: update}, nil
}

func classifyPosition(meta *models.StreamMeta, pr *models.AISPositionReport, receivedAt time.Time) (*models.PositionReport, error) {
	if pr == nil {
		return nil, fmt.Errorf("%w: PositionReport payload missing", ErrInvalidFrame)
	}

	// Metadata coordinates are authoritative; the payload copy is a fallback.
	lat, lon := meta.Latitude, meta.Longitude
	if lat == nil || lon == nil {
		lat, lon = pr.Latitude, pr.Longitude
	}
	if lat == nil || lon == nil {
		return nil, fmt.Errorf("%w: coordinates missing", ErrInvalidFrame)
	}

	ts, err := parseTimeUTC(meta.TimeUTC, receivedAt)
	if err != nil {
		return nil, err
	}

	return &models.PositionReport{
		MMSI:       meta.MMSI,
		Timestamp:  ts,
		Latitude:   *lat,
		Longitude:  *lon,
		SOGKnots:   normalizeSOG(pr.Sog),
		COGDeg:     normalizeCOG(pr.Cog),
		HeadingDeg: normalizeHeading(pr.TrueHeading),
		NavStatus:  normalizeNavStatus(pr.NavigationalStatus),
		Name:       cleanString(meta.ShipName),
		ReceivedAt: receivedAt,
	}, nil
}

func classifyStatic(meta *models.StreamMeta, sd *models.AISShipStaticData, receivedAt time.Time) (*models.VesselUpdate, error) {
	if sd == nil {
		return nil, fmt.Errorf("%w: ShipStaticData payload missing", ErrInvalidFrame)
	}

	u := &models.VesselUpdate{
		MMSI:        meta.MMSI,
		Name:        cleanString(sd.Name),
		CallSign:    cleanString(sd.CallSign),
		Destination: cleanString(sd.Destination),
		ReceivedAt:  receivedAt,
	}
	if u.Name == nil {
		u.Name = cleanString(meta.ShipName)
	}
	if sd.ImoNumber > 0 {
		imo := strconv.FormatInt(sd.ImoNumber, 10)
		u.IMO = &imo
	}
	if sd.Type > 0 {
		t := strconv.Itoa(sd.Type)
		u.Type = &t
	}
	if dim := sd.Dimension; dim != nil {
		u.LengthM = positiveSum(dim.A, dim.B)
		u.BeamM = positiveSum(dim.C, dim.D)
	}
	return u, nil
}

// parseTimeUTC parses the feed timestamp. A missing value falls back to
// the receipt time; an unparsable one invalidates the frame.
func parseTimeUTC(s string, receivedAt time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return receivedAt.UTC(), nil
	}
	if t, err := time.Parse(timeUTCLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: unparsable time_utc %q", ErrInvalidFrame, s)
}

// cleanString trims feed padding (spaces and the AIS '@' filler) and maps
// an empty result to nil.
func cleanString(s string) *string {
	s = strings.TrimSpace(strings.TrimRight(s, "@ "))
	if s == "" {
		return nil
	}
	return &s
}

func normalizeSOG(v *float64) *float64 {
	if v == nil || *v < 0 || *v >= sogNotAvailable {
		return nil
	}
	return v
}

func normalizeCOG(v *float64) *float64 {
	if v == nil || *v < 0 || *v >= cogNotAvailable {
		return nil
	}
	return v
}

func normalizeHeading(v *float64) *float64 {
	if v == nil || *v == headingNotAvailable || *v < 0 || *v >= 360 {
		return nil
	}
	return v
}

func normalizeNavStatus(v *int) *int {
	if v == nil || *v < 0 || *v >= navStatusNotAvailable {
		return nil
	}
	return v
}

func positiveSum(a, b float64) *float64 {
	sum := a + b
	if sum <= 0 {
		return nil
	}
	return &sum
}
