// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package subscription

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/aisfleet/internal/models"
)

// Mode is the subscription mode, declared or resolved.
type Mode string

const (
	// ModeAuto picks bbox or id-list from whichever filter is configured.
	ModeAuto Mode = "auto"

	// ModeBBox subscribes by geographic bounding boxes.
	ModeBBox Mode = "bbox"

	// ModeIDList subscribes by vessel MMSI allowlist.
	ModeIDList Mode = "id-list"

	// ModeError means no usable filter is configured. Never declared, only
	// resolved.
	ModeError Mode = "error"
)

// ErrNoFilter is returned when the resolved mode is ModeError.
var ErrNoFilter = errors.New("no usable subscription filter: set BBOX_JSON or FLEET_MMSIS")

// ParseMode parses a declared mode. An empty string means auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "bbox", "boundingbox", "bounding-box":
		return ModeBBox, nil
	case "id-list", "idlist", "ids", "mmsi":
		return ModeIDList, nil
	default:
		return "", fmt.Errorf("unknown subscription mode %q (want auto, bbox or id-list)", s)
	}
}

// Filter is the configured subscription snapshot.
type Filter struct {
	Mode          Mode
	BoundingBoxes []models.BoundingBox
	MMSIs         []int64
}

// ResolveMode returns the effective mode for f:
//
//   - an explicit bbox or id-list declaration wins regardless of data
//   - otherwise bounding boxes are preferred
//   - otherwise the allowlist
//   - otherwise ModeError
func ResolveMode(f Filter) Mode {
	switch f.Mode {
	case ModeBBox, ModeIDList:
		return f.Mode
	}
	if len(f.BoundingBoxes) > 0 {
		return ModeBBox
	}
	if len(f.MMSIs) > 0 {
		return ModeIDList
	}
	return ModeError
}
