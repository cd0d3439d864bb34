// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package subscription

import (
	"errors"
	"testing"

	"github.com/tomtom215/aisfleet/internal/models"
)

var testBox = models.BoundingBox{{4.0, 51.8}, {4.6, 52.1}}

func TestResolveMode(t *testing.T) {
	t.Parallel()

	boxes := []models.BoundingBox{testBox}
	ids := []int64{244650000}

	tests := []struct {
		name   string
		filter Filter
		want   Mode
	}{
		{"bbox only", Filter{Mode: ModeAuto, BoundingBoxes: boxes}, ModeBBox},
		{"ids only", Filter{Mode: ModeAuto, MMSIs: ids}, ModeIDList},
		{"both prefers bbox", Filter{Mode: ModeAuto, BoundingBoxes: boxes, MMSIs: ids}, ModeBBox},
		{"neither", Filter{Mode: ModeAuto}, ModeError},
		{"empty declared mode behaves as auto", Filter{MMSIs: ids}, ModeIDList},
		{"override id-list wins over boxes", Filter{Mode: ModeIDList, BoundingBoxes: boxes, MMSIs: ids}, ModeIDList},
		{"override bbox wins over ids", Filter{Mode: ModeBBox, MMSIs: ids}, ModeBBox},
		{"override bbox with no data", Filter{Mode: ModeBBox}, ModeBBox},
		{"override id-list with no data", Filter{Mode: ModeIDList}, ModeIDList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveMode(tt.filter); got != tt.want {
				t.Errorf("ResolveMode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"BBOX", ModeBBox, false},
		{"id-list", ModeIDList, false},
		{"idlist", ModeIDList, false},
		{"error", "", true},
		{"polygon", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildRequest_BBoxOmitsIDs(t *testing.T) {
	t.Parallel()

	req, mode, err := BuildRequest("key", Filter{
		Mode:          ModeAuto,
		BoundingBoxes: []models.BoundingBox{testBox},
		MMSIs:         []int64{244650000},
	}, nil)
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	if mode != ModeBBox {
		t.Errorf("mode = %q, want bbox", mode)
	}
	if len(req.BoundingBoxes) != 1 {
		t.Errorf("expected 1 bounding box, got %d", len(req.BoundingBoxes))
	}
	if req.FiltersShipMMSI != nil {
		t.Errorf("expected no MMSI filter, got %v", req.FiltersShipMMSI)
	}
	if len(req.FilterMessageTypes) != 2 {
		t.Errorf("expected default message types, got %v", req.FilterMessageTypes)
	}
	if req.APIKey != "key" {
		t.Errorf("APIKey = %q", req.APIKey)
	}
}

func TestBuildRequest_IDListOmitsBoxes(t *testing.T) {
	t.Parallel()

	req, mode, err := BuildRequest("key", Filter{
		Mode:          ModeIDList,
		BoundingBoxes: []models.BoundingBox{testBox},
		MMSIs:         []int64{244650000, 211234560},
	}, []string{models.MessageTypePositionReport})
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	if mode != ModeIDList {
		t.Errorf("mode = %q, want id-list", mode)
	}
	if req.BoundingBoxes != nil {
		t.Errorf("expected no bounding boxes, got %v", req.BoundingBoxes)
	}
	want := []string{"244650000", "211234560"}
	if len(req.FiltersShipMMSI) != len(want) {
		t.Fatalf("FiltersShipMMSI = %v, want %v", req.FiltersShipMMSI, want)
	}
	for i := range want {
		if req.FiltersShipMMSI[i] != want[i] {
			t.Errorf("FiltersShipMMSI[%d] = %q, want %q", i, req.FiltersShipMMSI[i], want[i])
		}
	}
	if len(req.FilterMessageTypes) != 1 {
		t.Errorf("expected explicit message types, got %v", req.FilterMessageTypes)
	}
}

func TestBuildRequest_Errors(t *testing.T) {
	t.Parallel()

	if _, mode, err := BuildRequest("key", Filter{Mode: ModeAuto}, nil); !errors.Is(err, ErrNoFilter) || mode != ModeError {
		t.Errorf("expected ErrNoFilter with mode error, got mode=%q err=%v", mode, err)
	}
	if _, _, err := BuildRequest("", Filter{MMSIs: []int64{1}}, nil); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestPolicy(t *testing.T) {
	t.Parallel()

	fleet := []int64{244650000}

	tests := []struct {
		name           string
		mode           Mode
		ids            []int64
		allowNonListed bool
		mmsi           int64
		want           bool
	}{
		{"bbox listed", ModeBBox, fleet, false, 244650000, true},
		{"bbox non-listed rejected", ModeBBox, fleet, false, 211000000, false},
		{"bbox non-listed allowed by flag", ModeBBox, fleet, true, 211000000, true},
		{"bbox empty list with flag", ModeBBox, nil, true, 211000000, true},
		{"id-list accepts what feed sends", ModeIDList, fleet, false, 211000000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := NewPolicy(tt.mode, tt.ids, tt.allowNonListed)
			if err != nil {
				t.Fatalf("NewPolicy() error = %v", err)
			}
			if got := p.Accepts(tt.mmsi); got != tt.want {
				t.Errorf("Accepts(%d) = %v, want %v", tt.mmsi, got, tt.want)
			}
		})
	}
}

func TestNewPolicy_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewPolicy(ModeBBox, nil, false); !errors.Is(err, ErrEmptyAllowlist) {
		t.Errorf("expected ErrEmptyAllowlist, got %v", err)
	}
	if _, err := NewPolicy(ModeError, []int64{1}, false); err == nil {
		t.Error("expected error for mode error")
	}
}
