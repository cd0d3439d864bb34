// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package models

import (
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestBoundingBoxValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		box     BoundingBox
		wantErr string
	}{
		{"valid", BoundingBox{{4.0, 51.8}, {4.6, 52.1}}, ""},
		{"antimeridian corners", BoundingBox{{-180, -90}, {180, 90}}, ""},
		{"longitude out of range", BoundingBox{{181, 10}, {4, 11}}, "longitude"},
		{"latitude out of range", BoundingBox{{4, 10}, {5, -91}}, "latitude"},
		{"nan", BoundingBox{{math.NaN(), 10}, {5, 11}}, "longitude"},
		{"degenerate", BoundingBox{{4, 10}, {4, 10}}, "identical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.box.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSubscriptionRequestOmitsUnusedFilter(t *testing.T) {
	t.Parallel()

	req := SubscriptionRequest{
		APIKey:             "key",
		FiltersShipMMSI:    []string{"244650000"},
		FilterMessageTypes: []string{MessageTypePositionReport},
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "BoundingBoxes") {
		t.Errorf("expected BoundingBoxes to be omitted, got %s", data)
	}
	if !strings.Contains(string(data), `"FiltersShipMMSI":["244650000"]`) {
		t.Errorf("expected MMSI filter in %s", data)
	}
}

func TestBoundingBoxJSONShape(t *testing.T) {
	t.Parallel()

	var box BoundingBox
	if err := json.Unmarshal([]byte(`[[4.0,51.8],[4.6,52.1]]`), &box); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if box[0][0] != 4.0 || box[1][1] != 52.1 {
		t.Errorf("unexpected box %v", box)
	}
}

func TestVesselUpdateHasAttributes(t *testing.T) {
	t.Parallel()

	u := VesselUpdate{MMSI: 1}
	if u.HasAttributes() {
		t.Error("empty update should report no attributes")
	}
	imo := "9074729"
	u.IMO = &imo
	if !u.HasAttributes() {
		t.Error("update with IMO should report attributes")
	}
}
