// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package validation

import (
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/aisfleet/internal/models"
)

func ptr[T any](v T) *T { return &v }

func validPosition() models.PositionReport {
	return models.PositionReport{
		MMSI:      244650000,
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Latitude:  51.95,
		Longitude: 4.05,
		SOGKnots:  ptr(11.2),
		COGDeg:    ptr(84.1),
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	seen := make(chan interface{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- GetValidator()
		}()
	}
	wg.Wait()
	close(seen)

	first := GetValidator()
	for v := range seen {
		if v != first {
			t.Fatal("GetValidator returned different instances")
		}
	}
}

func TestValidatePosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(p *models.PositionReport)
		wantTag string
	}{
		{"valid", func(p *models.PositionReport) {}, ""},
		{"equator is fine", func(p *models.PositionReport) { p.Latitude = 0 }, ""},
		{"prime meridian is fine", func(p *models.PositionReport) { p.Longitude = 0 }, ""},
		{"null island", func(p *models.PositionReport) { p.Latitude, p.Longitude = 0, 0 }, TagNullIsland},
		{"latitude 91 (not available)", func(p *models.PositionReport) { p.Latitude = 91 }, "latitude"},
		{"longitude 181 (not available)", func(p *models.PositionReport) { p.Longitude = 181 }, "longitude"},
		{"nan latitude", func(p *models.PositionReport) { p.Latitude = math.NaN() }, "latitude"},
		{"missing mmsi", func(p *models.PositionReport) { p.MMSI = 0 }, "required"},
		{"missing timestamp", func(p *models.PositionReport) { p.Timestamp = time.Time{} }, "required"},
		{"course 360", func(p *models.PositionReport) { p.COGDeg = ptr(360.0) }, "lt"},
		{"negative speed", func(p *models.PositionReport) { p.SOGKnots = ptr(-1.0) }, "gte"},
		{"nav status 16", func(p *models.PositionReport) { p.NavStatus = ptr(16) }, "lte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validPosition()
			tt.mutate(&p)

			verr := ValidatePosition(&p)
			if tt.wantTag == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("expected %s failure", tt.wantTag)
			}
			if verr.Reason() != tt.wantTag {
				t.Errorf("Reason() = %q, want %q (%v)", verr.Reason(), tt.wantTag, verr)
			}
		})
	}
}

func TestValidatePosition_FieldNamesUseJSON(t *testing.T) {
	t.Parallel()

	p := validPosition()
	p.Latitude = 95
	verr := ValidatePosition(&p)
	if verr == nil {
		t.Fatal("expected error")
	}
	if got := verr.Errors()[0].Field(); got != "lat" {
		t.Errorf("Field() = %q, want lat", got)
	}
	if !strings.Contains(verr.Error(), "valid latitude") {
		t.Errorf("Error() = %q", verr.Error())
	}
}

func TestValidateVesselUpdate(t *testing.T) {
	t.Parallel()

	u := models.VesselUpdate{MMSI: 244650000, LengthM: ptr(120.0)}
	if verr := ValidateVesselUpdate(&u); verr != nil {
		t.Errorf("unexpected error: %v", verr)
	}

	u.LengthM = ptr(0.0)
	if verr := ValidateVesselUpdate(&u); verr == nil || verr.Reason() != "gt" {
		t.Errorf("expected gt failure for zero length, got %v", verr)
	}

	u = models.VesselUpdate{}
	if verr := ValidateVesselUpdate(&u); verr == nil || verr.Reason() != "required" {
		t.Errorf("expected required failure, got %v", verr)
	}
}
