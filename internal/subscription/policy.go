// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package subscription

import (
	"errors"
	"fmt"
)

// ErrEmptyAllowlist is returned for a bbox subscription that would store
// nothing: no allowlist and non-listed vessels not allowed.
var ErrEmptyAllowlist = errors.New("bbox subscription with empty FLEET_MMSIS stores nothing: set FLEET_MMSIS or ALLOW_NON_LISTED=true")

// Policy decides which vessels reach the store. A bounding-box
// subscription widens what the feed sends, not what gets stored.
type Policy struct {
	mode           Mode
	allowed        map[int64]struct{}
	allowNonListed bool
}

// NewPolicy builds the acceptance policy for a resolved mode.
func NewPolicy(mode Mode, mmsis []int64, allowNonListed bool) (*Policy, error) {
	switch mode {
	case ModeBBox, ModeIDList:
	default:
		return nil, fmt.Errorf("no acceptance policy for subscription mode %q", mode)
	}
	if mode == ModeBBox && len(mmsis) == 0 && !allowNonListed {
		return nil, ErrEmptyAllowlist
	}

	allowed := make(map[int64]struct{}, len(mmsis))
	for _, id := range mmsis {
		allowed[id] = struct{}{}
	}
	return &Policy{mode: mode, allowed: allowed, allowNonListed: allowNonListed}, nil
}

// Accepts reports whether records for mmsi may be persisted. In id-list
// mode the feed has already restricted the vessels.
func (p *Policy) Accepts(mmsi int64) bool {
	if p.mode == ModeIDList || p.allowNonListed {
		return true
	}
	_, ok := p.allowed[mmsi]
	return ok
}

// Mode returns the mode the policy was built for.
func (p *Policy) Mode() Mode { return p.mode }

// AllowlistSize returns the number of listed vessels.
func (p *Policy) AllowlistSize() int { return len(p.allowed) }
