// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package subscription

import (
	"fmt"
	"strconv"

	"github.com/tomtom215/aisfleet/internal/models"
)

// DefaultMessageTypes are the report kinds the pipeline understands.
var DefaultMessageTypes = []string{
	models.MessageTypePositionReport,
	models.MessageTypeShipStaticData,
}

// BuildRequest builds the subscription message for the resolved mode of
// f. Boxes and IDs are never sent together: the feed would intersect
// them.
//
// An explicit mode whose filter data is empty still resolves to that
// mode; the request then carries an empty filter of that kind and the
// feed decides what to send.
func BuildRequest(apiKey string, f Filter, messageTypes []string) (*models.SubscriptionRequest, Mode, error) {
	mode := ResolveMode(f)
	if apiKey == "" {
		return nil, mode, fmt.Errorf("subscription requires an API key")
	}
	if len(messageTypes) == 0 {
		messageTypes = DefaultMessageTypes
	}

	req := &models.SubscriptionRequest{
		APIKey:             apiKey,
		FilterMessageTypes: append([]string(nil), messageTypes...),
	}

	switch mode {
	case ModeBBox:
		req.BoundingBoxes = append([]models.BoundingBox{}, f.BoundingBoxes...)
	case ModeIDList:
		req.FiltersShipMMSI = make([]string, 0, len(f.MMSIs))
		for _, id := range f.MMSIs {
			req.FiltersShipMMSI = append(req.FiltersShipMMSI, strconv.FormatInt(id, 10))
		}
	default:
		return nil, mode, ErrNoFilter
	}
	return req, mode, nil
}
