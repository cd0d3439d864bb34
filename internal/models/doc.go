// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package models defines the data structures shared across the ingestor.

Feed wire types (aisstream.go):

  - StreamMessage: one inbound frame with MessageType discriminator
  - AISPositionReport, AISShipStaticData: the two recognized payloads
  - SubscriptionRequest, BoundingBox: the outbound subscription

Normalized records (position.go, vessel.go):

  - PositionReport: one validated-shape position fix, optional fields as pointers
  - VesselUpdate: static attributes from one report; nil means "not carried"
  - Vessel: the stored vessel row
  - LatestPosition: one row of the dashboard's vessel_latest table

Optional attributes are pointers throughout so that "absent" and "zero"
remain distinguishable all the way to the store.
*/
package models
