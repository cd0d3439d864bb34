// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package subscription resolves the feed subscription mode, builds the
subscription message, and decides which vessels may be stored.

Resolution order:

	declared bbox / id-list  -> that mode
	bounding boxes present   -> bbox
	allowlist present        -> id-list
	neither                  -> error (startup fails)

The request carries only the filter for the resolved mode. In bbox mode
the feed sends every vessel inside the boxes; Policy then drops vessels
outside the allowlist unless ALLOW_NON_LISTED is set.
*/
package subscription
