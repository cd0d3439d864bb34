// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

/*
Package stream manages the long-lived WebSocket connection to the AIS feed.

# Lifecycle

	Disconnected -> Connecting -> Open -> Subscribed -> Closing -> Disconnected
	                    ^                                              |
	                    +------------------ backoff -------------------+

On Open the manager resets the backoff, marks the connection as fresh,
and after SubscribeDelay sends the subscription request. While the
socket is up:

  - every KeepAliveInterval a ping control frame is sent; the pong
    refreshes the last-received time
  - every LivenessInterval the idle time is checked and the socket is
    force-closed once it exceeds IdleTimeout
  - every data frame refreshes the last-received time and is passed to
    the Handler on the reader goroutine, in receipt order

Any close leads back to Connecting after the current backoff delay
(floor 1s, doubling, ceiling 10s by default). Canceling the Run context
sends a normal close frame and returns without reconnecting.

# Usage

	mgr := stream.NewManager(&cfg.Stream, request, pipeline.HandleFrame)
	mgr.OnStateChange(func(from, to stream.State) {
	    logging.Debug().Stringer("from", from).Stringer("to", to).Msg("state")
	})
	err := mgr.Run(ctx) // blocks until ctx is canceled

Dial, SendSubscription and Ping are exported for one-shot tools that
drive a single connection themselves.
*/
package stream
