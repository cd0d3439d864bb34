// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package stream

// State is the connection lifecycle state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Open
	Subscribed
	Closing
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Subscribed:
		return "subscribed"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Connected reports whether a socket is up.
func (s State) Connected() bool {
	return s == Open || s == Subscribed
}
