// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package stream

import (
	"testing"
	"time"
)

func TestBackoffSequence(t *testing.T) {
	t.Parallel()

	b := NewBackoff(time.Second, 10*time.Second)
	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("Next() #%d = %s, want %s", i+1, got, w)
		}
	}

	b.Reset()
	if got := b.Next(); got != time.Second {
		t.Errorf("Next() after Reset = %s, want 1s", got)
	}
}

func TestBackoffPeekDoesNotAdvance(t *testing.T) {
	t.Parallel()

	b := NewBackoff(100*time.Millisecond, time.Second)
	if got := b.Peek(); got != 100*time.Millisecond {
		t.Errorf("Peek() = %s, want 100ms", got)
	}
	if got := b.Peek(); got != 100*time.Millisecond {
		t.Errorf("second Peek() = %s, want 100ms", got)
	}
	b.Next()
	if got := b.Peek(); got != 200*time.Millisecond {
		t.Errorf("Peek() after Next = %s, want 200ms", got)
	}
}

func TestBackoffCeilingBelowFloor(t *testing.T) {
	t.Parallel()

	b := NewBackoff(5*time.Second, time.Second)
	for i := 0; i < 3; i++ {
		if got := b.Next(); got != 5*time.Second {
			t.Errorf("Next() = %s, want 5s", got)
		}
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state     State
		want      string
		connected bool
	}{
		{Disconnected, "disconnected", false},
		{Connecting, "connecting", false},
		{Open, "open", true},
		{Subscribed, "subscribed", true},
		{Closing, "closing", false},
		{State(42), "unknown", false},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
		if got := tt.state.Connected(); got != tt.connected {
			t.Errorf("State(%d).Connected() = %v, want %v", tt.state, got, tt.connected)
		}
	}
}
