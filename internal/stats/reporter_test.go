// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package stats

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/aisfleet/internal/logging"
)

// captureLogs routes the global logger to a buffer for the test.
func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(buf))
	t.Cleanup(func() { logging.SetLogger(prev) })
	return buf
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewReporterDefaultInterval(t *testing.T) {
	if got := NewReporter(0).Interval(); got != DefaultInterval {
		t.Errorf("interval = %v, want %v", got, DefaultInterval)
	}
	if got := NewReporter(5 * time.Second).Interval(); got != 5*time.Second {
		t.Errorf("interval = %v, want 5s", got)
	}
}

func TestReportResetsWindowKeepsTotal(t *testing.T) {
	buf := captureLogs(t)
	r := NewReporter(time.Minute)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		r.RecordWrite(at.Add(time.Duration(i) * time.Second))
	}

	if n := r.Report(); n != 3 {
		t.Fatalf("Report = %d, want 3", n)
	}
	snap := r.Snapshot()
	if snap.Window != 0 || snap.Total != 3 {
		t.Errorf("snapshot = %+v, want window 0 total 3", snap)
	}
	if !snap.LastWrite.Equal(at.Add(2 * time.Second)) {
		t.Errorf("last write = %v, want %v", snap.LastWrite, at.Add(2*time.Second))
	}
	if !strings.Contains(buf.String(), `"writes":3`) {
		t.Errorf("summary not logged: %s", buf.String())
	}
}

func TestReportSilentWhenIdle(t *testing.T) {
	buf := captureLogs(t)
	r := NewReporter(time.Minute)

	if n := r.Report(); n != 0 {
		t.Fatalf("Report = %d, want 0", n)
	}
	if strings.Contains(buf.String(), "Positions written") {
		t.Errorf("idle interval should not log: %s", buf.String())
	}
}

func TestLastWriteIgnoresOlderTimes(t *testing.T) {
	r := NewReporter(time.Minute)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	r.RecordWrite(at)
	r.RecordWrite(at.Add(-time.Hour))
	if got := r.LastWrite(); !got.Equal(at) {
		t.Errorf("last write = %v, want %v", got, at)
	}
}

func TestRunReportsAndFlushesOnCancel(t *testing.T) {
	buf := captureLogs(t)
	r := NewReporter(20 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	r.RecordWrite(time.Now())
	deadline := time.Now().Add(2 * time.Second)
	for r.Snapshot().Window != 0 {
		if time.Now().After(deadline) {
			t.Fatal("window never reported")
		}
		time.Sleep(5 * time.Millisecond)
	}

	r.RecordWrite(time.Now())
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if snap := r.Snapshot(); snap.Window != 0 || snap.Total != 2 {
		t.Errorf("snapshot after shutdown = %+v, want flushed window and total 2", snap)
	}
	if c := strings.Count(buf.String(), "Positions written"); c != 2 {
		t.Errorf("logged %d summaries, want 2", c)
	}
}

func TestConcurrentRecordWrite(t *testing.T) {
	r := NewReporter(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.RecordWrite(time.Now())
			}
		}()
	}
	wg.Wait()
	if got := r.Snapshot().Total; got != 800 {
		t.Errorf("total = %d, want 800", got)
	}
}
