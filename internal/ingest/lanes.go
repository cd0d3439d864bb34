// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/aisfleet/internal/metrics"
)

var (
	errLaneFull    = errors.New("lane queue full")
	errLanesClosed = errors.New("lanes closed")
)

// lanes runs one FIFO worker per vessel with pending records. Records of
// one vessel are processed strictly in enqueue order; different vessels
// proceed concurrently. A worker exits as soon as its queue is empty.
type lanes struct {
	mu        sync.Mutex
	active    map[int64]*lane
	queueSize int
	process   func(Record)
	closed    bool
	wg        sync.WaitGroup
}

type lane struct {
	queue []Record
}

func newLanes(queueSize int, process func(Record)) *lanes {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &lanes{
		active:    make(map[int64]*lane),
		queueSize: queueSize,
		process:   process,
	}
}

// enqueue appends rec to its vessel's lane, starting a worker if the lane
// was idle. It fails with errLaneFull when the lane is full and with
// errLanesClosed after close.
func (l *lanes) enqueue(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return errLanesClosed
	}

	ln, ok := l.active[rec.MMSI]
	if !ok {
		ln = &lane{queue: make([]Record, 0, 4)}
		l.active[rec.MMSI] = ln
		ln.queue = append(ln.queue, rec)
		l.wg.Add(1)
		go l.run(rec.MMSI, ln)
		metrics.SetActiveLanes(len(l.active))
		return nil
	}

	if len(ln.queue) >= l.queueSize {
		return errLaneFull
	}
	ln.queue = append(ln.queue, rec)
	return nil
}

// close makes every later enqueue fail. Records already queued still run,
// and no worker can be started once close returns, so wait observes all
// of them.
func (l *lanes) close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

func (l *lanes) run(mmsi int64, ln *lane) {
	defer l.wg.Done()

	for {
		l.mu.Lock()
		if len(ln.queue) == 0 {
			delete(l.active, mmsi)
			metrics.SetActiveLanes(len(l.active))
			l.mu.Unlock()
			return
		}
		rec := ln.queue[0]
		ln.queue[0] = Record{}
		ln.queue = ln.queue[1:]
		l.mu.Unlock()

		l.process(rec)
	}
}

// pending returns the number of queued records across all lanes, not
// counting records being processed.
func (l *lanes) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, ln := range l.active {
		n += len(ln.queue)
	}
	return n
}

// busy returns the number of vessels with a running worker.
func (l *lanes) busy() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.active)
}

// wait blocks until every worker has exited or ctx ends.
func (l *lanes) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain lanes (%d vessels busy, %d records queued): %w", l.busy(), l.pending(), ctx.Err())
	}
}
