// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/aisfleet/internal/config"
	"github.com/tomtom215/aisfleet/internal/logging"
	"github.com/tomtom215/aisfleet/internal/metrics"
	"github.com/tomtom215/aisfleet/internal/models"
)

// ErrIdleTimeout is the close cause when no frame or pong arrived within
// the idle threshold.
var ErrIdleTimeout = errors.New("stream idle timeout")

// Handler receives every inbound data frame in receipt order. It runs on
// the reader goroutine and must not block for long.
type Handler func(ctx context.Context, data []byte, receivedAt time.Time)

// StateHook observes connection state transitions.
type StateHook func(from, to State)

// Status is a point-in-time view of the connection for health reporting.
type Status struct {
	State        string    `json:"state"`
	LastReceived time.Time `json:"last_received,omitempty"`
	IdleSeconds  float64   `json:"idle_seconds"`
	Connects     uint64    `json:"connects"`
	NextBackoff  string    `json:"next_backoff"`
}

// Manager owns the feed socket lifecycle: dial, subscribe, keep alive,
// detect idleness and reconnect with backoff until its context ends.
//
// Only one connection is active at a time. Within a connection a reader
// goroutine delivers frames to the handler and a control goroutine owns
// the subscription timer, the liveness check, keep-alive pings and all
// writes.
type Manager struct {
	cfg     *config.StreamConfig
	request *models.SubscriptionRequest
	handler Handler
	backoff *Backoff

	state    atomic.Int32
	lastRecv atomic.Int64 // unix nanoseconds
	connects atomic.Uint64

	hookMu sync.RWMutex
	hooks  []StateHook
}

// NewManager creates a manager for the given feed settings. The request
// is sent on every new connection.
func NewManager(cfg *config.StreamConfig, request *models.SubscriptionRequest, handler Handler) *Manager {
	return &Manager{
		cfg:     cfg,
		request: request,
		handler: handler,
		backoff: NewBackoff(cfg.BackoffFloor, cfg.BackoffCeiling),
	}
}

// OnStateChange registers a hook called synchronously on every transition.
func (m *Manager) OnStateChange(hook StateHook) {
	m.hookMu.Lock()
	m.hooks = append(m.hooks, hook)
	m.hookMu.Unlock()
}

// State returns the current connection state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// LastReceived returns the time of the last inbound frame or pong.
func (m *Manager) LastReceived() time.Time {
	ns := m.lastRecv.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// IdleFor returns the time since the last inbound frame or pong.
func (m *Manager) IdleFor() time.Duration {
	last := m.LastReceived()
	if last.IsZero() {
		return 0
	}
	return time.Since(last)
}

// Status returns a snapshot for the health endpoint.
func (m *Manager) Status() Status {
	return Status{
		State:        m.State().String(),
		LastReceived: m.LastReceived(),
		IdleSeconds:  m.IdleFor().Seconds(),
		Connects:     m.connects.Load(),
		NextBackoff:  m.backoff.Peek().String(),
	}
}

func (m *Manager) touch(t time.Time) {
	m.lastRecv.Store(t.UnixNano())
}

func (m *Manager) setState(to State) {
	from := State(m.state.Swap(int32(to)))
	if from == to {
		return
	}
	metrics.SetStreamState(int(to))

	m.hookMu.RLock()
	hooks := m.hooks
	m.hookMu.RUnlock()
	for _, hook := range hooks {
		hook(from, to)
	}
}

// Run connects and reconnects until ctx is canceled. Transport errors are
// logged and retried; Run returns nil on shutdown.
func (m *Manager) Run(ctx context.Context) error {
	defer m.setState(Disconnected)

	for {
		if ctx.Err() != nil {
			return nil
		}

		err := m.runConnection(ctx)
		m.setState(Disconnected)

		if ctx.Err() != nil {
			logging.Info().Msg("AIS stream stopped")
			return nil
		}

		delay := m.backoff.Next()
		metrics.SetBackoff(delay)
		logging.Warn().
			Err(err).
			Dur("backoff", delay).
			Msg("AIS stream disconnected, reconnecting")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil
		}
	}
}

// runConnection handles one socket from dial to close and returns the
// reason it ended.
func (m *Manager) runConnection(ctx context.Context) error {
	m.setState(Connecting)

	connCtx := logging.ContextWithConnectionID(ctx, logging.GenerateConnectionID())
	log := logging.Ctx(connCtx)

	conn, err := Dial(connCtx, m.cfg)
	metrics.RecordConnectAttempt(err)
	if err != nil {
		return err
	}

	m.connects.Add(1)
	m.backoff.Reset()
	metrics.SetBackoff(m.backoff.Peek())
	m.touch(time.Now())
	conn.SetPongHandler(func(string) error {
		m.touch(time.Now())
		return nil
	})
	m.setState(Open)
	log.Info().Str("url", m.cfg.URL).Msg("AIS stream connected")

	s := &session{conn: conn, writeTimeout: m.cfg.WriteTimeout}
	g, gctx := errgroup.WithContext(connCtx)
	g.Go(func() error { return m.readLoop(ctx, connCtx, s) })
	g.Go(func() error { return m.controlLoop(ctx, gctx, s) })
	waitErr := g.Wait()

	s.close(nil, false)
	if cause := s.closeCause(); cause != nil {
		return cause
	}
	return waitErr
}

// readLoop delivers frames until the socket fails or is closed.
func (m *Manager) readLoop(parent, connCtx context.Context, s *session) error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			// Closed by the control loop, which reports its own cause.
			if parent.Err() != nil || s.closed.Load() {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				metrics.RecordDisconnect("remote_close")
			} else {
				metrics.RecordDisconnect("read_error")
			}
			return fmt.Errorf("read: %w", err)
		}

		now := time.Now()
		m.touch(now)
		m.handler(connCtx, data, now)
	}
}

// controlLoop owns timers and writes for one connection. It closes the
// socket on every exit path so the reader unblocks.
func (m *Manager) controlLoop(parent, gctx context.Context, s *session) error {
	log := logging.Ctx(gctx)

	subscribe := time.NewTimer(m.cfg.SubscribeDelay)
	defer subscribe.Stop()
	liveness := time.NewTicker(m.cfg.LivenessInterval)
	defer liveness.Stop()
	keepAlive := time.NewTicker(m.cfg.KeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-gctx.Done():
			m.setState(Closing)
			if parent.Err() != nil {
				metrics.RecordDisconnect("shutdown")
				s.close(nil, true)
				return nil
			}
			// Reader failed; its error is the cause.
			s.close(nil, false)
			return nil

		case <-subscribe.C:
			if err := SendSubscription(s.conn, m.request, m.cfg.WriteTimeout); err != nil {
				metrics.RecordDisconnect("write_error")
				m.setState(Closing)
				err = fmt.Errorf("send subscription: %w", err)
				s.close(err, false)
				return err
			}
			m.setState(Subscribed)
			log.Info().
				Int("bounding_boxes", len(m.request.BoundingBoxes)).
				Int("mmsis", len(m.request.FiltersShipMMSI)).
				Msg("AIS subscription sent")

		case <-liveness.C:
			idle := m.IdleFor()
			if idle > m.cfg.IdleTimeout {
				log.Warn().
					Dur("idle", idle).
					Dur("threshold", m.cfg.IdleTimeout).
					Msg("AIS stream idle, forcing reconnect")
				metrics.RecordDisconnect("idle")
				m.setState(Closing)
				s.close(ErrIdleTimeout, false)
				return ErrIdleTimeout
			}

		case <-keepAlive.C:
			if err := Ping(s.conn, m.cfg.WriteTimeout); err != nil {
				metrics.RecordDisconnect("write_error")
				m.setState(Closing)
				err = fmt.Errorf("ping: %w", err)
				s.close(err, false)
				return err
			}
			metrics.RecordPing()
			log.Debug().Msg("AIS stream ping sent")
		}
	}
}

// session closes one socket exactly once and remembers why.
type session struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	once   sync.Once
	closed atomic.Bool
	mu     sync.Mutex
	cause  error
}

func (s *session) close(cause error, normal bool) {
	s.once.Do(func() {
		s.mu.Lock()
		s.cause = cause
		s.mu.Unlock()
		s.closed.Store(true)

		if normal {
			if err := CloseNormal(s.conn, s.writeTimeout); err != nil {
				logging.Debug().Err(err).Msg("Failed to send close frame")
			}
		}
		if err := s.conn.Close(); err != nil {
			logging.Debug().Err(err).Msg("Failed to close AIS stream socket")
		}
	})
}

func (s *session) closeCause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}
