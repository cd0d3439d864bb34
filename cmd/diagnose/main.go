// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

// Package main is a one-shot feed check.
//
// It opens a single connection with the same configuration the ingestor
// uses, sends the subscription, and for a bounded time classifies every
// frame without touching the database. The first frames are logged in
// full, and a per-kind summary is logged when it ends.
//
// Usage:
//
//	diagnose                     # 2 minutes, log first 5 frames
//	diagnose -duration 30s -frames 20
//
// Exit status is 1 if the socket could not be opened or no frame arrived.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/aisfleet/internal/config"
	"github.com/tomtom215/aisfleet/internal/ingest"
	"github.com/tomtom215/aisfleet/internal/logging"
	"github.com/tomtom215/aisfleet/internal/models"
	"github.com/tomtom215/aisfleet/internal/stream"
	"github.com/tomtom215/aisfleet/internal/subscription"
)

const (
	pingInterval = 30 * time.Second
	closeGrace   = 5 * time.Second
)

// errServerClosed ends the session when the feed closes the socket first.
var errServerClosed = errors.New("server closed the connection")

func main() {
	duration := flag.Duration("duration", 2*time.Minute, "how long to listen")
	frames := flag.Int("frames", 5, "number of raw frames to log")
	flag.Parse()

	cfg, err := config.LoadStreamOnly()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	filterCfg, err := cfg.SubscriptionFilter()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid subscription filter")
	}
	request, mode, err := subscription.BuildRequest(cfg.Stream.APIKey, filterCfg, cfg.Stream.MessageTypes)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build subscription")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Interrupted")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().
		Str("url", cfg.Stream.URL).
		Str("mode", string(mode)).
		Dur("duration", *duration).
		Msg("Listening to AIS stream")

	s, err := run(ctx, &cfg.Stream, request, *frames)
	switch {
	case err == nil:
	case errors.Is(err, errServerClosed):
		logging.Warn().Msg("Server closed the connection")
	default:
		logging.Error().Err(err).Msg("Session ended with error")
	}

	s.summary(mode)
	cancel()
	os.Exit(s.exitCode())
}

// run connects once, subscribes and classifies frames until ctx ends or
// the connection fails. The returned session is never nil.
func run(ctx context.Context, cfg *config.StreamConfig, req *models.SubscriptionRequest, logFrames int) (*session, error) {
	s := newSession(logFrames)

	conn, err := stream.Dial(ctx, cfg)
	if err != nil {
		return s, err
	}
	logging.Info().Msg("Socket open")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.read(gctx, conn) })
	g.Go(func() error { return s.control(gctx, conn, cfg, req) })

	err = g.Wait()
	_ = conn.Close()
	return s, err
}

// session counts classified frames. Fields are only touched by the reader
// goroutine until it has exited.
type session struct {
	logFrames int
	total     int
	counts    map[ingest.Kind]int
	first     time.Time
	mmsis     map[int64]struct{}
}

func newSession(logFrames int) *session {
	return &session{
		logFrames: logFrames,
		counts:    make(map[ingest.Kind]int),
		mmsis:     make(map[int64]struct{}),
	}
}

func (s *session) read(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errServerClosed
			}
			return err
		}
		s.observe(data, time.Now())
	}
}

// observe classifies one frame and updates the counters.
func (s *session) observe(data []byte, now time.Time) {
	if s.total == 0 {
		s.first = now
	}
	s.total++

	rec, err := ingest.Classify(data, now)
	s.counts[rec.Kind]++
	if rec.MMSI > 0 {
		s.mmsis[rec.MMSI] = struct{}{}
	}

	if s.total <= s.logFrames {
		ev := logging.Info().
			Int("n", s.total).
			Str("kind", string(rec.Kind)).
			RawJSON("frame", data)
		if err != nil {
			ev = ev.AnErr("classify_error", err)
		}
		ev.Msg("Frame received")
	}
}

// exitCode is 1 when nothing arrived.
func (s *session) exitCode() int {
	if s.total == 0 {
		return 1
	}
	return 0
}

// control sends the subscription after the configured delay and pings
// the server. When ctx ends it sends a close frame and bounds the wait for
// the server's reply so that read returns.
func (s *session) control(ctx context.Context, conn *websocket.Conn, cfg *config.StreamConfig, req *models.SubscriptionRequest) error {
	subscribe := time.NewTimer(cfg.SubscribeDelay)
	defer subscribe.Stop()
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = stream.CloseNormal(conn, cfg.WriteTimeout)
			_ = conn.SetReadDeadline(time.Now().Add(closeGrace))
			return nil
		case <-subscribe.C:
			if err := stream.SendSubscription(conn, req, cfg.WriteTimeout); err != nil {
				_ = conn.Close()
				return err
			}
			logging.Info().Msg("Subscription sent")
		case <-ping.C:
			if err := stream.Ping(conn, cfg.WriteTimeout); err != nil {
				_ = conn.Close()
				return err
			}
		}
	}
}

func (s *session) summary(mode subscription.Mode) {
	ev := logging.Info().
		Str("mode", string(mode)).
		Int("frames", s.total).
		Int("vessels", len(s.mmsis))
	for _, kind := range []ingest.Kind{ingest.KindPosition, ingest.KindStatic, ingest.KindIgnored, ingest.KindInvalid} {
		ev = ev.Int(string(kind), s.counts[kind])
	}
	if !s.first.IsZero() {
		ev = ev.Time("first_frame", s.first)
	}
	ev.Msg("Session summary")

	if s.total == 0 {
		logging.Warn().Msg("No frames received: check the API key and the subscription filter")
	}
}
