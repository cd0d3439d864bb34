// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tomtom215/aisfleet/internal/logging"
)

// HTTPServer is the subset of *http.Server the service drives.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the ops endpoints (health, readiness, metrics and
// the read API) in the api layer of the tree. The service binds the
// listener itself so a port clash fails the attempt before any request is
// accepted, and suture's backoff applies to rebinding.
//
//	server := api.NewHTTPServer(&cfg.Server, router)
//	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, 10*time.Second))
type HTTPServerService struct {
	server       HTTPServer
	addr         string
	drainTimeout time.Duration

	mu    sync.Mutex
	bound net.Addr
}

// NewHTTPServerService serves server on addr. drainTimeout bounds how long
// in-flight API requests may run once the tree stops.
func NewHTTPServerService(server HTTPServer, addr string, drainTimeout time.Duration) *HTTPServerService {
	if drainTimeout <= 0 {
		drainTimeout = 10 * time.Second
	}
	return &HTTPServerService{server: server, addr: addr, drainTimeout: drainTimeout}
}

// Addr returns the bound address, or nil while not listening. With a ":0"
// port it reports the port actually chosen.
func (h *HTTPServerService) Addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bound
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.addr)
	if err != nil {
		return fmt.Errorf("ops server bind %s: %w", h.addr, err)
	}
	h.setBound(ln.Addr())
	defer h.setBound(nil)
	logging.Info().Str("addr", ln.Addr().String()).Msg("Ops HTTP server listening")

	served := make(chan error, 1)
	go func() { served <- h.server.Serve(ln) }()

	select {
	case err := <-served:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return errors.New("ops server stopped unexpectedly")
		}
		return fmt.Errorf("ops server: %w", err)

	case <-ctx.Done():
		drainCtx, cancel := context.WithTimeout(context.Background(), h.drainTimeout)
		defer cancel()

		if err := h.server.Shutdown(drainCtx); err != nil {
			logging.Warn().Err(err).Dur("drain_timeout", h.drainTimeout).Msg("Ops HTTP server did not drain")
			return fmt.Errorf("ops server shutdown: %w", err)
		}
		<-served
		return ctx.Err()
	}
}

func (h *HTTPServerService) setBound(addr net.Addr) {
	h.mu.Lock()
	h.bound = addr
	h.mu.Unlock()
}

// String implements fmt.Stringer for suture's event log.
func (h *HTTPServerService) String() string {
	return "ops-http"
}
