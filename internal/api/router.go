// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/aisfleet/internal/config"
)

// NewRouter builds the ops router:
//
//	GET /healthz                         feed connection health
//	GET /readyz                          store readiness
//	GET /metrics                         Prometheus metrics
//	GET /api/v1/stats                    row counts and write throughput
//	GET /api/v1/vessels/latest           latest position per vessel
//	GET /api/v1/vessels/{mmsi}           static data of one vessel
//	GET /api/v1/vessels/{mmsi}/positions stored track of one vessel
func NewRouter(cfg *config.ServerConfig, h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(PrometheusMetrics)

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg))

		r.Get("/stats", h.Stats)
		r.Get("/vessels/latest", h.LatestPositions)
		r.Get("/vessels/{mmsi}", h.Vessel)
		r.Get("/vessels/{mmsi}/positions", h.VesselPositions)
	})

	return r
}

func rateLimit(cfg *config.ServerConfig) func(http.Handler) http.Handler {
	requests := cfg.RateLimitRequests
	if requests <= 0 {
		requests = 100
	}
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "rate limit exceeded")
		}),
	)
}

// NewHTTPServer returns a server for the ops router.
func NewHTTPServer(cfg *config.ServerConfig, handler http.Handler) *http.Server {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       2 * timeout,
	}
}
