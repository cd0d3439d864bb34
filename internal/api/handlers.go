// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/aisfleet/internal/database"
	"github.com/tomtom215/aisfleet/internal/logging"
	"github.com/tomtom215/aisfleet/internal/models"
	"github.com/tomtom215/aisfleet/internal/stats"
	"github.com/tomtom215/aisfleet/internal/stream"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// StreamStatus reports the feed connection.
type StreamStatus interface {
	State() stream.State
	Status() stream.Status
}

// Store is the read side of the database used by the ops endpoints.
type Store interface {
	Ping(ctx context.Context) error
	GetVessel(ctx context.Context, mmsi int64) (*models.Vessel, error)
	PositionsFor(ctx context.Context, mmsi int64, limit int) ([]models.PositionReport, error)
	LatestPositions(ctx context.Context, limit int) ([]models.LatestPosition, error)
	CountVessels(ctx context.Context) (int64, error)
	CountPositions(ctx context.Context, mmsi int64) (int64, error)
}

// WriteStats exposes write throughput.
type WriteStats interface {
	Snapshot() stats.Snapshot
}

// Handler serves the ops endpoints.
type Handler struct {
	store       Store
	stream      StreamStatus
	writes      WriteStats
	idleTimeout time.Duration
	startTime   time.Time
}

// NewHandler creates a handler. idleTimeout is the feed idle threshold
// above which the health check reports degraded.
func NewHandler(store Store, streamStatus StreamStatus, writes WriteStats, idleTimeout time.Duration) *Handler {
	return &Handler{
		store:       store,
		stream:      streamStatus,
		writes:      writes,
		idleTimeout: idleTimeout,
		startTime:   time.Now(),
	}
}

// HealthStatus is the /healthz payload.
type HealthStatus struct {
	Status        string         `json:"status"`
	Stream        stream.Status  `json:"stream"`
	Writes        stats.Snapshot `json:"writes"`
	UptimeSeconds float64        `json:"uptime_seconds"`
}

// Health reports feed connection health. It answers 503 while the feed is
// disconnected or has been silent longer than the idle threshold.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.stream.Status()
	health := HealthStatus{
		Status:        "healthy",
		Stream:        st,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.writes != nil {
		health.Writes = h.writes.Snapshot()
	}

	code := http.StatusOK
	idle := time.Duration(st.IdleSeconds * float64(time.Second))
	if !h.stream.State().Connected() || (h.idleTimeout > 0 && idle > h.idleTimeout) {
		health.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, r, code, health)
}

// Ready reports whether the store answers.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// StoreStats is the /api/v1/stats payload.
type StoreStats struct {
	Vessels   int64          `json:"vessels"`
	Positions int64          `json:"positions"`
	Writes    stats.Snapshot `json:"writes"`
}

// Stats returns row counts and write throughput.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	vessels, err := h.store.CountVessels(r.Context())
	if err != nil {
		h.databaseError(w, r, err)
		return
	}
	positions, err := h.store.CountPositions(r.Context(), 0)
	if err != nil {
		h.databaseError(w, r, err)
		return
	}

	out := StoreStats{Vessels: vessels, Positions: positions}
	if h.writes != nil {
		out.Writes = h.writes.Snapshot()
	}
	respondJSON(w, r, http.StatusOK, out)
}

// LatestPositions returns the latest view, newest first.
func (h *Handler) LatestPositions(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	latest, err := h.store.LatestPositions(r.Context(), limit)
	if err != nil {
		h.databaseError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, latest)
}

// Vessel returns one vessel's static data.
func (h *Handler) Vessel(w http.ResponseWriter, r *http.Request) {
	mmsi, ok := parseMMSI(w, r)
	if !ok {
		return
	}
	v, err := h.store.GetVessel(r.Context(), mmsi)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "vessel not found")
		return
	}
	if err != nil {
		h.databaseError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, v)
}

// VesselPositions returns one vessel's stored track, oldest first.
func (h *Handler) VesselPositions(w http.ResponseWriter, r *http.Request) {
	mmsi, ok := parseMMSI(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	positions, err := h.store.PositionsFor(r.Context(), mmsi, limit)
	if err != nil {
		h.databaseError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, positions)
}

func (h *Handler) databaseError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Database query failed")
	respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "database query failed")
}

func parseMMSI(w http.ResponseWriter, r *http.Request) (int64, bool) {
	mmsi, err := strconv.ParseInt(chi.URLParam(r, "mmsi"), 10, 64)
	if err != nil || mmsi <= 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "mmsi must be a positive integer")
		return 0, false
	}
	return mmsi, true
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > maxLimit {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit must be between 1 and 1000")
		return 0, false
	}
	return limit, true
}
