// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aisfleet/internal/models"
)

// Config holds all ingestor configuration.
//
// Loading order (Koanf v2):
//  1. Defaults from defaultConfig()
//  2. Optional YAML file (CONFIG_PATH, config.yaml, /etc/aisfleet/config.yaml)
//  3. Environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
type Config struct {
	Stream       StreamConfig       `koanf:"stream"`
	Subscription SubscriptionConfig `koanf:"subscription"`
	Filter       FilterConfig       `koanf:"filter"`
	Pipeline     PipelineConfig     `koanf:"pipeline"`
	Database     DatabaseConfig     `koanf:"database"`
	Stats        StatsConfig        `koanf:"stats"`
	Maintenance  MaintenanceConfig  `koanf:"maintenance"`
	NATS         NATSConfig         `koanf:"nats"` // Optional: publish accepted positions to NATS
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// StreamConfig holds the upstream feed connection settings.
type StreamConfig struct {
	URL    string `koanf:"url"`
	APIKey string `koanf:"api_key"`

	// MessageTypes is the fixed set of report kinds requested from the feed.
	MessageTypes []string `koanf:"message_types"`

	HandshakeTimeout time.Duration `koanf:"handshake_timeout"`
	WriteTimeout     time.Duration `koanf:"write_timeout"`

	// SubscribeDelay is the pause between the socket opening and the
	// subscription being sent.
	SubscribeDelay time.Duration `koanf:"subscribe_delay"`

	// LivenessInterval is how often the idle check runs; IdleTimeout is
	// how long without any inbound frame before the socket is force-closed.
	LivenessInterval time.Duration `koanf:"liveness_interval"`
	IdleTimeout      time.Duration `koanf:"idle_timeout"`

	KeepAliveInterval time.Duration `koanf:"keepalive_interval"`

	BackoffFloor   time.Duration `koanf:"backoff_floor"`
	BackoffCeiling time.Duration `koanf:"backoff_ceiling"`

	// ReadLimit caps a single inbound frame in bytes (0 = unlimited).
	ReadLimit int64 `koanf:"read_limit"`
}

// SubscriptionConfig holds the feed filters.
type SubscriptionConfig struct {
	// Mode is auto, bbox or id-list.
	Mode string `koanf:"mode"`

	// BoundingBoxes is a ';'-separated list of JSON boxes, each
	// [[lon,lat],[lon,lat]].
	BoundingBoxes string `koanf:"bounding_boxes"`

	// MMSIs is the fleet allowlist.
	MMSIs []string `koanf:"mmsis"`

	// AllowNonListed stores vessels outside the allowlist when subscribed
	// by bounding box.
	AllowNonListed bool `koanf:"allow_non_listed"`
}

// FilterConfig holds the position dedup thresholds.
type FilterConfig struct {
	MinDistanceMeters float64       `koanf:"min_distance_meters"`
	MinInterval       time.Duration `koanf:"min_interval"`
}

// PipelineConfig holds settings for the write path behind the classifier.
type PipelineConfig struct {
	WriteTimeout  time.Duration `koanf:"write_timeout"`
	LaneQueueSize int           `koanf:"lane_queue_size"` // Pending records per vessel before new ones are dropped
	DrainTimeout  time.Duration `koanf:"drain_timeout"`
	SourceLabel   string        `koanf:"source_label"`

	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use NumCPU
}

// StatsConfig holds the throughput reporter interval.
type StatsConfig struct {
	Interval time.Duration `koanf:"interval"`
}

// MaintenanceConfig controls the periodic store jobs.
type MaintenanceConfig struct {
	RefreshEnabled  bool          `koanf:"refresh_enabled"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	RetentionEnabled   bool          `koanf:"retention_enabled"`
	RetentionDays      int           `koanf:"retention_days"`
	RetentionInterval  time.Duration `koanf:"retention_interval"`
	RetentionBatchSize int           `koanf:"retention_batch_size"`
}

// NATSConfig holds the optional position event publisher settings.
type NATSConfig struct {
	Enabled       bool   `koanf:"enabled"`
	URL           string `koanf:"url"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// ServerConfig holds the ops HTTP server settings.
type ServerConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig mirrors logging.Config for the loader.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// ParseMMSIs converts the allowlist to numeric vessel identifiers.
func (s *SubscriptionConfig) ParseMMSIs() ([]int64, error) {
	ids := make([]int64, 0, len(s.MMSIs))
	seen := make(map[int64]struct{}, len(s.MMSIs))
	for _, raw := range s.MMSIs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid MMSI %q in FLEET_MMSIS", raw)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseBoundingBoxes decodes the ';'-separated JSON box list.
func (s *SubscriptionConfig) ParseBoundingBoxes() ([]models.BoundingBox, error) {
	raw := strings.TrimSpace(s.BoundingBoxes)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ";")
	boxes := make([]models.BoundingBox, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var box models.BoundingBox
		if err := json.Unmarshal([]byte(part), &box); err != nil {
			return nil, fmt.Errorf("BBOX_JSON entry %d: %w", i+1, err)
		}
		if err := box.Validate(); err != nil {
			return nil, fmt.Errorf("BBOX_JSON entry %d: %w", i+1, err)
		}
		boxes = append(boxes, box)
	}
	return boxes, nil
}
