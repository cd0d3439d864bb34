// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/aisfleet/config.yaml",
	"/etc/aisfleet/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultStreamURL is the aisstream.io WebSocket endpoint.
const DefaultStreamURL = "wss://stream.aisstream.io/v0/stream"

func defaultConfig() *Config {
	return &Config{
		Stream: StreamConfig{
			URL:               DefaultStreamURL,
			MessageTypes:      []string{"PositionReport", "ShipStaticData"},
			HandshakeTimeout:  10 * time.Second,
			WriteTimeout:      10 * time.Second,
			SubscribeDelay:    100 * time.Millisecond,
			LivenessInterval:  60 * time.Second,
			IdleTimeout:       5 * time.Minute,
			KeepAliveInterval: 30 * time.Second,
			BackoffFloor:      time.Second,
			BackoffCeiling:    10 * time.Second,
			ReadLimit:         1 << 20,
		},
		Subscription: SubscriptionConfig{
			Mode:           "auto",
			AllowNonListed: false,
		},
		Filter: FilterConfig{
			MinDistanceMeters: 100,
			MinInterval:       180 * time.Second,
		},
		Pipeline: PipelineConfig{
			WriteTimeout:    10 * time.Second,
			LaneQueueSize:   64,
			DrainTimeout:    15 * time.Second,
			SourceLabel:     "terrestrial",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/aisfleet.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Stats: StatsConfig{
			Interval: 60 * time.Second,
		},
		Maintenance: MaintenanceConfig{
			RefreshEnabled:     true,
			RefreshInterval:    5 * time.Minute,
			RetentionEnabled:   false, // Destructive, opt-in only
			RetentionDays:      90,
			RetentionInterval:  24 * time.Hour,
			RetentionBatchSize: 1000,
		},
		NATS: NATSConfig{
			Enabled:       false,
			URL:           "nats://127.0.0.1:4222",
			SubjectPrefix: "ais",
		},
		Server: ServerConfig{
			Enabled:           true,
			Host:              "0.0.0.0",
			Port:              3858,
			Timeout:           30 * time.Second,
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads and validates the full ingestor configuration.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadStreamOnly reads the configuration and validates only what is
// needed to open a feed connection. The diagnose command uses it so that
// it can run without a writable database path.
func LoadStreamOnly() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateStream(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := cfg.validateSubscription(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env strings.
var sliceConfigPaths = []string{
	"subscription.mmsis",
	"stream.message_types",
}

// processSliceFields converts comma-separated strings to slices for the
// paths in sliceConfigPaths. Values already loaded as lists from YAML are
// left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		trimmed := make([]string, 0)
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to config paths.
// Unmapped variables are ignored so the process environment cannot leak
// into the config tree.
var envMappings = map[string]string{
	// Feed
	"aisstream_key":             "stream.api_key",
	"aisstream_url":             "stream.url",
	"aisstream_message_types":   "stream.message_types",
	"stream_subscribe_delay":    "stream.subscribe_delay",
	"stream_liveness_interval":  "stream.liveness_interval",
	"stream_idle_timeout":       "stream.idle_timeout",
	"stream_keepalive_interval": "stream.keepalive_interval",
	"stream_backoff_floor":      "stream.backoff_floor",
	"stream_backoff_ceiling":    "stream.backoff_ceiling",
	"stream_handshake_timeout":  "stream.handshake_timeout",
	"stream_write_timeout":      "stream.write_timeout",
	"stream_read_limit":         "stream.read_limit",

	// Subscription
	"fleet_mmsis":       "subscription.mmsis",
	"bbox_json":         "subscription.bounding_boxes",
	"subscription_mode": "subscription.mode",
	"allow_non_listed":  "subscription.allow_non_listed",

	// Filter
	"filter_min_distance_meters": "filter.min_distance_meters",
	"filter_min_interval":        "filter.min_interval",

	// Pipeline
	"pipeline_write_timeout":    "pipeline.write_timeout",
	"pipeline_lane_queue_size":  "pipeline.lane_queue_size",
	"pipeline_drain_timeout":    "pipeline.drain_timeout",
	"position_source_label":     "pipeline.source_label",
	"pipeline_breaker_failures": "pipeline.breaker_failures",
	"pipeline_breaker_timeout":  "pipeline.breaker_timeout",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Stats
	"stats_interval": "stats.interval",

	// Maintenance
	"refresh_enabled":      "maintenance.refresh_enabled",
	"refresh_interval":     "maintenance.refresh_interval",
	"retention_enabled":    "maintenance.retention_enabled",
	"retention_days":       "maintenance.retention_days",
	"retention_interval":   "maintenance.retention_interval",
	"retention_batch_size": "maintenance.retention_batch_size",

	// NATS
	"nats_enabled":        "nats.enabled",
	"nats_url":            "nats.url",
	"nats_subject_prefix": "nats.subject_prefix",

	// Server
	"http_enabled":        "server.enabled",
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
// Examples:
//   - AISSTREAM_KEY -> stream.api_key
//   - FLEET_MMSIS -> subscription.mmsis
//   - DUCKDB_PATH -> database.path
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
