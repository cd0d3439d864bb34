// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/aisfleet/internal/logging"
	"github.com/tomtom215/aisfleet/internal/subscription"
)

// Validate checks that required configuration is present and usable.
// Every error here is fatal at startup.
func (c *Config) Validate() error {
	if err := c.validateStream(); err != nil {
		return err
	}
	if err := c.validateSubscription(); err != nil {
		return err
	}
	if err := c.validateFilter(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateMaintenance(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStream() error {
	if strings.TrimSpace(c.Stream.APIKey) == "" {
		return fmt.Errorf("AISSTREAM_KEY is required")
	}

	u, err := url.Parse(c.Stream.URL)
	if err != nil {
		return fmt.Errorf("AISSTREAM_URL is invalid: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("AISSTREAM_URL must use ws:// or wss://, got %q", c.Stream.URL)
	}

	if len(c.Stream.MessageTypes) == 0 {
		return fmt.Errorf("stream.message_types must not be empty")
	}

	durations := map[string]int64{
		"stream.subscribe_delay":    int64(c.Stream.SubscribeDelay),
		"stream.liveness_interval":  int64(c.Stream.LivenessInterval),
		"stream.idle_timeout":       int64(c.Stream.IdleTimeout),
		"stream.keepalive_interval": int64(c.Stream.KeepAliveInterval),
		"stream.backoff_floor":      int64(c.Stream.BackoffFloor),
		"stream.backoff_ceiling":    int64(c.Stream.BackoffCeiling),
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Stream.BackoffCeiling < c.Stream.BackoffFloor {
		return fmt.Errorf("stream.backoff_ceiling (%s) must not be below stream.backoff_floor (%s)",
			c.Stream.BackoffCeiling, c.Stream.BackoffFloor)
	}
	return nil
}

// SubscriptionFilter parses the configured feed filters.
func (c *Config) SubscriptionFilter() (subscription.Filter, error) {
	mode, err := subscription.ParseMode(c.Subscription.Mode)
	if err != nil {
		return subscription.Filter{}, fmt.Errorf("SUBSCRIPTION_MODE: %w", err)
	}
	boxes, err := c.Subscription.ParseBoundingBoxes()
	if err != nil {
		return subscription.Filter{}, err
	}
	ids, err := c.Subscription.ParseMMSIs()
	if err != nil {
		return subscription.Filter{}, err
	}
	return subscription.Filter{Mode: mode, BoundingBoxes: boxes, MMSIs: ids}, nil
}

func (c *Config) validateSubscription() error {
	filter, err := c.SubscriptionFilter()
	if err != nil {
		return err
	}

	mode := subscription.ResolveMode(filter)
	if mode == subscription.ModeError {
		return subscription.ErrNoFilter
	}
	if _, err := subscription.NewPolicy(mode, filter.MMSIs, c.Subscription.AllowNonListed); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFilter() error {
	if c.Filter.MinDistanceMeters <= 0 {
		return fmt.Errorf("filter.min_distance_meters must be positive, got %v", c.Filter.MinDistanceMeters)
	}
	if c.Filter.MinInterval <= 0 {
		return fmt.Errorf("filter.min_interval must be positive, got %s", c.Filter.MinInterval)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.WriteTimeout <= 0 {
		return fmt.Errorf("pipeline.write_timeout must be positive")
	}
	if c.Pipeline.LaneQueueSize < 1 {
		return fmt.Errorf("pipeline.lane_queue_size must be at least 1, got %d", c.Pipeline.LaneQueueSize)
	}
	if strings.TrimSpace(c.Pipeline.SourceLabel) == "" {
		return fmt.Errorf("pipeline.source_label is required")
	}
	if c.Pipeline.BreakerFailures == 0 {
		return fmt.Errorf("pipeline.breaker_failures must be at least 1")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateMaintenance() error {
	m := c.Maintenance
	if m.RefreshEnabled && m.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive when refresh is enabled")
	}
	if !m.RetentionEnabled {
		return nil
	}
	if m.RetentionDays < 1 {
		return fmt.Errorf("RETENTION_DAYS must be at least 1, got %d", m.RetentionDays)
	}
	if m.RetentionInterval <= 0 {
		return fmt.Errorf("RETENTION_INTERVAL must be positive")
	}
	if m.RetentionBatchSize < 1 {
		return fmt.Errorf("RETENTION_BATCH_SIZE must be at least 1, got %d", m.RetentionBatchSize)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true")
	}
	if strings.TrimSpace(c.NATS.SubjectPrefix) == "" {
		return fmt.Errorf("NATS_SUBJECT_PREFIX is required when NATS_ENABLED=true")
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Server.RateLimitRequests)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
