// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/aisfleet/internal/subscription"
)

// isolateEnv clears every mapped variable and moves into an empty
// directory so no stray config.yaml is picked up.
func isolateEnv(t *testing.T) {
	t.Helper()
	for key := range envMappings {
		name := strings.ToUpper(key)
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv(ConfigPathEnvVar, "")
	os.Unsetenv(ConfigPathEnvVar)
	t.Chdir(t.TempDir())
}

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AISSTREAM_KEY", "test-key")
	t.Setenv("FLEET_MMSIS", "244650000, 211234560")
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Stream.URL != DefaultStreamURL {
		t.Errorf("Stream.URL = %q, want %q", cfg.Stream.URL, DefaultStreamURL)
	}
	if cfg.Stream.SubscribeDelay != 100*time.Millisecond {
		t.Errorf("Stream.SubscribeDelay = %v, want 100ms", cfg.Stream.SubscribeDelay)
	}
	if cfg.Stream.LivenessInterval != time.Minute {
		t.Errorf("Stream.LivenessInterval = %v, want 1m", cfg.Stream.LivenessInterval)
	}
	if cfg.Stream.IdleTimeout != 5*time.Minute {
		t.Errorf("Stream.IdleTimeout = %v, want 5m", cfg.Stream.IdleTimeout)
	}
	if cfg.Stream.KeepAliveInterval != 30*time.Second {
		t.Errorf("Stream.KeepAliveInterval = %v, want 30s", cfg.Stream.KeepAliveInterval)
	}
	if cfg.Stream.BackoffFloor != time.Second || cfg.Stream.BackoffCeiling != 10*time.Second {
		t.Errorf("backoff = %v..%v, want 1s..10s", cfg.Stream.BackoffFloor, cfg.Stream.BackoffCeiling)
	}
	if cfg.Filter.MinDistanceMeters != 100 || cfg.Filter.MinInterval != 180*time.Second {
		t.Errorf("filter = %vm/%v, want 100m/180s", cfg.Filter.MinDistanceMeters, cfg.Filter.MinInterval)
	}
	if cfg.Subscription.AllowNonListed {
		t.Error("Subscription.AllowNonListed should be false by default")
	}
	if cfg.Stats.Interval != time.Minute {
		t.Errorf("Stats.Interval = %v, want 1m", cfg.Stats.Interval)
	}
	if cfg.Maintenance.RetentionEnabled {
		t.Error("Maintenance.RetentionEnabled should be false by default")
	}
	if cfg.Maintenance.RetentionDays != 90 || cfg.Maintenance.RetentionBatchSize != 1000 {
		t.Errorf("retention = %d days / %d batch, want 90/1000",
			cfg.Maintenance.RetentionDays, cfg.Maintenance.RetentionBatchSize)
	}
	if cfg.Pipeline.SourceLabel != "terrestrial" {
		t.Errorf("Pipeline.SourceLabel = %q, want terrestrial", cfg.Pipeline.SourceLabel)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS.Enabled should be false by default")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AISSTREAM_KEY", "stream.api_key"},
		{"FLEET_MMSIS", "subscription.mmsis"},
		{"BBOX_JSON", "subscription.bounding_boxes"},
		{"SUBSCRIPTION_MODE", "subscription.mode"},
		{"ALLOW_NON_LISTED", "subscription.allow_non_listed"},
		{"DUCKDB_PATH", "database.path"},
		{"LOG_LEVEL", "logging.level"},
		{"HTTP_PORT", "server.port"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.input); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoad_EnvVars(t *testing.T) {
	isolateEnv(t)
	setMinimalEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("STREAM_IDLE_TIMEOUT", "2m")
	t.Setenv("ALLOW_NON_LISTED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Stream.APIKey != "test-key" {
		t.Errorf("Stream.APIKey = %q, want test-key", cfg.Stream.APIKey)
	}
	if len(cfg.Subscription.MMSIs) != 2 || cfg.Subscription.MMSIs[1] != "211234560" {
		t.Errorf("Subscription.MMSIs = %v", cfg.Subscription.MMSIs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Stream.IdleTimeout != 2*time.Minute {
		t.Errorf("Stream.IdleTimeout = %v, want 2m", cfg.Stream.IdleTimeout)
	}
	if !cfg.Subscription.AllowNonListed {
		t.Error("Subscription.AllowNonListed should be true")
	}
	if cfg.Database.Path != "/data/aisfleet.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	isolateEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
stream:
  api_key: file-key
subscription:
  bounding_boxes: "[[4.0,51.8],[4.6,52.1]]"
  mmsis:
    - "244650000"
database:
  path: /tmp/fleet.duckdb
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Stream.APIKey != "file-key" {
		t.Errorf("Stream.APIKey = %q, want file-key", cfg.Stream.APIKey)
	}
	if cfg.Database.Path != "/tmp/fleet.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("env should override file: Logging.Level = %q, want error", cfg.Logging.Level)
	}

	filter, err := cfg.SubscriptionFilter()
	if err != nil {
		t.Fatalf("SubscriptionFilter() error = %v", err)
	}
	if subscription.ResolveMode(filter) != subscription.ModeBBox {
		t.Errorf("expected bbox mode, got %q", subscription.ResolveMode(filter))
	}
	if len(filter.MMSIs) != 1 || filter.MMSIs[0] != 244650000 {
		t.Errorf("filter.MMSIs = %v", filter.MMSIs)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing api key",
			env:     map[string]string{"FLEET_MMSIS": "244650000"},
			wantErr: "AISSTREAM_KEY",
		},
		{
			name:    "no filters",
			env:     map[string]string{"AISSTREAM_KEY": "k"},
			wantErr: "no usable subscription filter",
		},
		{
			name:    "bbox without allowlist",
			env:     map[string]string{"AISSTREAM_KEY": "k", "BBOX_JSON": "[[4.0,51.8],[4.6,52.1]]"},
			wantErr: "ALLOW_NON_LISTED",
		},
		{
			name:    "bad bbox json",
			env:     map[string]string{"AISSTREAM_KEY": "k", "BBOX_JSON": "[[4.0,51.8]", "ALLOW_NON_LISTED": "true"},
			wantErr: "BBOX_JSON entry 1",
		},
		{
			name:    "bad mmsi",
			env:     map[string]string{"AISSTREAM_KEY": "k", "FLEET_MMSIS": "2446x0000"},
			wantErr: "invalid MMSI",
		},
		{
			name:    "bad mode",
			env:     map[string]string{"AISSTREAM_KEY": "k", "FLEET_MMSIS": "1", "SUBSCRIPTION_MODE": "polygon"},
			wantErr: "SUBSCRIPTION_MODE",
		},
		{
			name:    "bad url scheme",
			env:     map[string]string{"AISSTREAM_KEY": "k", "FLEET_MMSIS": "1", "AISSTREAM_URL": "https://example.com"},
			wantErr: "ws://",
		},
		{
			name:    "ceiling below floor",
			env:     map[string]string{"AISSTREAM_KEY": "k", "FLEET_MMSIS": "1", "STREAM_BACKOFF_CEILING": "500ms"},
			wantErr: "backoff_ceiling",
		},
		{
			name:    "bad log level",
			env:     map[string]string{"AISSTREAM_KEY": "k", "FLEET_MMSIS": "1", "LOG_LEVEL": "loud"},
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "nats without url",
			env:     map[string]string{"AISSTREAM_KEY": "k", "FLEET_MMSIS": "1", "NATS_ENABLED": "true", "NATS_URL": ""},
			wantErr: "NATS_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_NoFilterIsSentinel(t *testing.T) {
	isolateEnv(t)
	t.Setenv("AISSTREAM_KEY", "k")

	_, err := Load()
	if !errors.Is(err, subscription.ErrNoFilter) {
		t.Errorf("expected ErrNoFilter, got %v", err)
	}
}

func TestLoadStreamOnly_SkipsDatabase(t *testing.T) {
	isolateEnv(t)
	setMinimalEnv(t)
	t.Setenv("DUCKDB_PATH", " ")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject a blank database path")
	}
	if _, err := LoadStreamOnly(); err != nil {
		t.Errorf("LoadStreamOnly() error = %v", err)
	}
}

func TestParseBoundingBoxes_Multiple(t *testing.T) {
	s := SubscriptionConfig{BoundingBoxes: "[[4.0,51.8],[4.6,52.1]]; [[-0.5,51.3],[0.3,51.7]];"}
	boxes, err := s.ParseBoundingBoxes()
	if err != nil {
		t.Fatalf("ParseBoundingBoxes() error = %v", err)
	}
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(boxes))
	}
	if boxes[1][0][0] != -0.5 {
		t.Errorf("boxes[1] = %v", boxes[1])
	}
}

func TestParseMMSIs_Dedup(t *testing.T) {
	s := SubscriptionConfig{MMSIs: []string{"244650000", " 244650000", "", "211234560"}}
	ids, err := s.ParseMMSIs()
	if err != nil {
		t.Fatalf("ParseMMSIs() error = %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 unique ids, got %v", ids)
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 3858}
	if s.Addr() != "127.0.0.1:3858" {
		t.Errorf("Addr() = %q", s.Addr())
	}
}
