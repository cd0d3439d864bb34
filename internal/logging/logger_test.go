// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected output to contain level, got: %s", output)
	}
}

func TestInit_StampsAppName(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info().Msg("stamped")

	if want := `"app":"` + AppName + `"`; !strings.Contains(buf.String(), want) {
		t.Errorf("expected %s in output, got: %s", want, buf.String())
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info().Msg("suppressed")
	Warn().Msg("visible")

	output := buf.String()
	if strings.Contains(output, "suppressed") {
		t.Errorf("info line should be filtered at warn level: %s", output)
	}
	if !strings.Contains(output, "visible") {
		t.Errorf("warn line missing: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"debug", "INFO", "warn", "error"} {
		if !ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = false, want true", level)
		}
	}
	for _, level := range []string{"", "verbose", "critical"} {
		if ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = true, want false", level)
		}
	}
}

// Every name ValidLevel accepts must map to a real level, so a config that
// validates never silently falls back to info.
func TestValidLevelMatchesParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"Warning", zerolog.WarnLevel},
		{"fatal", zerolog.FatalLevel},
		{"off", zerolog.Disabled},
		{" disabled ", zerolog.Disabled},
	}

	for _, tt := range tests {
		if !ValidLevel(tt.input) {
			t.Errorf("ValidLevel(%q) = false, want true", tt.input)
		}
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })

	logger := Component("stream")
	logger.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"stream"`) {
		t.Errorf("expected component field, got: %s", buf.String())
	}
}

func TestCtx_ConnectionID(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })

	ctx := ContextWithConnectionID(context.Background(), "abcd1234")
	if got := ConnectionIDFromContext(ctx); got != "abcd1234" {
		t.Fatalf("ConnectionIDFromContext = %q", got)
	}

	Ctx(ctx).Info().Msg("connected")
	if !strings.Contains(buf.String(), `"connection_id":"abcd1234"`) {
		t.Errorf("expected connection_id field, got: %s", buf.String())
	}
}

func TestCtx_WithoutConnectionID(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })

	Ctx(context.Background()).Info().Msg("plain")
	if strings.Contains(buf.String(), "connection_id") {
		t.Errorf("unexpected connection_id field: %s", buf.String())
	}
}

func TestCtx_RequestID(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })

	ctx := ContextWithRequestID(context.Background(), "req-1")
	Ctx(ctx).Info().Msg("served")
	if !strings.Contains(buf.String(), `"request_id":"req-1"`) {
		t.Errorf("expected request_id field, got: %s", buf.String())
	}
}

func TestGenerateConnectionID(t *testing.T) {
	t.Parallel()

	a, b := GenerateConnectionID(), GenerateConnectionID()
	if len(a) != 8 {
		t.Errorf("expected 8 characters, got %q", a)
	}
	if a == b {
		t.Errorf("expected distinct IDs, got %q twice", a)
	}
}

func TestLoggerFromContext_Stored(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	Ctx(ctx).Info().Msg("stored")

	if !strings.Contains(buf.String(), "stored") {
		t.Errorf("expected stored logger to be used, got: %s", buf.String())
	}
}

func TestSlogHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewSlogHandlerWithLogger(NewTestLogger(&buf))
	slogger := slog.New(h).WithGroup("svc")

	slogger.Warn("service restarted", "name", "stream", "attempts", 3, "err", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{`"svc.name":"stream"`, `"svc.attempts":3`, `"svc.err":"boom"`, `"level":"warn"`, "service restarted"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got: %s", want, out)
		}
	}
}

func TestSampler(t *testing.T) {
	t.Parallel()

	s := NewSampler(2, time.Hour)
	calls := 0
	for i := 0; i < 10; i++ {
		s.Do(func() { calls++ })
	}
	if calls != 2 {
		t.Errorf("expected 2 sampled calls, got %d", calls)
	}
}
