// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: FormatJSON, Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info().Str("key", "value").Msg("hello")

	m := decodeLine(t, &buf)
	if m["message"] != "hello" || m["key"] != "value" || m["service"] != "roomie" {
		t.Errorf("log line = %v", m)
	}
	if _, ok := m["time"]; ok {
		t.Error("timestamp should be omitted when disabled")
	}
}

func TestInitLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf, Timestamp: true})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
	Error().Err(errors.New("boom")).Msg("kept")
	m := decodeLine(t, &buf)
	if m["error"] != "boom" || m["level"] != "error" {
		t.Errorf("log line = %v", m)
	}
	if _, ok := m["time"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithNewCorrelationID(ctx)

	Ctx(ctx).Info().Msg("with ids")

	m := decodeLine(t, &buf)
	if m["request_id"] != "req-1" || m["correlation_id"] != CorrelationIDFromContext(ctx) {
		t.Errorf("log line = %v", m)
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" || CorrelationIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no ids")
	}
	ctx = ContextWithNewCorrelationID(ctx)
	if got := CorrelationIDFromContext(ctx); len(got) != 8 {
		t.Errorf("correlation id = %q, want 8 characters", got)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	l := WithComponent("phase-controller")
	l.Info().Msg("tagged")

	m := decodeLine(t, &buf)
	if m["component"] != "phase-controller" || m["service"] != "roomie" {
		t.Errorf("log line = %v", m)
	}
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logger.Debug("filtered")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered: %s", buf.String())
	}

	logger.With("service", "phase-scheduler").
		WithGroup("supervisor").
		Warn("service restarted",
			"restarts", 3,
			"backoff", 2*time.Second,
			slog.Group("failure", "fatal", false))

	m := decodeLine(t, &buf)
	if m["level"] != "warn" || m["message"] != "service restarted" {
		t.Errorf("log line = %v", m)
	}
	if m["supervisor.service"] != "phase-scheduler" {
		t.Errorf("grouped attr missing: %v", m)
	}
	if m["supervisor.restarts"] != float64(3) {
		t.Errorf("supervisor.restarts = %v, want 3", m["supervisor.restarts"])
	}
	if m["supervisor.failure.fatal"] != false {
		t.Errorf("nested group attr missing: %v", m)
	}
}
