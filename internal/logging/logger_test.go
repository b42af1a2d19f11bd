// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if cfg.NoTimestamp {
		t.Error("expected timestamps on by default")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { Init(DefaultConfig()) })

	Init(Config{Level: "debug", Format: "json", Output: &buf})
	Info().Str("topic", "Bitcoin").Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected output to contain level, got: %s", output)
	}
	if !strings.Contains(output, `"topic":"Bitcoin"`) {
		t.Errorf("expected structured field, got: %s", output)
	}
	if !strings.Contains(output, `"service":"wikithat"`) {
		t.Errorf("expected service field, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
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
		{"disabled", zerolog.Disabled},
		{" Warn ", zerolog.WarnLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	original := Logger()
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { SetLogger(original) })

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithCorrelationID(ctx, "corr-456")

	Ctx(ctx).Info().Msg("with context")

	output := buf.String()
	if !strings.Contains(output, `"request_id":"req-123"`) {
		t.Errorf("expected request_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"correlation_id":"corr-456"`) {
		t.Errorf("expected correlation_id in output, got: %s", output)
	}
}

func TestGeneratedIDs(t *testing.T) {
	if id := GenerateCorrelationID(); len(id) != 8 {
		t.Errorf("GenerateCorrelationID() length = %d, want 8", len(id))
	}
	if a, b := GenerateRequestID(), GenerateRequestID(); a == b {
		t.Error("GenerateRequestID() returned duplicate IDs")
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext(empty) = %q, want empty", got)
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	original := Logger()
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { SetLogger(original) })

	logger := NewSlogLogger().With("service", "catalog-sync").WithGroup("supervisor")
	logger.Warn("service restarted", slog.Int("failures", 2))

	output := buf.String()
	if !strings.Contains(output, `"level":"warn"`) {
		t.Errorf("expected warn level, got: %s", output)
	}
	if !strings.Contains(output, `"service":"catalog-sync"`) {
		t.Errorf("expected service attr, got: %s", output)
	}
	if !strings.Contains(output, `"supervisor.failures":2`) {
		t.Errorf("expected grouped attr, got: %s", output)
	}
}
