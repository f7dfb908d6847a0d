package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "debug", "json")

	assert.True(t, L.Enabled(context.Background(), slog.LevelDebug))

	L.Info("listing bucket", slog.String("bucket", "media"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "listing bucket", record["msg"])
	assert.Equal(t, "media", record["bucket"])
}

func TestInitWriterTextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", "text")

	L.Info("hidden")
	L.Error("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestContextLogger(t *testing.T) {
	Init("info", "text")

	custom := L.With("update_id", 42)
	fallback := L.With("component", "bucket")
	ctx := WithContext(context.Background(), custom)

	assert.Same(t, custom, FromContext(ctx, fallback))
	assert.Same(t, fallback, FromContext(context.Background(), fallback))
	assert.Same(t, L, FromContext(context.Background(), nil))
	assert.Same(t, fallback, FromContext(WithContext(context.Background(), nil), fallback))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%s) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
