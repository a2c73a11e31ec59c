package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.DiscardHandler)) })
	var buf bytes.Buffer

	logger, err := NewLogger(Options{Level: "warn", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("Backend write failed", "backend_index", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Backend write failed", entry["msg"])
	assert.Equal(t, float64(2), entry["backend_index"])
}

func TestNewLoggerRejectsUnknownOptions(t *testing.T) {
	_, err := NewLogger(Options{Format: "xml"})
	assert.Error(t, err)

	_, err = NewLogger(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"": slog.LevelInfo, "debug": slog.LevelDebug, "WARN": slog.LevelWarn} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
