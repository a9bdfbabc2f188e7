package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn, FormatText)

	logger.Info("hidden")
	logger.Warn("shown", "step", "step-1")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "step=step-1")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelDebug, "JSON")

	logger.Debug("generated", "steps", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "generated", entry["msg"])
	assert.Equal(t, float64(3), entry["steps"])
}

func TestDiscard(t *testing.T) {
	// Should not panic and should not be enabled at any level
	logger := Discard()
	logger.Error("dropped")
	assert.False(t, logger.Enabled(nil, slog.LevelError))
}
