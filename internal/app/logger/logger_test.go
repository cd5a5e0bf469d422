package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vancho-go/ipreverser/internal/app/config"
)

func TestNew_SetsDefault(t *testing.T) {
	logger := New(config.LogConfig{Level: "info", Format: "json"})

	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}

func TestNewWithWriter_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.LogConfig{Level: "info", Format: "json"})
	logger.Info("record stored", slog.String("ip", "8.8.4.4"))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "record stored", m["msg"])
	assert.Equal(t, "8.8.4.4", m["ip"])
}

func TestNewWithWriter_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.LogConfig{Level: "debug", Format: "text"})
	logger.Debug("history cleared", slog.Int("count", 3))

	assert.Contains(t, buf.String(), "history cleared")
	assert.Contains(t, buf.String(), "count=3")
}

func TestNewWithWriter_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		for _, format := range []string{"json", "text"} {
			t.Run(format+"_"+tt.level, func(t *testing.T) {
				t.Parallel()

				var buf bytes.Buffer
				logger := newWithWriter(&buf, config.LogConfig{Level: tt.level, Format: format})

				logger.Log(context.Background(), tt.want, "should appear")
				assert.NotZero(t, buf.Len())

				buf.Reset()
				logger.Log(context.Background(), tt.want-1, "should be suppressed")
				assert.Zero(t, buf.Len())
			})
		}
	}
}
