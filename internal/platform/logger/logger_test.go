package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/phrazzld/memberguard/internal/config"
	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "INFO", expected: slog.LevelInfo},
		{input: "", expected: slog.LevelInfo},
		{input: "Warn", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "verbose", expected: slog.LevelInfo, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := logger.ParseLevel(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(&buf, "warn")
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept", "queue", "ocr")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "ocr", entry["queue"])
}

func TestSetup_SetsDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	l, err := logger.Setup(config.ServerConfig{LogLevel: "debug"})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default())

	_, err = logger.Setup(config.ServerConfig{LogLevel: "loud"})
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	l, buf := logger.NewTestLogger(t)

	ctx := logger.WithLogger(context.Background(), l.With("trace_id", "abc"))
	logger.FromContext(ctx).Info("from context")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0]["trace_id"])

	assert.Equal(t, slog.Default(), logger.FromContext(context.Background()))
}

func TestFromContextOrDefault(t *testing.T) {
	fallback, _ := logger.NewTestLogger(t)
	scoped, _ := logger.NewTestLogger(t)

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, scoped, logger.FromContextOrDefault(logger.WithLogger(context.Background(), scoped), fallback))
	assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
}
