package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/phrazzld/agency-api/internal/config"
	"github.com/phrazzld/agency-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		level     string
		logDebug  bool
		logInfo   bool
		logWarn   bool
		logError  bool
		wantValid bool
	}{
		{level: "debug", logDebug: true, logInfo: true, logWarn: true, logError: true, wantValid: true},
		{level: "INFO", logInfo: true, logWarn: true, logError: true, wantValid: true},
		{level: "warn", logWarn: true, logError: true, wantValid: true},
		{level: "error", logError: true, wantValid: true},
		{level: "verbose", logInfo: true, logWarn: true, logError: true},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tc.level}, &buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			_, ok := logger.ParseLevel(tc.level)
			assert.Equal(t, tc.wantValid, ok)

			ctx := context.Background()
			assert.Equal(t, tc.logDebug, l.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tc.logInfo, l.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tc.logWarn, l.Enabled(ctx, slog.LevelWarn))
			assert.Equal(t, tc.logError, l.Enabled(ctx, slog.LevelError))
		})
	}
}

func TestSetupWritesJSON(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	_, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "info"}, &buf)
	require.NoError(t, err)

	slog.Info("agency created", "agency_id", 4)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "agency created", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "agency-api", entry["service"])
	assert.Equal(t, float64(4), entry["agency_id"])
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	custom := slog.New(slog.NewJSONHandler(&buf, nil))
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	ctx := context.Background()
	assert.Same(t, fallback, logger.FromContextOrDefault(ctx, fallback))
	assert.Same(t, slog.Default(), logger.FromContext(ctx))

	ctx = logger.WithLogger(ctx, custom)
	assert.Same(t, custom, logger.FromContext(ctx))
	assert.Same(t, custom, logger.FromContextOrDefault(ctx, fallback))

	//nolint:staticcheck // nil context is tolerated on purpose
	assert.Same(t, fallback, logger.FromContextOrDefault(nil, fallback))
}
