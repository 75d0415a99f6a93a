package logger_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/artcava/XPoster/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONWithGeneratorAndReason(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.log")
	log, err := logger.New(logger.Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.With(logger.Generator("FeedSummary")).Info("post rejected", logger.Reason("no feeds"))
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "post rejected", entry["msg"])
	assert.Equal(t, "FeedSummary", entry["generator"])
	assert.Equal(t, "no feeds", entry["reason"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.log")
	log, err := logger.New(logger.Config{Level: "warn", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("hidden too")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestWithContext_FromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	nop := logger.NewNop()
	ctx := logger.WithContext(context.Background(), nop)

	assert.Same(t, nop, logger.FromContext(ctx))
}

func TestFromContext_FallbackIsSingleton(t *testing.T) {
	t.Parallel()

	a := logger.FromContext(context.Background())
	b := logger.FromContext(context.Background())

	require.NotNil(t, a)
	assert.Same(t, a, b)

	// Warn level: these must not panic even though debug/info are filtered.
	a.Debug("debug message")
	a.Warn("message with field", logger.String("key", "value"))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := logger.New(logger.Config{Level: "chatty"})
	require.Error(t, err)
}

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg logger.Config
	cfg.SetDefaults()
	assert.Equal(t, logger.DefaultLevel, cfg.Level)
	assert.Equal(t, logger.EncodingJSON, cfg.Encoding)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)

	cfg = logger.Config{Encoding: "xml"}
	cfg.SetDefaults()
	assert.Equal(t, logger.EncodingJSON, cfg.Encoding)
}
