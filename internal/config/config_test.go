package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sgmbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeConfig(t, `
logger:
  verbosity: debug
bench:
  warmupRuns: 5
  measurementRuns: 10
movie:
  skipBadFrames: true
metrics:
  listenAddress: ":9090"
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "debug", cfg.Logger.Verbosity)
		assert.Equal(t, 5, cfg.Bench.WarmupRuns)
		assert.Equal(t, 10, cfg.Bench.MeasurementRuns)
		assert.True(t, cfg.Movie.SkipBadFrames)
		assert.Equal(t, ":9090", cfg.Metrics.ListenAddress)
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		path := writeConfig(t, "logger:\n  verbosity: warn\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "warn", cfg.Logger.Verbosity)
		assert.Equal(t, 20, cfg.Bench.WarmupRuns)
		assert.Equal(t, 50, cfg.Bench.MeasurementRuns)
		assert.False(t, cfg.Movie.SkipBadFrames)
	})

	t.Run("non-existent file", func(t *testing.T) {
		_, err := LoadConfig("non-existent-file.yaml")
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "logger: [not: valid\n")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid run counts", func(t *testing.T) {
		path := writeConfig(t, "bench:\n  measurementRuns: 0\n")
		_, err := LoadConfig(path)
		assert.Error(t, err)

		path = writeConfig(t, "bench:\n  warmupRuns: -1\n")
		_, err = LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("existing file is loaded", func(t *testing.T) {
		path := writeConfig(t, "bench:\n  measurementRuns: 7\n")
		cfg, err := LoadOrDefault(path)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Bench.MeasurementRuns)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Logger.Verbosity)
	assert.Equal(t, 20, cfg.Bench.WarmupRuns)
	assert.Equal(t, 50, cfg.Bench.MeasurementRuns)
	assert.Empty(t, cfg.Metrics.ListenAddress)
	assert.NoError(t, cfg.Validate())
}
