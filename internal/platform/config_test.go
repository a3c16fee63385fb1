package platform

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, FileConfig{}, cfg)
	})

	t.Run("all fields", func(t *testing.T) {
		dir := t.TempDir()
		content := "adapter: sqlite\nimage_dir: photos\nsystem_dir: .meta\nversioning: true\nlog_level: debug\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0644))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Adapter)
		assert.Equal(t, "photos", cfg.ImageDir)
		assert.Equal(t, ".meta", cfg.SystemDir)
		require.NotNil(t, cfg.Versioning)
		assert.True(t, *cfg.Versioning)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("bad log level", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("log_level: loud\n"), 0644))
		_, err := LoadConfig(dir)
		assert.ErrorContains(t, err, "log_level")
	})

	t.Run("save round trip", func(t *testing.T) {
		dir := t.TempDir()
		off := false
		require.NoError(t, SaveConfig(dir, FileConfig{Adapter: "fs", Versioning: &off}))
		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "fs", cfg.Adapter)
		require.NotNil(t, cfg.Versioning)
		assert.False(t, *cfg.Versioning)
	})
}

func TestFileConfig_Apply(t *testing.T) {
	on := true
	cfg := FileConfig{Adapter: "sqlite", SystemDir: ".meta", Versioning: &on, LogLevel: "warn"}

	o := parseOptions([]Option{WithVersioning(false)})
	cfg.apply(o)

	assert.Equal(t, "sqlite", o.adapter)
	assert.Equal(t, ".meta", o.string("system_dir"))
	assert.False(t, o.bool("versioning"), "explicit option must win")
	require.NotNil(t, o.logger)
	assert.False(t, o.logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" ERROR ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)
}
