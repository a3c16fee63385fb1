package platform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/snapnote/internal/platform"
	"github.com/aretw0/snapnote/pkg/adapters/fs"
	"github.com/aretw0/snapnote/pkg/adapters/memory"
	"github.com/aretw0/snapnote/pkg/adapters/sqlite"
)

func TestInit(t *testing.T) {
	t.Run("fs creates vault and system dir", func(t *testing.T) {
		vaultPath := filepath.Join(t.TempDir(), "vault")

		v, err := platform.Init(vaultPath)
		require.NoError(t, err)

		fsStorage, ok := v.Storage.(*fs.Storage)
		require.True(t, ok, "expected fs storage, got %T", v.Storage)
		assert.Equal(t, vaultPath, fsStorage.Path)
		assert.Equal(t, "fs", v.Adapter)
		assert.DirExists(t, filepath.Join(vaultPath, ".snapnote"))
		require.NotNil(t, v.Images)
		assert.Equal(t, filepath.Join(vaultPath, "images"), v.Images.Dir())
	})

	t.Run("custom system dir", func(t *testing.T) {
		vaultPath := t.TempDir()
		_, err := platform.Init(vaultPath, platform.WithSystemDir(".meta"))
		require.NoError(t, err)
		assert.DirExists(t, filepath.Join(vaultPath, ".meta"))
	})

	t.Run("must exist fails on missing dir", func(t *testing.T) {
		_, err := platform.Init(filepath.Join(t.TempDir(), "missing"), platform.WithMustExist(true))
		assert.Error(t, err)
	})

	t.Run("sqlite", func(t *testing.T) {
		vaultPath := t.TempDir()
		v, err := platform.Init(vaultPath, platform.WithAdapter("sqlite"))
		require.NoError(t, err)
		defer v.Storage.(*sqlite.Storage).Close()

		assert.FileExists(t, filepath.Join(vaultPath, sqlite.DefaultFile))
	})

	t.Run("sqlite with explicit db file", func(t *testing.T) {
		vaultPath := t.TempDir()
		v, err := platform.Init(filepath.Join(vaultPath, "custom.db"), platform.WithAdapter("sqlite"))
		require.NoError(t, err)
		defer v.Storage.(*sqlite.Storage).Close()

		assert.Equal(t, vaultPath, v.Path)
		assert.FileExists(t, filepath.Join(vaultPath, "custom.db"))
	})

	t.Run("memory has no images unless asked", func(t *testing.T) {
		v, err := platform.Init(t.TempDir(), platform.WithAdapter("memory"))
		require.NoError(t, err)
		assert.Nil(t, v.Images)

		dir := t.TempDir()
		v, err = platform.Init(t.TempDir(), platform.WithAdapter("memory"), platform.WithImageDir(dir))
		require.NoError(t, err)
		require.NotNil(t, v.Images)
		assert.Equal(t, dir, v.Images.Dir())
	})

	t.Run("unknown adapter", func(t *testing.T) {
		_, err := platform.Init(t.TempDir(), platform.WithAdapter("s3"))
		assert.ErrorContains(t, err, "unknown adapter")
	})

	t.Run("injected storage", func(t *testing.T) {
		mem := memory.New()
		v, err := platform.Init(t.TempDir(), platform.WithStorage(mem), platform.WithAdapter("s3"))
		require.NoError(t, err)
		assert.Same(t, mem, v.Storage)
		assert.Equal(t, "custom", v.Adapter)
	})

	t.Run("read only skips initialization and images", func(t *testing.T) {
		vaultPath := t.TempDir()
		v, err := platform.Init(vaultPath, platform.WithReadOnly(true))
		require.NoError(t, err)
		assert.Nil(t, v.Images)
		assert.NoDirExists(t, filepath.Join(vaultPath, ".snapnote"))
	})
}

func TestInit_ConfigFile(t *testing.T) {
	t.Run("file selects adapter and image dir", func(t *testing.T) {
		vaultPath := t.TempDir()
		require.NoError(t, platform.SaveConfig(vaultPath, platform.FileConfig{
			Adapter:  "sqlite",
			ImageDir: "photos",
		}))

		v, err := platform.Init(vaultPath)
		require.NoError(t, err)
		defer v.Storage.(*sqlite.Storage).Close()

		assert.Equal(t, "sqlite", v.Adapter)
		assert.Equal(t, filepath.Join(vaultPath, "photos"), v.Images.Dir())
	})

	t.Run("explicit options win", func(t *testing.T) {
		vaultPath := t.TempDir()
		require.NoError(t, platform.SaveConfig(vaultPath, platform.FileConfig{
			Adapter:  "sqlite",
			ImageDir: "photos",
		}))

		v, err := platform.Init(vaultPath, platform.WithAdapter("fs"), platform.WithImageDir("pics"))
		require.NoError(t, err)
		assert.Equal(t, "fs", v.Adapter)
		assert.Equal(t, filepath.Join(vaultPath, "pics"), v.Images.Dir())
	})

	t.Run("malformed file", func(t *testing.T) {
		vaultPath := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(vaultPath, platform.ConfigFile), []byte("adapter: [unclosed"), 0644))
		_, err := platform.Init(vaultPath)
		assert.Error(t, err)
	})
}
