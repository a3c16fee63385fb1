package images_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/snapnote/pkg/images"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "images")
	clock := func() time.Time { return time.UnixMilli(1700000000000) }
	s := images.New(dir, images.WithClock(clock))

	t.Run("keeps known extension", func(t *testing.T) {
		src := writeSource(t, "photo.PNG", "png-bytes")
		ref, err := s.Import(ctx, src)
		require.NoError(t, err)

		assert.Equal(t, filepath.Base(ref), ref, "refs are relative to the image dir")
		assert.True(t, strings.HasPrefix(ref, "shared_1700000000000_"))
		assert.Equal(t, ".png", filepath.Ext(ref))
		assert.True(t, s.Validate(ref))
		assert.Equal(t, filepath.Join(dir, ref), s.Path(ref))

		data, err := os.ReadFile(s.Path(ref))
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("defaults to jpg", func(t *testing.T) {
		src := writeSource(t, "capture", "raw")
		ref, err := s.Import(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, ".jpg", filepath.Ext(ref))
	})

	t.Run("unique names in the same millisecond", func(t *testing.T) {
		src := writeSource(t, "a.jpg", "x")
		r1, err := s.Import(ctx, src)
		require.NoError(t, err)
		r2, err := s.Import(ctx, src)
		require.NoError(t, err)
		assert.NotEqual(t, r1, r2)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := s.Import(ctx, filepath.Join(t.TempDir(), "nope.jpg"))
		assert.ErrorIs(t, err, images.ErrCopyFailed)
	})

	t.Run("empty source", func(t *testing.T) {
		src := writeSource(t, "empty.jpg", "")
		_, err := s.Import(ctx, src)
		assert.ErrorIs(t, err, images.ErrCopyFailed)
	})

	t.Run("directory source", func(t *testing.T) {
		_, err := s.Import(ctx, t.TempDir())
		assert.ErrorIs(t, err, images.ErrCopyFailed)
	})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "snapnote-tmp-"), "temp file left behind: %s", e.Name())
	}
}

func TestValidate(t *testing.T) {
	s := images.New(t.TempDir())
	assert.False(t, s.Validate(""))
	assert.False(t, s.Validate("missing.jpg"))
	assert.False(t, s.Validate(filepath.Join(s.Dir(), "missing.jpg")))
	assert.False(t, s.Validate(writeSource(t, "empty.jpg", "")))
	assert.True(t, s.Validate(writeSource(t, "full.jpg", "x")))
}

func TestRelease(t *testing.T) {
	ctx := context.Background()
	s := images.New(t.TempDir())

	ref, err := s.Import(ctx, writeSource(t, "a.jpg", "x"))
	require.NoError(t, err)
	foreign := writeSource(t, "outside.jpg", "x")

	require.NoError(t, s.Release(ctx, ref, foreign, "../outside.jpg", filepath.Join(s.Dir(), "already-gone.jpg")))

	assert.NoFileExists(t, s.Path(ref))
	assert.FileExists(t, foreign)

	state := s.State().(images.StoreState)
	assert.Equal(t, 1, state.Imported)
	assert.Equal(t, 2, state.Released)
	assert.Equal(t, "images", s.ComponentType())
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	s := images.New(t.TempDir())

	live, err := s.Import(ctx, writeSource(t, "a.jpg", "x"))
	require.NoError(t, err)
	orphan, err := s.Import(ctx, writeSource(t, "b.webp", "y"))
	require.NoError(t, err)
	unmanaged := filepath.Join(s.Dir(), "notes.txt")
	require.NoError(t, os.WriteFile(unmanaged, []byte("keep"), 0644))

	removed, err := s.Collect(ctx, []string{live})
	require.NoError(t, err)
	assert.Equal(t, []string{orphan}, removed)

	assert.FileExists(t, s.Path(live))
	assert.FileExists(t, unmanaged)
	assert.NoFileExists(t, s.Path(orphan))

	removed, err = s.Collect(ctx, []string{live})
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestCollect_MissingDir(t *testing.T) {
	s := images.New(filepath.Join(t.TempDir(), "never-created"))
	removed, err := s.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestCollect_AfterMove(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	before := filepath.Join(root, "a", "images")
	after := filepath.Join(root, "b", "images")

	s := images.New(before)
	ref, err := s.Import(ctx, writeSource(t, "a.jpg", "x"))
	require.NoError(t, err)
	legacy, err := s.Import(ctx, writeSource(t, "b.png", "y"))
	require.NoError(t, err)
	legacyAbs := filepath.Join(before, legacy)

	require.NoError(t, os.Rename(filepath.Join(root, "a"), filepath.Join(root, "b")))

	moved := images.New(after)
	assert.True(t, moved.Validate(ref))

	removed, err := moved.Collect(ctx, []string{ref, legacyAbs})
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.FileExists(t, moved.Path(ref))
	assert.FileExists(t, filepath.Join(after, legacy))
}
