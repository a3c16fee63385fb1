package typed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/snapnote/pkg/adapters/memory"
	"github.com/aretw0/snapnote/pkg/core"
	"github.com/aretw0/snapnote/pkg/typed"
)

type UserProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

func TestKey_StoreLoad(t *testing.T) {
	storage := memory.New()
	ctx := context.Background()

	profile := typed.NewKey[UserProfile](storage, "profile", nil)
	assert.Equal(t, "profile", profile.Name())

	require.NoError(t, profile.Store(ctx, UserProfile{Name: "Alice", Email: "alice@example.com", Age: 30}))

	got, err := profile.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, 30, got.Age)

	raw, err := storage.Get(ctx, "profile")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Alice","email":"alice@example.com","age":30}`, string(raw))
}

func TestKey_Load(t *testing.T) {
	ctx := context.Background()
	def := func() UserProfile { return UserProfile{Name: "Anonymous"} }

	t.Run("Absent Key Returns Default", func(t *testing.T) {
		k := typed.NewKey(memory.New(), "profile", def)
		got, err := k.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Anonymous", got.Name)
	})

	t.Run("Malformed Value Returns Default And ErrCorrupt", func(t *testing.T) {
		storage := memory.New()
		require.NoError(t, storage.Set(ctx, "profile", []byte("{ invalid json")))

		k := typed.NewKey(storage, "profile", def)
		got, err := k.Load(ctx)
		assert.ErrorIs(t, err, core.ErrCorrupt)
		assert.Equal(t, "Anonymous", got.Name)
	})

	t.Run("Storage Failure Is Wrapped", func(t *testing.T) {
		storage := memory.New()
		boom := errors.New("io failure")
		storage.FailGet = boom

		k := typed.NewKey(storage, "profile", def)
		got, err := k.Load(ctx)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, core.ErrCorrupt)
		assert.Equal(t, "Anonymous", got.Name)
	})
}

func TestKey_Delete(t *testing.T) {
	storage := memory.New()
	ctx := context.Background()
	k := typed.NewKey[[]string](storage, "tags", nil)

	require.NoError(t, k.Store(ctx, []string{"a"}))
	require.NoError(t, k.Delete(ctx))

	got, err := k.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
