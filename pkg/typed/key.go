package typed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/snapnote/pkg/core"
)

// Key binds a fixed storage key to a Go type T, converting between the raw
// bytes held by a core.Storage and typed values with encoding/json.
type Key[T any] struct {
	name    string
	storage core.Storage
	def     func() T
}

// NewKey creates a typed accessor for name. def supplies the value returned
// when the key is absent or unreadable; nil means the zero value.
func NewKey[T any](storage core.Storage, name string, def func() T) *Key[T] {
	if def == nil {
		def = func() T {
			var zero T
			return zero
		}
	}
	return &Key[T]{name: name, storage: storage, def: def}
}

// Name returns the storage key.
func (k *Key[T]) Name() string {
	return k.name
}

// Load reads and decodes the value.
//
// An absent key returns the default and a nil error. A value that fails to
// decode returns the default and an error wrapping core.ErrCorrupt.
func (k *Key[T]) Load(ctx context.Context) (T, error) {
	data, err := k.storage.Get(ctx, k.name)
	if errors.Is(err, core.ErrNotFound) {
		return k.def(), nil
	}
	if err != nil {
		return k.def(), fmt.Errorf("failed to read %s: %w", k.name, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return k.def(), fmt.Errorf("%w: %s: %v", core.ErrCorrupt, k.name, err)
	}
	return v, nil
}

// Store encodes v and overwrites the stored value.
func (k *Key[T]) Store(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", k.name, err)
	}
	if err := k.storage.Set(ctx, k.name, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", k.name, err)
	}
	return nil
}

// Delete removes the stored value.
func (k *Key[T]) Delete(ctx context.Context) error {
	return k.storage.Delete(ctx, k.name)
}
