// Package gateway implements core.Gateway on top of any core.Storage,
// persisting each logical collection as one JSON document under a fixed key.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/introspection"

	"github.com/aretw0/snapnote/pkg/core"
	"github.com/aretw0/snapnote/pkg/typed"
)

// Storage keys. They are versionless; no migration exists.
const (
	KeyNotes         = "notes"
	KeyArchivedNotes = "archived_notes"
	KeySettings      = "settings"
)

// Keys lists every key owned by the gateway.
var Keys = []string{KeyNotes, KeyArchivedNotes, KeySettings}

// Gateway is the JSON persistence gateway.
type Gateway struct {
	storage  core.Storage
	notes    *typed.Key[[]core.Note]
	archived *typed.Key[[]core.Note]
	settings *typed.Key[core.Settings]
}

// New creates a Gateway over storage.
func New(storage core.Storage) *Gateway {
	return &Gateway{
		storage:  storage,
		notes:    typed.NewKey[[]core.Note](storage, KeyNotes, emptyNotes),
		archived: typed.NewKey[[]core.Note](storage, KeyArchivedNotes, emptyNotes),
		settings: typed.NewKey(storage, KeySettings, core.DefaultSettings),
	}
}

func emptyNotes() []core.Note { return []core.Note{} }

// ReadNotes implements core.Gateway.
func (g *Gateway) ReadNotes(ctx context.Context) ([]core.Note, error) {
	notes, err := g.notes.Load(ctx)
	if err != nil {
		return emptyNotes(), err
	}
	if notes == nil {
		// A stored JSON null decodes to nil.
		notes = emptyNotes()
	}
	return notes, nil
}

// WriteNotes implements core.Gateway.
func (g *Gateway) WriteNotes(ctx context.Context, notes []core.Note) error {
	if notes == nil {
		notes = emptyNotes()
	}
	return g.notes.Store(ctx, notes)
}

// ReadSettings implements core.Gateway. Unknown layout values normalize to grid.
func (g *Gateway) ReadSettings(ctx context.Context) (core.Settings, error) {
	s, err := g.settings.Load(ctx)
	return s.Normalize(), err
}

// WriteSettings implements core.Gateway.
func (g *Gateway) WriteSettings(ctx context.Context, s core.Settings) error {
	if !s.LayoutMode.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidLayout, s.LayoutMode)
	}
	return g.settings.Store(ctx, s)
}

// ReadArchived reads the reserved archived-notes collection.
// Nothing in the Store populates it.
func (g *Gateway) ReadArchived(ctx context.Context) ([]core.Note, error) {
	return g.archived.Load(ctx)
}

// WriteArchived overwrites the reserved archived-notes collection.
func (g *Gateway) WriteArchived(ctx context.Context, notes []core.Note) error {
	return g.archived.Store(ctx, notes)
}

// ClearAll removes every key owned by the gateway.
func (g *Gateway) ClearAll(ctx context.Context) error {
	var errs []error
	for _, k := range Keys {
		if err := g.storage.Delete(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// Watch forwards to the storage when it can report external changes.
func (g *Gateway) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	w, ok := g.storage.(core.Watchable)
	if !ok {
		return nil, errors.New("storage does not support watching")
	}
	return w.Watch(ctx, pattern)
}

// State implements introspection.Introspectable.
func (g *Gateway) State() any {
	storageType := "storage"
	if comp, ok := g.storage.(introspection.Component); ok {
		storageType = comp.ComponentType()
	}
	var storageState any
	if intro, ok := g.storage.(introspection.Introspectable); ok {
		storageState = intro.State()
	}
	return map[string]any{
		"keys":          Keys,
		"storage_type":  storageType,
		"storage_state": storageState,
	}
}

// ComponentType implements introspection.Component.
func (g *Gateway) ComponentType() string {
	return "json-gateway"
}

var _ core.Gateway = (*Gateway)(nil)
var _ core.Watchable = (*Gateway)(nil)
var _ introspection.Introspectable = (*Gateway)(nil)
var _ introspection.Component = (*Gateway)(nil)
