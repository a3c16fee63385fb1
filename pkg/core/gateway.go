package core

import "context"

// Storage defines the contract for a durable key-value backend.
// Adhering to this interface keeps the core independent of the
// underlying storage mechanism (files, SQLite, memory).
type Storage interface {
	// Get returns the raw value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value under key. Readers never observe a partial write.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Initialize ensures the underlying storage is ready (directories, schema).
	Initialize(ctx context.Context) error
}

// Watchable defines an interface for storages that can report external changes.
type Watchable interface {
	// Watch emits an Event for each change of a key matching pattern.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Gateway is the persistence contract consumed by the Store.
// Every operation is bound to a fixed, versionless key.
type Gateway interface {
	// ReadNotes returns the stored collection. An absent key yields an empty
	// collection and no error; a malformed value yields an empty collection
	// and an error wrapping ErrCorrupt.
	ReadNotes(ctx context.Context) ([]Note, error)

	// WriteNotes overwrites the whole collection.
	WriteNotes(ctx context.Context, notes []Note) error

	// ReadSettings returns the stored settings or DefaultSettings.
	ReadSettings(ctx context.Context) (Settings, error)

	// WriteSettings overwrites the settings record.
	WriteSettings(ctx context.Context, s Settings) error
}

// ImageStore copies picked images into durable local storage and removes them again.
type ImageStore interface {
	// Import copies src and returns the durable reference.
	Import(ctx context.Context, src string) (string, error)

	// Release removes the stored files behind refs.
	Release(ctx context.Context, refs ...string) error
}
