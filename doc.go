// Package snapnote is the Composition Root for snapnote, a local store of
// short text notes with attached photos.
//
// It connects the Store (pkg/core), which owns the in-memory note list and the
// view state, with a persistence backend chosen through functional options:
// one JSON file per key (fs, optionally committed to git), a SQLite database
// (sqlite) or a volatile map (memory).
//
// The Store answers every mutation synchronously from memory and persists
// snapshots in the background through a single writer. Reads never block on disk.
//
// Usage:
//
//	store, err := snapnote.New(ctx, "./notes",
//		snapnote.WithAdapter("sqlite"),
//		snapnote.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer store.Close(ctx)
//
//	note := store.AddNote(ctx, "buy milk", nil)
//	store.SetSearchQuery("milk")
//	visible := store.FilteredNotes()
package snapnote
