package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Persistence keys used by the writer queue.
const (
	notesWriteKey    = "notes"
	settingsWriteKey = "settings"
)

// Store is the in-memory authority for notes, the search query and the layout
// preference during a session. Mutations apply synchronously; persistence
// happens in the background and never fails the caller.
type Store struct {
	gw     Gateway
	images ImageStore
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	writer *writer

	mu          sync.RWMutex
	notes       []Note
	query       string
	layout      LayoutMode
	initialized bool
	closed      bool

	// Mutations made before Initialize, persisted once hydration is done.
	pendingNotes  bool
	pendingLayout bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source (useful for testing).
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how note IDs are generated.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithImageStore enables image import and cleanup of orphaned images on delete.
func WithImageStore(images ImageStore) StoreOption {
	return func(s *Store) {
		s.images = images
	}
}

// NewStore creates a Store synchronized against gw.
func NewStore(gw Gateway, opts ...StoreOption) *Store {
	s := &Store{
		gw:     gw,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		newID:  uuid.NewString,
		layout: LayoutGrid,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.writer = newWriter(s.logger)
	return s
}

// Initialize hydrates the Store from the gateway. It runs once; later calls are no-ops.
// Read failures are logged and leave the state empty.
//
// Callers should Initialize before mutating. Changes made earlier stay in
// memory without being written; Initialize keeps them ahead of the stored
// notes (matching IDs resolve to the in-memory note), keeps an explicitly set
// layout, and then persists the merged state.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.initialized {
		return nil
	}
	s.initialized = true

	var (
		notes    []Note
		settings Settings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		notes, err = s.gw.ReadNotes(gctx)
		if err != nil {
			s.logger.Error("failed to load notes", "error", err)
			notes = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settings, err = s.gw.ReadSettings(gctx)
		if err != nil {
			s.logger.Error("failed to load settings", "error", err)
			settings = DefaultSettings()
		}
		return nil
	})
	_ = g.Wait()

	stored := dedupe(notes, s.logger)
	if s.pendingNotes {
		seen := make(map[string]bool, len(s.notes))
		for _, n := range s.notes {
			seen[n.ID] = true
		}
		for _, n := range stored {
			if !seen[n.ID] {
				s.notes = append(s.notes, n)
			}
		}
		s.persistNotesLocked(ctx)
	} else {
		s.notes = stored
	}
	if s.pendingLayout {
		s.persistLayoutLocked(ctx)
	} else {
		s.layout = settings.Normalize().LayoutMode
	}
	s.pendingNotes, s.pendingLayout = false, false

	s.logger.Debug("store initialized", "notes", len(s.notes), "layout", s.layout)
	return nil
}

// dedupe drops later notes whose ID was already seen, keeping IDs unique.
func dedupe(notes []Note, logger *slog.Logger) []Note {
	seen := make(map[string]bool, len(notes))
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.ID == "" || seen[n.ID] {
			logger.Warn("dropping stored note with empty or duplicate id", "id", n.ID)
			continue
		}
		seen[n.ID] = true
		if n.ImageRefs == nil {
			n.ImageRefs = []string{}
		}
		if n.UpdatedAt < n.CreatedAt {
			n.UpdatedAt = n.CreatedAt
		}
		out = append(out, n)
	}
	return out
}

// AddNote creates a note, prepends it to the collection and schedules a persist.
// The returned note is valid regardless of the persist outcome.
func (s *Store) AddNote(ctx context.Context, text string, imageRefs []string) Note {
	now := s.now().UnixMilli()
	refs := make([]string, len(imageRefs))
	copy(refs, imageRefs)

	s.mu.Lock()
	n := Note{
		ID:        s.uniqueIDLocked(),
		Text:      text,
		ImageRefs: refs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.notes = append([]Note{n}, s.notes...)
	s.persistNotesLocked(ctx)
	s.mu.Unlock()

	s.logger.Debug("note added", "id", n.ID)
	return n.Clone()
}

func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
}

// UpdateNote merges upd into the note with the given id and refreshes UpdatedAt.
// An unknown id is a silent no-op and reports false. Images dropped from the
// note and referenced by no other note are released.
func (s *Store) UpdateNote(ctx context.Context, id string, upd NoteUpdate) (Note, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return Note{}, false
	}

	n := s.notes[i]
	var dropped []string
	if upd.Text != nil {
		n.Text = *upd.Text
	}
	if upd.ImageRefs != nil {
		for _, ref := range n.ImageRefs {
			if !slices.Contains(upd.ImageRefs, ref) {
				dropped = append(dropped, ref)
			}
		}
		n.ImageRefs = make([]string, len(upd.ImageRefs))
		copy(n.ImageRefs, upd.ImageRefs)
	}
	n.UpdatedAt = s.touch(n.UpdatedAt)
	s.notes[i] = n
	s.persistNotesLocked(ctx)
	orphans := s.orphansLocked(dropped)
	out := n.Clone()
	s.mu.Unlock()

	s.release(orphans)
	return out, true
}

// touch returns a timestamp strictly after prev.
func (s *Store) touch(prev int64) int64 {
	now := s.now().UnixMilli()
	if now <= prev {
		now = prev + 1
	}
	return now
}

// DeleteNote removes the note with the given id. An unknown id is a silent no-op.
// Images referenced only by the removed note are released through the ImageStore.
func (s *Store) DeleteNote(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}

	removed := s.notes[i]
	s.notes = slices.Delete(s.notes, i, i+1)
	s.persistNotesLocked(ctx)
	orphans := s.orphansLocked(removed.ImageRefs)
	s.mu.Unlock()

	s.logger.Debug("note deleted", "id", id)
	s.release(orphans)
	return true
}

// orphansLocked returns the refs no remaining note points to.
func (s *Store) orphansLocked(refs []string) []string {
	var out []string
	for _, ref := range refs {
		used := false
		for _, n := range s.notes {
			if n.HasImage(ref) {
				used = true
				break
			}
		}
		if !used && !slices.Contains(out, ref) {
			out = append(out, ref)
		}
	}
	return out
}

// release removes orphaned image files in the background.
func (s *Store) release(refs []string) {
	if s.images == nil || len(refs) == 0 {
		return
	}
	err := s.writer.enqueue("images:"+strings.Join(refs, ","), func(ctx context.Context) error {
		return s.images.Release(ctx, refs...)
	})
	if err != nil {
		s.logger.Warn("image cleanup not scheduled", "refs", refs, "error", err)
	}
}

// ImportImages copies each source into the image store and returns the
// references that were stored. A failed copy means "no image attached".
func (s *Store) ImportImages(ctx context.Context, srcs ...string) []string {
	refs := make([]string, 0, len(srcs))
	if s.images == nil {
		s.logger.Warn("image import requested without an image store", "count", len(srcs))
		return refs
	}
	for _, src := range srcs {
		ref, err := s.images.Import(ctx, src)
		if err != nil {
			s.logger.Warn("image not attached", "src", src, "error", err)
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// AttachImage imports src and appends it to the note's images.
// It reports false if the note does not exist or the copy failed.
func (s *Store) AttachImage(ctx context.Context, id, src string) (Note, bool) {
	if _, ok := s.Note(id); !ok {
		return Note{}, false
	}
	refs := s.ImportImages(ctx, src)
	if len(refs) == 0 {
		return Note{}, false
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		// Deleted while copying.
		s.mu.Unlock()
		s.release(refs)
		return Note{}, false
	}
	n := s.notes[i]
	n.ImageRefs = append(slices.Clone(n.ImageRefs), refs...)
	n.UpdatedAt = s.touch(n.UpdatedAt)
	s.notes[i] = n
	s.persistNotesLocked(ctx)
	s.mu.Unlock()

	return n.Clone(), true
}

// SetSearchQuery updates the active filter. It does not persist.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// SetLayoutMode updates the layout preference and persists the settings record.
func (s *Store) SetLayoutMode(ctx context.Context, mode LayoutMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLayout, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = mode
	s.persistLayoutLocked(ctx)
	return nil
}

func (s *Store) persistLayoutLocked(ctx context.Context) {
	if !s.initialized {
		s.pendingLayout = true
		return
	}
	settings := Settings{LayoutMode: s.layout}
	reason := changeReason(ctx)
	s.schedule(settingsWriteKey, func(ctx context.Context) error {
		return s.gw.WriteSettings(reason(ctx), settings)
	})
}

// FilteredNotes returns the notes matching the search query, most recently
// updated first. Ties keep collection order.
func (s *Store) FilteredNotes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filter(s.notes, s.query)
}

// Note returns a copy of the note with the given id.
func (s *Store) Note(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Note{}, false
	}
	return s.notes[i].Clone(), true
}

// Notes returns a copy of the collection in stored order.
func (s *Store) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.notes)
}

// ImageRefs returns every image reference held by a live note.
func (s *Store) ImageRefs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var refs []string
	for _, n := range s.notes {
		for _, ref := range n.ImageRefs {
			if !slices.Contains(refs, ref) {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// SearchQuery returns the active filter text.
func (s *Store) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// LayoutMode returns the current layout preference.
func (s *Store) LayoutMode() LayoutMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

// Len returns the number of live notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Flush blocks until every scheduled write has been attempted.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close flushes pending writes and stops background persistence.
// The in-memory state stays readable; later mutations are not persisted.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.writer.close(ctx)
}

// Watch observes external changes of the underlying storage if supported.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.gw.(Watchable)
	if !ok {
		return nil, errors.New("gateway does not support watching")
	}
	return w.Watch(ctx, pattern)
}

// persistNotesLocked snapshots the collection and schedules a full write.
// Caller holds s.mu.
func (s *Store) persistNotesLocked(ctx context.Context) {
	if !s.initialized {
		s.pendingNotes = true
		return
	}
	snapshot := cloneNotes(s.notes)
	reason := changeReason(ctx)
	s.schedule(notesWriteKey, func(ctx context.Context) error {
		return s.gw.WriteNotes(reason(ctx), snapshot)
	})
}

// changeReason carries the caller's ChangeReasonKey into the background write.
func changeReason(ctx context.Context) func(context.Context) context.Context {
	msg, _ := ctx.Value(ChangeReasonKey).(string)
	return func(wctx context.Context) context.Context {
		if msg == "" {
			return wctx
		}
		return context.WithValue(wctx, ChangeReasonKey, msg)
	}
}

func (s *Store) schedule(key string, fn writeFunc) {
	if err := s.writer.enqueue(key, fn); err != nil {
		s.logger.Warn("change kept in memory only", "key", key, "error", err)
	}
}

func (s *Store) indexLocked(id string) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
