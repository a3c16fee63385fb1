package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/snapnote/pkg/core"
)

var errBoom = errors.New("boom")

// MockGateway implements core.Gateway in memory and records every write.
type MockGateway struct {
	mu sync.Mutex

	notes    []core.Note
	settings *core.Settings

	ReadNotesErr     error
	ReadSettingsErr  error
	WriteNotesErr    error
	WriteSettingsErr error

	NotesWrites    int
	SettingsWrites int
}

func (m *MockGateway) ReadNotes(ctx context.Context) ([]core.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadNotesErr != nil {
		return nil, m.ReadNotesErr
	}
	out := make([]core.Note, len(m.notes))
	for i, n := range m.notes {
		out[i] = n.Clone()
	}
	return out, nil
}

func (m *MockGateway) WriteNotes(ctx context.Context, notes []core.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotesWrites++
	if m.WriteNotesErr != nil {
		return m.WriteNotesErr
	}
	m.notes = make([]core.Note, len(notes))
	for i, n := range notes {
		m.notes[i] = n.Clone()
	}
	return nil
}

func (m *MockGateway) ReadSettings(ctx context.Context) (core.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadSettingsErr != nil {
		return core.DefaultSettings(), m.ReadSettingsErr
	}
	if m.settings == nil {
		return core.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *MockGateway) WriteSettings(ctx context.Context, s core.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SettingsWrites++
	if m.WriteSettingsErr != nil {
		return m.WriteSettingsErr
	}
	m.settings = &s
	return nil
}

func (m *MockGateway) StoredNotes() []core.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notes
}

func (m *MockGateway) StoredSettings() *core.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// MockImages implements core.ImageStore.
type MockImages struct {
	mu       sync.Mutex
	n        int
	Fail     map[string]bool
	Released []string
}

func (m *MockImages) Import(ctx context.Context, src string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail[src] {
		return "", errBoom
	}
	m.n++
	return "stored-" + src, nil
}

func (m *MockImages) Release(ctx context.Context, refs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Released = append(m.Released, refs...)
	return nil
}

func (m *MockImages) ReleasedRefs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Released...)
}

// stepClock returns a clock that advances one millisecond per call.
func stepClock(start int64) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := time.UnixMilli(cur)
		cur++
		return t
	}
}

// frozenClock always returns the same instant.
func frozenClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func newTestStore(t *testing.T, gw core.Gateway, opts ...core.StoreOption) *core.Store {
	t.Helper()
	s := core.NewStore(gw, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return s
}

func flush(t *testing.T, s *core.Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
}
