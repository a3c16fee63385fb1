package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snaplifecycle "github.com/aretw0/snapnote/pkg/adapters/lifecycle"
	"github.com/aretw0/snapnote/pkg/core"
)

type fakeWatcher struct {
	ch      chan core.Event
	err     error
	pattern string
}

func (f *fakeWatcher) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	f.pattern = pattern
	if f.err != nil {
		return nil, f.err
	}
	return f.ch, nil
}

func TestSource_BridgesEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &fakeWatcher{ch: make(chan core.Event, 1)}
	src := snaplifecycle.NewSource(w, "notes")
	require.NoError(t, src.Start(ctx))
	assert.Equal(t, "notes", w.pattern)

	w.ch <- core.Event{Type: core.EventModify, Key: "notes"}

	select {
	case e := <-src.Events():
		assert.Equal(t, "MODIFY notes", e.String())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	close(w.ch)
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("source did not close")
	}
}

func TestSource_StartError(t *testing.T) {
	boom := errors.New("not watchable")
	src := snaplifecycle.NewSource(&fakeWatcher{err: boom}, "*")

	err := src.Start(context.Background())
	assert.ErrorIs(t, err, boom)

	_, ok := <-src.Events()
	assert.False(t, ok)
}
