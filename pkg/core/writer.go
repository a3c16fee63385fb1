package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"
)

// writeFunc performs one durable write.
type writeFunc func(ctx context.Context) error

// writer serializes persistence through a single goroutine.
// Each key holds at most one pending write: enqueuing a key that is already
// queued replaces the older payload, so only the latest snapshot reaches storage.
type writer struct {
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]writeFunc
	order   []string
	running bool
	started bool
	closed  bool
	stats   WriterStats

	wake    chan struct{}
	changed chan struct{}
	exited  chan struct{}
	cancel  context.CancelFunc
}

// WriterStats counts the outcomes of background writes.
type WriterStats struct {
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Superseded int `json:"superseded"`
}

func newWriter(logger *slog.Logger) *writer {
	return &writer{
		logger:  logger,
		pending: make(map[string]writeFunc),
		wake:    make(chan struct{}, 1),
		changed: make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// enqueue schedules fn as the next write for key.
func (w *writer) enqueue(key string, fn writeFunc) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if _, queued := w.pending[key]; queued {
		w.stats.Superseded++
	} else {
		w.order = append(w.order, key)
	}
	w.pending[key] = fn
	if !w.started {
		w.started = true
		w.start()
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

// start launches the drain loop. Caller holds w.mu.
func (w *writer) start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(w.exited)
		return w.run(ctx)
	}, lifecycle.WithErrorHandler(func(err error) {
		w.logger.Error("persistence writer stopped", "error", err)
	}))
}

func (w *writer) run(ctx context.Context) error {
	for {
		key, fn, ok := w.next()
		if !ok {
			select {
			case <-w.wake:
				continue
			case <-ctx.Done():
				return nil
			}
		}

		err := w.exec(ctx, fn)

		w.mu.Lock()
		w.running = false
		if err != nil {
			w.stats.Failed++
		} else {
			w.stats.Completed++
		}
		w.signalLocked()
		w.mu.Unlock()

		if err != nil {
			w.logger.Error("persist failed", "key", key, "error", err)
		} else {
			w.logger.Debug("persisted", "key", key)
		}
	}
}

// exec runs fn, turning a panic into an error so one bad write does not kill the queue.
func (w *writer) exec(ctx context.Context, fn writeFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("write panic: %v", r)
		}
	}()
	return fn(ctx)
}

func (w *writer) next() (string, writeFunc, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.order) == 0 {
		return "", nil, false
	}
	key := w.order[0]
	w.order = w.order[1:]
	fn := w.pending[key]
	delete(w.pending, key)
	w.running = true
	return key, fn, true
}

// signalLocked wakes every flush waiter. Caller holds w.mu.
func (w *writer) signalLocked() {
	close(w.changed)
	w.changed = make(chan struct{})
}

// flush blocks until nothing is queued or running.
func (w *writer) flush(ctx context.Context) error {
	for {
		w.mu.Lock()
		if len(w.order) == 0 && !w.running {
			w.mu.Unlock()
			return nil
		}
		ch := w.changed
		w.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// close flushes pending writes and stops the drain loop.
func (w *writer) close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	started := w.started
	w.mu.Unlock()

	if !started {
		return nil
	}

	err := w.flush(ctx)
	w.cancel()

	select {
	case <-w.exited:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (w *writer) snapshot() WriterStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *writer) queued() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.order)
}
