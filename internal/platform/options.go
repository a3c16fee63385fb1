package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/snapnote/pkg/core"
)

// options holds the internal configuration for a snapnote vault.
type options struct {
	storage core.Storage
	logger  *slog.Logger
	adapter string
	clock   func() time.Time
	config  map[string]interface{}
}

// Option defines a functional option for configuring a vault.
type Option func(*options)

// defaultOptions returns the default configuration.
// adapter stays empty so the vault file can choose it.
func defaultOptions() *options {
	return &options{
		config: make(map[string]interface{}),
	}
}

func parseOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithVersioning enables or disables committing every write to git.
// By default, versioning is disabled.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["versioning"] = enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger for the store and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage allows injecting a custom storage backend (e.g. mock).
// If provided, the adapter selection is skipped.
func WithStorage(storage core.Storage) Option {
	return func(o *options) {
		o.storage = storage
	}
}

// WithAdapter selects the storage adapter by name: "fs", "sqlite" or "memory".
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithSystemDir sets the hidden directory name (default ".snapnote").
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithImageDir sets where imported images are copied.
// Relative paths are resolved against the vault. Defaults to "images".
func WithImageDir(dir string) Option {
	return func(o *options) {
		o.config["image_dir"] = dir
	}
}

// WithClock overrides the clock used for note timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the Watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Writes fail with ErrReadOnly and are only logged by the store.
// 2. Initialization (Mkdir, Git Init, schema) is skipped.
// 3. Images are neither imported nor released.
// 4. Dev Safety (go run temp dir) is BYPASSED (uses real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true), the vault is re-rooted into a temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

func (o *options) bool(key string) bool {
	v, _ := o.config[key].(bool)
	return v
}

func (o *options) string(key string) string {
	v, _ := o.config[key].(string)
	return v
}
