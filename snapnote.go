package snapnote

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/snapnote/internal/platform"
	"github.com/aretw0/snapnote/pkg/core"
)

// --- Types ---

// Note is a public alias for the domain note.
type Note = core.Note

// NoteUpdate is a public alias for a partial note update.
type NoteUpdate = core.NoteUpdate

// Store is a public alias for the note store.
type Store = core.Store

// Vault bundles the store with the storage, gateway and image store behind it.
type Vault = platform.Vault

// FileConfig mirrors the optional snapnote.yaml vault file.
type FileConfig = platform.FileConfig

// --- Configuration ---

// Option defines a functional option for configuring a vault.
type Option = platform.Option

// WithVersioning commits every write to git (fs adapter only).
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the store and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage allows injecting a custom storage backend.
func WithStorage(storage core.Storage) Option {
	return platform.WithStorage(storage)
}

// WithAdapter selects the storage adapter by name ("fs", "sqlite", "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithSystemDir sets the hidden directory name (e.g. ".snapnote").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithImageDir sets where imported images are copied.
func WithImageDir(dir string) Option {
	return platform.WithImageDir(dir)
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithReadOnly opens the vault without ever writing to it.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the temp-dir sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithWatcherErrorHandler receives runtime errors from Watch.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New returns a hydrated Store for the vault at path.
func New(ctx context.Context, path string, opts ...Option) (*Store, error) {
	return platform.New(ctx, path, opts...)
}

// Open wires a vault and hydrates its store.
func Open(ctx context.Context, path string, opts ...Option) (*Vault, error) {
	return platform.Open(ctx, path, opts...)
}

// --- Safety & Utils ---

// ResolveVaultPath determines the actual path for the vault based on safety rules.
func ResolveVaultPath(userPath string, forceTemp bool) string {
	return platform.ResolveVaultPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindVaultRoot recursively looks upwards for a vault root indicator.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// LoadConfig reads snapnote.yaml from dir.
func LoadConfig(dir string) (FileConfig, error) {
	return platform.LoadConfig(dir)
}

// SaveConfig writes snapnote.yaml into dir.
func SaveConfig(dir string, cfg FileConfig) error {
	return platform.SaveConfig(dir, cfg)
}
