// Package images copies attached photos into a vault-owned directory and
// removes the ones no note references anymore.
package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/aretw0/snapnote/internal/fsutil"
	"github.com/aretw0/snapnote/pkg/core"
)

// ErrCopyFailed is returned when a source image cannot be copied.
// Callers treat it as "no image attached".
var ErrCopyFailed = errors.New("image copy failed")

// ManagedPattern matches the files created by Import.
const ManagedPattern = "shared_*.{jpg,jpeg,png,heic,webp}"

const defaultExt = ".jpg"

// Store keeps image copies in a single directory. A ref is the file name of
// the copy relative to that directory, so refs survive moving the vault.
type Store struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	imported int
	released int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for file names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store rooted at dir. The directory is created on first import.
func New(dir string, opts ...Option) *Store {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	s := &Store{
		dir:    filepath.Clean(dir),
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the image directory.
func (s *Store) Dir() string {
	return s.dir
}

// Import copies src into the image directory and returns the new ref.
func (s *Store) Import(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCopyFailed, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCopyFailed, err)
	}
	defer in.Close()

	if info, err := in.Stat(); err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a file", ErrCopyFailed, src)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCopyFailed, err)
	}

	ref := s.fileName(src)
	dst := filepath.Join(s.dir, ref)
	n, err := fsutil.WriteAtomic(dst, in, 0644)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCopyFailed, err)
	}
	if n == 0 {
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: %s is empty", ErrCopyFailed, src)
	}

	s.mu.Lock()
	s.imported++
	s.mu.Unlock()
	s.logger.Debug("image imported", "src", src, "ref", ref, "bytes", n)
	return ref, nil
}

// fileName builds shared_<ms>_<rand>.<ext>.
func (s *Store) fileName(src string) string {
	ext := strings.ToLower(filepath.Ext(src))
	if !managedExt(ext) {
		ext = defaultExt
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("shared_%d_%s%s", s.now().UnixMilli(), suffix, ext)
}

func managedExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".heic", ".webp":
		return true
	}
	return false
}

// Path resolves ref to a file path. Relative refs live in the image
// directory; absolute refs are returned unchanged.
func (s *Store) Path(ref string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(s.dir, ref)
}

// Validate reports whether ref points to an existing, non-empty file.
func (s *Store) Validate(ref string) bool {
	if ref == "" {
		return false
	}
	info, err := os.Stat(s.Path(ref))
	return err == nil && !info.IsDir() && info.Size() > 0
}

// owns reports whether ref resolves to a file directly inside the image directory.
func (s *Store) owns(ref string) bool {
	if ref == "" || ref == "." || ref == ".." {
		return false
	}
	if !filepath.IsAbs(ref) && filepath.Base(ref) != ref {
		return false
	}
	return filepath.Dir(s.Path(ref)) == s.dir
}

// Release removes the files behind refs. Refs outside the directory are left alone.
func (s *Store) Release(ctx context.Context, refs ...string) error {
	var errs []error
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !s.owns(ref) {
			s.logger.Debug("skipping foreign image", "ref", ref)
			continue
		}
		if err := os.Remove(s.Path(ref)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", ref, err))
			continue
		}
		s.mu.Lock()
		s.released++
		s.mu.Unlock()
		s.logger.Debug("image released", "ref", ref)
	}
	return errors.Join(errs...)
}

// Collect removes every managed file not listed in live and returns the
// removed refs. Live refs are matched by file name, so absolute refs written
// before the vault moved still protect their copies.
func (s *Store) Collect(ctx context.Context, live []string) ([]string, error) {
	keep := make(map[string]bool, len(live))
	for _, ref := range live {
		if ref != "" {
			keep[filepath.Base(ref)] = true
		}
	}

	matches, err := doublestar.Glob(os.DirFS(s.dir), ManagedPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.dir, err)
	}

	var orphans []string
	for _, name := range matches {
		if !keep[name] {
			orphans = append(orphans, name)
		}
	}
	if len(orphans) == 0 {
		return nil, nil
	}
	if err := s.Release(ctx, orphans...); err != nil {
		return nil, err
	}
	return orphans, nil
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Dir      string `json:"dir"`
	Imported int    `json:"imported"`
	Released int    `json:"released"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StoreState{Dir: s.dir, Imported: s.imported, Released: s.released}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "images"
}

var _ core.ImageStore = (*Store)(nil)
var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
