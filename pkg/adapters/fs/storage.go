package fs

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

	"github.com/aretw0/snapnote/internal/fsutil"
	"github.com/aretw0/snapnote/pkg/core"
	"github.com/aretw0/snapnote/pkg/git"
)

// Extension of every stored key file.
const Extension = ".json"

// Config holds the configuration for the filesystem storage.
type Config struct {
	Path         string
	SystemDir    string // e.g. ".snapnote"
	MustExist    bool
	ReadOnly     bool
	Versioned    bool // commit each write to git
	Logger       *slog.Logger
	ErrorHandler func(error) // receives watcher runtime errors
}

// Storage implements core.Storage with one JSON file per key inside Path.
type Storage struct {
	Path   string
	git    *git.Client
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastWrite     *time.Time
	writes        int
}

// NewStorage creates a new filesystem-backed storage.
func NewStorage(config Config) *Storage {
	if config.SystemDir == "" {
		config.SystemDir = ".snapnote"
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{
		Path:   config.Path,
		git:    git.NewClient(config.Path, config.SystemDir+".lock", config.Logger),
		config: config,
	}
}

// Initialize prepares the directory and, when versioned, the git repository.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", s.Path)
		}
	}
	if s.config.ReadOnly {
		return nil
	}

	if err := os.MkdirAll(filepath.Join(s.Path, s.config.SystemDir), 0755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}

	if !s.config.Versioned {
		return nil
	}
	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !s.git.IsRepo() {
		if err := s.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	mod, err := s.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	if mod && wasNewRepo {
		if err := s.git.Add(".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := s.git.Commit(fmt.Sprintf("chore: configure %s ignore", s.config.SystemDir)); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}
	return nil
}

// ensureIgnore keeps the system directory, lock and temp files out of history.
func (s *Storage) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(s.Path, ".gitignore")
	entries := []string{s.config.SystemDir + "/", s.config.SystemDir + ".lock", fsutil.TempFilePrefix + "*"}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(strings.Join(missing, "\n") + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// filename maps a key to its file, rejecting keys that could escape Path.
func (s *Storage) filename(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) || filepath.Base(key) != key {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return key + Extension, nil
}

// Get implements core.Storage.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	name, err := s.filename(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.Path, name))
	if os.IsNotExist(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Set writes the value atomically and, when versioned, commits it.
//
// Workflow:
//  1. Validate key and read-only mode.
//  2. Write the file through temp file + rename.
//  3. (If versioned) 'git add' and 'git commit' with the context change reason.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	name, err := s.filename(key)
	if err != nil {
		return err
	}

	if err := fsutil.WriteFileAtomic(filepath.Join(s.Path, name), value, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	s.recordWrite()
	s.config.Logger.Debug("key written", "key", key, "bytes", len(value))

	if !s.config.Versioned {
		return nil
	}
	return s.commit(ctx, "update "+key, func() error { return s.git.Add(name) })
}

// Delete removes the key file. An absent key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	name, err := s.filename(key)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.Path, name)
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}
	s.recordWrite()

	if !s.config.Versioned {
		return nil
	}
	return s.commit(ctx, "delete "+key, func() error { return s.git.Rm(name) })
}

func (s *Storage) commit(ctx context.Context, defaultMsg string, stage func() error) error {
	unlock, err := s.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := stage(); err != nil {
		return fmt.Errorf("failed to stage: %w", err)
	}
	if !s.git.HasStagedChanges() {
		return nil
	}

	msg := defaultMsg
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		msg = val
	}
	if err := s.git.Commit(msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

// Keys lists the keys currently stored.
func (s *Storage) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || fsutil.IsTemp(e.Name()) || filepath.Ext(e.Name()) != Extension {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), Extension))
	}
	return keys, nil
}

// keyFromPath resolves the key of a file event, or an error for foreign files.
func (s *Storage) keyFromPath(path string) (string, error) {
	rel, err := filepath.Rel(s.Path, path)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(filepath.ToSlash(rel), "/") {
		return "", errors.New("path outside vault root")
	}
	if filepath.Ext(rel) != Extension {
		return "", errors.New("not a key file")
	}
	return strings.TrimSuffix(rel, Extension), nil
}

// IsGitInstalled checks if git is available in the system path.
func IsGitInstalled() bool {
	return git.IsInstalled()
}

var _ core.Storage = (*Storage)(nil)
var _ core.Watchable = (*Storage)(nil)
