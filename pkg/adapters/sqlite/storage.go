// Package sqlite stores keys as rows of a single table in a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/snapnote/pkg/core"
)

// DefaultFile is the database name used inside a vault.
const DefaultFile = "snapnote.db"

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Config holds the configuration for the SQLite storage.
type Config struct {
	Path     string // database file
	ReadOnly bool
	Logger   *slog.Logger
}

// Storage implements core.Storage on top of a kv table.
type Storage struct {
	config Config

	mu       sync.RWMutex
	db       *sql.DB
	hasTable bool
	writes   int
}

// NewStorage creates a storage. The database is opened by Initialize.
func NewStorage(config Config) *Storage {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{config: config}
}

// Initialize opens the database and creates the schema.
// In read-only mode the file must already exist and nothing is created.
func (s *Storage) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if s.config.ReadOnly {
		if _, err := os.Stat(s.config.Path); err != nil {
			return fmt.Errorf("database does not exist: %w", err)
		}
	} else if err := os.MkdirAll(filepath.Dir(s.config.Path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.config.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps writes serialized and the pragma below in effect.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return fmt.Errorf("failed to configure database: %w", err)
	}

	if !s.config.ReadOnly {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			db.Close()
			return fmt.Errorf("failed to migrate: %w", err)
		}
		s.hasTable = true
	} else {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'kv'").Scan(&name)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			db.Close()
			return fmt.Errorf("failed to inspect schema: %w", err)
		default:
			s.hasTable = true
		}
	}

	s.db = db
	s.config.Logger.Debug("sqlite storage opened", "path", s.config.Path, "read_only", s.config.ReadOnly)
	return nil
}

func (s *Storage) conn() (*sql.DB, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, false, errors.New("sqlite storage not initialized")
	}
	return s.db, s.hasTable, nil
}

// Get implements core.Storage.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	db, hasTable, err := s.conn()
	if err != nil {
		return nil, err
	}
	if !hasTable {
		return nil, core.ErrNotFound
	}

	var value []byte
	err = db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set implements core.Storage with an upsert.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	db, _, err := s.conn()
	if err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	s.config.Logger.Debug("key written", "key", key, "bytes", len(value))
	return nil
}

// Delete implements core.Storage. An absent key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	db, _, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in order.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	db, hasTable, err := s.conn()
	if err != nil || !hasTable {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close releases the database handle.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

var _ core.Storage = (*Storage)(nil)
