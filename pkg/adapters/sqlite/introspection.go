package sqlite

import (
	"context"

	"github.com/aretw0/introspection"
)

// StorageState exposes internal state for observability.
type StorageState struct {
	Path     string   `json:"path"`
	ReadOnly bool     `json:"read_only"`
	Open     bool     `json:"open"`
	Keys     []string `json:"keys"`
	Writes   int      `json:"writes"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	keys, _ := s.Keys(context.Background())

	s.mu.RLock()
	defer s.mu.RUnlock()
	return StorageState{
		Path:     s.config.Path,
		ReadOnly: s.config.ReadOnly,
		Open:     s.db != nil,
		Keys:     keys,
		Writes:   s.writes,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "sqlite"
}

var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
