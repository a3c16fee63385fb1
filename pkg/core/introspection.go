package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Notes         int         `json:"notes"`
	SearchQuery   string      `json:"search_query"`
	LayoutMode    LayoutMode  `json:"layout_mode"`
	Initialized   bool        `json:"initialized"`
	Closed        bool        `json:"closed"`
	QueuedWrites  int         `json:"queued_writes"`
	Writes        WriterStats `json:"writes"`
	GatewayType   string      `json:"gateway_type"`
	ImagesEnabled bool        `json:"images_enabled"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gwType := "gateway"
	if comp, ok := s.gw.(introspection.Component); ok {
		gwType = comp.ComponentType()
	}

	return StoreState{
		Notes:         len(s.notes),
		SearchQuery:   s.query,
		LayoutMode:    s.layout,
		Initialized:   s.initialized,
		Closed:        s.closed,
		QueuedWrites:  s.writer.queued(),
		Writes:        s.writer.snapshot(),
		GatewayType:   gwType,
		ImagesEnabled: s.images != nil,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
