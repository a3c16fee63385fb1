package core

// LayoutMode is the display layout preference of the gallery.
type LayoutMode string

const (
	LayoutGrid LayoutMode = "grid"
	LayoutList LayoutMode = "list"
)

// Valid reports whether m is a known layout.
func (m LayoutMode) Valid() bool {
	return m == LayoutGrid || m == LayoutList
}

// Settings is the single persisted preferences record.
type Settings struct {
	LayoutMode LayoutMode `json:"layoutMode" yaml:"layoutMode"`
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{LayoutMode: LayoutGrid}
}

// Normalize replaces unknown values with their defaults.
func (s Settings) Normalize() Settings {
	if !s.LayoutMode.Valid() {
		s.LayoutMode = LayoutGrid
	}
	return s
}

// EventType represents the type of change in the storage.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change of a stored key.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + e.Key
}

type contextKey string

// ChangeReasonKey is the context key for passing a change reason (commit message) to versioned storages.
const ChangeReasonKey contextKey = "change_reason"
