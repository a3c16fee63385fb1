package core

// Note is the central entity of the domain.
// It pairs free text with zero or more stored image references.
// Timestamps are milliseconds since the Unix epoch.
type Note struct {
	ID        string   `json:"id" yaml:"id"`
	Text      string   `json:"text" yaml:"text"`
	ImageRefs []string `json:"imageRefs" yaml:"imageRefs"`
	CreatedAt int64    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt int64    `json:"updatedAt" yaml:"updatedAt"`
}

// NoteUpdate carries the fields to merge into an existing Note.
// A nil field is left untouched. A non-nil empty ImageRefs clears the images.
type NoteUpdate struct {
	Text      *string
	ImageRefs []string
}

// Clone returns a copy of n that shares no memory with it.
func (n Note) Clone() Note {
	c := n
	c.ImageRefs = make([]string, len(n.ImageRefs))
	copy(c.ImageRefs, n.ImageRefs)
	return c
}

// HasImage reports whether ref is attached to the note.
func (n Note) HasImage(ref string) bool {
	for _, r := range n.ImageRefs {
		if r == ref {
			return true
		}
	}
	return false
}

func cloneNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}
