package core

import (
	"slices"
	"strings"
)

// Filter returns copies of the notes whose text contains query
// (case-insensitive), sorted by UpdatedAt descending. An empty or
// whitespace-only query matches every note. The sort is stable, so notes with
// equal UpdatedAt keep their relative order from the input.
func Filter(notes []Note, query string) []Note {
	out := make([]Note, 0, len(notes))
	q := strings.ToLower(query)
	all := strings.TrimSpace(query) == ""
	for _, n := range notes {
		if all || strings.Contains(strings.ToLower(n.Text), q) {
			out = append(out, n.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b Note) int {
		switch {
		case a.UpdatedAt > b.UpdatedAt:
			return -1
		case a.UpdatedAt < b.UpdatedAt:
			return 1
		}
		return 0
	})
	return out
}
