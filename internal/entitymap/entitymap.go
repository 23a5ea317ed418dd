// Package entitymap holds the ordered name-to-profile-URL map built by the
// directory stage and read by the resolver. The map is append-only during a
// crawl and read-only afterwards.
package entitymap

import (
	"context"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// Map is an ordered collection of entity references. Duplicate names are
// kept in arrival order; Lookup resolves them last-write-wins. Appends are
// not synchronized: the frontier funnels all writes through a single
// aggregator goroutine.
type Map struct {
	entries []scrape.EntityRef
	index   map[string]string
}

// New returns an empty map.
func New() *Map {
	return &Map{index: make(map[string]string)}
}

// FromEntries builds a map from an ordered entry list, preserving
// duplicates.
func FromEntries(entries []scrape.EntityRef) *Map {
	m := New()
	for _, e := range entries {
		m.Append(e)
	}
	return m
}

// Append adds a reference in arrival order. A repeated name overwrites the
// lookup index but the entry list keeps both occurrences.
func (m *Map) Append(ref scrape.EntityRef) {
	m.entries = append(m.entries, ref)
	m.index[ref.Name] = ref.ProfileURL
}

// Lookup returns the profile URL last appended for name. Matching is exact
// and case-sensitive; no normalization is applied.
func (m *Map) Lookup(name string) (string, bool) {
	url, ok := m.index[name]
	return url, ok
}

// Entries returns the underlying ordered entry list.
func (m *Map) Entries() []scrape.EntityRef {
	return m.entries
}

// Len reports the number of appended entries, duplicates included.
func (m *Map) Len() int {
	return len(m.entries)
}

// Store persists and restores entity maps. Load failures at stage-2 startup
// are setup errors: the profile stage cannot run without its input map.
type Store interface {
	Save(ctx context.Context, m *Map) error
	Load(ctx context.Context) (*Map, error)
}
