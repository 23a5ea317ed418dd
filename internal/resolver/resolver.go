// Package resolver turns requested company names into fetchable profile
// targets using the entity map built by the directory stage.
package resolver

import (
	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// Resolve looks up each requested name in the map. Matching follows the map
// contract exactly: case-sensitive, no normalization, last-write-wins on
// duplicates. Partial misses never fail the call; an empty resolved set is
// a valid result. Resolved preserves request order, and Resolved plus
// Unresolved partition Requested exactly.
func Resolve(names []string, m *entitymap.Map) scrape.ResolutionResult {
	result := scrape.ResolutionResult{
		Requested:  append([]string(nil), names...),
		Resolved:   make([]scrape.EntityRef, 0, len(names)),
		Unresolved: []string{},
	}
	for _, name := range names {
		url, ok := m.Lookup(name)
		if !ok {
			result.Unresolved = append(result.Unresolved, name)
			continue
		}
		result.Resolved = append(result.Resolved, scrape.EntityRef{Name: name, ProfileURL: url})
	}
	return result
}
