package entitymap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

func TestLookupLastWriteWins(t *testing.T) {
	t.Parallel()

	m := entitymap.New()
	m.Append(scrape.EntityRef{Name: "Acme", ProfileURL: "https://example.com/acme-1"})
	m.Append(scrape.EntityRef{Name: "Beta", ProfileURL: "https://example.com/beta"})
	m.Append(scrape.EntityRef{Name: "Acme", ProfileURL: "https://example.com/acme-2"})

	url, ok := m.Lookup("Acme")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/acme-2", url)

	// Both occurrences stay in the entry list.
	assert.Equal(t, 3, m.Len())
}

func TestLookupIsExact(t *testing.T) {
	t.Parallel()

	m := entitymap.FromEntries([]scrape.EntityRef{
		{Name: "Acme Corp", ProfileURL: "https://example.com/acme"},
	})

	_, ok := m.Lookup("acme corp")
	assert.False(t, ok, "matching must be case-sensitive")
	_, ok = m.Lookup("Acme Corp ")
	assert.False(t, ok, "no whitespace normalization")
	_, ok = m.Lookup("Acme Corp")
	assert.True(t, ok)
}

func TestEntriesPreserveOrder(t *testing.T) {
	t.Parallel()

	refs := []scrape.EntityRef{
		{Name: "c", ProfileURL: "u3"},
		{Name: "a", ProfileURL: "u1"},
		{Name: "b", ProfileURL: "u2"},
	}
	m := entitymap.FromEntries(refs)
	assert.Equal(t, refs, m.Entries())
}
