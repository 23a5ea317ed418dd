// Package jsonfile persists the entity map as an ordered JSON array of
// single-key objects, the interchange format shared by the two crawl stages.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// Store reads and writes the JSON map file.
type Store struct {
	path string
}

// New returns a store rooted at path.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("map path is required")
	}
	return &Store{path: path}, nil
}

// Save writes the map as `[{"name": "url"}, ...]`, one object per appended
// entry, preserving arrival order (and therefore duplicate names).
func (s *Store) Save(ctx context.Context, m *entitymap.Map) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save canceled: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create map dir: %w", err)
	}

	entries := m.Entries()
	payload := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		payload = append(payload, map[string]string{e.Name: e.ProfileURL})
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal map: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write map %s: %w", s.path, err)
	}
	return nil
}

// Load restores the map from disk. Both the array-of-objects form and a
// flat object are accepted; decoding is token-level so duplicate keys are
// preserved in file order, which keeps last-write-wins lookup faithful to
// what was crawled. A missing or malformed file is a setup error.
func (s *Store) Load(ctx context.Context) (*entitymap.Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load canceled: %w", err)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, scrape.NewSetupError("entity map", fmt.Errorf("open map %s: %w", s.path, err))
	}
	defer f.Close() //nolint:errcheck

	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return nil, scrape.NewSetupError("entity map", fmt.Errorf("read map %s: %w", s.path, err))
	}

	m := entitymap.New()
	switch delim := tok.(type) {
	case json.Delim:
		switch delim {
		case '[':
			err = decodeArray(dec, m)
		case '{':
			err = decodeObject(dec, m)
		default:
			err = fmt.Errorf("unexpected delimiter %q", delim.String())
		}
	default:
		err = fmt.Errorf("map file must start with an array or object")
	}
	if err != nil {
		return nil, scrape.NewSetupError("entity map", fmt.Errorf("decode map %s: %w", s.path, err))
	}
	return m, nil
}

func decodeArray(dec *json.Decoder, m *entitymap.Map) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("array element: %w", err)
		}
		delim, ok := tok.(json.Delim)
		if !ok || delim != '{' {
			return fmt.Errorf("array elements must be objects, got %v", tok)
		}
		if err := decodeObject(dec, m); err != nil {
			return err
		}
	}
	// Consume the closing ']'.
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("close array: %w", err)
	}
	return nil
}

// decodeObject walks key/value pairs after the opening '{' has been read,
// appending each pair in order.
func decodeObject(dec *json.Decoder, m *entitymap.Map) error {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("object key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("object key must be a string, got %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("object value: %w", err)
		}
		val, ok := valTok.(string)
		if !ok {
			return fmt.Errorf("value for %q must be a string, got %v", key, valTok)
		}
		m.Append(scrape.EntityRef{Name: key, ProfileURL: val})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("close object: %w", err)
	}
	return nil
}
