package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// jsonArray buffers records and writes one indented JSON array on Close.
// An empty run still produces a valid empty array.
type jsonArray struct {
	path    string
	records []scrape.ProfileRecord
}

func newJSONArray(path string) (*jsonArray, error) {
	// Fail early on an unwritable destination instead of at Close.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, scrape.NewSetupError("sink", fmt.Errorf("open %s: %w", path, err))
	}
	if err := f.Close(); err != nil {
		return nil, scrape.NewSetupError("sink", fmt.Errorf("close %s: %w", path, err))
	}
	return &jsonArray{path: path, records: []scrape.ProfileRecord{}}, nil
}

func (s *jsonArray) Write(_ context.Context, record scrape.ProfileRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *jsonArray) Close() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
