package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// csvSink writes a header row of the schema field names followed by one row
// per record. Unknown counts render as the sentinel string, matching the
// JSON forms.
type csvSink struct {
	file   *os.File
	writer *csv.Writer
}

func newCSV(path string) (*csvSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, scrape.NewSetupError("sink", fmt.Errorf("create %s: %w", path, err))
	}
	w := csv.NewWriter(f)
	if err := w.Write(scrape.FieldNames()); err != nil {
		f.Close() //nolint:errcheck
		return nil, scrape.NewSetupError("sink", fmt.Errorf("write header: %w", err))
	}
	return &csvSink{file: f, writer: w}, nil
}

func (s *csvSink) Write(_ context.Context, record scrape.ProfileRecord) error {
	if err := s.writer.Write(record.Values()); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	return nil
}

func (s *csvSink) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close() //nolint:errcheck
		return fmt.Errorf("flush %s: %w", s.file.Name(), err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.file.Name(), err)
	}
	return nil
}
