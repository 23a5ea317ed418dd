package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// jsonLines streams one JSON object per line as records arrive, so a killed
// run still leaves every completed record on disk.
type jsonLines struct {
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

func newJSONLines(path string) (*jsonLines, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, scrape.NewSetupError("sink", fmt.Errorf("create %s: %w", path, err))
	}
	buf := bufio.NewWriter(f)
	return &jsonLines{file: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

func (s *jsonLines) Write(_ context.Context, record scrape.ProfileRecord) error {
	if err := s.enc.Encode(record); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

func (s *jsonLines) Close() error {
	if err := s.buf.Flush(); err != nil {
		s.file.Close() //nolint:errcheck
		return fmt.Errorf("flush %s: %w", s.file.Name(), err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.file.Name(), err)
	}
	return nil
}
