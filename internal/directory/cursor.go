package directory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// LoadCursors reads persisted partition cursors. A missing file is a fresh
// start and yields the full partition set; a file that exists but cannot be
// decoded is a setup failure, since silently restarting would re-crawl
// completed partitions.
func LoadCursors(path string) ([]scrape.PartitionCursor, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return FreshCursors(), nil
	}
	if err != nil {
		return nil, scrape.NewSetupError("cursors", fmt.Errorf("read %s: %w", path, err))
	}

	var cursors []scrape.PartitionCursor
	if err := json.Unmarshal(data, &cursors); err != nil {
		return nil, scrape.NewSetupError("cursors", fmt.Errorf("decode %s: %w", path, err))
	}

	// Partitions added since the file was written start fresh.
	seen := make(map[scrape.PartitionID]bool, len(cursors))
	for _, c := range cursors {
		seen[c.Partition] = true
	}
	for _, p := range scrape.Partitions() {
		if !seen[p] {
			cursors = append(cursors, scrape.PartitionCursor{Partition: p})
		}
	}
	return cursors, nil
}

// FreshCursors returns a not-started cursor per partition in traversal order.
func FreshCursors() []scrape.PartitionCursor {
	parts := scrape.Partitions()
	out := make([]scrape.PartitionCursor, 0, len(parts))
	for _, p := range parts {
		out = append(out, scrape.PartitionCursor{Partition: p})
	}
	return out
}

// SaveCursors persists cursor state for resumption.
func SaveCursors(path string, cursors []scrape.PartitionCursor) error {
	data, err := json.MarshalIndent(cursors, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cursors: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
