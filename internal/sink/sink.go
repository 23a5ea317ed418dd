// Package sink provides record writers for the extraction pipeline. File
// sinks are selected by output path extension; a Pub/Sub sink streams
// records to a topic for downstream consumers.
package sink

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// Open creates a file-backed sink for the given output path. The extension
// picks the format: .json for a JSON array, .jsonl for newline-delimited
// JSON, .csv for comma-separated values with a header row.
func Open(path string) (scrape.RecordSink, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return newJSONArray(path)
	case ".jsonl", ".ndjson":
		return newJSONLines(path)
	case ".csv":
		return newCSV(path)
	default:
		return nil, scrape.NewSetupError("sink",
			fmt.Errorf("unsupported output extension %q (want .json, .jsonl, or .csv)", filepath.Ext(path)))
	}
}
