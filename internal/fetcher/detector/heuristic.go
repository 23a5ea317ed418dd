// Package detector decides when a probe fetch must be promoted to a
// headless browser.
package detector

import (
	"bytes"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// Heuristic flags responses that will not extract without script execution:
// authwall redirect shells and near-empty script-only documents.
type Heuristic struct {
	MinHTMLBytes int
}

// NewHeuristic creates a detector. threshold 0 selects the default.
func NewHeuristic(threshold int) *Heuristic {
	if threshold == 0 {
		threshold = 2048
	}
	return &Heuristic{MinHTMLBytes: threshold}
}

// wallMarkers appear in interstitials that hide the real page content.
var wallMarkers = [][]byte{
	[]byte("authwall"),
	[]byte("/checkpoint/challenge"),
	[]byte("please enable javascript"),
}

// ShouldPromote reports whether a headless fetch is required.
func (h *Heuristic) ShouldPromote(resp scrape.FetchResponse) bool {
	if resp.StatusCode != 200 {
		return false
	}
	if len(resp.Body) == 0 {
		return true
	}
	lower := bytes.ToLower(resp.Body)
	for _, marker := range wallMarkers {
		if bytes.Contains(lower, marker) {
			return true
		}
	}
	return len(resp.Body) < h.MinHTMLBytes
}
