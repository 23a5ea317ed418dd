// Package directory implements the frontier crawler that enumerates the
// paginated company directory and accumulates the name-to-URL entity map.
package directory

import (
	"fmt"

	"github.com/leadforge/linkedin-leads-crawler/internal/pageparser"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// listingRule matches the anchor of each directory listing entry. The
// source serves two list variants for the same pages.
var listingRule = pageparser.Rule{
	Selectors: []string{
		"ul.directory li a",
		"ol.directory li a",
	},
}

// nextPageRule matches the pagination continuation link. Absence of a match
// is the end-of-partition signal.
var nextPageRule = pageparser.Rule{
	Selectors: []string{
		"a.pagination-next",
		"ul.pagination li.selected + li a",
	},
	Attr: "href",
}

// firstPageURL builds the entry URL for a partition, e.g.
// {base}-a .. {base}-z and {base}-more for the miscellaneous bucket.
func firstPageURL(baseURL string, partition scrape.PartitionID) string {
	return fmt.Sprintf("%s-%s", baseURL, partition)
}
