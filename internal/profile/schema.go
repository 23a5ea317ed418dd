// Package profile extracts the fixed sixteen-field company record from a
// fetched profile page and runs the bounded-parallel profile pipeline.
package profile

import (
	"regexp"

	"github.com/leadforge/linkedin-leads-crawler/internal/pageparser"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// FieldSpec declares how one record field is extracted: either a selector
// rule evaluated against the whole page, or a label looked up in the
// profile's details block (the label/value pairs under the about section).
// Extraction is field-isolated; one field failing never affects another.
type FieldSpec struct {
	Name string
	// Rule extracts from the page when Label is empty.
	Rule pageparser.Rule
	// Label keys into the details block, matched case-insensitively.
	Label string
	// Number parses the value as an integer after stripping grouping
	// separators; an empty cleaned string degrades to the sentinel so
	// zero stays distinguishable from unknown.
	Number bool
	// FirstToken keeps only the first whitespace-separated token of the
	// value ("51-200 employees" becomes "51-200").
	FirstToken bool

	setText  func(*scrape.ProfileRecord, string)
	setCount func(*scrape.ProfileRecord, scrape.Count)
}

// detailsBlock matches the label/value rows of the profile details section.
var detailsBlock = pageparser.Rule{
	Selectors: []string{".core-section-container__content .mb-2"},
}

var (
	followersPattern = regexp.MustCompile(`([\d,.]+)\s+followers`)
	groupedIntGroups = regexp.MustCompile(`\d{1,3}(?:,\d{3})*`)
	firstInt         = regexp.MustCompile(`\d+`)
)

// Schema returns the sixteen-field extraction table in record order. The
// selector sets carry fallbacks because the source serves several markup
// variants for the same page.
func Schema() []FieldSpec {
	return []FieldSpec{
		{
			Name: "company_name",
			Rule: pageparser.Rule{Selectors: []string{
				".top-card-layout__entity-info h1",
				"h1.top-card-layout__title",
			}},
			setText: func(r *scrape.ProfileRecord, v string) { r.CompanyName = v },
		},
		{
			Name: "linkedin_followers_count",
			Rule: pageparser.Rule{
				Selectors: []string{"h3.top-card-layout__first-subline"},
				Pattern:   followersPattern,
			},
			Number:   true,
			setCount: func(r *scrape.ProfileRecord, c scrape.Count) { r.LinkedinFollowersCount = c },
		},
		{
			Name: "company_logo_url",
			Rule: pageparser.Rule{
				Selectors: []string{
					"div.top-card-layout__entity-image-container img",
					"img.top-card-layout__entity-image",
				},
				Attr: "data-delayed-url",
			},
			setText: func(r *scrape.ProfileRecord, v string) { r.CompanyLogoURL = v },
		},
		{
			Name:    "about_us",
			Rule:    pageparser.Rule{Selectors: []string{".core-section-container__content p"}},
			setText: func(r *scrape.ProfileRecord, v string) { r.AboutUs = v },
		},
		{
			Name: "num_of_employees",
			Rule: pageparser.Rule{
				Selectors: []string{"a.face-pile__cta"},
				Pattern:   groupedIntGroups,
			},
			Number:   true,
			setCount: func(r *scrape.ProfileRecord, c scrape.Count) { r.NumOfEmployees = c },
		},
		{
			Name:    "website",
			Label:   "website",
			setText: func(r *scrape.ProfileRecord, v string) { r.Website = v },
		},
		{
			Name:    "industry",
			Label:   "industry",
			setText: func(r *scrape.ProfileRecord, v string) { r.Industry = v },
		},
		{
			Name:       "company_size_approx",
			Label:      "company size",
			FirstToken: true,
			setText:    func(r *scrape.ProfileRecord, v string) { r.CompanySizeApprox = v },
		},
		{
			Name:    "headquarters",
			Label:   "headquarters",
			setText: func(r *scrape.ProfileRecord, v string) { r.Headquarters = v },
		},
		{
			Name:    "type",
			Label:   "type",
			setText: func(r *scrape.ProfileRecord, v string) { r.Type = v },
		},
		{
			Name:    "founded",
			Label:   "founded",
			setText: func(r *scrape.ProfileRecord, v string) { r.Founded = v },
		},
		{
			Name:    "specialties",
			Label:   "specialties",
			setText: func(r *scrape.ProfileRecord, v string) { r.Specialties = v },
		},
		{
			Name:    "funding",
			Rule:    pageparser.Rule{Selectors: []string{"p.text-display-lg"}},
			setText: func(r *scrape.ProfileRecord, v string) { r.Funding = v },
		},
		{
			Name: "funding_total_rounds",
			Rule: pageparser.Rule{
				Selectors: []string{
					"section[class*='aside-section-container'] a[class*='link-styled'] span[class*='middot']",
				},
				Pattern: firstInt,
			},
			Number:   true,
			setCount: func(r *scrape.ProfileRecord, c scrape.Count) { r.FundingTotalRounds = c },
		},
		{
			Name: "funding_option",
			Rule: pageparser.Rule{
				Selectors: []string{
					"section[class*='aside-section-container'] div[class*='my-2'] a[class*='link-styled']",
				},
			},
			setText: func(r *scrape.ProfileRecord, v string) { r.FundingOption = v },
		},
		{
			Name: "last_funding_round",
			Rule: pageparser.Rule{
				Selectors: []string{
					"section[class*='aside-section-container'] div[class*='my-2'] a[class*='link-styled'] time",
				},
			},
			setText: func(r *scrape.ProfileRecord, v string) { r.LastFundingRound = v },
		},
	}
}
