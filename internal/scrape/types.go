package scrape

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Sentinel is the placeholder emitted for any profile field that could not
// be extracted. Every emitted record carries all sixteen keys; absent data
// degrades to this value instead of dropping the key.
const Sentinel = "not-found"

// EntityRef maps a directory listing name to its profile URL. Identity is
// the exact, case-sensitive name; the source does not guarantee uniqueness,
// and later occurrences win at lookup time.
type EntityRef struct {
	Name       string `json:"name"`
	ProfileURL string `json:"url"`
}

// PartitionID names one traversal unit of the directory.
type PartitionID string

// PartitionMisc covers listings whose leading character is non-alphabetic.
// It is always crawled last.
const PartitionMisc PartitionID = "more"

// Partitions returns the full traversal set in its fixed order: a..z, then
// the miscellaneous bucket.
func Partitions() []PartitionID {
	out := make([]PartitionID, 0, 27)
	for c := 'a'; c <= 'z'; c++ {
		out = append(out, PartitionID(c))
	}
	return append(out, PartitionMisc)
}

// PartitionCursor tracks pagination progress through one partition. A cursor
// moves monotonically from not-done to done and is never revisited after
// completion. Cursors are persisted so an interrupted crawl resumes from the
// last completed page.
type PartitionCursor struct {
	Partition     PartitionID `json:"partition"`
	NextPageToken string      `json:"next_page_token,omitempty"`
	Done          bool        `json:"done"`
	// Defect records why a partition was closed early (e.g. exhausted
	// retries). A partial directory is acceptable output.
	Defect string `json:"defect,omitempty"`
}

// Count holds an integer extracted from page text. Zero and "unknown" must
// stay distinguishable, so a Count is either a known value or the sentinel.
type Count struct {
	Value int
	Known bool
}

// KnownCount returns a Count carrying v.
func KnownCount(v int) Count {
	return Count{Value: v, Known: true}
}

// MarshalJSON emits the integer when known and the sentinel string when not.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Known {
		return json.Marshal(Sentinel)
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON accepts either an integer or the sentinel string.
func (c *Count) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = Count{Value: n, Known: true}
		return nil
	}
	*c = Count{}
	return nil
}

// String renders the value for tabular sinks.
func (c Count) String() string {
	if !c.Known {
		return Sentinel
	}
	return strconv.Itoa(c.Value)
}

// ProfileRecord is the fixed sixteen-field extraction schema. Each field is
// independently optional; a field that could not be extracted carries the
// sentinel rather than being absent, so every record serializes with exactly
// sixteen keys.
type ProfileRecord struct {
	CompanyName            string `json:"company_name"`
	LinkedinFollowersCount Count  `json:"linkedin_followers_count"`
	CompanyLogoURL         string `json:"company_logo_url"`
	AboutUs                string `json:"about_us"`
	NumOfEmployees         Count  `json:"num_of_employees"`
	Website                string `json:"website"`
	Industry               string `json:"industry"`
	CompanySizeApprox      string `json:"company_size_approx"`
	Headquarters           string `json:"headquarters"`
	Type                   string `json:"type"`
	Founded                string `json:"founded"`
	Specialties            string `json:"specialties"`
	Funding                string `json:"funding"`
	FundingTotalRounds     Count  `json:"funding_total_rounds"`
	FundingOption          string `json:"funding_option"`
	LastFundingRound       string `json:"last_funding_round"`
}

// FieldNames lists the record keys in schema order.
func FieldNames() []string {
	return []string{
		"company_name",
		"linkedin_followers_count",
		"company_logo_url",
		"about_us",
		"num_of_employees",
		"website",
		"industry",
		"company_size_approx",
		"headquarters",
		"type",
		"founded",
		"specialties",
		"funding",
		"funding_total_rounds",
		"funding_option",
		"last_funding_round",
	}
}

// Values returns the record's field values as strings in schema order,
// matching FieldNames. Used by tabular sinks.
func (r ProfileRecord) Values() []string {
	return []string{
		r.CompanyName,
		r.LinkedinFollowersCount.String(),
		r.CompanyLogoURL,
		r.AboutUs,
		r.NumOfEmployees.String(),
		r.Website,
		r.Industry,
		r.CompanySizeApprox,
		r.Headquarters,
		r.Type,
		r.Founded,
		r.Specialties,
		r.Funding,
		r.FundingTotalRounds.String(),
		r.FundingOption,
		r.LastFundingRound,
	}
}

// NewProfileRecord returns a record with every field set to the sentinel.
// Extraction overwrites fields it succeeds on.
func NewProfileRecord() ProfileRecord {
	return ProfileRecord{
		CompanyName:       Sentinel,
		CompanyLogoURL:    Sentinel,
		AboutUs:           Sentinel,
		Website:           Sentinel,
		Industry:          Sentinel,
		CompanySizeApprox: Sentinel,
		Headquarters:      Sentinel,
		Type:              Sentinel,
		Founded:           Sentinel,
		Specialties:       Sentinel,
		Funding:           Sentinel,
		FundingOption:     Sentinel,
		LastFundingRound:  Sentinel,
	}
}

// ResolutionResult reports the outcome of resolving requested names against
// an entity map. Resolved preserves request order; Resolved and Unresolved
// partition Requested exactly.
type ResolutionResult struct {
	Requested  []string    `json:"requested"`
	Resolved   []EntityRef `json:"resolved"`
	Unresolved []string    `json:"unresolved"`
}

// ProfileStatus is the lifecycle state of one profile fetch.
type ProfileStatus string

// Profile fetch states. FetchFailed is terminal and emits no record; a
// fetched-but-sparse profile still produces a full sentinel-padded record.
const (
	ProfilePending     ProfileStatus = "pending"
	ProfileFetched     ProfileStatus = "fetched"
	ProfileExtracted   ProfileStatus = "extracted"
	ProfileFetchFailed ProfileStatus = "fetch_failed"
)

// FetchRequest captures everything needed to fetch a page.
type FetchRequest struct {
	URL     string
	Headers http.Header
	// UseHeadless forces a browser fetch when the gateway supports one.
	UseHeadless bool
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}
