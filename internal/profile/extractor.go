package profile

import (
	"strconv"
	"strings"

	"github.com/leadforge/linkedin-leads-crawler/internal/pageparser"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// Extract applies the schema to a fetched profile page. The returned record
// always carries all sixteen keys: any field that cannot be extracted or
// normalized degrades to the sentinel, and the defects slice names those
// fields for observability. Extraction never fails as a whole; even an
// unparseable body yields a fully sentinel-padded record.
func Extract(body []byte, schema []FieldSpec) (scrape.ProfileRecord, []string) {
	record := scrape.NewProfileRecord()

	doc, err := pageparser.Parse(body)
	if err != nil {
		defects := make([]string, 0, len(schema))
		for _, spec := range schema {
			defects = append(defects, spec.Name)
		}
		return record, defects
	}

	labels := detailValues(doc)

	var defects []string
	for _, spec := range schema {
		raw, ok := extractRaw(doc, labels, spec)
		if ok && spec.FirstToken {
			if fields := strings.Fields(raw); len(fields) > 0 {
				raw = fields[0]
			}
		}

		if spec.Number {
			count, parsed := normalizeCount(raw)
			if !ok || !parsed {
				defects = append(defects, spec.Name)
				continue
			}
			spec.setCount(&record, count)
			continue
		}

		if !ok || raw == "" {
			defects = append(defects, spec.Name)
			continue
		}
		spec.setText(&record, raw)
	}
	return record, defects
}

func extractRaw(doc *pageparser.Document, labels map[string]string, spec FieldSpec) (string, bool) {
	if spec.Label != "" {
		v, ok := labels[spec.Label]
		return v, ok
	}
	return doc.Extract(spec.Rule)
}

// detailValues walks the profile details block and builds a label->value
// map. Each row carries a label node followed by a value node; rows whose
// value sits inside a link (the website row) fall back to the anchor text.
// Label matching is case-insensitive because the source varies casing.
func detailValues(doc *pageparser.Document) map[string]string {
	out := make(map[string]string)
	doc.Each(detailsBlock, func(n pageparser.Node) {
		label, ok := n.Find(".text-md", 0)
		if !ok {
			return
		}
		label = strings.ToLower(strings.TrimSpace(label))
		value, ok := n.Find(".text-md", 1)
		if !ok {
			value, ok = n.Find("a", 0)
		}
		if !ok || value == "" {
			return
		}
		// First occurrence wins; later sections sometimes repeat labels.
		if _, exists := out[label]; !exists {
			out[label] = value
		}
	})
	return out
}

// normalizeCount strips grouping separators and any other non-digit
// characters, then parses the remainder. An empty cleaned string reports
// parsed=false so the caller uses the sentinel: "0" must parse to zero
// while an absent value must not.
func normalizeCount(raw string) (scrape.Count, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return scrape.Count{}, false
	}
	v, err := strconv.Atoi(digits.String())
	if err != nil {
		return scrape.Count{}, false
	}
	return scrape.KnownCount(v), true
}
