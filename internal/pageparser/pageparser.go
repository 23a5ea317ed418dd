// Package pageparser evaluates declarative selector rules against fetched
// HTML. Absent nodes are never an error: every accessor reports ok=false and
// the caller decides how to degrade.
package pageparser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rule describes how one value is pulled out of a page. Selectors are tried
// in order until one matches; the first match wins. With Attr set the value
// is that attribute of the matched node, otherwise its text content. An
// optional Pattern narrows the raw value to its first capture group (or the
// whole match when the pattern has no groups).
type Rule struct {
	Selectors []string
	Attr      string
	Pattern   *regexp.Regexp
}

// Document wraps a parsed page.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from raw page bytes. Only grossly invalid input
// fails; the HTML parser itself tolerates broken markup.
func Parse(body []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Extract applies a rule and returns the first matching value. The boolean
// is false when no selector matched or the matched value was empty after
// trimming.
func (d *Document) Extract(r Rule) (string, bool) {
	for _, selector := range r.Selectors {
		sel := d.doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		value, ok := nodeValue(sel, r)
		if ok {
			return value, true
		}
	}
	return "", false
}

// ExtractAll applies a rule and returns every matching value across all
// selectors, preserving document order per selector. Empty values are
// dropped.
func (d *Document) ExtractAll(r Rule) []string {
	var out []string
	for _, selector := range r.Selectors {
		d.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if value, ok := nodeValue(sel, r); ok {
				out = append(out, value)
			}
		})
		if len(out) > 0 {
			return out
		}
	}
	return out
}

// Each iterates the nodes matched by the first selector in the rule that
// matches anything, handing each node to fn as a Node.
func (d *Document) Each(r Rule, fn func(n Node)) {
	for _, selector := range r.Selectors {
		matches := d.doc.Find(selector)
		if matches.Length() == 0 {
			continue
		}
		matches.Each(func(_ int, sel *goquery.Selection) {
			fn(Node{sel: sel})
		})
		return
	}
}

// Node is one matched element, supporting scoped sub-queries.
type Node struct {
	sel *goquery.Selection
}

// Text returns the node's trimmed text content.
func (n Node) Text() string {
	return strings.TrimSpace(n.sel.Text())
}

// Attr returns the named attribute.
func (n Node) Attr(name string) (string, bool) {
	v, ok := n.sel.Attr(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Find returns the trimmed text of the i-th descendant matching selector.
func (n Node) Find(selector string, i int) (string, bool) {
	sub := n.sel.Find(selector).Eq(i)
	if sub.Length() == 0 {
		return "", false
	}
	v := strings.TrimSpace(sub.Text())
	return v, v != ""
}

// FindAttr returns the named attribute of the first descendant matching
// selector.
func (n Node) FindAttr(selector, name string) (string, bool) {
	sub := n.sel.Find(selector).First()
	if sub.Length() == 0 {
		return "", false
	}
	v, ok := sub.Attr(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func nodeValue(sel *goquery.Selection, r Rule) (string, bool) {
	var raw string
	if r.Attr != "" {
		v, ok := sel.Attr(r.Attr)
		if !ok {
			return "", false
		}
		raw = v
	} else {
		raw = sel.Text()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if r.Pattern == nil {
		return raw, true
	}
	m := r.Pattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	if len(m) > 1 && m[1] != "" {
		return strings.TrimSpace(m[1]), true
	}
	return strings.TrimSpace(m[0]), true
}
