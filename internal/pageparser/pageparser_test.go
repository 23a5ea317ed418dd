package pageparser_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/linkedin-leads-crawler/internal/pageparser"
)

const samplePage = `
<html><body>
  <h1 class="title">  Acme Corp  </h1>
  <img class="logo" src="https://cdn.example.com/logo.png">
  <p class="followers">1,234 followers</p>
  <ul class="items">
    <li><a href="/one">One</a></li>
    <li><a href="/two">Two</a></li>
    <li><a>No href</a></li>
  </ul>
</body></html>`

func parse(t *testing.T) *pageparser.Document {
	t.Helper()
	doc, err := pageparser.Parse([]byte(samplePage))
	require.NoError(t, err)
	return doc
}

func TestExtractText(t *testing.T) {
	t.Parallel()
	doc := parse(t)

	v, ok := doc.Extract(pageparser.Rule{Selectors: []string{"h1.title"}})
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", v)
}

func TestExtractAttr(t *testing.T) {
	t.Parallel()
	doc := parse(t)

	v, ok := doc.Extract(pageparser.Rule{Selectors: []string{"img.logo"}, Attr: "src"})
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/logo.png", v)
}

func TestExtractPatternCaptureGroup(t *testing.T) {
	t.Parallel()
	doc := parse(t)

	v, ok := doc.Extract(pageparser.Rule{
		Selectors: []string{"p.followers"},
		Pattern:   regexp.MustCompile(`([\d,]+)\s+followers`),
	})
	require.True(t, ok)
	assert.Equal(t, "1,234", v)
}

func TestExtractSelectorFallbackOrder(t *testing.T) {
	t.Parallel()
	doc := parse(t)

	v, ok := doc.Extract(pageparser.Rule{Selectors: []string{"h2.missing", "h1.title"}})
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", v)
}

func TestExtractMissingNode(t *testing.T) {
	t.Parallel()
	doc := parse(t)

	_, ok := doc.Extract(pageparser.Rule{Selectors: []string{"div.absent"}})
	assert.False(t, ok)
}

func TestExtractPatternMismatch(t *testing.T) {
	t.Parallel()
	doc := parse(t)

	_, ok := doc.Extract(pageparser.Rule{
		Selectors: []string{"h1.title"},
		Pattern:   regexp.MustCompile(`\d+ employees`),
	})
	assert.False(t, ok)
}

func TestEach(t *testing.T) {
	t.Parallel()
	doc := parse(t)

	var texts []string
	var hrefs []string
	doc.Each(pageparser.Rule{Selectors: []string{"ul.items li a"}}, func(n pageparser.Node) {
		texts = append(texts, n.Text())
		if href, ok := n.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})

	assert.Equal(t, []string{"One", "Two", "No href"}, texts)
	assert.Equal(t, []string{"/one", "/two"}, hrefs)
}

func TestNodeFind(t *testing.T) {
	t.Parallel()
	doc := parse(t)

	doc.Each(pageparser.Rule{Selectors: []string{"ul.items"}}, func(n pageparser.Node) {
		second, ok := n.Find("a", 1)
		require.True(t, ok)
		assert.Equal(t, "Two", second)

		_, ok = n.Find("a", 9)
		assert.False(t, ok)

		href, ok := n.FindAttr("a", "href")
		require.True(t, ok)
		assert.Equal(t, "/one", href)
	})
}
