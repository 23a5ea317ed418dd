package detector_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadforge/linkedin-leads-crawler/internal/fetcher/detector"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

func TestShouldPromote(t *testing.T) {
	t.Parallel()

	h := detector.NewHeuristic(100)
	bigBody := []byte("<html>" + strings.Repeat("content ", 50) + "</html>")

	t.Run("FullPageNotPromoted", func(t *testing.T) {
		assert.False(t, h.ShouldPromote(scrape.FetchResponse{StatusCode: 200, Body: bigBody}))
	})

	t.Run("EmptyBodyPromoted", func(t *testing.T) {
		assert.True(t, h.ShouldPromote(scrape.FetchResponse{StatusCode: 200}))
	})

	t.Run("SmallBodyPromoted", func(t *testing.T) {
		assert.True(t, h.ShouldPromote(scrape.FetchResponse{StatusCode: 200, Body: []byte("<html></html>")}))
	})

	t.Run("AuthwallPromoted", func(t *testing.T) {
		body := append(append([]byte{}, bigBody...), []byte(`<a href="/authwall?x=1">`)...)
		assert.True(t, h.ShouldPromote(scrape.FetchResponse{StatusCode: 200, Body: body}))
	})

	t.Run("JavascriptWallPromotedCaseInsensitive", func(t *testing.T) {
		body := append(append([]byte{}, bigBody...), []byte("Please Enable JavaScript to continue")...)
		assert.True(t, h.ShouldPromote(scrape.FetchResponse{StatusCode: 200, Body: body}))
	})

	t.Run("NonOKStatusNeverPromoted", func(t *testing.T) {
		assert.False(t, h.ShouldPromote(scrape.FetchResponse{StatusCode: 404}))
		assert.False(t, h.ShouldPromote(scrape.FetchResponse{StatusCode: 302, Body: []byte("authwall")}))
	})
}

func TestDefaultThreshold(t *testing.T) {
	t.Parallel()

	h := detector.NewHeuristic(0)
	assert.Equal(t, 2048, h.MinHTMLBytes)
}
