package fetcher_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/linkedin-leads-crawler/internal/fetcher"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

func TestDelayingZeroDelayIsPassthrough(t *testing.T) {
	t.Parallel()

	inner := &stubFetcher{resp: scrape.FetchResponse{StatusCode: 200}}
	d := fetcher.NewDelaying(inner, 0)

	// No delay requested: the decorator steps aside entirely.
	assert.Same(t, scrape.Fetcher(inner), d)

	start := time.Now()
	for i := 0; i < 10; i++ {
		_, err := d.Fetch(context.Background(), scrape.FetchRequest{URL: "https://example.com/a"})
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestDelayingSpacesRequests(t *testing.T) {
	t.Parallel()

	inner := &stubFetcher{resp: scrape.FetchResponse{StatusCode: 200}}
	// 50ms between requests: three sequential fetches need roughly 100ms.
	d := fetcher.NewDelaying(inner, 50*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := d.Fetch(context.Background(), scrape.FetchRequest{URL: "https://slow.example/page"})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 3, inner.calls)
}

func TestDelayingCancellation(t *testing.T) {
	t.Parallel()

	inner := &stubFetcher{resp: scrape.FetchResponse{StatusCode: 200}}
	d := fetcher.NewDelaying(inner, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := d.Fetch(ctx, scrape.FetchRequest{URL: "https://example.com"})
	require.NoError(t, err)

	cancel()
	_, err = d.Fetch(ctx, scrape.FetchRequest{URL: "https://example.com"})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
