package fetcher_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leadforge/linkedin-leads-crawler/internal/fetcher"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

type stubFetcher struct {
	resp  scrape.FetchResponse
	err   error
	calls int
}

func (f *stubFetcher) Fetch(context.Context, scrape.FetchRequest) (scrape.FetchResponse, error) {
	f.calls++
	return f.resp, f.err
}

type stubDetector struct{ promote bool }

func (d stubDetector) ShouldPromote(scrape.FetchResponse) bool { return d.promote }

func TestPromotingKeepsProbeWhenDetectorDeclines(t *testing.T) {
	t.Parallel()

	probe := &stubFetcher{resp: scrape.FetchResponse{StatusCode: 200, Body: []byte("full page")}}
	headless := &stubFetcher{resp: scrape.FetchResponse{StatusCode: 200, Body: []byte("rendered")}}
	p := fetcher.NewPromoting(probe, headless, stubDetector{promote: false}, zap.NewNop())

	resp, err := p.Fetch(context.Background(), scrape.FetchRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []byte("full page"), resp.Body)
	assert.False(t, resp.UsedHeadless)
	assert.Equal(t, 0, headless.calls)
}

func TestPromotingEscalates(t *testing.T) {
	t.Parallel()

	probe := &stubFetcher{resp: scrape.FetchResponse{StatusCode: 200, Body: []byte("shell")}}
	headless := &stubFetcher{resp: scrape.FetchResponse{StatusCode: 200, Body: []byte("rendered")}}
	p := fetcher.NewPromoting(probe, headless, stubDetector{promote: true}, zap.NewNop())

	resp, err := p.Fetch(context.Background(), scrape.FetchRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []byte("rendered"), resp.Body)
	assert.True(t, resp.UsedHeadless)
	assert.Equal(t, 1, probe.calls)
	assert.Equal(t, 1, headless.calls)
}

func TestPromotingFallsBackOnHeadlessFailure(t *testing.T) {
	t.Parallel()

	probe := &stubFetcher{resp: scrape.FetchResponse{StatusCode: 200, Body: []byte("shell")}}
	headless := &stubFetcher{err: errors.New("browser crashed")}
	p := fetcher.NewPromoting(probe, headless, stubDetector{promote: true}, zap.NewNop())

	resp, err := p.Fetch(context.Background(), scrape.FetchRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []byte("shell"), resp.Body)
	assert.False(t, resp.UsedHeadless)
}

func TestPromotingProbeErrorSurfaces(t *testing.T) {
	t.Parallel()

	probe := &stubFetcher{err: errors.New("connection refused")}
	p := fetcher.NewPromoting(probe, &stubFetcher{}, stubDetector{promote: true}, zap.NewNop())

	_, err := p.Fetch(context.Background(), scrape.FetchRequest{URL: "https://example.com"})
	assert.Error(t, err)
}

func TestPromotingWithoutHeadlessIsPassthrough(t *testing.T) {
	t.Parallel()

	probe := &stubFetcher{resp: scrape.FetchResponse{StatusCode: 200, Body: []byte("shell")}}
	p := fetcher.NewPromoting(probe, nil, stubDetector{promote: true}, zap.NewNop())

	resp, err := p.Fetch(context.Background(), scrape.FetchRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []byte("shell"), resp.Body)
}
