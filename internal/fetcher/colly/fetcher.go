// Package collyfetcher implements the fetch gateway using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// cacheEndpoint prefixes a URL so the request goes through the public cache
// mirror instead of the origin.
const cacheEndpoint = "https://webcache.googleusercontent.com/search?q=cache:"

// Config controls collector behavior.
type Config struct {
	// UserAgents is rotated per request; the source blocks stable agents.
	UserAgents    []string
	RespectRobots bool
	Timeout       time.Duration
	// CacheFallback retries a failed fetch through the cache endpoint.
	CacheFallback bool
}

// Fetcher implements scrape.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	c := colly.NewCollector(colly.Async(false))
	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET. When the direct fetch fails and the
// cache fallback is enabled, one more attempt goes through the cache
// endpoint before the error surfaces.
func (f *Fetcher) Fetch(ctx context.Context, request scrape.FetchRequest) (scrape.FetchResponse, error) {
	resp, err := f.fetchOnce(ctx, request, request.URL)
	if err == nil {
		return resp, nil
	}
	if !f.cfg.CacheFallback {
		return scrape.FetchResponse{}, err
	}
	cached, cacheErr := f.fetchOnce(ctx, request, CacheURL(request.URL))
	if cacheErr != nil {
		return scrape.FetchResponse{}, fmt.Errorf("direct fetch failed (%v); cache fetch: %w", err, cacheErr)
	}
	// Report the origin URL so downstream keys stay stable.
	cached.URL = request.URL
	return cached, nil
}

// CacheURL wraps target in the cache-endpoint indirection form.
func CacheURL(target string) string {
	return cacheEndpoint + url.QueryEscape(target)
}

func (f *Fetcher) fetchOnce(ctx context.Context, request scrape.FetchRequest, target string) (scrape.FetchResponse, error) {
	var (
		result   scrape.FetchResponse
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector(request, start, &result, &fetchErr)

	if err := f.runCollector(ctx, collector, target, &fetchErr); err != nil {
		return scrape.FetchResponse{}, err
	}
	return result, nil
}

func (f *Fetcher) buildCollector(
	request scrape.FetchRequest,
	start time.Time,
	result *scrape.FetchResponse,
	fetchErr *error,
) *colly.Collector {
	collector := f.baseCollector.Clone()
	if agent := f.pickUserAgent(); agent != "" {
		collector.UserAgent = agent
	}
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobots
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	collector.WithTransport(f.transport)

	collector.OnRequest(func(r *colly.Request) {
		f.copyHeaders(request, r)
	})

	collector.OnResponse(func(r *colly.Response) {
		*result = scrape.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    r.Headers.Clone(),
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	collector.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})

	return collector
}

func (f *Fetcher) pickUserAgent() string {
	if len(f.cfg.UserAgents) == 0 {
		return ""
	}
	return f.cfg.UserAgents[rand.IntN(len(f.cfg.UserAgents))]
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return nil
	}
}

func (f *Fetcher) copyHeaders(request scrape.FetchRequest, r *colly.Request) {
	if request.Headers == nil {
		return
	}
	for key, values := range request.Headers {
		for _, v := range values {
			r.Headers.Add(key, v)
		}
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
