package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// Limited wraps a Fetcher with per-host token-bucket admission so the crawl
// respects the source's tolerance regardless of worker count.
type Limited struct {
	next scrape.Fetcher

	mu           sync.Mutex
	limiters     map[string]*rate.Limiter
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimited builds the rate-limit decorator. rps <= 0 disables limiting.
func NewLimited(next scrape.Fetcher, rps float64, burst int) *Limited {
	r := rate.Limit(rps)
	if rps <= 0 {
		r = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limited{
		next:         next,
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  r,
		defaultBurst: burst,
	}
}

// Fetch blocks until the host's limiter admits the request, then delegates.
func (l *Limited) Fetch(ctx context.Context, request scrape.FetchRequest) (scrape.FetchResponse, error) {
	if err := l.wait(ctx, request.URL); err != nil {
		return scrape.FetchResponse{}, err
	}
	return l.next.Fetch(ctx, request)
}

func (l *Limited) wait(ctx context.Context, rawURL string) error {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	l.mu.Lock()
	limiter, exists := l.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}
