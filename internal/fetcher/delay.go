package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// Delaying spaces successive fetches by a fixed interval across all workers.
// It is the global politeness floor beneath the per-host limiter: raising
// the delay slows the whole crawl regardless of how many hosts are in play.
type Delaying struct {
	next  scrape.Fetcher
	delay time.Duration

	mu     sync.Mutex
	nextAt time.Time
}

// NewDelaying builds the delay decorator. delay <= 0 disables it and
// returns next unchanged.
func NewDelaying(next scrape.Fetcher, delay time.Duration) scrape.Fetcher {
	if delay <= 0 {
		return next
	}
	return &Delaying{next: next, delay: delay}
}

// Fetch claims the next send slot, sleeps until it arrives, then delegates.
// Slots are handed out in call order, so concurrent workers queue behind
// one another instead of bursting.
func (d *Delaying) Fetch(ctx context.Context, request scrape.FetchRequest) (scrape.FetchResponse, error) {
	d.mu.Lock()
	now := time.Now()
	wait := d.nextAt.Sub(now)
	if wait < 0 {
		wait = 0
	}
	d.nextAt = now.Add(wait + d.delay)
	d.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return scrape.FetchResponse{}, fmt.Errorf("delay wait: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return d.next.Fetch(ctx, request)
}
