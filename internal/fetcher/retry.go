// Package fetcher provides decorators layered over the raw fetch gateway:
// retry with jittered backoff and per-host rate limiting.
package fetcher

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/leadforge/linkedin-leads-crawler/internal/metrics"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// RetryPolicy decides whether and when a failed fetch is attempted again.
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) bool
	Backoff(attempt int) time.Duration
}

// ExponentialRetryPolicy implements RetryPolicy with jittered backoff.
type ExponentialRetryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewExponentialRetryPolicy builds a policy. maxRetries counts attempts
// beyond the first; non-positive durations fall back to defaults.
func NewExponentialRetryPolicy(maxRetries int, baseDelay, maxDelay time.Duration) *ExponentialRetryPolicy {
	if baseDelay <= 0 {
		baseDelay = 250 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}
	return &ExponentialRetryPolicy{
		maxAttempts: maxRetries + 1,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
	}
}

// ShouldRetry decides whether the error is retryable.
func (p *ExponentialRetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	if attempt >= p.maxAttempts {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return true
}

// Backoff returns the wait duration before the next attempt.
func (p *ExponentialRetryPolicy) Backoff(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	jitter := randomJitter(time.Duration(delay) / 2)
	return time.Duration(delay/2) + jitter
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}

// Retrying wraps a Fetcher with a RetryPolicy. Once attempts are exhausted
// the error wraps scrape.ErrFetchExhausted so callers can close the page or
// profile as a terminal fetch failure without aborting the run.
type Retrying struct {
	next   scrape.Fetcher
	policy RetryPolicy
	logger *zap.Logger
}

// NewRetrying builds the retry decorator.
func NewRetrying(next scrape.Fetcher, policy RetryPolicy, logger *zap.Logger) *Retrying {
	return &Retrying{next: next, policy: policy, logger: logger}
}

// Fetch attempts the request until it succeeds or the policy gives up.
func (r *Retrying) Fetch(ctx context.Context, request scrape.FetchRequest) (scrape.FetchResponse, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := r.next.Fetch(ctx, request)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !r.policy.ShouldRetry(err, attempt+1) {
			break
		}
		metrics.ObserveRetry()
		wait := r.policy.Backoff(attempt)
		r.logger.Warn("fetch failed, retrying",
			zap.String("url", request.URL),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return scrape.FetchResponse{}, fmt.Errorf("retry wait canceled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return scrape.FetchResponse{}, fmt.Errorf("%w: %s: %v", scrape.ErrFetchExhausted, request.URL, lastErr)
}
