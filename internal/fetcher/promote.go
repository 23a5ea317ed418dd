package fetcher

import (
	"context"

	"go.uber.org/zap"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// Detector decides whether a probe response warrants a browser fetch.
type Detector interface {
	ShouldPromote(probe scrape.FetchResponse) bool
}

// Promoting runs a cheap probe fetch first and escalates to the headless
// fetcher when the detector flags the response as a script shell or an
// authwall interstitial. Promotion failures fall back to the probe result
// rather than failing the page.
type Promoting struct {
	probe    scrape.Fetcher
	headless scrape.Fetcher
	detector Detector
	logger   *zap.Logger
}

// NewPromoting builds the promotion decorator. headless or detector being
// nil disables promotion entirely.
func NewPromoting(probe, headless scrape.Fetcher, detector Detector, logger *zap.Logger) *Promoting {
	return &Promoting{probe: probe, headless: headless, detector: detector, logger: logger}
}

// Fetch probes, then promotes when warranted.
func (p *Promoting) Fetch(ctx context.Context, request scrape.FetchRequest) (scrape.FetchResponse, error) {
	resp, err := p.probe.Fetch(ctx, request)
	if err != nil {
		return scrape.FetchResponse{}, err
	}
	if p.headless == nil || p.detector == nil || !p.detector.ShouldPromote(resp) {
		return resp, nil
	}

	headlessReq := request
	headlessReq.UseHeadless = true
	promoted, err := p.headless.Fetch(ctx, headlessReq)
	if err != nil {
		p.logger.Warn("headless promotion failed, keeping probe result",
			zap.String("url", request.URL),
			zap.Error(err),
		)
		return resp, nil
	}
	promoted.UsedHeadless = true
	return promoted, nil
}
