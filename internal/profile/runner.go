package profile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leadforge/linkedin-leads-crawler/internal/metrics"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// RunnerConfig controls the extraction pipeline.
type RunnerConfig struct {
	Concurrency int
}

// Runner fetches resolved profile targets in parallel and streams each
// extracted record to the sink. Fields within one profile are extracted
// sequentially; parallelism is across profiles only. Sink writes are
// serialized behind a mutex, so the sink never sees concurrent calls.
type Runner struct {
	fetcher scrape.Fetcher
	sink    scrape.RecordSink
	archive scrape.BlobStore
	schema  []FieldSpec
	cfg     RunnerConfig
	logger  *zap.Logger

	mu sync.Mutex
}

// RunnerStats summarizes one profiles run.
type RunnerStats struct {
	Extracted   int
	FetchFailed int
	Defects     int
}

// NewRunner builds a Runner. archive may be nil to disable raw snapshots.
func NewRunner(fetcher scrape.Fetcher, sink scrape.RecordSink, archive scrape.BlobStore, cfg RunnerConfig, logger *zap.Logger) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Runner{
		fetcher: fetcher,
		sink:    sink,
		archive: archive,
		schema:  Schema(),
		cfg:     cfg,
		logger:  logger,
	}
}

// Run processes every resolved target. A fetch that exhausts its retries is
// terminal for that profile alone and emits no record; a fetched page always
// emits a full record, sentinel-padded where extraction came up empty. The
// only error Run returns is a sink write failure, which aborts the batch
// because continuing would silently drop records.
func (r *Runner) Run(ctx context.Context, targets []scrape.EntityRef) (RunnerStats, error) {
	var (
		stats   RunnerStats
		statsMu sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for _, target := range targets {
		target := target
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			record, status, defects := r.processOne(gctx, target)
			metrics.ObserveProfile(string(status))

			statsMu.Lock()
			if status == scrape.ProfileFetchFailed {
				stats.FetchFailed++
			} else {
				stats.Extracted++
				stats.Defects += defects
			}
			statsMu.Unlock()

			if status == scrape.ProfileFetchFailed {
				return nil
			}
			r.mu.Lock()
			err := r.sink.Write(gctx, record)
			r.mu.Unlock()
			if err != nil {
				return fmt.Errorf("write record for %q: %w", target.Name, err)
			}
			return nil
		})
	}

	err := g.Wait()
	r.logger.Info("profiles run finished",
		zap.Int("extracted", stats.Extracted),
		zap.Int("fetch_failed", stats.FetchFailed),
		zap.Int("field_defects", stats.Defects),
	)
	return stats, err
}

func (r *Runner) processOne(ctx context.Context, target scrape.EntityRef) (scrape.ProfileRecord, scrape.ProfileStatus, int) {
	plog := r.logger.With(
		zap.String("name", target.Name),
		zap.String("url", target.ProfileURL),
	)

	resp, err := r.fetcher.Fetch(ctx, scrape.FetchRequest{URL: target.ProfileURL})
	if err != nil {
		plog.Warn("profile fetch failed", zap.Error(err))
		return scrape.ProfileRecord{}, scrape.ProfileFetchFailed, 0
	}
	plog.Debug("profile fetched",
		zap.Int("status", resp.StatusCode),
		zap.Bool("headless", resp.UsedHeadless),
		zap.Duration("duration", resp.Duration),
	)

	if r.archive != nil {
		r.archiveSnapshot(ctx, target, resp.Body, plog)
	}

	record, defects := Extract(resp.Body, r.schema)
	for _, field := range defects {
		metrics.ObserveParseDefect(field)
	}
	if len(defects) > 0 {
		plog.Debug("fields degraded to sentinel", zap.Strings("fields", defects))
	}
	return record, scrape.ProfileExtracted, len(defects)
}

// archiveSnapshot stores the raw page keyed by its content hash. Archive
// failures are logged and ignored; the snapshot is an audit artifact, not
// part of the extraction contract.
func (r *Runner) archiveSnapshot(ctx context.Context, target scrape.EntityRef, body []byte, plog *zap.Logger) {
	sum := sha256.Sum256(body)
	path := fmt.Sprintf("profiles/%s.html", hex.EncodeToString(sum[:]))
	uri, err := r.archive.PutObject(ctx, path, "text/html; charset=utf-8", body)
	if err != nil {
		plog.Warn("snapshot archive failed", zap.Error(err))
		return
	}
	plog.Debug("snapshot archived", zap.String("uri", uri))
}
