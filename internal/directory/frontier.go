package directory

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap"
	"github.com/leadforge/linkedin-leads-crawler/internal/metrics"
	"github.com/leadforge/linkedin-leads-crawler/internal/pageparser"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// Config controls frontier behavior.
type Config struct {
	BaseURL string
	// Concurrency bounds the number of partitions crawled at once. Pages
	// within one partition are always sequential because a page's
	// continuation link is only known after that page is parsed.
	Concurrency int
	// MaxPagesPerPartition is a safety cap against pagination loops.
	// Zero means no cap.
	MaxPagesPerPartition int
}

// Stats summarizes a crawl run for the caller and the logs.
type Stats struct {
	PagesFetched    int
	PagesFailed     int
	EntriesAccepted int
	EntriesSkipped  int
	PartitionsDone  int
	Stopped         bool
}

// Frontier drives partition traversal. Workers crawl partitions
// concurrently and emit parsed pages on a channel; the run loop is the
// single writer appending to the entity map, which keeps last-write-wins
// ordering deterministic per name.
type Frontier struct {
	fetcher scrape.Fetcher
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Frontier.
func New(fetcher scrape.Fetcher, cfg Config, logger *zap.Logger) *Frontier {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Frontier{fetcher: fetcher, cfg: cfg, logger: logger}
}

// pageResult is one parsed directory page plus the partition's cursor state
// after processing it.
type pageResult struct {
	entries []scrape.EntityRef
	skipped int
	failed  bool
	cursor  scrape.PartitionCursor
}

// Run crawls every not-done partition in the given cursor set and returns
// the accumulated map, the final cursor states, and run stats. seed is the
// map a previous interrupted run persisted; new entries append after it so
// resumed crawls extend rather than replace earlier work (nil starts
// empty). Cancellation is a graceful stop: in-flight pages finish and are
// appended, no new pages are issued, and the returned cursors let the next
// run resume from the last completed page per partition. A transport
// failure closes only its own partition (with a recorded defect); the run
// itself always completes.
func (f *Frontier) Run(ctx context.Context, seed *entitymap.Map, cursors []scrape.PartitionCursor) (*entitymap.Map, []scrape.PartitionCursor, Stats) {
	runID := uuid.NewString()
	logger := f.logger.With(zap.String("run_id", runID))

	final := make(map[scrape.PartitionID]scrape.PartitionCursor, len(cursors))
	order := make([]scrape.PartitionID, 0, len(cursors))
	for _, c := range cursors {
		final[c.Partition] = c
		order = append(order, c.Partition)
	}

	results := make(chan pageResult, f.cfg.Concurrency)
	g := &errgroup.Group{}
	g.SetLimit(f.cfg.Concurrency)

	// Dispatch runs off the aggregation goroutine: g.Go blocks once the
	// worker limit is reached, and a blocked dispatcher must never stall
	// the loop draining results below.
	go func() {
		for _, c := range cursors {
			if c.Done {
				continue
			}
			cursor := c
			g.Go(func() error {
				f.crawlPartition(ctx, cursor, results, logger)
				return nil
			})
		}
		g.Wait() //nolint:errcheck
		close(results)
	}()

	m := seed
	if m == nil {
		m = entitymap.New()
	}
	var stats Stats
	for res := range results {
		if res.failed {
			stats.PagesFailed++
			metrics.ObserveDirectoryPage(string(res.cursor.Partition), "failed")
		} else {
			stats.PagesFetched++
			metrics.ObserveDirectoryPage(string(res.cursor.Partition), "ok")
		}
		for _, e := range res.entries {
			m.Append(e)
			metrics.ObserveEntry("accepted")
		}
		stats.EntriesAccepted += len(res.entries)
		stats.EntriesSkipped += res.skipped
		for i := 0; i < res.skipped; i++ {
			metrics.ObserveEntry("skipped")
		}
		final[res.cursor.Partition] = res.cursor
	}

	out := make([]scrape.PartitionCursor, 0, len(order))
	for _, p := range order {
		c := final[p]
		if c.Done {
			stats.PartitionsDone++
		}
		out = append(out, c)
	}
	stats.Stopped = ctx.Err() != nil

	logger.Info("directory crawl finished",
		zap.Int("pages_fetched", stats.PagesFetched),
		zap.Int("pages_failed", stats.PagesFailed),
		zap.Int("entries_accepted", stats.EntriesAccepted),
		zap.Int("entries_skipped", stats.EntriesSkipped),
		zap.Int("partitions_done", stats.PartitionsDone),
		zap.Bool("stopped", stats.Stopped),
	)
	return m, out, stats
}

// crawlPartition walks one partition's pagination chain in strict order,
// emitting one result per page. It never returns an error: exhausted
// retries close the partition with a defect, and cancellation emits the
// current cursor so the crawl can resume.
func (f *Frontier) crawlPartition(
	ctx context.Context,
	cursor scrape.PartitionCursor,
	results chan<- pageResult,
	logger *zap.Logger,
) {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	plog := logger.With(zap.String("partition", string(cursor.Partition)))

	pageURL := cursor.NextPageToken
	if pageURL == "" {
		pageURL = firstPageURL(f.cfg.BaseURL, cursor.Partition)
	}

	for page := 0; ; page++ {
		if ctx.Err() != nil {
			// Graceful stop: report where we left off, not done.
			cursor.NextPageToken = pageURL
			results <- pageResult{cursor: cursor}
			return
		}
		if f.cfg.MaxPagesPerPartition > 0 && page >= f.cfg.MaxPagesPerPartition {
			cursor.Done = true
			cursor.NextPageToken = ""
			cursor.Defect = "page cap reached"
			results <- pageResult{cursor: cursor}
			return
		}

		resp, err := f.fetcher.Fetch(ctx, scrape.FetchRequest{URL: pageURL})
		if err != nil {
			if ctx.Err() != nil {
				cursor.NextPageToken = pageURL
				results <- pageResult{cursor: cursor}
				return
			}
			// Retries are exhausted at the gateway; close the partition
			// with a defect so a partial directory still ships.
			plog.Error("page fetch failed, closing partition",
				zap.String("url", pageURL), zap.Error(err))
			cursor.Done = true
			cursor.NextPageToken = ""
			cursor.Defect = err.Error()
			results <- pageResult{failed: true, cursor: cursor}
			return
		}

		entries, skipped, nextURL := f.parsePage(resp, plog)
		cursor.NextPageToken = nextURL
		cursor.Done = nextURL == ""
		results <- pageResult{entries: entries, skipped: skipped, cursor: cursor}

		plog.Debug("page processed",
			zap.String("url", pageURL),
			zap.Int("entries", len(entries)),
			zap.Int("skipped", skipped),
			zap.Bool("done", cursor.Done),
		)
		if cursor.Done {
			return
		}
		pageURL = nextURL
	}
}

// parsePage extracts listing entries and the continuation link. Entries
// missing a name or href are skipped, never fatal; a page with no entries
// is valid (an empty directory letter).
func (f *Frontier) parsePage(resp scrape.FetchResponse, logger *zap.Logger) ([]scrape.EntityRef, int, string) {
	doc, err := pageparser.Parse(resp.Body)
	if err != nil {
		logger.Warn("unparseable directory page", zap.String("url", resp.URL), zap.Error(err))
		return nil, 0, ""
	}

	base, baseErr := url.Parse(resp.URL)

	var entries []scrape.EntityRef
	skipped := 0
	doc.Each(listingRule, func(n pageparser.Node) {
		name := n.Text()
		href, ok := n.Attr("href")
		if name == "" || !ok {
			skipped++
			logger.Debug("listing entry skipped",
				zap.String("name", name), zap.String("href", href))
			return
		}
		entries = append(entries, scrape.EntityRef{
			Name:       name,
			ProfileURL: resolveURL(base, baseErr, href),
		})
	})

	next, _ := doc.Extract(nextPageRule)
	return entries, skipped, resolveURL(base, baseErr, next)
}

func resolveURL(base *url.URL, baseErr error, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || baseErr != nil || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
