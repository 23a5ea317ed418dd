// Package cmd wires configuration, logging, and the crawl stages into the
// leadcrawl command tree.
package cmd

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gcsarchive "github.com/leadforge/linkedin-leads-crawler/internal/archive/gcs"
	localarchive "github.com/leadforge/linkedin-leads-crawler/internal/archive/local"
	"github.com/leadforge/linkedin-leads-crawler/internal/api"
	"github.com/leadforge/linkedin-leads-crawler/internal/config"
	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap"
	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap/jsonfile"
	pgstore "github.com/leadforge/linkedin-leads-crawler/internal/entitymap/postgres"
	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap/sqlitestore"
	"github.com/leadforge/linkedin-leads-crawler/internal/fetcher"
	collyfetcher "github.com/leadforge/linkedin-leads-crawler/internal/fetcher/colly"
	"github.com/leadforge/linkedin-leads-crawler/internal/fetcher/detector"
	"github.com/leadforge/linkedin-leads-crawler/internal/fetcher/headless"
	"github.com/leadforge/linkedin-leads-crawler/internal/logging"
	"github.com/leadforge/linkedin-leads-crawler/internal/metrics"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

type app struct {
	cfg    config.Config
	logger *zap.Logger
}

var (
	cfgFile string
	theApp  app

	flagConcurrency int
	flagDelayMs     int
	flagTimeoutSec  int
	flagMaxRetries  int
)

var rootCmd = &cobra.Command{
	Use:   "leadcrawl",
	Short: "Two-stage company directory crawler and profile extractor",
	Long: "leadcrawl builds a company name to profile URL map from the public\n" +
		"directory listing, then resolves requested names against that map and\n" +
		"extracts a fixed-schema record per profile.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Missing .env is the normal case outside local development.
		_ = godotenv.Load()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return scrape.NewSetupError("config", err)
		}
		applyFlagOverrides(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return scrape.NewSetupError("config", err)
		}
		logger, err := logging.New(cfg.Logging.Development)
		if err != nil {
			return scrape.NewSetupError("logging", err)
		}
		metrics.Init()

		theApp = app{cfg: cfg, logger: logger}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if theApp.logger != nil {
			_ = theApp.logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().IntVar(&flagConcurrency, "concurrency", 0, "worker count override")
	rootCmd.PersistentFlags().IntVar(&flagDelayMs, "delay-ms", 0, "per-request delay override (ms)")
	rootCmd.PersistentFlags().IntVar(&flagTimeoutSec, "timeout-seconds", 0, "fetch timeout override")
	rootCmd.PersistentFlags().IntVar(&flagMaxRetries, "max-retries", -1, "fetch retry override")
	rootCmd.AddCommand(directoryCmd)
	rootCmd.AddCommand(profilesCmd)
}

// applyFlagOverrides lets command-line flags win over file and environment
// values for the knobs people most often tune per run.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		cfg.Crawler.Concurrency = flagConcurrency
	}
	if flags.Changed("delay-ms") {
		cfg.Crawler.DelayMs = flagDelayMs
	}
	if flags.Changed("timeout-seconds") {
		cfg.Fetch.TimeoutSeconds = flagTimeoutSec
	}
	if flags.Changed("max-retries") {
		cfg.Fetch.MaxRetries = flagMaxRetries
	}
}

// Execute runs the command tree and returns the terminal error, if any.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// buildFetcher assembles the fetch stack: per-host rate limiting closest to
// the wire, the global request delay above it, headless promotion above
// that, retry outermost so every attempt pays the admission cost.
func buildFetcher(a app) (scrape.Fetcher, func(), error) {
	cfg := a.cfg

	probe := fetcher.NewDelaying(
		fetcher.NewLimited(
			collyfetcher.New(collyfetcher.Config{
				UserAgents:    cfg.Crawler.UserAgents,
				RespectRobots: false,
				Timeout:       cfg.FetchTimeout(),
				CacheFallback: cfg.Fetch.UseCacheFallback,
			}),
			cfg.Crawler.RatePerHost,
			1,
		),
		cfg.RequestDelay(),
	)

	var (
		base    scrape.Fetcher = probe
		cleanup                = func() {}
	)
	if cfg.Headless.Enabled {
		hl, err := headless.New(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         firstUserAgent(cfg.Crawler.UserAgents),
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, nil, scrape.NewSetupError("headless", err)
		}
		cleanup = hl.Close
		base = fetcher.NewPromoting(probe, hl, detector.NewHeuristic(cfg.Headless.MinHTMLBytes), a.logger)
	}

	policy := fetcher.NewExponentialRetryPolicy(
		cfg.Fetch.MaxRetries,
		time.Duration(cfg.Fetch.BackoffInitialMs)*time.Millisecond,
		time.Duration(cfg.Fetch.BackoffMaxMs)*time.Millisecond,
	)
	return fetcher.NewRetrying(base, policy, a.logger), cleanup, nil
}

func firstUserAgent(agents []string) string {
	if len(agents) == 0 {
		return ""
	}
	return agents[0]
}

// newMapStore picks the entity map backend. mapPath overrides the configured
// file path for the jsonfile backend so the two stages can point at
// different files.
func newMapStore(ctx context.Context, a app, mapPath string) (entitymap.Store, func(), error) {
	cfg := a.cfg
	switch cfg.Store.Backend {
	case "jsonfile":
		s, err := jsonfile.New(mapPath)
		if err != nil {
			return nil, nil, scrape.NewSetupError("entity map", err)
		}
		return s, func() {}, nil
	case "sqlite":
		s, err := sqlitestore.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, scrape.NewSetupError("entity map", err)
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		s, err := pgstore.New(ctx, pgstore.Config{
			DSN:      cfg.Store.DSN,
			Table:    cfg.Store.Table,
			MaxConns: cfg.Store.MaxConns,
		})
		if err != nil {
			return nil, nil, scrape.NewSetupError("entity map", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, scrape.NewSetupError("entity map",
			fmt.Errorf("unknown store backend %q", cfg.Store.Backend))
	}
}

// newArchive builds the optional snapshot store. Disabled archiving returns
// nil, which the runner treats as no-op.
func newArchive(ctx context.Context, a app) (scrape.BlobStore, func(), error) {
	cfg := a.cfg
	if !cfg.Archive.Enabled {
		return nil, func() {}, nil
	}
	switch cfg.Archive.Backend {
	case "local":
		s, err := localarchive.New(cfg.Archive.Dir)
		if err != nil {
			return nil, nil, scrape.NewSetupError("archive", err)
		}
		return s, func() {}, nil
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, scrape.NewSetupError("archive", fmt.Errorf("gcs client: %w", err))
		}
		s, err := gcsarchive.New(client, cfg.Archive.GCSBucket, cfg.Archive.Prefix)
		if err != nil {
			_ = client.Close()
			return nil, nil, scrape.NewSetupError("archive", err)
		}
		return s, func() { _ = client.Close() }, nil
	default:
		return nil, nil, scrape.NewSetupError("archive",
			fmt.Errorf("unknown archive backend %q", cfg.Archive.Backend))
	}
}

// startMetricsServer serves /healthz and /metrics for the duration of ctx
// when enabled.
func startMetricsServer(ctx context.Context, a app) {
	if !a.cfg.Metrics.Enabled {
		return
	}
	srv := api.NewServer(a.logger)
	go func() {
		if err := srv.Serve(ctx, a.cfg.Metrics.Addr); err != nil {
			a.logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	a.logger.Info("metrics server listening", zap.String("addr", a.cfg.Metrics.Addr))
}
