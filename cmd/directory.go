package cmd

import (
	"context"
	"errors"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadforge/linkedin-leads-crawler/internal/directory"
	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap"
)

var (
	directoryResume bool
	directoryOutput string
)

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Crawl the company directory and build the name-to-URL map",
	Long: "directory walks every partition of the paginated company directory\n" +
		"(a through z plus the miscellaneous bucket), accumulates the entity\n" +
		"map, and persists it with the configured store backend. Cursors are\n" +
		"saved alongside so an interrupted crawl resumes where it stopped.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a := theApp
		cfg := a.cfg

		startMetricsServer(ctx, a)

		fetch, cleanup, err := buildFetcher(a)
		if err != nil {
			return err
		}
		defer cleanup()

		mapPath := cfg.Directory.MapPath
		if directoryOutput != "" {
			mapPath = directoryOutput
		}
		store, closeStore, err := newMapStore(ctx, a, mapPath)
		if err != nil {
			return err
		}
		defer closeStore()

		cursors := directory.FreshCursors()
		var seed *entitymap.Map
		if directoryResume {
			cursors, err = directory.LoadCursors(cfg.Directory.CursorPath)
			if err != nil {
				return err
			}
			seed, err = loadPriorMap(ctx, store)
			if err != nil {
				return err
			}
		}

		frontier := directory.New(fetch, directory.Config{
			BaseURL:              cfg.Directory.BaseURL,
			Concurrency:          cfg.Crawler.Concurrency,
			MaxPagesPerPartition: cfg.Directory.MaxPages,
		}, a.logger)

		m, finalCursors, stats := frontier.Run(ctx, seed, cursors)

		// Persist both artifacts even on a partial run; the map holds
		// everything crawled so far and the cursors make the rest resumable.
		// Saves run detached because ctx is canceled on an interrupted run.
		saveCtx := context.WithoutCancel(ctx)
		if err := store.Save(saveCtx, m); err != nil {
			a.logger.Error("entity map save failed", zap.Error(err))
			return err
		}
		if err := directory.SaveCursors(cfg.Directory.CursorPath, finalCursors); err != nil {
			a.logger.Error("cursor save failed", zap.Error(err))
			return err
		}

		a.logger.Info("entity map persisted",
			zap.Int("entries", m.Len()),
			zap.Int("partitions_done", stats.PartitionsDone),
			zap.Bool("interrupted", stats.Stopped),
		)
		return nil
	},
}

// loadPriorMap restores the entries a previous run persisted so a resumed
// crawl extends them instead of overwriting them on the next Save. A map
// that was never written is not an error: the first run has nothing to
// extend.
func loadPriorMap(ctx context.Context, store entitymap.Store) (*entitymap.Map, error) {
	m, err := store.Load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func init() {
	directoryCmd.Flags().BoolVar(&directoryResume, "resume", true,
		"resume from the saved cursor file; --resume=false restarts every partition")
	directoryCmd.Flags().StringVar(&directoryOutput, "output", "",
		"entity map path override for the jsonfile backend")
}
