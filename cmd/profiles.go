package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadforge/linkedin-leads-crawler/internal/profile"
	"github.com/leadforge/linkedin-leads-crawler/internal/resolver"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
	"github.com/leadforge/linkedin-leads-crawler/internal/sink"
)

var (
	profileNames     []string
	profileNamesFile string
	profileOutput    string
	profileMapPath   string
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Resolve company names and extract fixed-schema profile records",
	Long: "profiles loads the entity map built by the directory stage, resolves\n" +
		"the requested company names against it, fetches each resolved profile\n" +
		"page, and writes one sixteen-field record per extracted profile.\n" +
		"Names that miss the map and profiles whose fetch fails are reported\n" +
		"but never abort the batch.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a := theApp
		cfg := a.cfg

		names, err := collectNames()
		if err != nil {
			return err
		}

		startMetricsServer(ctx, a)

		mapPath := profileMapPath
		if mapPath == "" {
			mapPath = cfg.Profiles.MapPath
		}
		store, closeStore, err := newMapStore(ctx, a, mapPath)
		if err != nil {
			return err
		}
		defer closeStore()

		m, err := store.Load(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("entity map loaded", zap.Int("entries", m.Len()))

		res := resolver.Resolve(names, m)
		for _, miss := range res.Unresolved {
			a.logger.Warn("name not in entity map", zap.String("name", miss))
		}
		a.logger.Info("names resolved",
			zap.Int("requested", len(res.Requested)),
			zap.Int("resolved", len(res.Resolved)),
			zap.Int("unresolved", len(res.Unresolved)),
		)
		if len(res.Resolved) == 0 {
			a.logger.Warn("nothing to fetch, no records will be written")
		}

		out := profileOutput
		if out == "" {
			out = cfg.Profiles.OutputPath
		}
		records, err := sink.Open(out)
		if err != nil {
			return err
		}
		var dest scrape.RecordSink = records
		if cfg.PubSub.ProjectID != "" && cfg.PubSub.TopicName != "" {
			ps, err := sink.NewPubSub(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName)
			if err != nil {
				return err
			}
			dest = sink.NewTee(records, ps)
		}

		fetch, cleanupFetch, err := buildFetcher(a)
		if err != nil {
			return err
		}
		defer cleanupFetch()

		archive, cleanupArchive, err := newArchive(ctx, a)
		if err != nil {
			return err
		}
		defer cleanupArchive()

		runner := profile.NewRunner(fetch, dest, archive, profile.RunnerConfig{
			Concurrency: cfg.Crawler.Concurrency,
		}, a.logger)

		stats, runErr := runner.Run(ctx, res.Resolved)
		if closeErr := dest.Close(); closeErr != nil {
			a.logger.Error("sink close failed", zap.Error(closeErr))
			if runErr == nil {
				runErr = closeErr
			}
		}
		if runErr != nil {
			return runErr
		}

		a.logger.Info("records written",
			zap.String("output", out),
			zap.Int("extracted", stats.Extracted),
			zap.Int("fetch_failed", stats.FetchFailed),
		)
		return nil
	},
}

func init() {
	profilesCmd.Flags().StringSliceVar(&profileNames, "name", nil,
		"company name to extract (repeatable)")
	profilesCmd.Flags().StringVar(&profileNamesFile, "names-file", "",
		"file with one company name per line")
	profilesCmd.Flags().StringVar(&profileOutput, "output", "",
		"output path, format chosen by extension (.json, .jsonl, .csv)")
	profilesCmd.Flags().StringVar(&profileMapPath, "map", "",
		"entity map path override for the jsonfile backend")
}

// collectNames merges --name flags, the flag-specified names file, and the
// configured default file. An empty final list is a setup failure: the stage
// has no work and that is always a caller mistake.
func collectNames() ([]string, error) {
	names := append([]string(nil), profileNames...)

	path := profileNamesFile
	if path == "" {
		path = theApp.cfg.Profiles.NamesFile
	}
	if path != "" {
		fromFile, err := readNamesFile(path)
		if err != nil {
			return nil, err
		}
		names = append(names, fromFile...)
	}

	if len(names) == 0 {
		return nil, scrape.NewSetupError("profiles",
			fmt.Errorf("no company names given (use --name or --names-file)"))
	}
	return names, nil
}

func readNamesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scrape.NewSetupError("profiles", fmt.Errorf("open names file: %w", err))
	}
	defer f.Close() //nolint:errcheck

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		// Names are matched verbatim against the map, so only the line
		// delimiter is trimmed, not interior whitespace.
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, scrape.NewSetupError("profiles", fmt.Errorf("read names file: %w", err))
	}
	return names, nil
}
