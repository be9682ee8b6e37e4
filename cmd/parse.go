package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/parse"
	"github.com/influmetrics/integrations-cli/internal/store"
	"github.com/influmetrics/integrations-cli/internal/table"
	"github.com/influmetrics/integrations-cli/pkg/youtube"
	"github.com/rotisserie/eris"
)

var (
	parseInput   string
	parseOutput  string
	parseNoCache bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Fetch YouTube metadata and transcripts for parseable ad links",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.YouTube.APIKey == "" {
			return eris.New("YouTube API key is required (INTEGRATIONS_YOUTUBE_API_KEY)")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		output := parseOutput
		if output == "" {
			output = filepath.Join(cfg.Output.Dir, "youtube_parsed.json")
		}

		return trackRun(ctx, st, "parse", parseInput, func() (*model.RunSummary, error) {
			records, err := loadPrepared(parseInput)
			if err != nil {
				return nil, err
			}

			var urls []string
			for _, r := range records {
				if r.IsParseable && r.URLType == model.URLTypeYouTube {
					urls = append(urls, r.AdLink)
				}
			}

			results, fetched, err := parseWithCache(cmd, st, urls)
			if err != nil {
				return nil, err
			}

			if err := table.WriteJSON(output, results); err != nil {
				return nil, err
			}
			zap.L().Info("parsed stats written",
				zap.String("path", output),
				zap.Int("total", len(results)),
				zap.Int("fetched", fetched),
				zap.Int("cached", len(results)-fetched),
			)

			return &model.RunSummary{
				TotalRows:     len(records),
				UniqueRows:    len(records),
				ParseableURLs: len(urls),
			}, nil
		})
	},
}

// parseWithCache serves URLs from the stats cache and fetches only the
// misses, writing new results back with the configured TTL.
func parseWithCache(cmd *cobra.Command, st store.Store, urls []string) ([]model.PlatformStats, int, error) {
	ctx := cmd.Context()

	var results []model.PlatformStats
	var misses []string
	for _, u := range urls {
		if !parseNoCache {
			cached, err := st.GetCachedStats(ctx, u)
			if err != nil {
				return nil, 0, err
			}
			if cached != nil {
				results = append(results, *cached)
				continue
			}
		}
		misses = append(misses, u)
	}

	if len(misses) == 0 {
		return results, 0, nil
	}

	client := youtube.NewClient(cfg.YouTube.APIKey,
		youtube.WithLimiter(rate.NewLimiter(rate.Limit(cfg.YouTube.RequestsPerSec), 5)),
		youtube.WithMaxAttempts(cfg.YouTube.MaxAttempts),
	)
	transcripts := youtube.NewTranscriptClient(
		youtube.WithTranscriptLanguages(cfg.YouTube.TranscriptLanguages),
	)
	parser := parse.NewParser(client, transcripts, parse.Options{
		BatchSize:   cfg.YouTube.BatchSize,
		MaxAttempts: cfg.YouTube.MaxAttempts,
	})

	fetched, err := parser.ParseBatch(ctx, misses)
	if err != nil {
		return nil, 0, err
	}

	for _, stats := range fetched {
		if stats.Error == "" {
			if err := st.SetCachedStats(ctx, stats, cacheTTL()); err != nil {
				zap.L().Warn("failed to cache stats", zap.String("url", stats.URL), zap.Error(err))
			}
		}
		results = append(results, stats)
	}
	return results, len(fetched), nil
}

func init() {
	parseCmd.Flags().StringVarP(&parseInput, "input", "i", "", "prepared integrations CSV")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "output JSON path (default <output.dir>/youtube_parsed.json)")
	parseCmd.Flags().BoolVar(&parseNoCache, "no-cache", false, "bypass the stats cache")
	parseCmd.MarkFlagRequired("input") //nolint:errcheck
	rootCmd.AddCommand(parseCmd)
}
