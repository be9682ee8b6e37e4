package main

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/influmetrics/integrations-cli/internal/cost"
	"github.com/influmetrics/integrations-cli/internal/enrich"
	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/table"
	"github.com/influmetrics/integrations-cli/pkg/anthropic"
)

var (
	enrichParsed   string
	enrichPrepared string
	enrichOutput   string
	enrichNoCache  bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run LLM enrichment over parsed video transcripts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Anthropic.Key == "" {
			return eris.New("Anthropic API key is required (INTEGRATIONS_ANTHROPIC_KEY)")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		output := enrichOutput
		if output == "" {
			output = filepath.Join(cfg.Output.Dir, "youtube_enriched.json")
		}

		return trackRun(ctx, st, "enrich", enrichParsed, func() (*model.RunSummary, error) {
			items, err := enrich.LoadItems(enrichParsed)
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				return nil, eris.Errorf("no parsed items found in %s", enrichParsed)
			}

			timestamps := map[string]*int{}
			if enrichPrepared != "" {
				records, err := loadPrepared(enrichPrepared)
				if err != nil {
					return nil, err
				}
				for _, r := range records {
					if r.IntegrationTimestamp != nil {
						timestamps[strings.TrimSpace(r.AdLink)] = r.IntegrationTimestamp
					}
				}
			}

			cached := 0
			if !enrichNoCache {
				for i := range items {
					rec, err := st.GetCachedEnrichment(ctx, items[i].URL)
					if err != nil {
						return nil, err
					}
					if rec != nil {
						items[i].Enrichment = rec
						cached++
					}
				}
			}

			var pending []enrich.Item
			var pendingIdx []int
			for i := range items {
				if items[i].Enrichment == nil {
					pending = append(pending, items[i])
					pendingIdx = append(pendingIdx, i)
				}
			}

			if len(pending) > 0 {
				enricher := enrich.NewEnricher(anthropic.NewClient(cfg.Anthropic.Key), enrich.Options{
					Model:       cfg.Anthropic.Model,
					MaxTokens:   int64(cfg.Anthropic.MaxTokens),
					MaxAttempts: cfg.Anthropic.MaxAttempts,
					Concurrency: cfg.Anthropic.Concurrency,
				})
				if err := enricher.EnrichAll(ctx, pending, timestamps); err != nil {
					return nil, err
				}
				usage := enricher.Usage()
				zap.L().Info("enrichment spend",
					zap.Int64("input_tokens", usage.InputTokens),
					zap.Int64("output_tokens", usage.OutputTokens),
					zap.Float64("estimated_cost_usd", cost.NewCalculator(cost.DefaultRates()).Claude(cfg.Anthropic.Model, usage)),
				)
				for n, i := range pendingIdx {
					items[i] = pending[n]
					if rec := pending[n].Enrichment; rec != nil {
						if err := st.SetCachedEnrichment(ctx, pending[n].URL, rec, cacheTTL()); err != nil {
							zap.L().Warn("failed to cache enrichment",
								zap.String("url", pending[n].URL), zap.Error(err))
						}
					}
				}
			}

			enriched := 0
			for i := range items {
				if items[i].Enrichment != nil {
					enriched++
				}
			}
			if err := table.WriteJSON(output, items); err != nil {
				return nil, err
			}
			zap.L().Info("enriched items written",
				zap.String("path", output),
				zap.Int("total", len(items)),
				zap.Int("enriched", enriched),
				zap.Int("from_cache", cached),
			)

			return &model.RunSummary{TotalRows: len(items), UniqueRows: enriched}, nil
		})
	},
}

func init() {
	enrichCmd.Flags().StringVarP(&enrichParsed, "input", "i", "", "parsed stats JSON from the parse stage")
	enrichCmd.Flags().StringVar(&enrichPrepared, "prepared", "", "prepared CSV for integration timestamp hints")
	enrichCmd.Flags().StringVarP(&enrichOutput, "output", "o", "", "output JSON path (default <output.dir>/youtube_enriched.json)")
	enrichCmd.Flags().BoolVar(&enrichNoCache, "no-cache", false, "bypass the enrichment cache")
	enrichCmd.MarkFlagRequired("input") //nolint:errcheck
	rootCmd.AddCommand(enrichCmd)
}
