package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/influmetrics/integrations-cli/internal/enrich"
	"github.com/influmetrics/integrations-cli/internal/metrics"
	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/table"
)

var (
	mergePrepared string
	mergeEnriched string
	mergeOutDir   string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Join enrichment onto cleaned records and compute derived metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		outDir := mergeOutDir
		if outDir == "" {
			outDir = cfg.Output.Dir
		}

		return trackRun(ctx, st, "merge", mergePrepared, func() (*model.RunSummary, error) {
			merged, err := mergeRecords(mergePrepared, mergeEnriched)
			if err != nil {
				return nil, err
			}

			rendered := enrich.Render(merged)

			csvPath := filepath.Join(outDir, "final_merged.csv")
			if err := table.WriteCSV(csvPath, rendered.Header, rendered.Rows); err != nil {
				return nil, err
			}

			// JSON mirrors the rendered table rather than the typed records:
			// missing numerics are NaN in memory, which JSON cannot encode.
			jsonPath := filepath.Join(outDir, "final_merged.json")
			if err := table.WriteJSON(jsonPath, rowMaps(rendered)); err != nil {
				return nil, err
			}

			withEnrichment := 0
			for i := range merged {
				if merged[i].Enrichment != nil {
					withEnrichment++
				}
			}
			zap.L().Info("merged output written",
				zap.String("csv", csvPath),
				zap.String("json", jsonPath),
				zap.Int("records", len(merged)),
				zap.Int("enriched", withEnrichment),
			)

			return &model.RunSummary{TotalRows: len(merged), UniqueRows: len(merged)}, nil
		})
	},
}

// mergeRecords rebuilds the merged record set from on-disk stage artifacts:
// the prepared CSV and the enriched JSON. One enriched file suffices for all
// platforms: the join is keyed by ad-link URL, so enrichment outputs from
// separate per-platform runs can be concatenated into a single file and
// merge identically.
func mergeRecords(preparedPath, enrichedPath string) ([]model.MergedRecord, error) {
	records, err := loadPrepared(preparedPath)
	if err != nil {
		return nil, err
	}
	items, err := enrich.LoadItems(enrichedPath)
	if err != nil {
		return nil, err
	}
	merged := enrich.Merge(records, enrich.Lookup(items))
	metrics.Annotate(merged)
	return merged, nil
}

// rowMaps converts a rendered table to one string map per row, keyed by
// column name, with empty cells omitted.
func rowMaps(t *table.Table) []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]string, len(row))
		for j, cell := range row {
			if j >= len(t.Header) || strings.TrimSpace(cell) == "" {
				continue
			}
			m[t.Header[j]] = cell
		}
		out[i] = m
	}
	return out
}

func init() {
	mergeCmd.Flags().StringVarP(&mergePrepared, "prepared", "p", "", "prepared integrations CSV")
	mergeCmd.Flags().StringVarP(&mergeEnriched, "enriched", "e", "", "enriched JSON from the enrich stage")
	mergeCmd.Flags().StringVarP(&mergeOutDir, "output-dir", "o", "", "output directory (default <output.dir>)")
	mergeCmd.MarkFlagRequired("prepared") //nolint:errcheck
	mergeCmd.MarkFlagRequired("enriched") //nolint:errcheck
	rootCmd.AddCommand(mergeCmd)
}
