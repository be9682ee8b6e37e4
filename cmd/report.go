package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/report"
)

var (
	reportPrepared string
	reportEnriched string
	reportOutput   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the pre-computed aggregation tables as markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		output := reportOutput
		if output == "" {
			output = filepath.Join(cfg.Output.Dir, "aggregation_tables.md")
		}

		return trackRun(ctx, st, "report", reportPrepared, func() (*model.RunSummary, error) {
			merged, err := mergeRecords(reportPrepared, reportEnriched)
			if err != nil {
				return nil, err
			}
			if len(merged) == 0 {
				return nil, eris.New("no records to report on")
			}

			md := report.ComputeAll(merged)
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return nil, eris.Wrapf(err, "create output dir for %s", output)
			}
			if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
				return nil, eris.Wrapf(err, "write report %s", output)
			}
			zap.L().Info("report written",
				zap.String("path", output),
				zap.Int("records", len(merged)),
			)
			return &model.RunSummary{TotalRows: len(merged), UniqueRows: len(merged)}, nil
		})
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportPrepared, "prepared", "p", "", "prepared integrations CSV")
	reportCmd.Flags().StringVarP(&reportEnriched, "enriched", "e", "", "enriched JSON from the enrich stage")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output markdown path (default <output.dir>/aggregation_tables.md)")
	reportCmd.MarkFlagRequired("prepared") //nolint:errcheck
	reportCmd.MarkFlagRequired("enriched") //nolint:errcheck
	rootCmd.AddCommand(reportCmd)
}
