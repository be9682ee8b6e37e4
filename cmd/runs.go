package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/store"
)

var (
	runsStage  string
	runsStatus string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show pipeline run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Stage:  runsStage,
			Status: model.RunStatus(runsStatus),
			Limit:  runsLimit,
		})
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			zap.L().Info("no runs recorded yet")
			return nil
		}

		formatRuns(os.Stdout, runs)
		return nil
	},
}

// formatRuns writes a tabular representation of runs to w.
func formatRuns(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTAGE\tSTATUS\tSTARTED\tROWS\tPARSEABLE\tWARNINGS")
	_, _ = fmt.Fprintln(w, "--\t-----\t------\t-------\t----\t---------\t--------")

	for _, r := range runs {
		rows, parseable, warnings := "-", "-", "-"
		if r.Summary != nil {
			rows = fmt.Sprintf("%d", r.Summary.TotalRows)
			parseable = fmt.Sprintf("%d", r.Summary.ParseableURLs)
			warnings = fmt.Sprintf("%d", len(r.Summary.Warnings))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Stage,
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04"),
			rows,
			parseable,
			warnings,
		)
	}
	_ = w.Flush()
}

func init() {
	runsCmd.Flags().StringVar(&runsStage, "stage", "", "filter by pipeline stage")
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by run status")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to show")
	rootCmd.AddCommand(runsCmd)
}
