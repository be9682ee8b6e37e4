package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/table"
	"github.com/influmetrics/integrations-cli/internal/validate"
)

var (
	prepareInput  string
	prepareOutput string
	prepareRules  string
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Validate and deduplicate the source integrations table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		output := prepareOutput
		if output == "" {
			output = filepath.Join(cfg.Output.Dir, "prepared_integrations.csv")
		}

		return trackRun(ctx, st, "prepare", prepareInput, func() (*model.RunSummary, error) {
			result, err := runValidation(prepareInput, prepareRules)
			if err != nil {
				return nil, err
			}

			for _, w := range result.Warnings {
				zap.L().Warn(w)
			}

			rendered := validate.Render(result.Records)
			if err := table.WriteCSV(output, rendered.Header, rendered.Rows); err != nil {
				return nil, err
			}
			zap.L().Info("prepared table written",
				zap.String("path", output),
				zap.Int("rows", len(result.Records)),
			)

			parseable := 0
			for _, r := range result.Records {
				if r.IsParseable {
					parseable++
				}
			}
			return &model.RunSummary{
				TotalRows:     len(rendered.Rows),
				UniqueRows:    len(result.Records),
				ParseableURLs: parseable,
				Warnings:      result.Warnings,
			}, nil
		})
	},
}

// loadRules resolves the active normalization rules: an explicit flag wins,
// then the configured rules file, then the defaults. Every stage that
// validates or re-validates a table goes through here so they can never
// disagree about which formats survive.
func loadRules(rulesFile string) (validate.Rules, error) {
	if rulesFile == "" {
		rulesFile = cfg.Source.RulesFile
	}
	if rulesFile == "" {
		return validate.DefaultRules(), nil
	}
	return validate.LoadRules(rulesFile)
}

// runValidation reads a source table and runs the validator over it.
func runValidation(input, rulesFile string) (*validate.Result, error) {
	rules, err := loadRules(rulesFile)
	if err != nil {
		return nil, err
	}

	delimiter := ';'
	if cfg.Source.Delimiter != "" {
		delimiter = rune(cfg.Source.Delimiter[0])
	}

	t, err := table.Read(input, delimiter)
	if err != nil {
		return nil, err
	}
	return validate.NewValidator(rules).Validate(t)
}

// loadPrepared re-reads a prepared CSV back into typed records, under the
// same rules the prepare stage ran with (validation is idempotent, so the
// re-read drops nothing the first pass kept). Warnings are logged rather
// than returned: by this point they repeat what prepare already reported.
func loadPrepared(path string) ([]model.IntegrationRecord, error) {
	rules, err := loadRules("")
	if err != nil {
		return nil, err
	}
	t, err := table.ReadCSV(path, ',')
	if err != nil {
		return nil, err
	}
	result, err := validate.NewValidator(rules).Validate(t)
	if err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		zap.L().Warn(w)
	}
	return result.Records, nil
}

func init() {
	prepareCmd.Flags().StringVarP(&prepareInput, "input", "i", "", "source table (.csv or .xlsx)")
	prepareCmd.Flags().StringVarP(&prepareOutput, "output", "o", "", "output CSV path (default <output.dir>/prepared_integrations.csv)")
	prepareCmd.Flags().StringVar(&prepareRules, "rules", "", "YAML normalization rules file")
	prepareCmd.MarkFlagRequired("input") //nolint:errcheck
	rootCmd.AddCommand(prepareCmd)
}
