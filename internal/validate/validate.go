package validate

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/normalize"
	"github.com/influmetrics/integrations-cli/internal/table"
	"github.com/influmetrics/integrations-cli/internal/urlclass"
)

// Validator cleans and validates a raw source table.
type Validator struct {
	rules Rules
	dates *normalize.DateNormalizer
}

// NewValidator builds a validator for the given rules.
func NewValidator(rules Rules) *Validator {
	return &Validator{
		rules: rules,
		dates: normalize.NewDateNormalizer(rules.DateLayouts),
	}
}

// Result is the outcome of one validation pass: the cleaned record set and
// the ordered warnings describing every data-shrinking event. Warnings are
// surfaced to the operator by the caller, never swallowed here.
type Result struct {
	Records  []model.IntegrationRecord
	Warnings []string
}

// Validate runs the full cleaning pass:
//
//  1. required-column check (fatal)
//  2. trim key strings, lowercase format
//  3. normalize dates and numeric columns
//  4. classify ad links
//  5. extract integration timestamps for youtube rows
//  6. drop unsupported formats (warn)
//  7. dedup on (name, ad link), first row wins (warn)
//  8. summary warnings
//
// Only step 1 returns an error; everything after it degrades per row.
func (v *Validator) Validate(t *table.Table) (*Result, error) {
	if err := v.checkColumns(t); err != nil {
		return nil, err
	}

	idx := t.ColumnIndex()
	records := make([]model.IntegrationRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, v.buildRecord(t, idx, row))
	}

	var warnings []string

	records, warnings = v.filterFormats(records, warnings)
	records, warnings = dedup(records, warnings)
	warnings = v.summarize(records, warnings)

	return &Result{Records: records, Warnings: warnings}, nil
}

// checkColumns verifies the required-column set, naming every missing
// column in the error.
func (v *Validator) checkColumns(t *table.Table) error {
	idx := t.ColumnIndex()
	var missing []string
	for _, col := range v.rules.RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("missing required columns: [%s] (expected: [%s])",
			strings.Join(missing, ", "), strings.Join(v.rules.RequiredColumns, ", "))
	}
	return nil
}

// buildRecord converts one raw row into a typed record: per-cell
// normalization plus URL classification. Never fails; bad cells become
// sentinels.
func (v *Validator) buildRecord(t *table.Table, idx map[string]int, row []string) model.IntegrationRecord {
	cell := func(col string) string { return strings.TrimSpace(t.Cell(row, idx, col)) }

	rec := model.IntegrationRecord{
		Date:        v.dates.Normalize(cell("Date")),
		Name:        cell("Name"),
		ProfileLink: cell("Profile link"),
		Topic:       cell("Topic"),
		Manager:     cell("Manager"),
		Format:      model.Format(strings.ToLower(cell("Format"))),
		AdLink:      cell("Ad link"),
		UTMLink:     cell("UTM Link"),
		UTMCampaign: cell("UTM Campaign"),
	}

	for _, nc := range model.NumericColumns {
		*nc.Field(&rec) = normalize.Number(t.Cell(row, idx, nc.Column))
	}

	cls := urlclass.Classify(rec.AdLink)
	rec.IsParseable = cls.IsParseable
	rec.URLType = cls.URLType
	rec.ContentID = cls.ContentID
	if rec.URLType == model.URLTypeYouTube {
		rec.IntegrationTimestamp = urlclass.ExtractTimestamp(rec.AdLink)
	}

	return rec
}

// filterFormats drops rows whose format is outside the supported set,
// recording the count and the distinct unsupported values seen.
func (v *Validator) filterFormats(records []model.IntegrationRecord, warnings []string) ([]model.IntegrationRecord, []string) {
	kept := records[:0:0]
	var unsupported []string
	seen := map[model.Format]bool{}
	removed := 0

	for _, rec := range records {
		if v.rules.formatSupported(rec.Format) {
			kept = append(kept, rec)
			continue
		}
		removed++
		if !seen[rec.Format] {
			seen[rec.Format] = true
			unsupported = append(unsupported, string(rec.Format))
		}
	}

	if removed > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Removed %d rows with unsupported formats: [%s]", removed, strings.Join(unsupported, ", ")))
	}
	return kept, warnings
}

// dedup removes later rows sharing (name, ad link) with an earlier one.
// Runs after format filtering so unsupported rows never count toward
// dedup decisions.
func dedup(records []model.IntegrationRecord, warnings []string) ([]model.IntegrationRecord, []string) {
	type key struct {
		name, adLink string
	}
	seen := make(map[key]bool, len(records))
	kept := records[:0:0]
	removed := 0

	for _, rec := range records {
		k := key{rec.Name, rec.AdLink}
		if seen[k] {
			removed++
			continue
		}
		seen[k] = true
		kept = append(kept, rec)
	}

	if removed > 0 {
		warnings = append(warnings, fmt.Sprintf("Removed %d duplicate rows (by Name + Ad link)", removed))
	}
	return kept, warnings
}

// summarize appends the human-readable pass summary: total unique rows,
// parseable count, and a per-format breakdown.
func (v *Validator) summarize(records []model.IntegrationRecord, warnings []string) []string {
	parseable := 0
	total := map[model.Format]int{}
	formatParseable := map[model.Format]int{}
	for _, rec := range records {
		total[rec.Format]++
		if rec.IsParseable {
			parseable++
			formatParseable[rec.Format]++
		}
	}

	warnings = append(warnings, fmt.Sprintf("Summary: %d unique rows, %d parseable URLs", len(records), parseable))
	for _, f := range v.rules.SupportedFormats {
		warnings = append(warnings, fmt.Sprintf("  %s: %d total, %d parseable", f, total[f], formatParseable[f]))
	}
	return warnings
}

// SplitByFormat groups records by format, preserving row order within each
// group. Formats with no records are omitted.
func SplitByFormat(records []model.IntegrationRecord) map[model.Format][]model.IntegrationRecord {
	out := make(map[model.Format][]model.IntegrationRecord)
	for _, rec := range records {
		out[rec.Format] = append(out[rec.Format], rec)
	}
	return out
}
