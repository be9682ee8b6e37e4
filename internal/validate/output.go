package validate

import (
	"math"
	"strconv"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/table"
)

// textColumns are the string columns of the prepared output, in order.
var textColumns = []struct {
	name string
	get  func(*model.IntegrationRecord) string
}{
	{"Date", func(r *model.IntegrationRecord) string { return r.Date }},
	{"Name", func(r *model.IntegrationRecord) string { return r.Name }},
	{"Profile link", func(r *model.IntegrationRecord) string { return r.ProfileLink }},
	{"Topic", func(r *model.IntegrationRecord) string { return r.Topic }},
	{"Manager", func(r *model.IntegrationRecord) string { return r.Manager }},
	{"Format", func(r *model.IntegrationRecord) string { return string(r.Format) }},
	{"Ad link", func(r *model.IntegrationRecord) string { return r.AdLink }},
	{"UTM Link", func(r *model.IntegrationRecord) string { return r.UTMLink }},
	{"UTM Campaign", func(r *model.IntegrationRecord) string { return r.UTMCampaign }},
}

// OutputHeader is the column layout of the prepared (cleaned) table:
// the source columns followed by the classifier columns.
func OutputHeader() []string {
	header := make([]string, 0, len(textColumns)+len(model.NumericColumns)+4)
	for _, c := range textColumns {
		header = append(header, c.name)
	}
	header = append(header, model.NumericColumnNames()...)
	return append(header, "is_parseable", "url_type", "content_id", "integration_timestamp")
}

// Render converts cleaned records back into a string table under the
// OutputHeader layout. NaN renders as the empty cell, so a rendered table
// re-validates to the identical record set.
func Render(records []model.IntegrationRecord) *table.Table {
	rows := make([][]string, 0, len(records))
	for i := range records {
		rec := &records[i]
		row := make([]string, 0, len(textColumns)+len(model.NumericColumns)+4)
		for _, c := range textColumns {
			row = append(row, c.get(rec))
		}
		for _, nc := range model.NumericColumns {
			row = append(row, formatFloat(*nc.Field(rec)))
		}
		row = append(row,
			strconv.FormatBool(rec.IsParseable),
			string(rec.URLType),
			rec.ContentID,
			formatTimestamp(rec.IntegrationTimestamp),
		)
		rows = append(rows, row)
	}
	return &table.Table{Header: OutputHeader(), Rows: rows}
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatTimestamp(ts *int) string {
	if ts == nil {
		return ""
	}
	return strconv.Itoa(*ts)
}
