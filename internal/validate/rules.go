// Package validate applies the field normalizers and URL classifier across
// a whole source table, enforcing its schema and table-level invariants.
package validate

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/normalize"
)

// Rules are the normalization settings the validator runs under. They are
// an explicit value handed to NewValidator, not ambient state; DefaultRules
// mirrors the layout of the source spreadsheet.
type Rules struct {
	// RequiredColumns must all be present in the input header; validation
	// fails fast when any is missing.
	RequiredColumns []string `yaml:"required_columns"`

	// DateLayouts are the explicit date layouts, tried in order before the
	// serial-day fallback.
	DateLayouts []string `yaml:"date_layouts"`

	// SupportedFormats is the closed set of placement formats; rows with
	// any other format are dropped with a warning.
	SupportedFormats []model.Format `yaml:"supported_formats"`
}

// DefaultRules returns the rules matching the production source table.
func DefaultRules() Rules {
	return Rules{
		RequiredColumns:  []string{"Date", "Name", "Format", "Ad link"},
		DateLayouts:      normalize.DefaultDateLayouts,
		SupportedFormats: model.SupportedFormats,
	}
}

// LoadRules reads a YAML rules file and overlays it on DefaultRules.
// Only non-empty fields override the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, eris.Wrapf(err, "validate: read rules %s", path)
	}

	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return rules, eris.Wrapf(err, "validate: parse rules %s", path)
	}

	if len(override.RequiredColumns) > 0 {
		rules.RequiredColumns = override.RequiredColumns
	}
	if len(override.DateLayouts) > 0 {
		rules.DateLayouts = override.DateLayouts
	}
	if len(override.SupportedFormats) > 0 {
		rules.SupportedFormats = override.SupportedFormats
	}
	return rules, nil
}

func (r Rules) formatSupported(f model.Format) bool {
	for _, s := range r.SupportedFormats {
		if s == f {
			return true
		}
	}
	return false
}
