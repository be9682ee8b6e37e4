// Package enrich joins external enrichment output onto the cleaned record
// set and flattens it for tabular storage.
package enrich

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/influmetrics/integrations-cli/internal/model"
)

// Item is one element of an enriched JSON artifact: the platform metadata
// the parser collected, plus the LLM enrichment when extraction succeeded.
type Item struct {
	model.PlatformStats
	Enrichment *model.EnrichmentRecord `json:"enrichment,omitempty"`
}

// LoadItems reads an enriched JSON file. A missing file yields an empty
// slice: partial enrichment coverage is an expected steady state.
func LoadItems(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "enrich: read %s", path)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, eris.Wrapf(err, "enrich: parse %s", path)
	}
	return items, nil
}

// Lookup indexes enriched items by their source URL. Later items with a
// duplicate URL overwrite earlier ones.
func Lookup(items []Item) map[string]*Item {
	lookup := make(map[string]*Item, len(items))
	for i := range items {
		url := strings.TrimSpace(items[i].URL)
		if url == "" {
			continue
		}
		lookup[url] = &items[i]
	}
	return lookup
}

// Merge left-joins enriched items onto the cleaned records by ad link.
// Every record survives; records with no matching item simply carry no
// platform stats or enrichment. Derived metrics are not computed here;
// the caller runs the metrics calculator over the merged set.
func Merge(records []model.IntegrationRecord, lookup map[string]*Item) []model.MergedRecord {
	merged := make([]model.MergedRecord, len(records))
	for i, rec := range records {
		merged[i] = model.MergedRecord{IntegrationRecord: rec}
		item, ok := lookup[strings.TrimSpace(rec.AdLink)]
		if !ok {
			continue
		}
		stats := item.PlatformStats
		merged[i].Platform = &stats
		merged[i].Enrichment = item.Enrichment
	}
	return merged
}
