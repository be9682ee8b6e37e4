// Package report pre-computes aggregation tables from the merged record
// set. The tables are rendered as markdown so a downstream analyst (or an
// LLM prompt) interprets exact numbers instead of recomputing them.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/influmetrics/integrations-cli/internal/metrics"
	"github.com/influmetrics/integrations-cli/internal/model"
)

var printer = message.NewPrinter(language.English)

// budgetTier is a closed budget range with a display label.
type budgetTier struct {
	lo    float64
	hi    float64
	label string
}

var budgetTiers = []budgetTier{
	{0, 1000, "$0–$1,000"},
	{1001, 3000, "$1,001–$3,000"},
	{3001, 5000, "$3,001–$5,000"},
	{5001, 8000, "$5,001–$8,000"},
	{8001, math.Inf(1), "$8,001+"},
}

// ComputeAll renders every aggregation table as one markdown document.
func ComputeAll(records []model.MergedRecord) string {
	sections := []string{
		ScoreComparison(records),
		OfferTypeDistribution(records),
		ToneAnalysis(records),
		PersonalStoryCorrelation(records),
		IntegrationPosition(records),
		FunnelConversionRates(records),
		PlatformPerformance(records),
		NichePerformance(records),
		BudgetTiers(records),
		ManagerPerformance(records),
		AnomalySummary(records),
	}

	withPurchases := 0
	for _, r := range records {
		if r.Metrics.HasPurchases {
			withPurchases++
		}
	}
	rate := 0.0
	if len(records) > 0 {
		rate = float64(withPurchases) / float64(len(records))
	}

	header := "## PRE-COMPUTED AGGREGATION TABLES\n\n" +
		"> **IMPORTANT**: The tables below were computed by code from the raw data.\n" +
		"> Use these EXACT numbers in your report, do NOT recalculate them.\n" +
		"> Your task is to INTERPRET and ANALYZE these numbers, find patterns,\n" +
		"> and generate actionable insights.\n\n" +
		fmt.Sprintf("**Dataset: %d total integrations, %d with purchases (%s)**\n\n",
			len(records), withPurchases, pct(rate))

	return header + strings.Join(sections, "\n---\n\n")
}

// ScoreComparison compares mean content scores for YouTube records with
// and without purchases.
func ScoreComparison(records []model.MergedRecord) string {
	var lines []string
	lines = append(lines, "### Pre-computed Table 1.1: Score Comparison (YouTube only)\n")

	var scored []model.MergedRecord
	for _, r := range records {
		if r.Format == model.FormatYouTube && r.Enrichment != nil {
			scored = append(scored, r)
		}
	}
	if len(scored) == 0 {
		lines = append(lines, "*No score data available.*\n")
		return strings.Join(lines, "\n")
	}

	var with, without []model.MergedRecord
	for _, r := range scored {
		if r.Metrics.HasPurchases {
			with = append(with, r)
		} else {
			without = append(without, r)
		}
	}

	lines = append(lines, fmt.Sprintf(
		"- YouTube integrations with scores: **%d** (with purchases: %d, without: %d)",
		len(scored), len(with), len(without)))
	lines = append(lines, "")
	lines = append(lines, "| Metric | With Purchases | Without Purchases | Gap |")
	lines = append(lines, "|---|---|---|---|")

	for _, dim := range model.ScoreDimensions {
		wMean := meanScore(with, dim)
		woMean := meanScore(without, dim)
		gap := wMean - woMean
		sign := ""
		if !math.IsNaN(gap) && gap >= 0 {
			sign = "+"
		}
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s%s |",
			dim, num(wMean), num(woMean), sign, num(gap)))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// OfferTypeDistribution breaks down purchase rate by offer type.
func OfferTypeDistribution(records []model.MergedRecord) string {
	return categoricalTable(records,
		"### Pre-computed Table 1.2: Offer Type Distribution\n",
		"Offer Type",
		func(r model.MergedRecord) string {
			if r.Enrichment == nil {
				return ""
			}
			return r.Enrichment.Analysis.OfferType
		},
		false)
}

// ToneAnalysis breaks down purchase rate by overall tone, including the
// group with no enrichment data.
func ToneAnalysis(records []model.MergedRecord) string {
	return categoricalTable(records,
		"### Pre-computed Table 1.3: Overall Tone Analysis\n",
		"Tone",
		func(r model.MergedRecord) string {
			if r.Enrichment == nil {
				return ""
			}
			return r.Enrichment.Analysis.OverallTone
		},
		true)
}

// PersonalStoryCorrelation compares purchase rates for records with and
// without a personal story.
func PersonalStoryCorrelation(records []model.MergedRecord) string {
	var lines []string
	lines = append(lines, "### Pre-computed Table 1.4: Personal Story Correlation\n")
	lines = append(lines, "| Has Personal Story | With Purchases | Without Purchases | Total | Purchase Rate |")
	lines = append(lines, "|---|---|---|---|---|")

	for _, val := range []bool{true, false} {
		var w, wo int
		for _, r := range records {
			if r.Enrichment == nil || r.Enrichment.Analysis.HasPersonalStory == nil {
				continue
			}
			if *r.Enrichment.Analysis.HasPersonalStory != val {
				continue
			}
			if r.Metrics.HasPurchases {
				w++
			} else {
				wo++
			}
		}
		label := "No"
		if val {
			label = "Yes"
		}
		lines = append(lines, countRow(label, w, wo))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// IntegrationPosition breaks down purchase rate by ad position in the video.
func IntegrationPosition(records []model.MergedRecord) string {
	return categoricalTable(records,
		"### Pre-computed Table 1.5: Integration Position\n",
		"Position",
		func(r model.MergedRecord) string {
			if r.Enrichment == nil {
				return ""
			}
			return r.Enrichment.Extraction.IntegrationPosition
		},
		false)
}

// FunnelConversionRates reports median and mean stage-to-stage rates.
func FunnelConversionRates(records []model.MergedRecord) string {
	var lines []string
	lines = append(lines, "### Pre-computed Table 2.1: Funnel Conversion Rates\n")
	lines = append(lines, "| Funnel Stage | Median | Mean | Non-zero Count |")
	lines = append(lines, "|---|---|---|---|")

	stages := []struct {
		label string
		num   func(r model.MergedRecord) float64
		den   func(r model.MergedRecord) float64
	}{
		{"Reach → Traffic", func(r model.MergedRecord) float64 { return r.TrafficFact }, func(r model.MergedRecord) float64 { return r.FactReach }},
		{"Traffic → Contacts", func(r model.MergedRecord) float64 { return r.ContactsFact }, func(r model.MergedRecord) float64 { return r.TrafficFact }},
		{"Contacts → Deals", func(r model.MergedRecord) float64 { return r.DealsFact }, func(r model.MergedRecord) float64 { return r.ContactsFact }},
		{"Deals → Calls", func(r model.MergedRecord) float64 { return r.CallsFact }, func(r model.MergedRecord) float64 { return r.DealsFact }},
		{"Calls → Purchase", func(r model.MergedRecord) float64 { return r.PurchaseFTotal }, func(r model.MergedRecord) float64 { return r.CallsFact }},
	}

	for _, stage := range stages {
		var rates []float64
		nonzero := 0
		for _, r := range records {
			den := stage.den(r)
			if math.IsNaN(den) || den <= 0 {
				continue
			}
			n := stage.num(r)
			if math.IsNaN(n) {
				n = 0
			}
			rate := n / den
			rates = append(rates, rate)
			if rate > 0 {
				nonzero++
			}
		}
		if len(rates) == 0 {
			lines = append(lines, fmt.Sprintf("| %s | N/A | N/A | 0 |", stage.label))
			continue
		}
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %d/%d |",
			stage.label, pct(median(rates)), pct(mean(rates)), nonzero, len(rates)))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// PlatformPerformance summarizes budget and purchases per format.
func PlatformPerformance(records []model.MergedRecord) string {
	return groupPerformance(records,
		"### Pre-computed Table 3.1: Platform Performance Summary\n",
		"Platform",
		func(r model.MergedRecord) string { return string(r.Format) },
		0)
}

// NichePerformance summarizes performance per topic, skipping singletons.
func NichePerformance(records []model.MergedRecord) string {
	return groupPerformance(records,
		"### Pre-computed Table 4.1: Niche Performance\n",
		"Niche",
		func(r model.MergedRecord) string { return r.Topic },
		2)
}

// ManagerPerformance summarizes performance per manager.
func ManagerPerformance(records []model.MergedRecord) string {
	return groupPerformance(records,
		"### Pre-computed Table 6.1: Manager Performance\n",
		"Manager",
		func(r model.MergedRecord) string { return r.Manager },
		0)
}

// BudgetTiers summarizes purchase performance per budget tier.
func BudgetTiers(records []model.MergedRecord) string {
	var lines []string
	lines = append(lines, "### Pre-computed Table 5.1: Budget Tier Performance\n")
	lines = append(lines, "| Budget Tier | Count | Integrations w/ Purchases | Total Purchases | Purchase Rate | Avg CPP |")
	lines = append(lines, "|---|---|---|---|---|---|")

	for _, tier := range budgetTiers {
		var subset []model.MergedRecord
		for _, r := range records {
			if !math.IsNaN(r.Budget) && r.Budget >= tier.lo && r.Budget <= tier.hi {
				subset = append(subset, r)
			}
		}

		nWith, totalPurchases, winnerBudget := purchaseTotals(subset)
		rate := metrics.SafeDivide(float64(nWith), float64(len(subset)))
		avgCPP := math.NaN()
		if nWith > 0 && totalPurchases > 0 {
			avgCPP = winnerBudget / totalPurchases
		}

		lines = append(lines, fmt.Sprintf("| %s | %d | %d | %d | %s | %s |",
			tier.label, len(subset), nWith, int(totalPurchases), pct(rate), money(avgCPP)))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// AnomalySummary lists records with unusual reach/traffic/budget patterns.
func AnomalySummary(records []model.MergedRecord) string {
	var lines []string
	lines = append(lines, "### Pre-computed Table 8.1: Anomalies\n")

	var highReachLowTraffic []model.MergedRecord
	for _, r := range records {
		if orZero(r.FactReach) > 10000 && orZero(r.TrafficFact) < 100 {
			highReachLowTraffic = append(highReachLowTraffic, r)
		}
	}
	lines = append(lines, fmt.Sprintf(
		"**High reach (>10K) but near-zero traffic (<100):** %d integrations", len(highReachLowTraffic)))
	for i, r := range highReachLowTraffic {
		if i == 5 {
			break
		}
		lines = append(lines, printer.Sprintf("- %s (%s): reach=%d, traffic=%d, budget=%s",
			r.Name, r.Format, int(orZero(r.FactReach)), int(orZero(r.TrafficFact)), money(r.Budget)))
	}
	lines = append(lines, "")

	var lowBudgetWinners []model.MergedRecord
	for _, r := range records {
		if orZero(r.Budget) < 2000 && r.Metrics.HasPurchases {
			lowBudgetWinners = append(lowBudgetWinners, r)
		}
	}
	lines = append(lines, fmt.Sprintf(
		"**Low budget (<$2K) with purchases:** %d integrations", len(lowBudgetWinners)))
	for _, r := range lowBudgetWinners {
		lines = append(lines, fmt.Sprintf("- %s (%s): budget=%s, purchases=%d, CPP=%s",
			r.Name, r.Format, money(r.Budget), int(orZero(r.PurchaseFTotal)), money(r.Metrics.CostPerPurchase)))
	}
	lines = append(lines, "")

	var highBudgetLosers []model.MergedRecord
	for _, r := range records {
		if orZero(r.Budget) > 5000 && !r.Metrics.HasPurchases {
			highBudgetLosers = append(highBudgetLosers, r)
		}
	}
	lines = append(lines, fmt.Sprintf(
		"**High budget (>$5K) with zero purchases:** %d integrations", len(highBudgetLosers)))
	for i, r := range highBudgetLosers {
		if i == 10 {
			break
		}
		lines = append(lines, printer.Sprintf("- %s (%s): budget=%s, reach=%d",
			r.Name, r.Format, money(r.Budget), int(orZero(r.FactReach))))
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

// categoricalTable renders a purchase-rate breakdown over the values of
// one categorical field. When includeMissing is set, records with no
// value form an "N/A (no data)" row.
func categoricalTable(records []model.MergedRecord, title, column string, value func(model.MergedRecord) string, includeMissing bool) string {
	var lines []string
	lines = append(lines, title)

	with := make(map[string]int)
	without := make(map[string]int)
	var naWith, naWithout int
	for _, r := range records {
		v := value(r)
		if v == "" {
			if r.Metrics.HasPurchases {
				naWith++
			} else {
				naWithout++
			}
			continue
		}
		if r.Metrics.HasPurchases {
			with[v]++
		} else {
			without[v]++
		}
	}

	if len(with) == 0 && len(without) == 0 && !includeMissing {
		lines = append(lines, "*No data available.*\n")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("| %s | With Purchases | Without Purchases | Total | Purchase Rate |", column))
	lines = append(lines, "|---|---|---|---|---|")

	for _, v := range sortedKeys(with, without) {
		lines = append(lines, countRow(v, with[v], without[v]))
	}
	if includeMissing {
		lines = append(lines, countRow("N/A (no data)", naWith, naWithout))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// groupPerformance renders the budget/purchase summary per group value.
// Groups smaller than minCount are skipped.
func groupPerformance(records []model.MergedRecord, title, column string, key func(model.MergedRecord) string, minCount int) string {
	var lines []string
	lines = append(lines, title)
	lines = append(lines, fmt.Sprintf(
		"| %s | Count | Total Budget | Integrations w/ Purchases | Total Purchases | Purchase Rate | Avg CPP |", column))
	lines = append(lines, "|---|---|---|---|---|---|---|")

	groups := make(map[string][]model.MergedRecord)
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		groups[k] = append(groups[k], r)
	}

	names := make([]string, 0, len(groups))
	for k := range groups {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		subset := groups[name]
		if len(subset) < minCount {
			continue
		}
		totalBudget := 0.0
		for _, r := range subset {
			totalBudget += orZero(r.Budget)
		}
		nWith, totalPurchases, winnerBudget := purchaseTotals(subset)
		rate := metrics.SafeDivide(float64(nWith), float64(len(subset)))
		avgCPP := math.NaN()
		if nWith > 0 && totalPurchases > 0 {
			avgCPP = winnerBudget / totalPurchases
		}

		lines = append(lines, fmt.Sprintf("| %s | %d | %s | %d | %d | %s | %s |",
			name, len(subset), money(totalBudget), nWith, int(totalPurchases), pct(rate), money(avgCPP)))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func purchaseTotals(records []model.MergedRecord) (winners int, totalPurchases, winnerBudget float64) {
	for _, r := range records {
		totalPurchases += orZero(r.PurchaseFTotal)
		if r.Metrics.HasPurchases {
			winners++
			winnerBudget += orZero(r.Budget)
		}
	}
	return winners, totalPurchases, winnerBudget
}

func countRow(label string, with, without int) string {
	total := with + without
	rate := metrics.SafeDivide(float64(with), float64(total))
	return fmt.Sprintf("| %s | %d | %d | %d | %s |", label, with, without, total, pct(rate))
}

func meanScore(records []model.MergedRecord, dim string) float64 {
	if len(records) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, r := range records {
		sum += float64(r.Enrichment.Analysis.Scores.ByDimension(dim))
	}
	return sum / float64(len(records))
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func sortedKeys(maps ...map[string]int) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range maps {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v)
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

func money(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return printer.Sprintf("$%.0f", v)
}
