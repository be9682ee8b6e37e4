package enrich

import (
	"math"
	"strconv"
	"strings"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/table"
	"github.com/influmetrics/integrations-cli/internal/validate"
)

// Flattened column layout: enrichment fields become enrichment_<field>,
// scores become score_<dimension>, list fields are joined with " | ".
const listSeparator = " | "

var extractionColumns = []struct {
	name string
	get  func(*model.Extraction) string
}{
	{"enrichment_integration_text", func(e *model.Extraction) string { return e.IntegrationText }},
	{"enrichment_integration_start_sec", func(e *model.Extraction) string { return floatPtrCell(e.IntegrationStartSec) }},
	{"enrichment_integration_duration_sec", func(e *model.Extraction) string { return floatPtrCell(e.IntegrationDurationSec) }},
	{"enrichment_integration_position", func(e *model.Extraction) string { return e.IntegrationPosition }},
	{"enrichment_is_full_video_ad", func(e *model.Extraction) string { return boolPtrCell(e.IsFullVideoAd) }},
}

var analysisColumns = []struct {
	name string
	get  func(*model.Analysis) string
}{
	{"enrichment_offer_type", func(a *model.Analysis) string { return a.OfferType }},
	{"enrichment_offer_details", func(a *model.Analysis) string { return a.OfferDetails }},
	{"enrichment_landing_type", func(a *model.Analysis) string { return a.LandingType }},
	{"enrichment_cta_type", func(a *model.Analysis) string { return a.CTAType }},
	{"enrichment_cta_urgency", func(a *model.Analysis) string { return a.CTAUrgency }},
	{"enrichment_cta_text", func(a *model.Analysis) string { return a.CTAText }},
	{"enrichment_has_personal_story", func(a *model.Analysis) string { return boolPtrCell(a.HasPersonalStory) }},
	{"enrichment_personal_story_type", func(a *model.Analysis) string { return a.PersonalStoryType }},
	{"enrichment_pain_points_addressed", func(a *model.Analysis) string { return strings.Join(a.PainPointsAddressed, listSeparator) }},
	{"enrichment_benefits_mentioned", func(a *model.Analysis) string { return strings.Join(a.BenefitsMentioned, listSeparator) }},
	{"enrichment_objection_handling", func(a *model.Analysis) string { return a.ObjectionHandling }},
	{"enrichment_social_proof", func(a *model.Analysis) string { return a.SocialProof }},
	{"enrichment_overall_tone", func(a *model.Analysis) string { return a.OverallTone }},
	{"enrichment_language", func(a *model.Analysis) string { return a.Language }},
	{"enrichment_product_positioning", func(a *model.Analysis) string { return a.ProductPositioning }},
	{"enrichment_target_audience_implied", func(a *model.Analysis) string { return a.TargetAudienceImplied }},
	{"enrichment_competitive_mention", func(a *model.Analysis) string { return boolPtrCell(a.CompetitiveMention) }},
	{"enrichment_price_mentioned", func(a *model.Analysis) string { return boolPtrCell(a.PriceMentioned) }},
}

var platformColumns = []struct {
	name string
	get  func(*model.PlatformStats) string
}{
	{"view_count", func(p *model.PlatformStats) string { return floatCell(p.ViewCount) }},
	{"like_count", func(p *model.PlatformStats) string { return floatCell(p.LikeCount) }},
	{"comment_count", func(p *model.PlatformStats) string { return floatCell(p.CommentCount) }},
	{"duration_seconds", func(p *model.PlatformStats) string { return strconv.Itoa(p.DurationSeconds) }},
	{"channel_subscribers", func(p *model.PlatformStats) string { return strconv.FormatInt(p.ChannelSubscribers, 10) }},
	{"channel_name", func(p *model.PlatformStats) string { return p.ChannelName }},
	{"title", func(p *model.PlatformStats) string { return p.Title }},
}

var metricColumns = []struct {
	name string
	get  func(*model.DerivedMetrics) string
}{
	{"cost_per_view", func(m *model.DerivedMetrics) string { return floatCell(m.CostPerView) }},
	{"cost_per_contact", func(m *model.DerivedMetrics) string { return floatCell(m.CostPerContact) }},
	{"cost_per_deal", func(m *model.DerivedMetrics) string { return floatCell(m.CostPerDeal) }},
	{"cost_per_purchase", func(m *model.DerivedMetrics) string { return floatCell(m.CostPerPurchase) }},
	{"traffic_to_contact_rate", func(m *model.DerivedMetrics) string { return floatCell(m.TrafficToContactRate) }},
	{"contact_to_deal_rate", func(m *model.DerivedMetrics) string { return floatCell(m.ContactToDealRate) }},
	{"deal_to_call_rate", func(m *model.DerivedMetrics) string { return floatCell(m.DealToCallRate) }},
	{"call_to_purchase_rate", func(m *model.DerivedMetrics) string { return floatCell(m.CallToPurchaseRate) }},
	{"full_funnel_conversion", func(m *model.DerivedMetrics) string { return floatCell(m.FullFunnelConversion) }},
	{"plan_vs_fact_reach", func(m *model.DerivedMetrics) string { return floatCell(m.PlanVsFactReach) }},
	{"plan_vs_fact_traffic", func(m *model.DerivedMetrics) string { return floatCell(m.PlanVsFactTraffic) }},
	{"has_purchases", func(m *model.DerivedMetrics) string { return strconv.FormatBool(m.HasPurchases) }},
	{"engagement_rate", func(m *model.DerivedMetrics) string { return floatCell(m.EngagementRate) }},
	{"view_to_reach_ratio", func(m *model.DerivedMetrics) string { return floatCell(m.ViewToReachRatio) }},
}

// OutputHeader is the flat column layout of the final merged table: the
// prepared columns, then platform metadata, enrichment, scores, metrics.
func OutputHeader() []string {
	header := validate.OutputHeader()
	for _, c := range platformColumns {
		header = append(header, c.name)
	}
	for _, c := range extractionColumns {
		header = append(header, c.name)
	}
	for _, c := range analysisColumns {
		header = append(header, c.name)
	}
	for _, dim := range model.ScoreDimensions {
		header = append(header, "score_"+dim)
	}
	for _, c := range metricColumns {
		header = append(header, c.name)
	}
	return header
}

// Render flattens merged records into a string table under OutputHeader.
// Records without platform stats or enrichment get empty cells in those
// column groups.
func Render(records []model.MergedRecord) *table.Table {
	base := validate.Render(recordsOf(records))

	rows := make([][]string, len(records))
	for i := range records {
		rec := &records[i]
		row := base.Rows[i]

		for _, c := range platformColumns {
			row = append(row, platformCell(rec.Platform, c.get))
		}
		for _, c := range extractionColumns {
			if rec.Enrichment != nil {
				row = append(row, c.get(&rec.Enrichment.Extraction))
			} else {
				row = append(row, "")
			}
		}
		for _, c := range analysisColumns {
			if rec.Enrichment != nil {
				row = append(row, c.get(&rec.Enrichment.Analysis))
			} else {
				row = append(row, "")
			}
		}
		for _, dim := range model.ScoreDimensions {
			if rec.Enrichment != nil {
				row = append(row, strconv.Itoa(rec.Enrichment.Analysis.Scores.ByDimension(dim)))
			} else {
				row = append(row, "")
			}
		}
		for _, c := range metricColumns {
			row = append(row, c.get(&rec.Metrics))
		}
		rows[i] = row
	}

	return &table.Table{Header: OutputHeader(), Rows: rows}
}

func recordsOf(records []model.MergedRecord) []model.IntegrationRecord {
	out := make([]model.IntegrationRecord, len(records))
	for i := range records {
		out[i] = records[i].IntegrationRecord
	}
	return out
}

func platformCell(p *model.PlatformStats, get func(*model.PlatformStats) string) string {
	if p == nil {
		return ""
	}
	return get(p)
}

func floatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func floatPtrCell(v *float64) string {
	if v == nil {
		return ""
	}
	return floatCell(*v)
}

func boolPtrCell(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
