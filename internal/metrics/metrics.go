// Package metrics derives funnel-conversion and cost-efficiency ratios
// from cleaned integration records.
package metrics

import (
	"math"

	"github.com/influmetrics/integrations-cli/internal/model"
)

// SafeDivide returns num/den, or NaN when either operand is NaN or the
// denominator is exactly zero. It never panics and never returns an
// infinity.
func SafeDivide(num, den float64) float64 {
	if math.IsNaN(num) || math.IsNaN(den) || den == 0 {
		return math.NaN()
	}
	return num / den
}

// Compute derives all per-record metrics from a cleaned record and its
// optional platform stats. Pure and idempotent: the inputs are read only,
// and the same inputs always produce the same metrics.
func Compute(rec *model.IntegrationRecord, platform *model.PlatformStats) model.DerivedMetrics {
	m := model.DerivedMetrics{
		CostPerView:     SafeDivide(rec.Budget, rec.FactReach),
		CostPerContact:  SafeDivide(rec.Budget, rec.ContactsFact),
		CostPerDeal:     SafeDivide(rec.Budget, rec.DealsFact),
		CostPerPurchase: SafeDivide(rec.Budget, rec.PurchaseFTotal),

		TrafficToContactRate: SafeDivide(rec.ContactsFact, rec.TrafficFact),
		ContactToDealRate:    SafeDivide(rec.DealsFact, rec.ContactsFact),
		DealToCallRate:       SafeDivide(rec.CallsFact, rec.DealsFact),
		CallToPurchaseRate:   SafeDivide(rec.PurchaseFTotal, rec.CallsFact),
		FullFunnelConversion: SafeDivide(rec.PurchaseFTotal, rec.FactReach),

		PlanVsFactReach:   SafeDivide(rec.FactReach, rec.ReachPlan),
		PlanVsFactTraffic: SafeDivide(rec.TrafficFact, rec.TrafficPlan),

		HasPurchases: !math.IsNaN(rec.PurchaseFTotal) && rec.PurchaseFTotal > 0,

		EngagementRate:   math.NaN(),
		ViewToReachRatio: math.NaN(),
	}

	// View-based metrics exist only for records with platform view data.
	if platform != nil && platform.ViewCount > 0 {
		m.EngagementRate = SafeDivide(platform.LikeCount+platform.CommentCount, platform.ViewCount)
		m.ViewToReachRatio = SafeDivide(platform.ViewCount, rec.FactReach)
	}

	return m
}

// Annotate attaches derived metrics to every merged record in place.
// Metrics are a pure function of the record, so calling this again after
// any base-record change simply recomputes them.
func Annotate(records []model.MergedRecord) {
	for i := range records {
		records[i].Metrics = Compute(&records[i].IntegrationRecord, records[i].Platform)
	}
}
