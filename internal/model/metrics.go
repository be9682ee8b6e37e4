package model

// DerivedMetrics are per-record ratios computed from the cleaned funnel
// columns. Every field uses NaN for "not derivable" (missing operand or
// zero denominator); they are a pure function of the record and are
// recomputed whenever the base record changes, never persisted as
// authoritative.
type DerivedMetrics struct {
	CostPerView     float64 `json:"cost_per_view"`
	CostPerContact  float64 `json:"cost_per_contact"`
	CostPerDeal     float64 `json:"cost_per_deal"`
	CostPerPurchase float64 `json:"cost_per_purchase"`

	TrafficToContactRate float64 `json:"traffic_to_contact_rate"`
	ContactToDealRate    float64 `json:"contact_to_deal_rate"`
	DealToCallRate       float64 `json:"deal_to_call_rate"`
	CallToPurchaseRate   float64 `json:"call_to_purchase_rate"`
	FullFunnelConversion float64 `json:"full_funnel_conversion"`

	PlanVsFactReach   float64 `json:"plan_vs_fact_reach"`
	PlanVsFactTraffic float64 `json:"plan_vs_fact_traffic"`

	HasPurchases bool `json:"has_purchases"`

	// View-based metrics, derivable only when platform view counts exist.
	EngagementRate   float64 `json:"engagement_rate"`
	ViewToReachRatio float64 `json:"view_to_reach_ratio"`
}
