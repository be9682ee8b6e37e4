// Package model defines the typed record set flowing through the
// integration analytics pipeline.
package model

// Format is the placement format label from the source table, lowercased.
type Format string

const (
	FormatYouTube Format = "youtube"
	FormatReel    Format = "reel"
	FormatStory   Format = "story"
	FormatTikTok  Format = "tiktok"
)

// SupportedFormats is the closed set of formats the pipeline processes.
// Rows with any other format are dropped during validation.
var SupportedFormats = []Format{FormatYouTube, FormatReel, FormatStory, FormatTikTok}

// URLType classifies the shape of an ad link.
type URLType string

const (
	URLTypeYouTube        URLType = "youtube"
	URLTypeInstagramReel  URLType = "instagram_reel"
	URLTypeInstagramStory URLType = "instagram_story"
	URLTypeInstagramPost  URLType = "instagram_post"
	URLTypeInstagramOther URLType = "instagram_other"
	URLTypeTikTok         URLType = "tiktok"
	URLTypeLocalFile      URLType = "local_file"
	URLTypeDriveLink      URLType = "drive_link"
	URLTypeOther          URLType = "other"
	URLTypeEmpty          URLType = "empty"
)

// Classification is the URL classifier's verdict for a single ad link.
type Classification struct {
	IsParseable bool    `json:"is_parseable"`
	URLType     URLType `json:"url_type"`
	ContentID   string  `json:"content_id,omitempty"`
}

// IntegrationRecord is one cleaned row of the source table.
//
// String fields are trimmed; Format is lowercased. Numeric funnel fields
// are float64 with NaN as the missing/unparseable sentinel, never zero,
// since zero is a legitimate observed value.
type IntegrationRecord struct {
	Date        string `json:"date"`
	Name        string `json:"name"`
	ProfileLink string `json:"profile_link,omitempty"`
	Topic       string `json:"topic,omitempty"`
	Manager     string `json:"manager,omitempty"`
	Format      Format `json:"format"`
	AdLink      string `json:"ad_link"`
	UTMLink     string `json:"utm_link,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`

	Budget          float64 `json:"budget"`
	ReachPlan       float64 `json:"reach_plan"`
	FactReach       float64 `json:"fact_reach"`
	MedianPct       float64 `json:"median_pct"`
	CPMPlan         float64 `json:"cpm_plan"`
	CPMFact         float64 `json:"cpm_fact"`
	CTRPlan         float64 `json:"ctr_plan"`
	CTRFact         float64 `json:"ctr_fact"`
	TrafficPlan     float64 `json:"traffic_plan"`
	TrafficFact     float64 `json:"traffic_fact"`
	CPCPlan         float64 `json:"cpc_plan"`
	CPCFact         float64 `json:"cpc_fact"`
	CR0Plan         float64 `json:"cr0_plan"`
	CR0Fact         float64 `json:"cr0_fact"`
	ContactsPlan    float64 `json:"contacts_plan"`
	ContactsFact    float64 `json:"contacts_fact"`
	CPContactPlan   float64 `json:"cpcontact_plan"`
	CPContactFact   float64 `json:"cpcontact_fact"`
	DealsPlan       float64 `json:"deals_plan"`
	DealsFact       float64 `json:"deals_fact"`
	CallsPlan       float64 `json:"calls_plan"`
	CallsFact       float64 `json:"calls_fact"`
	PurchaseFTotal  float64 `json:"purchase_f_total"`
	CMCFTotal       float64 `json:"cmc_f_total"`
	PurchaseP1Month float64 `json:"purchase_p_1_month"`
	PurchaseF1Month float64 `json:"purchase_f_1_month"`

	IsParseable          bool    `json:"is_parseable"`
	URLType              URLType `json:"url_type"`
	ContentID            string  `json:"content_id,omitempty"`
	IntegrationTimestamp *int    `json:"integration_timestamp,omitempty"`
}

// NumericColumn binds a source-table column name to its field on the record.
type NumericColumn struct {
	Column string
	Field  func(*IntegrationRecord) *float64
}

// NumericColumns maps every funnel/numeric source column onto the record,
// in source-table order. The validator and the output writer both iterate
// this table so the two can never disagree about which columns are numeric.
var NumericColumns = []NumericColumn{
	{"Budget", func(r *IntegrationRecord) *float64 { return &r.Budget }},
	{"Reach (Plan)", func(r *IntegrationRecord) *float64 { return &r.ReachPlan }},
	{"Fact Reach", func(r *IntegrationRecord) *float64 { return &r.FactReach }},
	{"Median %", func(r *IntegrationRecord) *float64 { return &r.MedianPct }},
	{"CPM (Plan)", func(r *IntegrationRecord) *float64 { return &r.CPMPlan }},
	{"CPM Fact", func(r *IntegrationRecord) *float64 { return &r.CPMFact }},
	{"CTR Plan", func(r *IntegrationRecord) *float64 { return &r.CTRPlan }},
	{"CTR Fact", func(r *IntegrationRecord) *float64 { return &r.CTRFact }},
	{"Traffic Plan", func(r *IntegrationRecord) *float64 { return &r.TrafficPlan }},
	{"Traffic Fact", func(r *IntegrationRecord) *float64 { return &r.TrafficFact }},
	{"CPC Plan", func(r *IntegrationRecord) *float64 { return &r.CPCPlan }},
	{"CPC Fact", func(r *IntegrationRecord) *float64 { return &r.CPCFact }},
	{"CR0 Plan", func(r *IntegrationRecord) *float64 { return &r.CR0Plan }},
	{"CR0 Fact", func(r *IntegrationRecord) *float64 { return &r.CR0Fact }},
	{"Contacts Plan", func(r *IntegrationRecord) *float64 { return &r.ContactsPlan }},
	{"Contacts Fact", func(r *IntegrationRecord) *float64 { return &r.ContactsFact }},
	{"CPContact Plan", func(r *IntegrationRecord) *float64 { return &r.CPContactPlan }},
	{"CPContact Fact", func(r *IntegrationRecord) *float64 { return &r.CPContactFact }},
	{"Deals Plan", func(r *IntegrationRecord) *float64 { return &r.DealsPlan }},
	{"Deals Fact", func(r *IntegrationRecord) *float64 { return &r.DealsFact }},
	{"Calls Plan", func(r *IntegrationRecord) *float64 { return &r.CallsPlan }},
	{"Calls Fact", func(r *IntegrationRecord) *float64 { return &r.CallsFact }},
	{"Purchase F - TOTAL", func(r *IntegrationRecord) *float64 { return &r.PurchaseFTotal }},
	{"CMC F - TOTAL", func(r *IntegrationRecord) *float64 { return &r.CMCFTotal }},
	{"Purchase P - 1 month", func(r *IntegrationRecord) *float64 { return &r.PurchaseP1Month }},
	{"Purchase F - 1 month", func(r *IntegrationRecord) *float64 { return &r.PurchaseF1Month }},
}

// NumericColumnNames returns the source column names in table order.
func NumericColumnNames() []string {
	names := make([]string, len(NumericColumns))
	for i, c := range NumericColumns {
		names[i] = c.Column
	}
	return names
}

// PlatformStats holds platform-API metadata for a parsed ad link.
// Present only for records whose URL the platform collaborator could fetch.
type PlatformStats struct {
	URL                string  `json:"url"`
	Platform           string  `json:"platform"`
	VideoID            string  `json:"video_id,omitempty"`
	Title              string  `json:"title,omitempty"`
	ChannelName        string  `json:"channel_name,omitempty"`
	ViewCount          float64 `json:"view_count"`
	LikeCount          float64 `json:"like_count"`
	CommentCount       float64 `json:"comment_count"`
	DurationSeconds    int     `json:"duration_seconds"`
	ChannelSubscribers int64   `json:"channel_subscribers"`

	HasTranscript       bool                `json:"has_transcript"`
	TranscriptText      string              `json:"transcript_text,omitempty"`
	TranscriptSegments  []TranscriptSegment `json:"transcript_full,omitempty"`
	TranscriptLanguage  string              `json:"transcript_language,omitempty"`
	TranscriptError     string              `json:"transcript_error,omitempty"`
	Error               string              `json:"error,omitempty"`
}

// TranscriptSegment is one timestamped span of a video transcript.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// MergedRecord is an IntegrationRecord joined with optional platform stats
// and enrichment, plus derived metrics. The embedded record is a copy; the
// original cleaned table is never mutated after it is persisted.
type MergedRecord struct {
	IntegrationRecord

	Platform   *PlatformStats    `json:"platform,omitempty"`
	Enrichment *EnrichmentRecord `json:"enrichment,omitempty"`
	Metrics    DerivedMetrics    `json:"metrics"`
}
