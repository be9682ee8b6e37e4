package model

// EnrichmentRecord is the structured feature set the LLM enrichment service
// returns for one integration. It is joined onto the base table by ad link;
// a missing record is an expected steady state, not an error.
type EnrichmentRecord struct {
	Extraction Extraction `json:"extraction"`
	Analysis   Analysis   `json:"analysis"`
}

// Extraction localizes the ad segment within the content.
type Extraction struct {
	IntegrationText        string   `json:"integration_text"`
	IntegrationStartSec    *float64 `json:"integration_start_sec"`
	IntegrationDurationSec *float64 `json:"integration_duration_sec"`
	IntegrationPosition    string   `json:"integration_position"`
	IsFullVideoAd          *bool    `json:"is_full_video_ad"`
}

// Analysis holds the classified content features of the ad segment.
type Analysis struct {
	OfferType             string   `json:"offer_type"`
	OfferDetails          string   `json:"offer_details"`
	LandingType           string   `json:"landing_type"`
	CTAType               string   `json:"cta_type"`
	CTAUrgency            string   `json:"cta_urgency"`
	CTAText               string   `json:"cta_text"`
	HasPersonalStory      *bool    `json:"has_personal_story"`
	PersonalStoryType     string   `json:"personal_story_type"`
	PainPointsAddressed   []string `json:"pain_points_addressed"`
	BenefitsMentioned     []string `json:"benefits_mentioned"`
	ObjectionHandling     string   `json:"objection_handling"`
	SocialProof           string   `json:"social_proof"`
	OverallTone           string   `json:"overall_tone"`
	Language              string   `json:"language"`
	ProductPositioning    string   `json:"product_positioning"`
	TargetAudienceImplied string   `json:"target_audience_implied"`
	CompetitiveMention    *bool    `json:"competitive_mention"`
	PriceMentioned        *bool    `json:"price_mentioned"`
	Scores                Scores   `json:"scores"`
}

// Scores are the eight 1–10 content quality dimensions.
type Scores struct {
	Urgency         int `json:"urgency"`
	Authenticity    int `json:"authenticity"`
	Storytelling    int `json:"storytelling"`
	BenefitClarity  int `json:"benefit_clarity"`
	EmotionalAppeal int `json:"emotional_appeal"`
	Specificity     int `json:"specificity"`
	Humor           int `json:"humor"`
	Professionalism int `json:"professionalism"`
}

// ScoreDimensions lists the score column suffixes in reporting order.
var ScoreDimensions = []string{
	"urgency", "authenticity", "storytelling", "benefit_clarity",
	"emotional_appeal", "specificity", "humor", "professionalism",
}

// ByDimension returns the score for a named dimension, or 0 for unknown names.
func (s Scores) ByDimension(name string) int {
	switch name {
	case "urgency":
		return s.Urgency
	case "authenticity":
		return s.Authenticity
	case "storytelling":
		return s.Storytelling
	case "benefit_clarity":
		return s.BenefitClarity
	case "emotional_appeal":
		return s.EmotionalAppeal
	case "specificity":
		return s.Specificity
	case "humor":
		return s.Humor
	case "professionalism":
		return s.Professionalism
	}
	return 0
}
