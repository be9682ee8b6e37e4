package enrich

// Prompt templates for the two enrichment passes. Both instruct the model
// to answer with a bare JSON object; stripFence handles the models that
// wrap it in markdown anyway.

const extractPromptHeader = `You are an expert at analyzing video transcripts to identify advertising integration segments for an online tech education platform.

You will receive a full video transcript with timestamps and optionally a hint timestamp indicating approximately where the ad integration begins.

Your task: identify and extract the exact ad integration segment from the transcript.

## Input
- Full transcript (list of segments with "text", "start", "duration" fields)
- Integration timestamp hint: %s seconds (may be "unknown" if not available)

## Transcript
%s

## Instructions
1. Find the ad integration / sponsored segment in the transcript.
2. If a timestamp hint is provided, focus on the area around that timestamp (typically within 120 seconds), but adjust boundaries to capture the complete integration.
3. If no timestamp hint is available, scan the full transcript for sponsored/ad content: calls to action, discount codes, links in description, career change pitch.
4. Extract the complete text of the integration segment.
5. Determine if the entire video is essentially an ad (a dedicated review or promotional video).

## Response format
Return ONLY a valid JSON object with these exact fields:
{
    "integration_text": "<full text of the ad integration segment>",
    "integration_start_sec": <start time in seconds as number>,
    "integration_duration_sec": <duration of integration in seconds as number>,
    "integration_position": "<one of: beginning, middle, end>",
    "is_full_video_ad": <true if the entire video is essentially an ad, false otherwise>
}

Return ONLY the JSON object, no additional text or markdown fencing.`

const analyzePromptHeader = `You are an expert marketing analyst specializing in influencer ad integrations for EdTech products.

Analyze the following ad integration text and extract structured content characteristics.

## Integration text
%s

## Instructions
Analyze the text and classify it across all dimensions below. Be precise and evidence-based: only mark features as present if they are clearly in the text.

## Response format
Return ONLY a valid JSON object with these exact fields:
{
    "offer_type": "<one of: free_consultation, free_course, trial, promo_code, discount, bootcamp, career_change, other>",
    "offer_details": "<brief description of the specific offer>",
    "landing_type": "<one of: website, landing_page, consultation_form, app, promo_page, other>",
    "cta_type": "<one of: link_click, promo_code, sign_up, consultation, download, other>",
    "cta_urgency": "<one of: none, low, medium, high>",
    "cta_text": "<exact call-to-action phrase used>",
    "has_personal_story": <true or false>,
    "personal_story_type": "<one of: career_change, learning_experience, friend_recommendation, none>",
    "pain_points_addressed": ["<list of specific pain points mentioned>"],
    "benefits_mentioned": ["<list of specific product benefits mentioned>"],
    "objection_handling": "<one of: none, light, thorough>",
    "social_proof": "<one of: none, testimonial, statistics, celebrity>",
    "overall_tone": "<one of: professional, casual, enthusiastic, educational, humorous, inspirational, conversational, mixed>",
    "language": "<two-letter language code of the integration text>",
    "product_positioning": "<how the product is framed, one short phrase>",
    "target_audience_implied": "<who the pitch addresses, one short phrase>",
    "competitive_mention": <true or false>,
    "price_mentioned": <true or false>,
    "scores": {
        "urgency": <1-10>,
        "authenticity": <1-10>,
        "storytelling": <1-10>,
        "benefit_clarity": <1-10>,
        "emotional_appeal": <1-10>,
        "specificity": <1-10>,
        "humor": <1-10>,
        "professionalism": <1-10>
    }
}

Return ONLY the JSON object, no additional text or markdown fencing.`
