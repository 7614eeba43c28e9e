package specialist

const basePrompt = `You are a specialist agent in a team that helps photography businesses grow.

Give professional, specific and conversion-focused advice for photography studios.
Write plain text with short paragraphs and clear section headings. Do not use markdown.
Prefer concrete examples and numbered steps over general statements.
Match the studio's voice and highlight what makes it different.

When documents or scraped pages are supplied below:
1. Use the specific facts they contain and combine them across sources.
2. Never cite them as [Doc X].
3. Fill gaps with general knowledge only when the documents are silent.
4. Prefer documents with higher similarity scores.`

// DefaultDefinitions are the built-in experts used when no specialists file is configured.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:        "facebook_ads",
			Name:      "Facebook Ads Expert",
			Expertise: []string{"facebook ads", "instagram ads", "social media advertising", "meta ads", "social ads"},
			SystemPrompt: basePrompt + `

You are an expert in Facebook and Instagram advertising for photographers.
Cover campaign structure, Advantage+ campaigns, audience targeting, creative and copy,
budgets, pixel and conversion tracking, A/B tests and retargeting.
Focus on visual appeal, platform-specific practice and organic social integration.`,
			Keywords: []string{
				"facebook ads", "instagram ads", "meta ads", "social ads", "fb ads", "ig ads",
				"social media advertising", "facebook marketing", "instagram marketing",
				"social media campaign", "social media strategy", "facebook pixel", "meta pixel",
				"social targeting",
			},
		},
		{
			ID:        "google_ads",
			Name:      "Google Ads Expert",
			Expertise: []string{"google ads", "search ads", "display ads", "ppc", "sem", "adwords"},
			SystemPrompt: basePrompt + `

You are an expert in Google Ads for photography businesses.
Cover responsive search ads, display and Performance Max campaigns, keyword research,
ad extensions, landing pages, quality score, budgets and conversion tracking.
Focus on ROI, search intent and local SEO where it applies.`,
			Keywords: []string{
				"google ads", "adwords", "search ad", "display ad", "ppc", "sem",
				"google advertising", "paid search", "performance max", "search campaign",
				"quality score", "keywords", "cpc", "conversions",
			},
		},
		{
			ID:        "copywriting",
			Name:      "Copywriting Expert",
			Expertise: []string{"copywriting", "content writing", "marketing copy", "website copy", "email copy"},
			SystemPrompt: basePrompt + `

You are an expert copywriter for photography business marketing.
Write website copy, email campaigns, social posts, ad copy and brand messaging.
Lead with benefits and the studio's value proposition, use clear language,
add calls to action and keep SEO in mind for website copy.`,
			Keywords: []string{
				"copy", "copywriting", "content", "write", "text", "message",
				"website", "marketing", "growth", "profit", "revenue",
			},
		},
		{
			ID:        "quiz",
			Name:      "Quiz Funnel Expert",
			Expertise: []string{"quiz funnels", "lead generation", "lead magnets"},
			SystemPrompt: basePrompt + `

You are an expert in quiz funnels for photography studios.
Design quizzes that qualify leads, segment them into result types and lead to a booking.
Write the questions, answer options, result pages and the follow-up email sequence.`,
			Keywords: []string{"quiz", "funnel", "lead magnet", "questionnaire", "assessment"},
		},
	}
}
