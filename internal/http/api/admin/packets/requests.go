package packets

import "github.com/postflow-app/postflow/internal/generation"

// body for creating or replacing a brand
type BrandRequest struct {
	Name           string  `json:"name" binding:"required"`
	Sector         *string `json:"sector"`
	Description    *string `json:"description"`
	TargetAudience *string `json:"target_audience"`
	ToneOfVoice    *string `json:"tone_of_voice"`
	BrandValues    *string `json:"brand_values"`
	StyleGuide     *string `json:"style_guide"`
	WebsiteURL     *string `json:"website_url"`
}

// body for creating or replacing a project; dates are "YYYY-MM-DD"
type ProjectRequest struct {
	BrandID      int            `json:"brand_id" binding:"required"`
	Name         string         `json:"name" binding:"required"`
	Brief        *string        `json:"brief"`
	StartDate    string         `json:"start_date" binding:"required"`
	EndDate      string         `json:"end_date" binding:"required"`
	Platforms    []string       `json:"platforms" binding:"required,min=1"`
	PostsPerWeek map[string]int `json:"posts_per_week"`
	Themes       []string       `json:"themes"`
}

// body for creating or replacing a post
type PostRequest struct {
	Platform         string   `json:"platform" binding:"required"`
	ScheduledDate    string   `json:"scheduled_date" binding:"required"`
	ScheduledTime    string   `json:"scheduled_time" binding:"required"`
	Content          string   `json:"content" binding:"required"`
	Hashtags         []string `json:"hashtags"`
	ContentType      string   `json:"content_type"`
	PostType         string   `json:"post_type"`
	Pillar           string   `json:"pillar"`
	VisualSuggestion string   `json:"visual_suggestion"`
	CTA              string   `json:"cta"`
}

type GeneratePersonasRequest struct {
	Objectives []string `json:"objectives"`
	URLContext string   `json:"url_context"`
}

// ConfirmPersonasRequest optionally carries the user-edited analysis; empty
// fields keep what persona generation produced.
type ConfirmPersonasRequest struct {
	Personas                []generation.Persona          `json:"personas"`
	Strategy                generation.SchedulingStrategy `json:"scheduling_strategy"`
	RecommendedPostsPerWeek map[string]int                `json:"recommended_posts_per_week"`
}

// body for checking which scheduled posts a new window would replace
type CheckOverlapRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// optional body for single-post regeneration; the prompt steers the rewrite
type RegeneratePostRequest struct {
	UserPrompt string `json:"user_prompt"`
}

// optional body for adding or regenerating one persona
type SinglePersonaRequest struct {
	Description string `json:"persona_description"`
}
