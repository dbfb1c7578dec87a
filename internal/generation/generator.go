package generation

import (
	"context"
	"time"
)

// Candidate is one unscheduled piece of generated content. The model may
// propose a date in its output but redistribution always overwrites it.
type Candidate struct {
	Platform         string   `json:"platform"`
	Content          string   `json:"content"`
	Hashtags         []string `json:"hashtags"`
	ContentType      string   `json:"content_type"`
	PostType         string   `json:"post_type"`
	Pillar           string   `json:"pillar"`
	VisualSuggestion string   `json:"visual_suggestion"`
	CTA              string   `json:"cta"`
}

// ScheduledItem is a candidate pinned to a calendar date and time.
type ScheduledItem struct {
	Candidate
	Date time.Time
	Time string
}

// BrandContext is the brand material forwarded to the generator.
type BrandContext struct {
	Name        string
	Sector      string
	Description string
	ToneOfVoice string
	Values      string
	StyleGuide  string
}

// ProjectContext is the per-run brief forwarded to the generator.
type ProjectContext struct {
	Brief           string
	Themes          []string
	URLContext      string
	ResearchContext string
}

// BatchRequest describes one generator call: the full campaign context plus
// the sub-window this batch covers.
type BatchRequest struct {
	Brand        BrandContext
	Project      ProjectContext
	Window       Window
	Platforms    []string
	PostsPerWeek WeeklyQuota
	Strategy     SchedulingStrategy
	Personas     []Persona
	BatchNum     int
	TotalBatches int
}

// ContentGenerator produces draft content for one batch window. It is the
// only external collaborator of the pipeline; implementations either return
// candidates or an error the orchestrator downgrades to an empty batch.
type ContentGenerator interface {
	GenerateBatch(ctx context.Context, req BatchRequest) ([]Candidate, error)
}
