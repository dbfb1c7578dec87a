package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Publication states for a scheduled post.
const (
	PostStatusScheduled = "scheduled"
	PostStatusPending   = "pending"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

// Post is one dated, timed calendar entry. Posts are created in bulk by the
// redistribution step and are replaced, not mutated, on regeneration.
type Post struct {
	ID                int            `db:"id"                 json:"id"`
	ProjectID         int            `db:"project_id"         json:"project_id"`
	Platform          string         `db:"platform"           json:"platform"`
	ScheduledDate     time.Time      `db:"scheduled_date"     json:"scheduled_date"`
	ScheduledTime     string         `db:"scheduled_time"     json:"scheduled_time"`
	Content           string         `db:"content"            json:"content"`
	Hashtags          types.JSONText `db:"hashtags"           json:"hashtags"`
	ContentType       string         `db:"content_type"       json:"content_type"`
	PostType          string         `db:"post_type"          json:"post_type"`
	Pillar            string         `db:"pillar"             json:"pillar"`
	VisualSuggestion  string         `db:"visual_suggestion"  json:"visual_suggestion"`
	CTA               string         `db:"cta"                json:"cta"`
	PublicationStatus string         `db:"publication_status" json:"publication_status"`
	CreatedAt         time.Time      `db:"created_at"         json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"         json:"updated_at"`
}
