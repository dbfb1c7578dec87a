package model

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Project lifecycle states. Only draft, generating and review are set by the
// generation pipeline; approved and published belong to the review workflow.
const (
	ProjectStatusDraft      = "draft"
	ProjectStatusGenerating = "generating"
	ProjectStatusReview     = "review"
	ProjectStatusApproved   = "approved"
	ProjectStatusPublished  = "published"
)

// Project is one editorial calendar run: a brand, a date window and the
// per-platform posting cadence. Platforms, posts_per_week, themes and
// buyer_personas are stored as JSONB.
type Project struct {
	ID            int            `db:"id"              json:"id"`
	BrandID       int            `db:"brand_id"        json:"brand_id"`
	Name          string         `db:"name"            json:"name"`
	Brief         *string        `db:"brief"           json:"brief"`
	Status        string         `db:"status"          json:"status"`
	StartDate     time.Time      `db:"start_date"      json:"start_date"`
	EndDate       time.Time      `db:"end_date"        json:"end_date"`
	Platforms     types.JSONText `db:"platforms"       json:"platforms"`
	PostsPerWeek  types.JSONText `db:"posts_per_week"  json:"posts_per_week"`
	Themes        types.JSONText `db:"themes"          json:"themes"`
	BuyerPersonas types.JSONText `db:"buyer_personas"  json:"buyer_personas"`
	CreatedBy     int            `db:"created_by"      json:"created_by"`
	CreatedAt     time.Time      `db:"created_at"      json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"      json:"updated_at"`
}

func (p *Project) PlatformList() []string {
	var out []string
	if len(p.Platforms) > 0 {
		_ = json.Unmarshal(p.Platforms, &out)
	}
	return out
}

func (p *Project) PostsPerWeekMap() map[string]int {
	out := map[string]int{}
	if len(p.PostsPerWeek) > 0 {
		_ = json.Unmarshal(p.PostsPerWeek, &out)
	}
	return out
}

func (p *Project) ThemeList() []string {
	var out []string
	if len(p.Themes) > 0 {
		_ = json.Unmarshal(p.Themes, &out)
	}
	return out
}
