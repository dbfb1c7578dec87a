package model

import "time"

// Brand holds the identity and voice settings content generation is grounded on.
type Brand struct {
	ID             int       `db:"id"              json:"id"`
	Name           string    `db:"name"            json:"name"`
	Sector         *string   `db:"sector"          json:"sector"`
	Description    *string   `db:"description"     json:"description"`
	TargetAudience *string   `db:"target_audience" json:"target_audience"`
	ToneOfVoice    *string   `db:"tone_of_voice"   json:"tone_of_voice"`
	BrandValues    *string   `db:"brand_values"    json:"brand_values"`
	StyleGuide     *string   `db:"style_guide"     json:"style_guide"`
	WebsiteURL     *string   `db:"website_url"     json:"website_url"`
	CreatedBy      int       `db:"created_by"      json:"created_by"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}

type BrandDocument struct {
	ID        int       `db:"id"         json:"id"`
	BrandID   int       `db:"brand_id"   json:"brand_id"`
	Filename  string    `db:"filename"   json:"filename"`
	URL       string    `db:"url"        json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
