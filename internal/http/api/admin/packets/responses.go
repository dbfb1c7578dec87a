package packets

import "github.com/postflow-app/postflow/internal/generation"

type GenerationStartResponse struct {
	Status         string `json:"status"`
	PersonasStatus string `json:"personas_status"`
}

type GenerationStatusResponse struct {
	Status       string `json:"status"`
	PostCount    int    `json:"post_count"`
	CurrentBatch int    `json:"current_batch"`
	TotalBatches int    `json:"total_batches"`
	Percent      int    `json:"percent"`
}

type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type CheckOverlapResponse struct {
	HasOverlap            bool           `json:"has_overlap"`
	OverlappingCount      int            `json:"overlapping_count"`
	OverlappingByPlatform map[string]int `json:"overlapping_by_platform"`
	KeptCount             int            `json:"kept_count"`
	DateRange             DateRange      `json:"date_range"`
	CurrentProjectDates   DateRange      `json:"current_project_dates"`
}

type PersonasResponse struct {
	PersonasStatus string                     `json:"personas_status"`
	Analysis       generation.PersonaAnalysis `json:"analysis"`
}
