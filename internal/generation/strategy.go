package generation

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Slot is one recommended posting opportunity for a platform. Day uses
// 0=Monday..6=Sunday; Time is "HH:MM"; a lower Priority is preferred.
type Slot struct {
	Day      int    `json:"day"`
	Time     string `json:"time"`
	Priority int    `json:"priority"`
}

// PlatformStrategy holds the persona-derived posting slots for one platform.
type PlatformStrategy struct {
	OptimalSlots []Slot   `json:"optimal_slots"`
	Avoid        []string `json:"avoid,omitempty"`
}

// SchedulingStrategy maps platform name to its slot recommendations.
type SchedulingStrategy map[string]PlatformStrategy

// Persona is one buyer persona as produced by the analyzer. The generation
// pipeline only reads Name/Demographics for prompt context; everything else
// is passed through for the UI.
type Persona struct {
	Name         string            `json:"name"`
	Weight       float64           `json:"weight,omitempty"`
	Demographics map[string]string `json:"demographics,omitempty"`
	PainPoints   []string          `json:"pain_points,omitempty"`
	Interests    []string          `json:"interests,omitempty"`
}

// PersonaAnalysis is the persisted shape of a project's buyer_personas column.
type PersonaAnalysis struct {
	Personas                []Persona          `json:"personas,omitempty"`
	Strategy                SchedulingStrategy `json:"scheduling_strategy,omitempty"`
	RecommendedPostsPerWeek map[string]int     `json:"recommended_posts_per_week,omitempty"`
	Confirmed               bool               `json:"confirmed,omitempty"`
	ConfirmedAt             string             `json:"confirmed_at,omitempty"`
}

// AnalysisFromJSON decodes a project's buyer_personas column. A missing or
// malformed column yields an empty analysis, never an error: redistribution
// falls back to default slots.
func AnalysisFromJSON(raw types.JSONText) PersonaAnalysis {
	var a PersonaAnalysis
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &a)
	}
	return a
}

func (a PersonaAnalysis) ToJSON() types.JSONText {
	out, err := json.Marshal(a)
	if err != nil {
		return types.JSONText("{}")
	}
	return types.JSONText(out)
}

const defaultPostsPerWeek = 2

// defaultSlots is the fallback when a platform has no persona-derived slots.
func defaultSlots() []Slot {
	return []Slot{
		{Day: 1, Time: "10:00", Priority: 1},
		{Day: 3, Time: "10:00", Priority: 2},
	}
}

// SlotsFor returns the platform's slots sorted ascending by priority, input
// order breaking ties. Platforms without slots get the generic defaults.
func (s SchedulingStrategy) SlotsFor(platform string) []Slot {
	slots := s[platform].OptimalSlots
	if len(slots) == 0 {
		return defaultSlots()
	}
	sorted := make([]Slot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}

// DefaultStrategy builds a generic strategy for projects that never ran
// persona analysis.
func DefaultStrategy(platforms []string) SchedulingStrategy {
	out := make(SchedulingStrategy, len(platforms))
	for _, p := range platforms {
		out[p] = PlatformStrategy{OptimalSlots: defaultSlots()}
	}
	return out
}

// WeeklyQuota caps how many posts per platform land in one calendar week.
type WeeklyQuota map[string]int

func (q WeeklyQuota) For(platform string) int {
	if n, ok := q[platform]; ok && n >= 0 {
		return n
	}
	return defaultPostsPerWeek
}

// Window is an inclusive date range. Start and End are dates (midnight UTC);
// Start must not be after End.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the inclusive day count of the window.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Weeks returns the number of (possibly partial) weeks in the window.
func (w Window) Weeks() int {
	return (w.Days() + 6) / 7
}

func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// mondayIndex converts Go's Sunday-based weekday to the 0=Monday..6=Sunday
// numbering used by slots.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
