package generation

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Redistribute assigns each candidate a concrete date and time from the
// platform's persona-derived slots, respecting the per-platform weekly quota.
// Pure and deterministic: identical inputs produce identical output.
//
// Per platform and week, slots are consumed in priority order up to the
// weekly quota. A slot whose computed date lands before the window start is
// pushed one week forward (first partial week); one landing after the window
// end is skipped without consuming a candidate. Candidates left over when
// every week is full are silently dropped.
func Redistribute(candidates []Candidate, quota WeeklyQuota, window Window, strategy SchedulingStrategy) []ScheduledItem {
	if len(candidates) == 0 {
		return nil
	}

	// group by platform in first-seen order; map iteration order must not
	// leak into the result. Keys are lowercased so a model emitting
	// "LinkedIn" still hits the "linkedin" quota and strategy.
	grouped := make(map[string][]Candidate)
	var platforms []string
	for _, c := range candidates {
		key := strings.ToLower(c.Platform)
		if _, ok := grouped[key]; !ok {
			platforms = append(platforms, key)
		}
		grouped[key] = append(grouped[key], c)
	}

	totalWeeks := window.Weeks()
	var out []ScheduledItem

	for _, platform := range platforms {
		group := grouped[platform]
		slots := strategy.SlotsFor(platform)
		perWeek := quota.For(platform)

		idx := 0
		for week := 0; week < totalWeeks; week++ {
			weekStart := window.Start.AddDate(0, 0, week*7)

			for slotNum, slot := range slots {
				if slotNum >= perWeek || idx >= len(group) {
					break
				}

				daysUntilTarget := ((slot.Day-mondayIndex(weekStart.Weekday()))%7 + 7) % 7
				date := weekStart.AddDate(0, 0, daysUntilTarget)

				// first partial week: the target weekday may precede the
				// window start
				if date.Before(window.Start) {
					date = date.AddDate(0, 0, 7)
				}
				// past the window end: skip the slot, keep the candidate
				if date.After(window.End) {
					continue
				}

				out = append(out, ScheduledItem{
					Candidate: group[idx],
					Date:      date,
					Time:      slot.Time,
				})
				idx++
			}
		}

		if idx < len(group) {
			log.Debug().
				Str("platform", platform).
				Int("dropped", len(group)-idx).
				Msg("weekly quota exhausted, dropping surplus candidates")
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})

	return out
}
