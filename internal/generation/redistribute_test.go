package generation

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func candidates(platform string, n int) []Candidate {
	out := make([]Candidate, n)
	for i := range out {
		out[i] = Candidate{Platform: platform, Content: platform + " post"}
	}
	return out
}

func TestRedistributeTwoWeekWindow(t *testing.T) {
	// Monday 2025-03-03 .. Sunday 2025-03-16, two posts per week on the
	// Tuesday and Thursday slots. Five candidates, four slots: the surplus
	// candidate is dropped.
	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 16)}
	strategy := SchedulingStrategy{
		"instagram": {OptimalSlots: []Slot{
			{Day: 1, Time: "18:00", Priority: 1},
			{Day: 3, Time: "12:30", Priority: 2},
		}},
	}
	quota := WeeklyQuota{"instagram": 2}

	items := Redistribute(candidates("instagram", 5), quota, window, strategy)

	want := []struct {
		date time.Time
		tm   string
	}{
		{date(2025, time.March, 4), "18:00"},
		{date(2025, time.March, 6), "12:30"},
		{date(2025, time.March, 11), "18:00"},
		{date(2025, time.March, 13), "12:30"},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		if !items[i].Date.Equal(w.date) || items[i].Time != w.tm {
			t.Errorf("item %d: got %s %s, want %s %s",
				i, items[i].Date.Format("2006-01-02"), items[i].Time,
				w.date.Format("2006-01-02"), w.tm)
		}
	}
}

func TestRedistributeMidweekStartWrapsForward(t *testing.T) {
	// Window starts Thursday 2025-03-06. A Tuesday slot in the first week
	// would land on 03-04, before the start; it must move to 03-11 instead
	// of being lost.
	window := Window{Start: date(2025, time.March, 6), End: date(2025, time.March, 16)}
	strategy := SchedulingStrategy{
		"linkedin": {OptimalSlots: []Slot{{Day: 1, Time: "08:30", Priority: 1}}},
	}

	items := Redistribute(candidates("linkedin", 2), WeeklyQuota{"linkedin": 1}, window, strategy)

	// week two's Tuesday (03-18) is past the end, so only one lands
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if !items[0].Date.Equal(date(2025, time.March, 11)) {
		t.Errorf("first item on %s, want 2025-03-11", items[0].Date.Format("2006-01-02"))
	}
	if items[0].Date.Weekday() != time.Tuesday {
		t.Errorf("first item on %s, want Tuesday", items[0].Date.Weekday())
	}
}

func TestRedistributeSlotPastEndSkippedWithoutConsuming(t *testing.T) {
	// Window ends Wednesday. The Friday slot of the last week is unusable;
	// the candidate it would have taken must go to the next usable slot, not
	// vanish with the skipped one.
	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 12)}
	strategy := SchedulingStrategy{
		"facebook": {OptimalSlots: []Slot{
			{Day: 4, Time: "17:00", Priority: 1}, // Friday, dead in week 2
			{Day: 1, Time: "09:00", Priority: 2}, // Tuesday
		}},
	}

	items := Redistribute(candidates("facebook", 3), WeeklyQuota{"facebook": 2}, window, strategy)

	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	// week 1: Fri 03-07 + Tue 03-04; week 2: Friday skipped, Tue 03-11
	got := map[string]bool{}
	for _, it := range items {
		got[it.Date.Format("2006-01-02")] = true
	}
	for _, d := range []string{"2025-03-04", "2025-03-07", "2025-03-11"} {
		if !got[d] {
			t.Errorf("missing item on %s (got %v)", d, got)
		}
	}
}

func TestRedistributeQuotaCapsSlots(t *testing.T) {
	// Three slots configured but quota is 1: only the highest-priority slot
	// is used each week.
	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 9)}
	strategy := SchedulingStrategy{
		"tiktok": {OptimalSlots: []Slot{
			{Day: 5, Time: "20:00", Priority: 2},
			{Day: 2, Time: "19:00", Priority: 1},
			{Day: 6, Time: "11:00", Priority: 3},
		}},
	}

	items := Redistribute(candidates("tiktok", 3), WeeklyQuota{"tiktok": 1}, window, strategy)

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if !items[0].Date.Equal(date(2025, time.March, 5)) || items[0].Time != "19:00" {
		t.Errorf("got %s %s, want the priority-1 Wednesday slot",
			items[0].Date.Format("2006-01-02"), items[0].Time)
	}
}

func TestRedistributeDefaultSlotsForUnknownPlatform(t *testing.T) {
	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 9)}

	items := Redistribute(candidates("threads", 2), WeeklyQuota{}, window, SchedulingStrategy{})

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	// generic defaults: Tuesday and Thursday at 10:00
	if !items[0].Date.Equal(date(2025, time.March, 4)) || items[0].Time != "10:00" {
		t.Errorf("unexpected first default slot: %s %s", items[0].Date.Format("2006-01-02"), items[0].Time)
	}
	if !items[1].Date.Equal(date(2025, time.March, 6)) {
		t.Errorf("unexpected second default slot: %s", items[1].Date.Format("2006-01-02"))
	}
}

func TestRedistributeMergesPlatformsSortedByDateTime(t *testing.T) {
	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 9)}
	strategy := SchedulingStrategy{
		"instagram": {OptimalSlots: []Slot{{Day: 2, Time: "18:00", Priority: 1}}},
		"linkedin":  {OptimalSlots: []Slot{{Day: 2, Time: "08:30", Priority: 1}}},
	}
	mixed := append(candidates("instagram", 1), candidates("linkedin", 1)...)

	items := Redistribute(mixed, WeeklyQuota{"instagram": 1, "linkedin": 1}, window, strategy)

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Platform != "linkedin" || items[1].Platform != "instagram" {
		t.Errorf("same-day items not ordered by time: %s then %s", items[0].Platform, items[1].Platform)
	}
}

func TestRedistributeDeterministic(t *testing.T) {
	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 30)}
	strategy := SchedulingStrategy{
		"instagram": {OptimalSlots: []Slot{{Day: 1, Time: "18:00", Priority: 1}, {Day: 4, Time: "12:00", Priority: 2}}},
		"linkedin":  {OptimalSlots: []Slot{{Day: 0, Time: "08:30", Priority: 1}}},
		"facebook":  {OptimalSlots: []Slot{{Day: 2, Time: "17:00", Priority: 1}}},
	}
	quota := WeeklyQuota{"instagram": 2, "linkedin": 1, "facebook": 1}
	mixed := append(append(candidates("instagram", 6), candidates("linkedin", 4)...), candidates("facebook", 4)...)

	first := Redistribute(mixed, quota, window, strategy)
	for run := 0; run < 10; run++ {
		again := Redistribute(mixed, quota, window, strategy)
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d items, want %d", run, len(again), len(first))
		}
		for i := range first {
			if !again[i].Date.Equal(first[i].Date) || again[i].Time != first[i].Time || again[i].Platform != first[i].Platform {
				t.Fatalf("run %d: item %d differs", run, i)
			}
		}
	}
}

func TestRedistributeEmptyCandidates(t *testing.T) {
	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 9)}
	if items := Redistribute(nil, WeeklyQuota{}, window, SchedulingStrategy{}); items != nil {
		t.Errorf("got %d items for empty input, want none", len(items))
	}
}

func TestWindowDaysAndWeeks(t *testing.T) {
	cases := []struct {
		start, end  time.Time
		days, weeks int
	}{
		{date(2025, time.March, 3), date(2025, time.March, 3), 1, 1},
		{date(2025, time.March, 3), date(2025, time.March, 9), 7, 1},
		{date(2025, time.March, 3), date(2025, time.March, 10), 8, 2},
		{date(2025, time.March, 3), date(2025, time.March, 31), 29, 5},
	}
	for _, c := range cases {
		w := Window{Start: c.start, End: c.end}
		if got := w.Days(); got != c.days {
			t.Errorf("Days(%s..%s) = %d, want %d", c.start.Format("01-02"), c.end.Format("01-02"), got, c.days)
		}
		if got := w.Weeks(); got != c.weeks {
			t.Errorf("Weeks(%s..%s) = %d, want %d", c.start.Format("01-02"), c.end.Format("01-02"), got, c.weeks)
		}
	}
}

func TestMondayIndex(t *testing.T) {
	if i := mondayIndex(time.Monday); i != 0 {
		t.Errorf("Monday = %d, want 0", i)
	}
	if i := mondayIndex(time.Sunday); i != 6 {
		t.Errorf("Sunday = %d, want 6", i)
	}
	if i := mondayIndex(time.Thursday); i != 3 {
		t.Errorf("Thursday = %d, want 3", i)
	}
}

func TestRedistributeNormalizesPlatformCase(t *testing.T) {
	// The model sometimes echoes platform names with their display casing.
	// "LinkedIn" must still hit the "linkedin" quota and slots instead of
	// the generic defaults.
	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 16)}
	strategy := SchedulingStrategy{
		"linkedin": {OptimalSlots: []Slot{{Day: 1, Time: "09:15", Priority: 1}}},
	}
	quota := WeeklyQuota{"linkedin": 1}

	items := Redistribute(candidates("LinkedIn", 3), quota, window, strategy)

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (one per week at quota 1)", len(items))
	}
	for i, item := range items {
		if item.Time != "09:15" {
			t.Errorf("item %d scheduled at %s, want the 09:15 linkedin slot", i, item.Time)
		}
	}
}
