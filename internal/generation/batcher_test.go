package generation

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeGenerator records every batch window it is asked for and can fail
// selected batches.
type fakeGenerator struct {
	calls       []BatchRequest
	perBatch    int
	failBatches map[int]bool
}

func (f *fakeGenerator) GenerateBatch(_ context.Context, req BatchRequest) ([]Candidate, error) {
	f.calls = append(f.calls, req)
	if f.failBatches[req.BatchNum] {
		return nil, errors.New("model unavailable")
	}
	out := make([]Candidate, f.perBatch)
	for i := range out {
		out[i] = Candidate{Platform: "instagram", Content: "generated"}
	}
	return out, nil
}

func newTestOrchestrator(gen ContentGenerator, tracker ProgressStore) (*Orchestrator, *[]time.Duration) {
	o := NewOrchestrator(gen, tracker, DefaultBatchPacing)
	var sleeps []time.Duration
	o.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return o, &sleeps
}

func TestOrchestratorSplitsWindowIntoWeeklyBatches(t *testing.T) {
	gen := &fakeGenerator{perBatch: 2}
	tracker := NewMemoryProgressStore(0)
	o, _ := newTestOrchestrator(gen, tracker)

	// 20 days: three batches of 7, 7 and 6 days
	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 22)}
	all := o.Run(context.Background(), RunRequest{ProjectID: 1, Window: window, Platforms: []string{"instagram"}})

	if len(gen.calls) != 3 {
		t.Fatalf("got %d generator calls, want 3", len(gen.calls))
	}
	wantWindows := []struct{ start, end time.Time }{
		{date(2025, time.March, 3), date(2025, time.March, 9)},
		{date(2025, time.March, 10), date(2025, time.March, 16)},
		{date(2025, time.March, 17), date(2025, time.March, 22)},
	}
	for i, w := range wantWindows {
		got := gen.calls[i].Window
		if !got.Start.Equal(w.start) || !got.End.Equal(w.end) {
			t.Errorf("batch %d window %s..%s, want %s..%s", i+1,
				got.Start.Format("01-02"), got.End.Format("01-02"),
				w.start.Format("01-02"), w.end.Format("01-02"))
		}
		if gen.calls[i].BatchNum != i+1 || gen.calls[i].TotalBatches != 3 {
			t.Errorf("batch %d numbering = %d/%d", i+1, gen.calls[i].BatchNum, gen.calls[i].TotalBatches)
		}
	}
	if len(all) != 6 {
		t.Errorf("got %d candidates, want 6", len(all))
	}
}

func TestOrchestratorPacesBetweenBatchesOnly(t *testing.T) {
	gen := &fakeGenerator{perBatch: 1}
	o, sleeps := newTestOrchestrator(gen, NewMemoryProgressStore(0))

	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 23)} // 3 batches
	o.Run(context.Background(), RunRequest{ProjectID: 1, Window: window})

	// no pause before the first batch, one before each of the rest
	if len(*sleeps) != 2 {
		t.Fatalf("got %d pauses, want 2", len(*sleeps))
	}
	for _, d := range *sleeps {
		if d != DefaultBatchPacing {
			t.Errorf("pause of %s, want %s", d, DefaultBatchPacing)
		}
	}
}

func TestOrchestratorContinuesPastFailedBatch(t *testing.T) {
	gen := &fakeGenerator{perBatch: 3, failBatches: map[int]bool{2: true}}
	o, _ := newTestOrchestrator(gen, NewMemoryProgressStore(0))

	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 30)} // 4 batches
	all := o.Run(context.Background(), RunRequest{ProjectID: 7, Window: window})

	if len(gen.calls) != 4 {
		t.Fatalf("got %d generator calls, want 4", len(gen.calls))
	}
	// batch 2 contributes nothing, the other three contribute 3 each
	if len(all) != 9 {
		t.Errorf("got %d candidates, want 9", len(all))
	}
}

func TestOrchestratorReportsProgressPerBatch(t *testing.T) {
	gen := &fakeGenerator{perBatch: 1}
	tracker := NewMemoryProgressStore(0)
	o, _ := newTestOrchestrator(gen, tracker)

	ctx := context.Background()
	window := Window{Start: date(2025, time.March, 3), End: date(2025, time.March, 23)} // 3 batches
	o.Run(ctx, RunRequest{ProjectID: 42, Window: window})

	p, ok := tracker.Get(ctx, 42)
	if !ok {
		t.Fatal("no progress entry after run")
	}
	if p.CurrentBatch != 3 || p.TotalBatches != 3 || p.Percent != 100 {
		t.Errorf("final progress = %+v, want 3/3 at 100%%", p)
	}
}

func TestTotalBatches(t *testing.T) {
	cases := []struct {
		days int
		want int
	}{
		{1, 1}, {7, 1}, {8, 2}, {14, 2}, {15, 3}, {30, 5},
	}
	for _, c := range cases {
		w := Window{
			Start: date(2025, time.March, 1),
			End:   date(2025, time.March, 1).AddDate(0, 0, c.days-1),
		}
		if got := TotalBatches(w); got != c.want {
			t.Errorf("TotalBatches(%d days) = %d, want %d", c.days, got, c.want)
		}
	}
}
