package generation

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// batchSizeDays is the fixed width of one generator call.
const batchSizeDays = 7

// DefaultBatchPacing is the pause between consecutive generator calls. The
// pause is a deliberate serialization point for upstream rate limits; batches
// are never issued concurrently.
const DefaultBatchPacing = 8 * time.Second

// RunRequest carries everything one generation run needs.
type RunRequest struct {
	ProjectID    int
	Brand        BrandContext
	Project      ProjectContext
	Window       Window
	Platforms    []string
	PostsPerWeek WeeklyQuota
	Strategy     SchedulingStrategy
	Personas     []Persona
}

// Orchestrator splits a run's window into 7-day batches, calls the generator
// once per batch with pacing in between, and accumulates candidates. A failed
// batch contributes zero candidates and never aborts the run.
type Orchestrator struct {
	generator ContentGenerator
	tracker   ProgressStore
	pacing    time.Duration
	sleep     func(time.Duration)
}

func NewOrchestrator(generator ContentGenerator, tracker ProgressStore, pacing time.Duration) *Orchestrator {
	if pacing <= 0 {
		pacing = DefaultBatchPacing
	}
	return &Orchestrator{
		generator: generator,
		tracker:   tracker,
		pacing:    pacing,
		sleep:     time.Sleep,
	}
}

// TotalBatches returns how many generator calls a window needs.
func TotalBatches(w Window) int {
	return (w.Days() + batchSizeDays - 1) / batchSizeDays
}

// Run executes all batches sequentially and returns the accumulated
// candidates in batch order. Progress is reported after every batch.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) []Candidate {
	totalBatches := TotalBatches(req.Window)

	var all []Candidate
	for i := 0; i < totalBatches; i++ {
		batchStart := req.Window.Start.AddDate(0, 0, i*batchSizeDays)
		batchEnd := batchStart.AddDate(0, 0, batchSizeDays-1)
		if batchEnd.After(req.Window.End) {
			batchEnd = req.Window.End
		}

		if i > 0 {
			log.Debug().Dur("pacing", o.pacing).Msg("pausing before next batch")
			o.sleep(o.pacing)
		}

		candidates, err := o.generator.GenerateBatch(ctx, BatchRequest{
			Brand:        req.Brand,
			Project:      req.Project,
			Window:       Window{Start: batchStart, End: batchEnd},
			Platforms:    req.Platforms,
			PostsPerWeek: req.PostsPerWeek,
			Strategy:     req.Strategy,
			Personas:     req.Personas,
			BatchNum:     i + 1,
			TotalBatches: totalBatches,
		})
		if err != nil {
			// batch-local failure: zero candidates, run continues
			log.Warn().Err(err).
				Int("project_id", req.ProjectID).
				Int("batch", i+1).
				Int("total_batches", totalBatches).
				Msg("batch generation failed, continuing with empty batch")
			candidates = nil
		}

		log.Info().
			Int("project_id", req.ProjectID).
			Int("batch", i+1).
			Int("total_batches", totalBatches).
			Int("candidates", len(candidates)).
			Msg("batch completed")

		all = append(all, candidates...)

		percent := int(math.Round(100 * float64(i+1) / float64(totalBatches)))
		o.tracker.Set(ctx, req.ProjectID, Progress{
			CurrentBatch: i + 1,
			TotalBatches: totalBatches,
			Percent:      percent,
		})
	}

	return all
}
