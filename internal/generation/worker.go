package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"

	"github.com/postflow-app/postflow/internal/db"
	"github.com/postflow-app/postflow/internal/model"
)

// ErrAlreadyRunning is returned when a generation start is requested for a
// project that already has a worker (or is stuck in generating state).
var ErrAlreadyRunning = errors.New("generation already running for project")

// Notifier receives generation lifecycle events. Implementations must not
// block the worker.
type Notifier interface {
	NotifyGeneration(projectID int, event string, progress Progress)
}

// Lifecycle events emitted through the Notifier.
const (
	EventStarted   = "started"
	EventCompleted = "completed"
	EventFailed    = "failed"
)

// NopNotifier drops all events.
type NopNotifier struct{}

func (NopNotifier) NotifyGeneration(int, string, Progress) {}

// Manager supervises one background generation worker per project. Workers
// run to completion or failure; there is no cancellation. A second start for
// the same project is rejected while the first is running.
type Manager struct {
	store        db.Store
	orchestrator *Orchestrator
	tracker      ProgressStore
	notifier     Notifier

	mu      sync.Mutex
	running map[int]chan struct{}
}

func NewManager(store db.Store, orchestrator *Orchestrator, tracker ProgressStore, notifier Notifier) *Manager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Manager{
		store:        store,
		orchestrator: orchestrator,
		tracker:      tracker,
		notifier:     notifier,
		running:      make(map[int]chan struct{}),
	}
}

// PersonasStatus describes whether a project's personas have been generated
// and confirmed; the start endpoint reports it alongside the trigger.
func PersonasStatus(project model.Project) string {
	analysis := AnalysisFromJSON(project.BuyerPersonas)
	switch {
	case len(analysis.Personas) == 0 && len(analysis.Strategy) == 0:
		return "not_generated"
	case analysis.Confirmed:
		return "confirmed"
	default:
		return "generated"
	}
}

// Start launches the background worker for a project and returns immediately.
// The project is moved to generating before the worker spawns so polling
// clients observe the transition at once.
func (m *Manager) Start(projectID int) error {
	m.mu.Lock()
	if _, ok := m.running[projectID]; ok {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.mu.Unlock()

	project, err := m.store.GetProjectByID(projectID)
	if err != nil {
		return fmt.Errorf("load project %d: %w", projectID, err)
	}
	if project.Status == model.ProjectStatusGenerating {
		return ErrAlreadyRunning
	}

	m.mu.Lock()
	if _, ok := m.running[projectID]; ok {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	done := make(chan struct{})
	m.running[projectID] = done
	m.mu.Unlock()

	if err := m.store.SetProjectStatus(projectID, model.ProjectStatusGenerating); err != nil {
		m.finish(projectID, done)
		return fmt.Errorf("mark project %d generating: %w", projectID, err)
	}

	m.notifier.NotifyGeneration(projectID, EventStarted, Progress{})

	go func() {
		defer m.finish(projectID, done)
		m.run(projectID)
	}()

	return nil
}

// Running reports whether a worker for the project is active.
func (m *Manager) Running(projectID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.running[projectID]
	return ok
}

// Wait blocks until the project's worker finishes. Used by tests and
// graceful shutdown; returns immediately when no worker is active.
func (m *Manager) Wait(projectID int) {
	m.mu.Lock()
	done, ok := m.running[projectID]
	m.mu.Unlock()
	if ok {
		<-done
	}
}

func (m *Manager) finish(projectID int, done chan struct{}) {
	m.mu.Lock()
	delete(m.running, projectID)
	m.mu.Unlock()
	close(done)
}

// run executes the full pipeline: batching, redistribution, reconciliation.
// Errors never propagate to a caller (the trigger request has long returned);
// failure reverts the project to draft.
func (m *Manager) run(projectID int) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("project_id", projectID).Any("panic", r).Msg("generation worker panicked")
			m.fail(ctx, projectID)
		}
	}()

	project, err := m.store.GetProjectByID(projectID)
	if err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("generation: project not found")
		m.fail(ctx, projectID)
		return
	}
	brand, err := m.store.GetBrandByID(project.BrandID)
	if err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("generation: brand not found")
		m.fail(ctx, projectID)
		return
	}

	platforms := project.PlatformList()
	window := Window{Start: project.StartDate, End: project.EndDate}

	analysis := AnalysisFromJSON(project.BuyerPersonas)
	personasDefaulted := false
	if len(analysis.Strategy) == 0 {
		analysis = DefaultAnalysis(platforms)
		personasDefaulted = true
	}

	// quota keys are lowercased to match redistribution's grouping
	quota := make(WeeklyQuota, len(platforms))
	configured := project.PostsPerWeekMap()
	for _, p := range platforms {
		key := strings.ToLower(p)
		n, ok := configured[p]
		if !ok {
			n, ok = configured[key]
		}
		if !ok {
			n = defaultPostsPerWeek
		}
		quota[key] = n
	}

	candidates := m.orchestrator.Run(ctx, RunRequest{
		ProjectID:    projectID,
		Brand:        brandContext(brand),
		Project:      projectContext(project),
		Window:       window,
		Platforms:    platforms,
		PostsPerWeek: quota,
		Strategy:     analysis.Strategy,
		Personas:     analysis.Personas,
	})

	items := Redistribute(candidates, quota, window, analysis.Strategy)

	deleted, err := m.store.DeletePostsInWindow(projectID, window.Start, window.End)
	if err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("generation: reconciliation delete failed")
		m.fail(ctx, projectID)
		return
	}
	log.Info().
		Int("project_id", projectID).
		Int64("deleted", deleted).
		Int("scheduled", len(items)).
		Msg("reconciling calendar window")

	posts := make([]model.Post, 0, len(items))
	for _, it := range items {
		posts = append(posts, postFromItem(it))
	}
	if err := m.store.CreatePosts(projectID, posts); err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("generation: insert failed")
		m.fail(ctx, projectID)
		return
	}

	if personasDefaulted {
		if err := m.store.UpdateProjectPersonas(projectID, analysis.ToJSON()); err != nil {
			log.Warn().Err(err).Int("project_id", projectID).Msg("generation: could not persist default personas")
		}
	}

	if err := m.store.SetProjectStatus(projectID, model.ProjectStatusReview); err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("generation: could not set review status")
		m.fail(ctx, projectID)
		return
	}

	m.tracker.Clear(ctx, projectID)
	m.notifier.NotifyGeneration(projectID, EventCompleted, Progress{Percent: 100})
	log.Info().Int("project_id", projectID).Int("posts", len(posts)).Msg("generation completed")
}

// fail reverts the project to draft, best effort: a failure while reverting
// is logged and swallowed.
func (m *Manager) fail(ctx context.Context, projectID int) {
	if err := m.store.SetProjectStatus(projectID, model.ProjectStatusDraft); err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("generation: could not revert project to draft")
	}
	m.tracker.Clear(ctx, projectID)
	m.notifier.NotifyGeneration(projectID, EventFailed, Progress{})
}

func brandContext(b model.Brand) BrandContext {
	return BrandContext{
		Name:        b.Name,
		Sector:      deref(b.Sector),
		Description: deref(b.Description),
		ToneOfVoice: deref(b.ToneOfVoice),
		Values:      deref(b.BrandValues),
		StyleGuide:  deref(b.StyleGuide),
	}
}

func projectContext(p model.Project) ProjectContext {
	return ProjectContext{
		Brief:  deref(p.Brief),
		Themes: p.ThemeList(),
	}
}

func postFromItem(it ScheduledItem) model.Post {
	tags := it.Hashtags
	if tags == nil {
		tags = []string{}
	}
	hashtags, _ := json.Marshal(tags)
	return model.Post{
		Platform:          it.Platform,
		ScheduledDate:     it.Date,
		ScheduledTime:     it.Time,
		Content:           it.Content,
		Hashtags:          types.JSONText(hashtags),
		ContentType:       orDefault(it.ContentType, "post"),
		PostType:          it.PostType,
		Pillar:            it.Pillar,
		VisualSuggestion:  it.VisualSuggestion,
		CTA:               it.CTA,
		PublicationStatus: model.PostStatusScheduled,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
