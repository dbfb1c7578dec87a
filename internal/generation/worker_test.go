package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/postflow-app/postflow/internal/db"
	"github.com/postflow-app/postflow/internal/model"
)

// fakeStore implements only the Store methods the worker touches; the
// embedded interface panics on anything else, which would flag an unexpected
// call.
type fakeStore struct {
	db.Store

	mu          sync.Mutex
	project     model.Project
	brand       model.Brand
	created     []model.Post
	deleteStart time.Time
	deleteEnd   time.Time
	personas    types.JSONText

	failCreate bool
}

func (f *fakeStore) GetProjectByID(id int) (model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.project.ID {
		return model.Project{}, errors.New("project not found")
	}
	return f.project, nil
}

func (f *fakeStore) GetBrandByID(id int) (model.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.brand, nil
}

func (f *fakeStore) SetProjectStatus(id int, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.project.Status = status
	return nil
}

func (f *fakeStore) UpdateProjectPersonas(id int, personas types.JSONText) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.personas = personas
	return nil
}

func (f *fakeStore) DeletePostsInWindow(projectID int, start, end time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteStart, f.deleteEnd = start, end
	return 3, nil
}

func (f *fakeStore) CreatePosts(projectID int, posts []model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("insert failed")
	}
	f.created = append(f.created, posts...)
	return nil
}

func (f *fakeStore) status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.project.Status
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) NotifyGeneration(_ int, event string, _ Progress) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
}

func (f *fakeNotifier) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func testProject() model.Project {
	return model.Project{
		ID:        1,
		BrandID:   10,
		Name:      "spring campaign",
		Status:    model.ProjectStatusDraft,
		StartDate: date(2025, time.March, 3),
		EndDate:   date(2025, time.March, 16),
		Platforms: types.JSONText(`["instagram"]`),
	}
}

func newTestManager(store *fakeStore, gen ContentGenerator) (*Manager, *MemoryProgressStore, *fakeNotifier) {
	tracker := NewMemoryProgressStore(0)
	orchestrator, _ := newTestOrchestrator(gen, tracker)
	notifier := &fakeNotifier{}
	return NewManager(store, orchestrator, tracker, notifier), tracker, notifier
}

func TestManagerRunReplacesWindowAndMovesToReview(t *testing.T) {
	store := &fakeStore{project: testProject(), brand: model.Brand{ID: 10, Name: "Acme"}}
	manager, tracker, notifier := newTestManager(store, &fakeGenerator{perBatch: 2})

	if err := manager.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	manager.Wait(1)

	if got := store.status(); got != model.ProjectStatusReview {
		t.Errorf("project status = %q, want review", got)
	}
	// only the project window is reconciled
	if !store.deleteStart.Equal(date(2025, time.March, 3)) || !store.deleteEnd.Equal(date(2025, time.March, 16)) {
		t.Errorf("delete window %s..%s, want the project window",
			store.deleteStart.Format("01-02"), store.deleteEnd.Format("01-02"))
	}
	// 2 batches x 2 candidates, default quota 2/week over 2 weeks
	if len(store.created) != 4 {
		t.Errorf("created %d posts, want 4", len(store.created))
	}
	for _, p := range store.created {
		if p.PublicationStatus != model.PostStatusScheduled {
			t.Errorf("post status %q, want scheduled", p.PublicationStatus)
		}
		if p.ScheduledDate.Before(store.deleteStart) || p.ScheduledDate.After(store.deleteEnd) {
			t.Errorf("post on %s lands outside the window", p.ScheduledDate.Format("2006-01-02"))
		}
	}
	if _, ok := tracker.Get(context.Background(), 1); ok {
		t.Error("tracker entry not cleared after completion")
	}
	events := notifier.seen()
	if len(events) != 2 || events[0] != EventStarted || events[1] != EventCompleted {
		t.Errorf("events = %v, want [started completed]", events)
	}
}

func TestManagerRejectsDuplicateStart(t *testing.T) {
	project := testProject()
	project.Status = model.ProjectStatusGenerating
	store := &fakeStore{project: project, brand: model.Brand{ID: 10}}
	manager, _, _ := newTestManager(store, &fakeGenerator{perBatch: 1})

	if err := manager.Start(1); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("Start on generating project: %v, want ErrAlreadyRunning", err)
	}
}

func TestManagerFailureRevertsToDraft(t *testing.T) {
	store := &fakeStore{project: testProject(), brand: model.Brand{ID: 10}, failCreate: true}
	manager, tracker, notifier := newTestManager(store, &fakeGenerator{perBatch: 2})

	if err := manager.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	manager.Wait(1)

	if got := store.status(); got != model.ProjectStatusDraft {
		t.Errorf("project status = %q, want draft after failure", got)
	}
	if _, ok := tracker.Get(context.Background(), 1); ok {
		t.Error("tracker entry not cleared after failure")
	}
	events := notifier.seen()
	if len(events) != 2 || events[1] != EventFailed {
		t.Errorf("events = %v, want failure as final event", events)
	}
}

func TestManagerPersistsDefaultedPersonas(t *testing.T) {
	store := &fakeStore{project: testProject(), brand: model.Brand{ID: 10}}
	manager, _, _ := newTestManager(store, &fakeGenerator{perBatch: 1})

	if err := manager.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	manager.Wait(1)

	if len(store.personas) == 0 {
		t.Fatal("defaulted persona analysis was not persisted")
	}
	analysis := AnalysisFromJSON(store.personas)
	if len(analysis.Strategy) == 0 {
		t.Error("persisted analysis has no scheduling strategy")
	}
	if _, ok := analysis.Strategy["instagram"]; !ok {
		t.Error("persisted strategy missing the project platform")
	}
}

func TestManagerKeepsConfirmedPersonas(t *testing.T) {
	project := testProject()
	confirmed := PersonaAnalysis{
		Strategy:  SchedulingStrategy{"instagram": {OptimalSlots: []Slot{{Day: 0, Time: "09:00", Priority: 1}}}},
		Confirmed: true,
	}
	project.BuyerPersonas = confirmed.ToJSON()
	store := &fakeStore{project: project, brand: model.Brand{ID: 10}}
	manager, _, _ := newTestManager(store, &fakeGenerator{perBatch: 2})

	if err := manager.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	manager.Wait(1)

	if len(store.personas) != 0 {
		t.Error("confirmed analysis was overwritten with defaults")
	}
	// Monday slot, quota defaults to 2 but only one slot exists per week
	for _, p := range store.created {
		if p.ScheduledDate.Weekday() != time.Monday || p.ScheduledTime != "09:00" {
			t.Errorf("post at %s %s, want Monday 09:00",
				p.ScheduledDate.Weekday(), p.ScheduledTime)
		}
	}
}

func TestPersonasStatus(t *testing.T) {
	project := testProject()
	if got := PersonasStatus(project); got != "not_generated" {
		t.Errorf("empty personas = %q, want not_generated", got)
	}

	analysis := DefaultAnalysis([]string{"instagram"})
	project.BuyerPersonas = analysis.ToJSON()
	if got := PersonasStatus(project); got != "generated" {
		t.Errorf("unconfirmed personas = %q, want generated", got)
	}

	analysis.Confirmed = true
	project.BuyerPersonas = analysis.ToJSON()
	if got := PersonasStatus(project); got != "confirmed" {
		t.Errorf("confirmed personas = %q, want confirmed", got)
	}
}

func TestManagerQuotaMatchesDisplayCasePlatforms(t *testing.T) {
	// Projects created from the UI can carry display casing in both the
	// platform list and the posts-per-week config; the configured quota
	// must still apply to the lowercased candidates.
	project := testProject()
	project.Platforms = types.JSONText(`["Instagram"]`)
	project.PostsPerWeek = types.JSONText(`{"Instagram": 1}`)
	store := &fakeStore{project: project, brand: model.Brand{ID: 10}}
	manager, _, _ := newTestManager(store, &fakeGenerator{perBatch: 2})

	if err := manager.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	manager.Wait(1)

	// quota 1/week over the two-week window, not the default 2/week
	store.mu.Lock()
	created := len(store.created)
	store.mu.Unlock()
	if created != 2 {
		t.Errorf("created %d posts, want 2 with the configured quota", created)
	}
}
