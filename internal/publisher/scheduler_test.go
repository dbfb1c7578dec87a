package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/postflow-app/postflow/internal/db"
	"github.com/postflow-app/postflow/internal/model"
)

type fakeStore struct {
	db.Store

	mu       sync.Mutex
	due      []model.Post
	gotDate  time.Time
	gotHHMM  string
	statuses map[int]string
}

func (f *fakeStore) ListDuePosts(date time.Time, hhmm string) ([]model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotDate, f.gotHHMM = date, hhmm
	return f.due, nil
}

func (f *fakeStore) SetPostPublicationStatus(id int, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = map[int]string{}
	}
	f.statuses[id] = status
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []int
	failIDs   map[int]bool
}

func (f *fakePublisher) Publish(_ context.Context, post model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[post.ID] {
		return errors.New("platform rejected post")
	}
	f.published = append(f.published, post.ID)
	return nil
}

func TestCheckAndPublishMarksOutcomes(t *testing.T) {
	store := &fakeStore{due: []model.Post{
		{ID: 1, Platform: "instagram", ScheduledTime: "10:00"},
		{ID: 2, Platform: "linkedin", ScheduledTime: "10:00"},
	}}
	pub := &fakePublisher{failIDs: map[int]bool{2: true}}

	s := NewScheduler(store, pub, time.Minute)
	s.CheckAndPublish(context.Background())

	if store.statuses[1] != model.PostStatusPublished {
		t.Errorf("post 1 status = %q, want published", store.statuses[1])
	}
	if store.statuses[2] != model.PostStatusFailed {
		t.Errorf("post 2 status = %q, want failed", store.statuses[2])
	}
	if len(pub.published) != 1 || pub.published[0] != 1 {
		t.Errorf("published ids = %v, want [1]", pub.published)
	}
}

func TestCheckAndPublishQueriesCurrentMinute(t *testing.T) {
	store := &fakeStore{}
	s := NewScheduler(store, &fakePublisher{}, time.Minute)
	s.now = func() time.Time {
		return time.Date(2025, time.March, 4, 18, 30, 45, 0, time.UTC)
	}

	s.CheckAndPublish(context.Background())

	if store.gotHHMM != "18:30" {
		t.Errorf("queried time %q, want 18:30 with seconds dropped", store.gotHHMM)
	}
	want := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
	if !store.gotDate.Equal(want) {
		t.Errorf("queried date %s, want midnight UTC of the current day", store.gotDate)
	}
}

func TestCheckAndPublishNoDuePosts(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	s := NewScheduler(store, pub, time.Minute)

	s.CheckAndPublish(context.Background())

	if len(pub.published) != 0 || len(store.statuses) != 0 {
		t.Errorf("work done with nothing due: %v %v", pub.published, store.statuses)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	store := &fakeStore{}
	s := NewScheduler(store, &fakePublisher{}, 5*time.Millisecond)

	s.Start()
	time.Sleep(25 * time.Millisecond)
	s.Stop()

	store.mu.Lock()
	ticked := store.gotHHMM != ""
	store.mu.Unlock()
	if !ticked {
		t.Error("scheduler never scanned for due posts")
	}
}
