package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/postflow-app/postflow/internal/db"
	"github.com/postflow-app/postflow/internal/model"
)

const DefaultInterval = time.Minute

// Scheduler scans for posts due at the current date and minute and hands
// them to the Publisher, marking each published or failed.
type Scheduler struct {
	store     db.Store
	publisher Publisher
	interval  time.Duration
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(store db.Store, publisher Publisher, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:     store,
		publisher: publisher,
		interval:  interval,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		log.Info().Dur("interval", s.interval).Msg("publisher scheduler started")

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.CheckAndPublish(s.ctx)
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// CheckAndPublish publishes everything due at the current minute. Exported
// so tests can drive a tick directly.
func (s *Scheduler) CheckAndPublish(ctx context.Context) {
	now := s.now()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	hhmm := now.Format("15:04")

	posts, err := s.store.ListDuePosts(date, hhmm)
	if err != nil {
		log.Error().Err(err).Msg("publisher: due post scan failed")
		return
	}
	if len(posts) == 0 {
		return
	}

	log.Info().Int("count", len(posts)).Str("time", hhmm).Msg("publishing due posts")

	for _, post := range posts {
		status := model.PostStatusPublished
		if err := s.publisher.Publish(ctx, post); err != nil {
			log.Error().Err(err).Int("post_id", post.ID).Str("platform", post.Platform).Msg("publish failed")
			status = model.PostStatusFailed
		}
		if err := s.store.SetPostPublicationStatus(post.ID, status); err != nil {
			log.Error().Err(err).Int("post_id", post.ID).Msg("could not update publication status")
		}
	}
}
