package publisher

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/postflow-app/postflow/internal/model"
)

// Publisher delivers one due post to its platform. Platform OAuth and API
// mechanics live behind this interface; the sweep only cares about success
// or failure.
type Publisher interface {
	Publish(ctx context.Context, post model.Post) error
}

// LogPublisher acknowledges every post without delivering it anywhere. Used
// until a platform integration is configured.
type LogPublisher struct{}

var _ Publisher = (*LogPublisher)(nil)

func (LogPublisher) Publish(_ context.Context, post model.Post) error {
	log.Info().
		Int("post_id", post.ID).
		Str("platform", post.Platform).
		Str("scheduled_time", post.ScheduledTime).
		Msg("post due for publication (no platform integration configured)")
	return nil
}
