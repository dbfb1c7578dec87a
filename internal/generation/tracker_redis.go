package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisProgressStore keeps progress entries in Redis so status polls can be
// served by any replica. Failures degrade to "no entry"; the status endpoint
// already handles that case.
type RedisProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ProgressStore = (*RedisProgressStore)(nil)

func NewRedisProgressStore(client *redis.Client, ttl time.Duration) *RedisProgressStore {
	if ttl <= 0 {
		ttl = DefaultProgressTTL
	}
	return &RedisProgressStore{client: client, ttl: ttl}
}

func progressKey(projectID int) string {
	return fmt.Sprintf("generation:progress:%d", projectID)
}

func (r *RedisProgressStore) Set(ctx context.Context, projectID int, p Progress) {
	payload, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("failed to marshal progress")
		return
	}
	if err := r.client.Set(ctx, progressKey(projectID), payload, r.ttl).Err(); err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("failed to write progress to redis")
	}
}

func (r *RedisProgressStore) Get(ctx context.Context, projectID int) (Progress, bool) {
	raw, err := r.client.Get(ctx, progressKey(projectID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Error().Err(err).Int("project_id", projectID).Msg("failed to read progress from redis")
		}
		return Progress{}, false
	}
	var p Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("failed to unmarshal progress")
		return Progress{}, false
	}
	return p, true
}

func (r *RedisProgressStore) Clear(ctx context.Context, projectID int) {
	if err := r.client.Del(ctx, progressKey(projectID)).Err(); err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("failed to clear progress in redis")
	}
}
