package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

// Ping verifies the connection; callers decide whether a failure is fatal.
func Ping(ctx context.Context) error {
	if err := Rdb.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Msg("redis ping failed")
		return err
	}
	return nil
}
