package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/postflow-app/postflow/internal/db"
	"github.com/postflow-app/postflow/internal/generation"
	"github.com/postflow-app/postflow/internal/notify"
	"github.com/postflow-app/postflow/internal/publisher"
	"github.com/postflow-app/postflow/internal/redis"
	"github.com/postflow-app/postflow/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using process environment")
	}

	env := LoadEnvironment()

	if env.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}
	store := db.NewStore(db.DB)

	// progress tracker: redis when configured, else in-process
	var tracker generation.ProgressStore
	if env.RedisAddress != "" {
		redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
		if err := redis.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("redis unreachable")
		}
		tracker = generation.NewRedisProgressStore(redis.Rdb, generation.DefaultProgressTTL)
	} else {
		mem := generation.NewMemoryProgressStore(generation.DefaultProgressTTL)
		mem.StartSweeper(0)
		defer mem.Stop()
		tracker = mem
	}

	var notifier generation.Notifier = generation.NopNotifier{}
	if env.MQTTBrokerURL != "" {
		mqttNotifier, err := notify.NewMQTTNotifier(env.MQTTBrokerURL, "postflow-server")
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt connect failed")
		}
		defer mqttNotifier.Close()
		notifier = mqttNotifier
	}

	anthropicCfg := generation.AnthropicConfig{
		APIKey: env.AnthropicAPIKey,
		APIURL: env.AnthropicAPIURL,
		Model:  env.AnthropicModel,
	}
	generator := generation.NewAnthropicGenerator(anthropicCfg)
	analyzer := generation.NewAnthropicPersonaAnalyzer(anthropicCfg)
	refiner := generation.NewAnthropicPostRefiner(anthropicCfg)

	orchestrator := generation.NewOrchestrator(generator, tracker, env.BatchPacing)
	manager := generation.NewManager(store, orchestrator, tracker, notifier)

	if env.PublisherEnabled {
		sweep := publisher.NewScheduler(store, publisher.LogPublisher{}, publisher.DefaultInterval)
		sweep.Start()
		defer sweep.Stop()
	}

	var storageSystem storage.Storage
	if env.UseSpaces {
		spaces, err := storage.NewSpacesStorage(
			env.SpacesEndpoint,
			env.SpacesRegion,
			env.SpacesBucket,
			env.SpacesCDNURL,
			env.SpacesAccessKey,
			env.SpacesSecretKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("spaces storage init failed")
		}
		storageSystem = spaces
	} else {
		storageSystem = storage.NewLocalStorage("./uploads")
	}

	r := gin.Default()
	RegisterRoutes(r, env, store, storageSystem, manager, tracker, analyzer, refiner)

	log.Info().Str("address", env.ServerAddress).Msg("server listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
