package main

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

type Environment struct {
	Environment    string
	ServerAddress  string
	SecretKey      string
	DatabaseURL    string
	MigrationsPath string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL string

	AnthropicAPIKey  string
	AnthropicAPIURL  string
	AnthropicModel   string
	BatchPacing      time.Duration
	PublisherEnabled bool

	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesCDNURL    string
	SpacesAccessKey string
	SpacesSecretKey string
}

// LoadEnvironment reads and validates env vars
func LoadEnvironment() Environment {
	env := Environment{
		Environment:    os.Getenv("APP_ENV"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SecretKey:      os.Getenv("JWT_SECRET"),
		ServerAddress:  os.Getenv("SERVER_ADDRESS"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicAPIURL:  os.Getenv("ANTHROPIC_API_URL"),
		AnthropicModel:   os.Getenv("ANTHROPIC_MODEL"),
		PublisherEnabled: os.Getenv("PUBLISHER_ENABLED") != "false",

		UseSpaces:       os.Getenv("USE_SPACES") == "true",
		SpacesEndpoint:  os.Getenv("SPACES_ENDPOINT"),
		SpacesRegion:    os.Getenv("SPACES_REGION"),
		SpacesBucket:    os.Getenv("SPACES_BUCKET"),
		SpacesCDNURL:    os.Getenv("SPACES_CDN_URL"),
		SpacesAccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: os.Getenv("SPACES_SECRET_KEY"),
	}

	if raw := os.Getenv("BATCH_PACING"); raw != "" {
		pacing, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatal().Str("value", raw).Msg("invalid BATCH_PACING duration")
		}
		env.BatchPacing = pacing
	}

	if env.MigrationsPath == "" {
		env.MigrationsPath = "migrations"
	}

	if env.DatabaseURL == "" || env.SecretKey == "" || env.ServerAddress == "" {
		log.Fatal().Msg("missing required environment variables")
	}
	if env.AnthropicAPIKey == "" {
		log.Fatal().Msg("missing ANTHROPIC_API_KEY")
	}

	return env
}
