package config

import (
	"log"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"festivalbot"`

	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"super-secret-key-change-me"`
	JWTTTLHours int    `env:"JWT_TTL_HOURS" envDefault:"24"`
	BotAPIKey   string `env:"BOT_API_KEY" envDefault:"bot-api-key-change-me"`

	BotToken       string `env:"BOT_TOKEN"`
	WebhookBaseURL string `env:"WEBHOOK_BASE_URL"`
	WebhookSecret  string `env:"WEBHOOK_SECRET"`
	PollInterval   int    `env:"POLL_INTERVAL" envDefault:"2"`

	ReplicateAPIToken string `env:"REPLICATE_API_TOKEN"`
	ReplicateAPIURL   string `env:"REPLICATE_API_URL" envDefault:"https://api.replicate.com/v1"`
	ComposeAPIURL     string `env:"COMPOSE_API_URL"`

	GenerationWorkers  int `env:"GENERATION_WORKERS" envDefault:"3"`
	GenerationQueueCap int `env:"GENERATION_QUEUE_CAP" envDefault:"32"`
}

func Load() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse environment: %v", err)
	}
	return cfg
}
