// Package config loads runtime settings from the environment. Values
// come from envconfig tags; a .env file is honored when present.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration shared by the API server
// and the ingestion engine.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	Database DatabaseConfig `envconfig:"DB"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	Sync     SyncConfig     `envconfig:"SYNC"`
	Ingest   IngestConfig   `envconfig:"INGEST"`
	Logging  LoggingConfig  `envconfig:"LOG"`
}

// DatabaseConfig represents Postgres connection parameters.
type DatabaseConfig struct {
	Host string `envconfig:"DB_HOST" default:"localhost"`
	Port string `envconfig:"DB_PORT" default:"5432"`
	Name string `envconfig:"DB_NAME" default:"newsstream_db"`
	User string `envconfig:"DB_USER" default:"newsstream_user"`
	Pass string `envconfig:"DB_PASS" default:"newsstream"`
}

// URL builds the lib/pq connection string.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// RedisConfig represents the Redis connection used for seen-URL dedup.
type RedisConfig struct {
	Addr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
}

// SyncConfig represents how the ingestion engine reaches the API server.
type SyncConfig struct {
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
	APIKey     string `envconfig:"SYNC_API_KEY" required:"false"`
}

// IngestConfig represents ingestion schedules and trend inputs.
type IngestConfig struct {
	StoryInterval time.Duration `envconfig:"INGEST_STORY_INTERVAL" default:"60m"`
	TrendInterval time.Duration `envconfig:"INGEST_TREND_INTERVAL" default:"15m"`
	XTrendsFile   string        `envconfig:"X_TRENDS_FILE" required:"false"`
	XTrendsURL    string        `envconfig:"X_TRENDS_URL" required:"false"`
}

// LoggingConfig represents logger settings.
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" required:"false"`
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &cfg, nil
}
