package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the operator-tunable knobs. Retry and pacing values are
// configuration rather than constants so they can track observed index
// behavior.
type Config struct {
	APIURL          string        `env:"REPLAY_API_URL" envDefault:"https://replay.pokemonshowdown.com/search.json"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	MaxRetries      int           `env:"MAX_RETRIES" envDefault:"3"`
	RetryBackoffCap time.Duration `env:"RETRY_BACKOFF_CAP" envDefault:"5s"`
	RequestInterval time.Duration `env:"REQUEST_INTERVAL" envDefault:"1s"`
	OutputDir       string        `env:"OUTPUT_DIR" envDefault:"."`

	// Optional webhook for run completion notifications. Empty
	// disables them.
	WebhookURL string `env:"WEBHOOK_URL"`
}

// Load reads a .env file if one is nearby, then parses the environment
func Load() (Config, error) {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			log.Printf("Loaded .env from %s", path)
			break
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
