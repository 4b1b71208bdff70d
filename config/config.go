package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob for the backend. It is parsed once in
// main and handed to the service constructors so tests can build their
// own values instead of reading process env.
type Config struct {
	Port   string `env:"PORT" envDefault:"4000"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/echord.db"`

	ShodanAPIKey  string        `env:"SHODAN_API_KEY"`
	ShodanBaseURL string        `env:"SHODAN_BASE_URL" envDefault:"https://api.shodan.io/shodan"`
	ShodanTimeout time.Duration `env:"SHODAN_TIMEOUT" envDefault:"10s"`

	// Cache TTLs in hours. Search results are the most volatile, DNS
	// resolutions the most stable.
	SearchTTLHours int `env:"CACHE_SEARCH_TTL_HOURS" envDefault:"96"`
	HostTTLHours   int `env:"CACHE_HOST_TTL_HOURS" envDefault:"168"`
	DNSTTLHours    int `env:"CACHE_DNS_TTL_HOURS" envDefault:"720"`

	SweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"1h"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ShodanAPIKey == "" {
		return Config{}, fmt.Errorf("SHODAN_API_KEY is not set; check your .env file")
	}
	return cfg, nil
}

// IsDev reports whether the server runs in development mode. Error
// detail is only exposed to clients in dev.
func (c Config) IsDev() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

func (c Config) SearchTTL() time.Duration { return time.Duration(c.SearchTTLHours) * time.Hour }
func (c Config) HostTTL() time.Duration   { return time.Duration(c.HostTTLHours) * time.Hour }
func (c Config) DNSTTL() time.Duration    { return time.Duration(c.DNSTTLHours) * time.Hour }
