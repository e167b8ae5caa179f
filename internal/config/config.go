// Package config loads runtime configuration from the environment, with a
// local .env file honored in development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries everything the binaries need. Provider credentials are
// optional: a provider without credentials is simply not registered.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	YouTubeBaseURL string `envconfig:"YOUTUBE_BASE_URL" default:"https://www.googleapis.com/youtube/v3"`
	YouTubeAPIKey  string `envconfig:"YOUTUBE_API_KEY"`

	UdemyBaseURL      string `envconfig:"UDEMY_BASE_URL" default:"https://www.udemy.com/api-2.0"`
	UdemyClientID     string `envconfig:"UDEMY_CLIENT_ID"`
	UdemyClientSecret string `envconfig:"UDEMY_CLIENT_SECRET"`

	FetchTimeout   time.Duration `envconfig:"PROVIDER_FETCH_TIMEOUT" default:"8s"`
	RequestSpacing time.Duration `envconfig:"PROVIDER_REQUEST_SPACING" default:"200ms"`

	MaxResults int           `envconfig:"MAX_RESULTS" default:"50"`
	CacheTTL   time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	CacheSize  int           `envconfig:"CACHE_SIZE" default:"256"`
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("PROVIDER_FETCH_TIMEOUT must be positive")
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("MAX_RESULTS must be positive")
	}
	if !c.HasYouTube() && !c.HasUdemy() {
		return fmt.Errorf("no provider credentials configured")
	}
	return nil
}

// HasYouTube reports whether the YouTube adapter can be registered.
func (c Config) HasYouTube() bool { return c.YouTubeAPIKey != "" }

// HasUdemy reports whether the Udemy adapter can be registered.
func (c Config) HasUdemy() bool {
	return c.UdemyClientID != "" && c.UdemyClientSecret != ""
}
