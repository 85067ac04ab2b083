package attribution

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Environment variable names for configuration.
const (
	// EnvBaseURL is the environment variable for the collection API base URL.
	EnvBaseURL = "ATTRIBUTION_BASE_URL"
	// EnvAPIKey is the environment variable for the API key.
	EnvAPIKey = "ATTRIBUTION_API_KEY"
	// EnvDebug is the environment variable to enable debug mode.
	EnvDebug = "ATTRIBUTION_DEBUG"
)

// EnvConfig is the part of Config that can be read from the environment.
type EnvConfig struct {
	BaseURL string `env:"ATTRIBUTION_BASE_URL"`
	APIKey  string `env:"ATTRIBUTION_API_KEY"`
	Debug   bool   `env:"ATTRIBUTION_DEBUG" envDefault:"false"`
}

// LoadEnvConfig reads EnvConfig from the process environment.
func LoadEnvConfig() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("attribution: failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Options converts the environment values to config options.
// Unset values produce no option.
func (e EnvConfig) Options() []ConfigOption {
	opts := make([]ConfigOption, 0, 3)
	if e.BaseURL != "" {
		opts = append(opts, WithBaseURL(e.BaseURL))
	}
	if e.APIKey != "" {
		opts = append(opts, WithAPIKey(e.APIKey))
	}
	if e.Debug {
		opts = append(opts, WithDebug(true))
	}
	return opts
}

// NewFromEnv creates a new client using environment variables for configuration.
// It reads ATTRIBUTION_BASE_URL, and optionally ATTRIBUTION_API_KEY and
// ATTRIBUTION_DEBUG. Explicit options override environment values.
//
// Example:
//
//	client, err := attribution.NewFromEnv(
//	    attribution.WithEnvironment(env),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewFromEnv(opts ...ConfigOption) (*Client, error) {
	ec, err := LoadEnvConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	for _, opt := range ec.Options() {
		opt(cfg)
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingBaseURL, EnvBaseURL)
	}

	return NewWithConfig(cfg)
}
