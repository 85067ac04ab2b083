// Package config provides configuration loading for attribution-track.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/jdziat/attribution-go/pkg/fingerprint"
)

// Config represents the complete CLI configuration.
type Config struct {
	BaseURL     string            `yaml:"base_url"`
	APIKey      string            `yaml:"api_key"`
	Debug       bool              `yaml:"debug"`
	Timeout     time.Duration     `yaml:"timeout"`
	Storage     StorageConfig     `yaml:"storage"`
	Environment EnvironmentConfig `yaml:"environment"`
}

// StorageConfig selects where the click identifier is kept between runs.
// Backends are tried in order: redis, file, memory.
type StorageConfig struct {
	// Path is the state file. Empty selects the user cache directory;
	// "-" disables the file store.
	Path  string      `yaml:"path"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis settings. Redis is used only when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// EnvironmentConfig overrides the device traits used for the fingerprint.
// Unset locale and time zone fields fall back to the host.
type EnvironmentConfig struct {
	ScreenWidth    int     `yaml:"screen_width"`
	ScreenHeight   int     `yaml:"screen_height"`
	PixelRatio     float64 `yaml:"pixel_ratio"`
	ColorDepth     int     `yaml:"color_depth"`
	Orientation    string  `yaml:"orientation"`
	ViewportWidth  int     `yaml:"viewport_width"`
	ViewportHeight int     `yaml:"viewport_height"`
	UserAgent      string  `yaml:"user_agent"`
	Language       string  `yaml:"language"`
	Locale         string  `yaml:"locale"`
	TimeZone       string  `yaml:"timezone"`
}

// FileNames are the config file names searched by Find.
var FileNames = []string{
	".attribution.yaml",
	".attribution.yml",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Storage: StorageConfig{
			Redis: RedisConfig{
				Prefix: "attribution:",
			},
		},
		Environment: EnvironmentConfig{
			ScreenWidth:    1920,
			ScreenHeight:   1080,
			PixelRatio:     1,
			ColorDepth:     24,
			Orientation:    "landscape-primary",
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			UserAgent:      "attribution-track",
		},
	}
}

// Load reads configuration from path, or from the nearest config file when
// path is empty, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = Find()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	expandEnvVars(cfg)

	return cfg, nil
}

// Find searches the current directory and its parents for a config file.
func Find() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// loadFromFile reads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// envOverrides holds the ATTRIBUTION_* variables. Unset variables leave
// the nil or empty value so file settings survive.
type envOverrides struct {
	BaseURL   string `env:"ATTRIBUTION_BASE_URL"`
	APIKey    string `env:"ATTRIBUTION_API_KEY"`
	Debug     *bool  `env:"ATTRIBUTION_DEBUG"`
	RedisAddr string `env:"ATTRIBUTION_REDIS_ADDR"`
	StateFile string `env:"ATTRIBUTION_STATE_FILE"`
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return err
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.APIKey != "" {
		cfg.APIKey = o.APIKey
	}
	if o.Debug != nil {
		cfg.Debug = *o.Debug
	}
	if o.RedisAddr != "" {
		cfg.Storage.Redis.Addr = o.RedisAddr
	}
	if o.StateFile != "" {
		cfg.Storage.Path = o.StateFile
	}
	return nil
}

// expandEnvVars expands ${VAR} references in secret values.
func expandEnvVars(cfg *Config) {
	cfg.APIKey = expandEnvVar(cfg.APIKey)
	cfg.Storage.Redis.Password = expandEnvVar(cfg.Storage.Redis.Password)
}

var envRefPattern = regexp.MustCompile(`\$\{?([A-Za-z_][A-Za-z0-9_]*)\}?`)

// expandEnvVar expands ${VAR} and $VAR references.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	return envRefPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "${")
		name = strings.TrimPrefix(name, "$")
		name = strings.TrimSuffix(name, "}")
		return os.Getenv(name)
	})
}

// IsDisabled returns true if tracking is globally disabled.
// Unparsable values count as not disabled.
func IsDisabled() bool {
	var o struct {
		Disabled bool `env:"ATTRIBUTION_DISABLED"`
	}
	if err := env.Parse(&o); err != nil {
		return false
	}
	return o.Disabled
}

// StatePath returns the file store path, or "" when the file store is disabled.
func (c *Config) StatePath() (string, error) {
	switch c.Storage.Path {
	case "-":
		return "", nil
	case "":
		dir, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("resolve cache directory: %w", err)
		}
		return filepath.Join(dir, "attribution", "state.json"), nil
	default:
		return c.Storage.Path, nil
	}
}

// Env returns the fingerprint environment described by the configuration.
// Language, locale and time zone fall back to the host when unset.
func (c *Config) Env() fingerprint.Environment {
	e := c.Environment
	screen := fingerprint.Screen{
		Width:          e.ScreenWidth,
		Height:         e.ScreenHeight,
		PixelRatio:     e.PixelRatio,
		ColorDepth:     e.ColorDepth,
		Orientation:    e.Orientation,
		ViewportWidth:  e.ViewportWidth,
		ViewportHeight: e.ViewportHeight,
	}
	host := fingerprint.NewHostEnvironment(screen, e.UserAgent)

	static := fingerprint.StaticEnvironment{
		ScreenInfo:   screen,
		UserAgentStr: e.UserAgent,
		LanguageTag:  e.Language,
		LocaleID:     e.Locale,
		TimeZoneID:   e.TimeZone,
	}
	if static.LanguageTag == "" {
		static.LanguageTag = host.Language()
	}
	if static.LocaleID == "" {
		static.LocaleID = static.LanguageTag
	}
	if static.TimeZoneID == "" {
		static.TimeZoneID = host.TimeZone()
	}
	return static
}
