package attribution

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jdziat/attribution-go/pkg/fingerprint"
	"github.com/jdziat/attribution-go/pkg/id"
	"github.com/jdziat/attribution-go/pkg/storage"
)

// Version is the SDK version reported in the User-Agent header.
const Version = "1.0.0"

// Default configuration values.
const (
	// DefaultTimeout is the default request timeout, used only when no
	// HTTPClient is configured.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent as the User-Agent header.
	DefaultUserAgent = "attribution-go/" + Version
)

// Config holds the configuration for the attribution client.
// It is copied at construction and never modified afterwards.
type Config struct {
	// BaseURL is the base URL of the collection API (required).
	// Events are posted to BaseURL + "/api/track".
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Debug enables diagnostic logging. It never changes behavior.
	Debug bool

	// HTTPClient is the HTTP client to use for requests.
	// If not set, a client with Timeout is used.
	HTTPClient *http.Client

	// Timeout is the request timeout for the default HTTP client.
	// Defaults to 30 seconds if not set.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent to the API.
	// Defaults to "attribution-go/<Version>".
	UserAgent string

	// Environment supplies the device traits for the fingerprint.
	// Defaults to a HostEnvironment with an empty screen and user agent.
	Environment fingerprint.Environment

	// Stores persist the click identifier, tried in order. Put durable
	// stores first. Defaults to a single in-memory store.
	Stores []storage.Store

	// Logger receives diagnostic output.
	// If nil, logging is disabled unless Debug is true.
	Logger Logger

	// Metrics is used for SDK telemetry.
	// If nil, no metrics are collected.
	Metrics Metrics

	// ErrorHandler is called with every swallowed transport error.
	ErrorHandler func(error)

	// IDGenerationMode controls click id generation when RandomSource fails.
	// In id.ModeStrict a failure aborts TrackClick without sending.
	IDGenerationMode id.Mode

	// RandomSource supplies entropy for click identifiers.
	// Defaults to crypto/rand.Reader.
	RandomSource io.Reader
}

// String returns a string representation of the config with a masked API key.
// This is safe to use in logs and debug output.
func (c *Config) String() string {
	return fmt.Sprintf("Config{BaseURL: %q, APIKey: %q, Debug: %t, Timeout: %v, Stores: %d}",
		c.BaseURL,
		MaskCredential(c.APIKey),
		c.Debug,
		c.Timeout,
		len(c.Stores),
	)
}

// applyDefaults sets default values for unset configuration options.
func (c *Config) applyDefaults() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")

	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}

	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	if c.Environment == nil {
		c.Environment = fingerprint.NewHostEnvironment(fingerprint.Screen{}, "")
	}

	if len(c.Stores) == 0 {
		c.Stores = []storage.Store{storage.NewMemoryStore()}
	}

	if c.Logger == nil {
		if c.Debug {
			c.Logger = newDebugLogger()
		} else {
			c.Logger = NopLogger{}
		}
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
}

// validate checks that the configuration is valid.
func (c *Config) validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("attribution: timeout cannot be negative")
	}

	return nil
}
