package attribution

import (
	"io"
	"net/http"
	"time"

	"github.com/jdziat/attribution-go/pkg/fingerprint"
	"github.com/jdziat/attribution-go/pkg/id"
	"github.com/jdziat/attribution-go/pkg/storage"
)

// ConfigOption is a function that modifies a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the base URL of the collection API.
func WithBaseURL(baseURL string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(apiKey string) ConfigOption {
	return func(c *Config) {
		c.APIKey = apiKey
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) ConfigOption {
	return func(c *Config) {
		c.Debug = debug
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ConfigOption {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent to the API.
func WithUserAgent(userAgent string) ConfigOption {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// WithEnvironment sets the fingerprint environment provider.
func WithEnvironment(env fingerprint.Environment) ConfigOption {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithStores sets the click identifier stores, tried in order.
//
// Example:
//
//	file, _ := storage.NewFileStore(path)
//	client, _ := attribution.New(baseURL,
//	    attribution.WithStores(file, storage.NewMemoryStore()),
//	)
func WithStores(stores ...storage.Store) ConfigOption {
	return func(c *Config) {
		c.Stores = stores
	}
}

// WithLogger sets a structured logger.
//
// Example with slog:
//
//	client, _ := attribution.New(baseURL,
//	    attribution.WithLogger(attribution.NewSlogAdapter(slog.Default())),
//	)
func WithLogger(logger Logger) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(metrics Metrics) ConfigOption {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithErrorHandler sets a callback for swallowed transport errors.
func WithErrorHandler(handler func(error)) ConfigOption {
	return func(c *Config) {
		c.ErrorHandler = handler
	}
}

// WithIDGenerationMode sets the click id generation mode.
func WithIDGenerationMode(mode id.Mode) ConfigOption {
	return func(c *Config) {
		c.IDGenerationMode = mode
	}
}

// WithRandomSource sets the entropy source for click identifiers.
func WithRandomSource(r io.Reader) ConfigOption {
	return func(c *Config) {
		c.RandomSource = r
	}
}
