package attribution

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jdziat/attribution-go/pkg/fingerprint"
	"github.com/jdziat/attribution-go/pkg/id"
	"github.com/jdziat/attribution-go/pkg/storage"
)

// Client records clicks, conversions and custom events against the
// collection API.
//
// The fingerprint is computed once in New and reused for every event.
// A Client is safe for concurrent use; each tracking call issues one
// independent request with no ordering guarantee between calls.
type Client struct {
	config *Config
	http   *httpClient

	fingerprint fingerprint.Fingerprint
	canonical   string

	store       *storage.Chain
	idGenerator *id.Generator
	log         Logger

	createdAt       time.Time
	sent            atomic.Int64
	failed          atomic.Int64
	storageFailures atomic.Int64

	// now is time.Now unless overridden in tests.
	now func() time.Time
}

// New creates a new attribution client for the API at baseURL.
func New(baseURL string, opts ...ConfigOption) (*Client, error) {
	cfg := &Config{BaseURL: baseURL}

	for _, opt := range opts {
		opt(cfg)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a new attribution client from a Config struct.
//
// Example:
//
//	client, err := attribution.NewWithConfig(&attribution.Config{
//	    BaseURL: "https://go.example.com",
//	    APIKey:  os.Getenv("ATTRIBUTION_API_KEY"),
//	})
func NewWithConfig(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	// Make a copy to avoid modifying the original
	cfgCopy := *cfg
	cfgCopy.Stores = append([]storage.Store(nil), cfg.Stores...)

	cfgCopy.applyDefaults()

	if err := cfgCopy.validate(); err != nil {
		return nil, err
	}

	fp := fingerprint.Build(cfgCopy.Environment)

	c := &Client{
		config:      &cfgCopy,
		http:        newHTTPClient(&cfgCopy),
		fingerprint: fp,
		canonical:   fp.String(),
		store:       storage.NewChain(cfgCopy.Stores...),
		idGenerator: id.NewGenerator(&id.GeneratorConfig{
			Mode:   cfgCopy.IDGenerationMode,
			Random: cfgCopy.RandomSource,
			Logger: cfgCopy.Logger,
		}),
		log:       cfgCopy.Logger,
		createdAt: time.Now(),
		now:       time.Now,
	}

	if cfgCopy.Metrics != nil {
		cfgCopy.Metrics.SetGauge(MetricStorageBackends, float64(c.store.Len()))
	}

	if cfgCopy.Debug {
		c.log.Debug("attribution client initialized",
			"fingerprint", c.canonical,
			"base_url", cfgCopy.BaseURL,
			"api_key", MaskCredential(cfgCopy.APIKey),
		)
	}

	return c, nil
}

// GetFingerprint returns the canonical fingerprint computed at construction.
func (c *Client) GetFingerprint() string {
	return c.canonical
}

// Fingerprint returns the structured fingerprint computed at construction.
func (c *Client) Fingerprint() fingerprint.Fingerprint {
	return c.fingerprint
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// TrackClick records a link click. The click identifier is data.ClickID
// when set, otherwise a newly generated one. On success the identifier is
// persisted so later conversions pick it up; persistence failures are
// ignored. The returned ClickID is set even when Success is false, unless
// identifier generation failed in id.ModeStrict, in which case nothing is
// sent.
func (c *Client) TrackClick(ctx context.Context, linkID string, data *TrackingRequest) ClickResult {
	clickID := ""
	if data != nil {
		clickID = data.ClickID
	}
	if clickID == "" {
		generated, err := c.idGenerator.Generate()
		if err != nil {
			c.fail("click id generation failed", EventTypeClick, EventNameLinkClick, err)
			return ClickResult{}
		}
		clickID = generated
	}

	ok := c.send(ctx, event{
		eventType:    EventTypeClick,
		eventName:    EventNameLinkClick,
		trackingType: TrackingTypeLink,
		linkID:       &linkID,
		clickID:      clickID,
		data:         data,
		enrich:       true,
	})
	if ok {
		c.persistClickID(ctx, clickID)
	}

	return ClickResult{Success: ok, ClickID: clickID}
}

// TrackConversion records a conversion named eventName. The click
// identifier is data.ClickID, else the stored one, else omitted.
func (c *Client) TrackConversion(ctx context.Context, eventName string, data *TrackingRequest) TrackResult {
	return TrackResult{Success: c.send(ctx, event{
		eventType:    EventTypeConversion,
		eventName:    eventName,
		trackingType: TrackingTypeGeneral,
		clickID:      c.resolveClickID(ctx, data),
		data:         data,
	})}
}

// TrackEvent records an event with a caller-defined type and name. Click
// identifier resolution matches TrackConversion.
func (c *Client) TrackEvent(ctx context.Context, eventType, eventName string, data *TrackingRequest) TrackResult {
	return TrackResult{Success: c.send(ctx, event{
		eventType:    eventType,
		eventName:    eventName,
		trackingType: TrackingTypeCustom,
		clickID:      c.resolveClickID(ctx, data),
		data:         data,
	})}
}

// StoredClickID returns the persisted click identifier, if any.
func (c *Client) StoredClickID(ctx context.Context) (string, bool) {
	v, err := c.store.Get(ctx, StorageKeyClickID)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// StoredClickTime returns the capture time of the persisted click identifier.
// The time is read from the same backend that holds the identifier.
func (c *Client) StoredClickTime(ctx context.Context) (time.Time, bool) {
	values, err := c.store.GetAll(ctx, StorageKeyClickID, StorageKeyClickTimestamp)
	if err != nil {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(values[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func (c *Client) resolveClickID(ctx context.Context, data *TrackingRequest) string {
	if data != nil && data.ClickID != "" {
		return data.ClickID
	}
	stored, _ := c.StoredClickID(ctx)
	return stored
}

// send posts one event and reports whether the API accepted it.
// Errors are logged and handed to the ErrorHandler, never returned.
func (c *Client) send(ctx context.Context, ev event) bool {
	now := c.now()
	payload := buildPayload(c.fingerprint, ev, now)

	_, err := c.http.post(ctx, payload)
	c.recordDuration(MetricTrackDuration, c.now().Sub(now))

	if err != nil {
		c.fail("tracking request failed", ev.eventType, ev.eventName, err)
		return false
	}

	c.sent.Add(1)
	c.incrementCounter(MetricTrackSuccess)
	c.log.Debug("event tracked",
		"event_type", ev.eventType,
		"event_name", ev.eventName,
		"click_id", ev.clickID,
	)
	return true
}

// fail counts a tracking call that did not reach the API and reports err.
func (c *Client) fail(msg, eventType, eventName string, err error) {
	c.failed.Add(1)
	c.incrementCounter(MetricTrackFailure)
	c.log.Debug(msg,
		"event_type", eventType,
		"event_name", eventName,
		"error", err,
	)
	if c.config.ErrorHandler != nil {
		c.config.ErrorHandler(err)
	}
}

// persistClickID stores the click identifier and its capture time. Last
// write wins between concurrent callers.
func (c *Client) persistClickID(ctx context.Context, clickID string) {
	err := c.store.SetAll(ctx,
		storage.Entry{Key: StorageKeyClickID, Value: clickID},
		storage.Entry{Key: StorageKeyClickTimestamp, Value: strconv.FormatInt(c.now().UnixMilli(), 10)},
	)
	if err != nil {
		c.storageFailures.Add(1)
		c.incrementCounter(MetricStorageFailure)
		c.log.Debug("click id not persisted", "click_id", clickID, "error", err)
	}
}

func (c *Client) incrementCounter(name string) {
	if c.config.Metrics != nil {
		c.config.Metrics.IncrementCounter(name, 1)
	}
}

func (c *Client) recordDuration(name string, d time.Duration) {
	if c.config.Metrics != nil {
		c.config.Metrics.RecordDuration(name, d)
	}
}
