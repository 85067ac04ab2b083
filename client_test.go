package attribution

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/jdziat/attribution-go/pkg/fingerprint"
	"github.com/jdziat/attribution-go/pkg/id"
	"github.com/jdziat/attribution-go/pkg/storage"
)

const testUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

var clickIDPattern = regexp.MustCompile(`^click_[0-9]+_[0-9a-z]+$`)

func testEnvironment() fingerprint.StaticEnvironment {
	return fingerprint.StaticEnvironment{
		ScreenInfo: fingerprint.Screen{
			Width:          1440,
			Height:         900,
			PixelRatio:     2,
			ColorDepth:     30,
			Orientation:    "landscape-primary",
			ViewportWidth:  1440,
			ViewportHeight: 789,
		},
		UserAgentStr: testUserAgent,
		LanguageTag:  "en-US",
		LocaleID:     "en-US",
		TimeZoneID:   "America/New_York",
	}
}

const testFingerprint = "device:desktop;lang:en;platform:web;region:US;scale:2;screen:2880x1800;tz:America_New_York"

// recordedRequest is one request captured by trackServer.
type recordedRequest struct {
	Method  string
	Path    string
	Header  http.Header
	Payload map[string]any
}

// trackServer is an httptest server that records posted payloads.
type trackServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	status   int
}

func newTrackServer(t *testing.T) *trackServer {
	t.Helper()
	ts := &trackServer{status: http.StatusOK}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(body, &payload)

		ts.mu.Lock()
		ts.requests = append(ts.requests, recordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Header:  r.Header.Clone(),
			Payload: payload,
		})
		status := ts.status
		ts.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 400 {
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *trackServer) setStatus(status int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.status = status
}

func (ts *trackServer) all() []recordedRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]recordedRequest(nil), ts.requests...)
}

func (ts *trackServer) last(t *testing.T) recordedRequest {
	t.Helper()
	reqs := ts.all()
	if len(reqs) == 0 {
		t.Fatal("no requests recorded")
	}
	return reqs[len(reqs)-1]
}

// failingStore rejects every operation, like blocked browser storage.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("storage disabled")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("storage disabled")
}

func newTestClient(t *testing.T, baseURL string, opts ...ConfigOption) *Client {
	t.Helper()
	base := []ConfigOption{WithEnvironment(testEnvironment())}
	client, err := New(baseURL, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func deviceInfo(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	info, ok := payload["device_info"].(map[string]any)
	if !ok {
		t.Fatalf("device_info missing or wrong type: %#v", payload["device_info"])
	}
	return info
}

func properties(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	props, ok := payload["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties missing or wrong type: %#v", payload["properties"])
	}
	return props
}

func TestNewClient(t *testing.T) {
	client, err := New("https://go.example.com/",
		WithAPIKey("live_key_123456"),
		WithEnvironment(testEnvironment()),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if client.BaseURL() != "https://go.example.com" {
		t.Errorf("BaseURL = %v, want https://go.example.com", client.BaseURL())
	}
	if client.config.APIKey != "live_key_123456" {
		t.Errorf("APIKey = %v, want live_key_123456", client.config.APIKey)
	}
	if client.http.endpoint != "https://go.example.com/api/track" {
		t.Errorf("endpoint = %v", client.http.endpoint)
	}
	if client.GetFingerprint() != testFingerprint {
		t.Errorf("GetFingerprint() = %v, want %v", client.GetFingerprint(), testFingerprint)
	}
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr error
	}{
		{"missing base URL", "", ErrMissingBaseURL},
		{"whitespace base URL", "   ", ErrMissingBaseURL},
		{"no scheme", "go.example.com", ErrInvalidBaseURL},
		{"ftp scheme", "ftp://go.example.com", ErrInvalidBaseURL},
		{"no host", "https://", ErrInvalidBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.baseURL)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewWithConfigNil(t *testing.T) {
	if _, err := NewWithConfig(nil); err != ErrNilConfig {
		t.Errorf("NewWithConfig(nil) error = %v, want %v", err, ErrNilConfig)
	}
}

func TestNewWithConfigDoesNotModifyInput(t *testing.T) {
	cfg := &Config{BaseURL: "https://go.example.com/"}
	if _, err := NewWithConfig(cfg); err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}
	if cfg.BaseURL != "https://go.example.com/" {
		t.Errorf("input BaseURL modified to %q", cfg.BaseURL)
	}
	if cfg.Logger != nil || cfg.HTTPClient != nil || len(cfg.Stores) != 0 {
		t.Error("input config received defaults")
	}
}

func TestGetFingerprintIsStable(t *testing.T) {
	env := &countingEnvironment{StaticEnvironment: testEnvironment()}
	client, err := New("https://go.example.com", WithEnvironment(env))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first := client.GetFingerprint()
	for i := 0; i < 5; i++ {
		if got := client.GetFingerprint(); got != first {
			t.Fatalf("GetFingerprint() = %v, want %v", got, first)
		}
	}
	if env.calls != 1 {
		t.Errorf("environment read %d times, want 1", env.calls)
	}
}

// countingEnvironment counts how often the screen is read.
type countingEnvironment struct {
	fingerprint.StaticEnvironment
	calls int
}

func (e *countingEnvironment) Screen() fingerprint.Screen {
	e.calls++
	return e.StaticEnvironment.Screen()
}

func TestTrackClick(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL, WithAPIKey("live_key_123456"))
	client.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 45, 123e6, time.UTC) }

	res := client.TrackClick(context.Background(), "summer-sale", nil)

	if !res.Success {
		t.Fatal("TrackClick Success = false, want true")
	}
	if !clickIDPattern.MatchString(res.ClickID) {
		t.Errorf("ClickID = %q, want click_<digits>_<alnum>", res.ClickID)
	}

	req := server.last(t)
	if req.Method != http.MethodPost {
		t.Errorf("Method = %v, want POST", req.Method)
	}
	if req.Path != "/api/track" {
		t.Errorf("Path = %v, want /api/track", req.Path)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %v", got)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer live_key_123456" {
		t.Errorf("Authorization = %v", got)
	}
	if got := req.Header.Get("User-Agent"); got != DefaultUserAgent {
		t.Errorf("User-Agent = %v, want %v", got, DefaultUserAgent)
	}

	p := req.Payload
	want := map[string]any{
		"event_type":    "click",
		"event_name":    "Link Click",
		"tracking_type": "link",
		"link_id":       "summer-sale",
		"click_id":      res.ClickID,
		"timestamp":     "2024-03-01T12:30:45.123Z",
	}
	for k, v := range want {
		if p[k] != v {
			t.Errorf("payload[%q] = %v, want %v", k, p[k], v)
		}
	}

	info := deviceInfo(t, p)
	if info["device_fingerprint"] != testFingerprint {
		t.Errorf("device_fingerprint = %v", info["device_fingerprint"])
	}
	if info["web_compatible_fingerprint"] != testFingerprint {
		t.Errorf("web_compatible_fingerprint = %v", info["web_compatible_fingerprint"])
	}
	if info["screen_fingerprint"] != "1440x900|2|30|landscape-primary|1440x789" {
		t.Errorf("screen_fingerprint = %v", info["screen_fingerprint"])
	}
	if info["screen_width"] != float64(2880) || info["screen_height"] != float64(1800) {
		t.Errorf("screen = %vx%v, want 2880x1800", info["screen_width"], info["screen_height"])
	}
	if info["platform"] != "web" || info["device_type"] != "desktop" {
		t.Errorf("platform/device_type = %v/%v", info["platform"], info["device_type"])
	}
	if info["timezone"] != "America_New_York" || info["language"] != "en" {
		t.Errorf("timezone/language = %v/%v", info["timezone"], info["language"])
	}
	if info["user_agent"] != testUserAgent {
		t.Errorf("user_agent = %v", info["user_agent"])
	}
}

func TestTrackClickGeneratesDistinctIDs(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL)

	a := client.TrackClick(context.Background(), "link", nil)
	b := client.TrackClick(context.Background(), "link", nil)

	if a.ClickID == "" || b.ClickID == "" {
		t.Fatal("expected non-empty click ids")
	}
	if a.ClickID == b.ClickID {
		t.Errorf("two clicks produced the same id %q", a.ClickID)
	}
}

func TestTrackClickUsesCallerClickID(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL)

	res := client.TrackClick(context.Background(), "link", &TrackingRequest{ClickID: "my-click"})
	if res.ClickID != "my-click" {
		t.Errorf("ClickID = %v, want my-click", res.ClickID)
	}
	if got := server.last(t).Payload["click_id"]; got != "my-click" {
		t.Errorf("payload click_id = %v, want my-click", got)
	}
	if stored, _ := client.StoredClickID(context.Background()); stored != "my-click" {
		t.Errorf("stored click id = %v, want my-click", stored)
	}
}

func TestTrackClickEmptyLinkIDIsSent(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL)

	if res := client.TrackClick(context.Background(), "", nil); !res.Success {
		t.Fatal("TrackClick failed")
	}
	p := server.last(t).Payload
	v, ok := p["link_id"]
	if !ok || v != "" {
		t.Errorf("link_id = %#v (present %t), want empty string", v, ok)
	}
}

func TestTrackClickPersistsClickID(t *testing.T) {
	server := newTrackServer(t)
	store := storage.NewMemoryStore()
	client := newTestClient(t, server.URL, WithStores(store))
	captured := time.UnixMilli(1700000000000)
	client.now = func() time.Time { return captured }

	res := client.TrackClick(context.Background(), "link", nil)

	ctx := context.Background()
	if v, _ := store.Get(ctx, StorageKeyClickID); v != res.ClickID {
		t.Errorf("stored click id = %v, want %v", v, res.ClickID)
	}
	if v, _ := store.Get(ctx, StorageKeyClickTimestamp); v != "1700000000000" {
		t.Errorf("stored timestamp = %v, want 1700000000000", v)
	}
	if ts, ok := client.StoredClickTime(ctx); !ok || !ts.Equal(captured) {
		t.Errorf("StoredClickTime() = %v, %v", ts, ok)
	}
}

func TestTrackClickFailureDoesNotPersist(t *testing.T) {
	server := newTrackServer(t)
	server.setStatus(http.StatusInternalServerError)
	store := storage.NewMemoryStore()
	client := newTestClient(t, server.URL, WithStores(store))

	res := client.TrackClick(context.Background(), "link", nil)

	if res.Success {
		t.Error("Success = true, want false")
	}
	if res.ClickID == "" {
		t.Error("ClickID should be returned on failure")
	}
	if store.Len() != 0 {
		t.Errorf("store has %d keys, want 0", store.Len())
	}
}

func TestTrackClickStorageFallback(t *testing.T) {
	server := newTrackServer(t)
	session := storage.NewMemoryStore()
	client := newTestClient(t, server.URL, WithStores(failingStore{}, session))

	res := client.TrackClick(context.Background(), "link", nil)
	if !res.Success {
		t.Fatal("TrackClick failed")
	}
	if v, _ := session.Get(context.Background(), StorageKeyClickID); v != res.ClickID {
		t.Errorf("session click id = %v, want %v", v, res.ClickID)
	}
}

func TestTrackClickAllStorageFails(t *testing.T) {
	server := newTrackServer(t)
	metrics := newRecordingMetrics()
	client := newTestClient(t, server.URL,
		WithStores(failingStore{}, failingStore{}),
		WithMetrics(metrics),
	)

	res := client.TrackClick(context.Background(), "link", nil)
	if !res.Success {
		t.Error("Success = false, want true when only storage fails")
	}
	if _, ok := client.StoredClickID(context.Background()); ok {
		t.Error("StoredClickID() found a value with failing stores")
	}
	if got := metrics.counter(MetricStorageFailure); got != 1 {
		t.Errorf("%s = %d, want 1", MetricStorageFailure, got)
	}

	// The next conversion has no click id to attach.
	client.TrackConversion(context.Background(), "Purchase", nil)
	if _, ok := server.last(t).Payload["click_id"]; ok {
		t.Error("click_id should be omitted")
	}
}

func TestStoredClickTimeMatchesClickIDBackend(t *testing.T) {
	ctx := context.Background()
	durable := storage.NewMemoryStore()
	session := storage.NewMemoryStore()
	// A stale timestamp left behind in the durable store without its id.
	durable.Set(ctx, StorageKeyClickTimestamp, "1600000000000")
	session.SetAll(ctx,
		storage.Entry{Key: StorageKeyClickID, Value: "click_1700000000000_abc"},
		storage.Entry{Key: StorageKeyClickTimestamp, Value: "1700000000000"},
	)
	client := newTestClient(t, "https://go.example.com", WithStores(durable, session))

	clickID, ok := client.StoredClickID(ctx)
	if !ok || clickID != "click_1700000000000_abc" {
		t.Fatalf("StoredClickID() = %v, %v", clickID, ok)
	}
	ts, ok := client.StoredClickTime(ctx)
	if !ok || ts.UnixMilli() != 1700000000000 {
		t.Errorf("StoredClickTime() = %v, %v, want time of the session click", ts, ok)
	}
}

// zeroReader returns an endless stream of zero bytes.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// brokenReader fails every read, like an exhausted entropy source.
type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestTrackClickRandomSource(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL, WithRandomSource(zeroReader{}))

	res := client.TrackClick(context.Background(), "link", nil)
	if !res.Success {
		t.Fatal("TrackClick failed")
	}
	if !regexp.MustCompile(`^click_[0-9]+_000000000$`).MatchString(res.ClickID) {
		t.Errorf("ClickID = %v, want suffix drawn from the configured source", res.ClickID)
	}
}

func TestTrackClickStrictModeRandomFailure(t *testing.T) {
	id.ResetCryptoFailureCount()
	defer id.ResetCryptoFailureCount()

	server := newTrackServer(t)
	store := storage.NewMemoryStore()
	var handled []error
	client := newTestClient(t, server.URL,
		WithStores(store),
		WithIDGenerationMode(id.ModeStrict),
		WithRandomSource(brokenReader{}),
		WithErrorHandler(func(err error) { handled = append(handled, err) }),
	)

	res := client.TrackClick(context.Background(), "link", nil)

	if res.Success || res.ClickID != "" {
		t.Errorf("TrackClick() = %+v, want zero result", res)
	}
	if n := len(server.all()); n != 0 {
		t.Errorf("sent %d requests, want 0", n)
	}
	if len(handled) != 1 || !errors.Is(handled[0], id.ErrRandomSource) {
		t.Errorf("ErrorHandler got %v, want ErrRandomSource", handled)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d keys, want 0", store.Len())
	}
	if got := client.Stats().Events.Failed; got != 1 {
		t.Errorf("Stats().Events.Failed = %d, want 1", got)
	}

	// A caller-supplied id needs no entropy.
	res = client.TrackClick(context.Background(), "link", &TrackingRequest{ClickID: "click_1_given"})
	if !res.Success {
		t.Error("TrackClick with caller click id failed in strict mode")
	}
}

func TestTrackClickFallbackModeRandomFailure(t *testing.T) {
	id.ResetCryptoFailureCount()
	defer id.ResetCryptoFailureCount()

	server := newTrackServer(t)
	client := newTestClient(t, server.URL, WithRandomSource(brokenReader{}))

	res := client.TrackClick(context.Background(), "link", nil)
	if !res.Success || !clickIDPattern.MatchString(res.ClickID) {
		t.Errorf("TrackClick() = %+v, want a fallback click id", res)
	}
	if got := client.Stats().IDGeneration.CryptoFailures; got != 1 {
		t.Errorf("CryptoFailures = %d, want 1", got)
	}
}

func TestTrackConversionUsesStoredClickID(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	click := client.TrackClick(ctx, "link", nil)
	res := client.TrackConversion(ctx, "Purchase", &TrackingRequest{
		CustomerID:    "cus_1",
		CustomerEmail: "ada@example.com",
	})

	if !res.Success {
		t.Fatal("TrackConversion failed")
	}
	p := server.last(t).Payload
	if p["click_id"] != click.ClickID {
		t.Errorf("click_id = %v, want %v", p["click_id"], click.ClickID)
	}
	if p["event_type"] != "conversion" || p["event_name"] != "Purchase" || p["tracking_type"] != "general" {
		t.Errorf("event fields = %v/%v/%v", p["event_type"], p["event_name"], p["tracking_type"])
	}
	if p["customer_id"] != "cus_1" || p["customer_email"] != "ada@example.com" {
		t.Errorf("customer fields = %v/%v", p["customer_id"], p["customer_email"])
	}
	for _, k := range []string{"customer_name", "customer_avatar", "link_id"} {
		if _, ok := p[k]; ok {
			t.Errorf("payload should not contain %q", k)
		}
	}
	info := deviceInfo(t, p)
	for _, k := range []string{"device_fingerprint", "screen_fingerprint", "web_compatible_fingerprint"} {
		if _, ok := info[k]; ok {
			t.Errorf("device_info should not contain %q on conversions", k)
		}
	}
}

func TestTrackConversionExplicitClickIDWins(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	click := client.TrackClick(ctx, "link", nil)
	client.TrackConversion(ctx, "Signup", &TrackingRequest{ClickID: "explicit"})

	if got := server.last(t).Payload["click_id"]; got != "explicit" {
		t.Errorf("click_id = %v, want explicit", got)
	}
	// Conversions never write the stored id.
	if stored, _ := client.StoredClickID(ctx); stored != click.ClickID {
		t.Errorf("stored click id = %v, want %v", stored, click.ClickID)
	}
}

func TestTrackConversionWithoutClickID(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL)

	client.TrackConversion(context.Background(), "Signup", nil)

	if _, ok := server.last(t).Payload["click_id"]; ok {
		t.Error("click_id should be omitted when none is known")
	}
}

func TestTrackEvent(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	click := client.TrackClick(ctx, "link", nil)
	res := client.TrackEvent(ctx, "engagement", "Video Played", &TrackingRequest{
		CustomerName:   "Ada",
		CustomerAvatar: "https://example.com/ada.png",
	})

	if !res.Success {
		t.Fatal("TrackEvent failed")
	}
	p := server.last(t).Payload
	if p["event_type"] != "engagement" || p["event_name"] != "Video Played" || p["tracking_type"] != "custom" {
		t.Errorf("event fields = %v/%v/%v", p["event_type"], p["event_name"], p["tracking_type"])
	}
	if p["click_id"] != click.ClickID {
		t.Errorf("click_id = %v, want %v", p["click_id"], click.ClickID)
	}
	if p["customer_name"] != "Ada" || p["customer_avatar"] != "https://example.com/ada.png" {
		t.Errorf("customer fields = %v/%v", p["customer_name"], p["customer_avatar"])
	}
}

func TestCustomPropertiesIncludeFingerprint(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL)

	client.TrackConversion(context.Background(), "Purchase", &TrackingRequest{
		CustomProperties: map[string]any{
			"amount":   49.99,
			"currency": "USD",
			"items":    []any{"a", "b"},
		},
	})

	props := properties(t, server.last(t).Payload)
	if props["amount"] != 49.99 || props["currency"] != "USD" {
		t.Errorf("properties = %v", props)
	}
	if items, ok := props["items"].([]any); !ok || len(items) != 2 {
		t.Errorf("items = %#v", props["items"])
	}
	if props["device_fingerprint"] != client.GetFingerprint() {
		t.Errorf("device_fingerprint = %v, want %v", props["device_fingerprint"], client.GetFingerprint())
	}
}

func TestTransportFailures(t *testing.T) {
	statuses := []int{
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server := newTrackServer(t)
			server.setStatus(status)

			var handled []error
			client := newTestClient(t, server.URL, WithErrorHandler(func(err error) {
				handled = append(handled, err)
			}))
			ctx := context.Background()

			if res := client.TrackClick(ctx, "link", nil); res.Success {
				t.Error("TrackClick Success = true")
			}
			if res := client.TrackConversion(ctx, "Purchase", nil); res.Success {
				t.Error("TrackConversion Success = true")
			}
			if res := client.TrackEvent(ctx, "t", "n", nil); res.Success {
				t.Error("TrackEvent Success = true")
			}

			if len(server.all()) != 3 {
				t.Errorf("requests = %d, want 3 (no retries)", len(server.all()))
			}
			if len(handled) != 3 {
				t.Fatalf("ErrorHandler called %d times, want 3", len(handled))
			}
			apiErr, ok := AsAPIError(handled[0])
			if !ok {
				t.Fatalf("error %v is not an *APIError", handled[0])
			}
			if apiErr.StatusCode != status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, status)
			}
			if apiErr.Body == "" {
				t.Error("response body not captured")
			}
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	var handled error
	client := newTestClient(t, url, WithErrorHandler(func(err error) { handled = err }))

	res := client.TrackClick(context.Background(), "link", nil)
	if res.Success {
		t.Error("Success = true with unreachable server")
	}
	if res.ClickID == "" {
		t.Error("ClickID should be set")
	}
	if handled == nil || IsAPIError(handled) {
		t.Errorf("handled error = %v, want network error", handled)
	}
}

func TestCanceledContext(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if res := client.TrackConversion(ctx, "Purchase", nil); res.Success {
		t.Error("Success = true with canceled context")
	}
}

func TestNoAuthorizationWithoutAPIKey(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL)

	client.TrackEvent(context.Background(), "t", "n", nil)

	if got := server.last(t).Header.Get("Authorization"); got != "" {
		t.Errorf("Authorization = %q, want empty", got)
	}
}

func TestEmptyResponseBodyIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if res := client.TrackEvent(context.Background(), "t", "n", nil); !res.Success {
		t.Error("Success = false for 204 response")
	}
}

func TestConcurrentClicksLastWriteWins(t *testing.T) {
	server := newTrackServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	const n = 20
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- client.TrackClick(ctx, "link", nil).ClickID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		seen[id] = true
	}
	stored, ok := client.StoredClickID(ctx)
	if !ok || !seen[stored] {
		t.Errorf("stored click id %q is not one of the tracked ids", stored)
	}
	if len(server.all()) != n {
		t.Errorf("requests = %d, want %d", len(server.all()), n)
	}
}

func TestMetricsRecorded(t *testing.T) {
	server := newTrackServer(t)
	metrics := newRecordingMetrics()
	client := newTestClient(t, server.URL, WithMetrics(metrics))
	ctx := context.Background()

	client.TrackClick(ctx, "link", nil)
	server.setStatus(http.StatusBadGateway)
	client.TrackEvent(ctx, "t", "n", nil)

	if got := metrics.counter(MetricTrackSuccess); got != 1 {
		t.Errorf("%s = %d, want 1", MetricTrackSuccess, got)
	}
	if got := metrics.counter(MetricTrackFailure); got != 1 {
		t.Errorf("%s = %d, want 1", MetricTrackFailure, got)
	}
	if got := metrics.durations(MetricTrackDuration); got != 2 {
		t.Errorf("%s recorded %d times, want 2", MetricTrackDuration, got)
	}
}

// recordingMetrics is an in-memory Metrics implementation.
type recordingMetrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string][]time.Duration
	gauges   map[string]float64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
		gauges:   make(map[string]float64),
	}
}

func (m *recordingMetrics) IncrementCounter(name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
}

func (m *recordingMetrics) RecordDuration(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[name] = append(m.timings[name], d)
}

func (m *recordingMetrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

func (m *recordingMetrics) counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

func (m *recordingMetrics) durations(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timings[name])
}
