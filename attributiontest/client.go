package attributiontest

import (
	"github.com/jdziat/attribution-go"
	"github.com/jdziat/attribution-go/pkg/fingerprint"
)

// TestingT is an interface that matches *testing.T and *testing.B.
type TestingT interface {
	Fatalf(format string, args ...any)
	Cleanup(func())
	Helper()
}

// TestAPIKey is the default test API key.
const TestAPIKey = "test_key_attribution"

// TestFingerprint is the canonical fingerprint of DefaultEnvironment.
const TestFingerprint = "device:desktop;lang:en;platform:web;region:US;scale:2;screen:2880x1800;tz:America_New_York"

// DefaultEnvironment returns the fixed environment used by NewTestClient:
// a 1440x900 desktop display at 2x in New York with en-US.
func DefaultEnvironment() fingerprint.StaticEnvironment {
	return fingerprint.StaticEnvironment{
		ScreenInfo: fingerprint.Screen{
			Width:          1440,
			Height:         900,
			PixelRatio:     2,
			ColorDepth:     24,
			Orientation:    "landscape-primary",
			ViewportWidth:  1440,
			ViewportHeight: 789,
		},
		UserAgentStr: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		LanguageTag:  "en-US",
		LocaleID:     "en-US",
		TimeZoneID:   "America/New_York",
	}
}

// NewTestClient creates a client configured for testing against a mock server.
// Base options (mock server URL, test API key, DefaultEnvironment) are applied
// first, then the provided options are applied on top.
// The server is automatically closed when the test ends.
func NewTestClient(t TestingT, opts ...attribution.ConfigOption) (*attribution.Client, *MockServer) {
	t.Helper()

	server := NewMockServer()
	t.Cleanup(server.Close)

	baseOpts := []attribution.ConfigOption{
		attribution.WithAPIKey(TestAPIKey),
		attribution.WithEnvironment(DefaultEnvironment()),
	}

	client, err := attribution.New(server.URL, append(baseOpts, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}

	return client, server
}
