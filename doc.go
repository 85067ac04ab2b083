// Package attribution provides a Go SDK for link attribution.
//
// The client builds a device fingerprint, tags outbound tracking events with
// it, and posts them to a collection API. Clicks are keyed by a click
// identifier that is persisted locally, so later conversions from the same
// device can be correlated with the click. The backend matches the same
// fingerprint scheme against events reported by the mobile SDKs.
//
// # Quick Start
//
// Create a client and track a click:
//
//	client, err := attribution.New("https://go.example.com",
//	    attribution.WithAPIKey(os.Getenv("ATTRIBUTION_API_KEY")),
//	    attribution.WithEnvironment(fingerprint.StaticEnvironment{
//	        ScreenInfo:   fingerprint.Screen{Width: 1440, Height: 900, PixelRatio: 2},
//	        UserAgentStr: userAgent,
//	        LanguageTag:  "en-US",
//	        TimeZoneID:   "America/New_York",
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res := client.TrackClick(ctx, "summer-sale", nil)
//
//	// Later, the stored click id is attached automatically.
//	client.TrackConversion(ctx, "Purchase", &attribution.TrackingRequest{
//	    CustomerID:       "cus_123",
//	    CustomProperties: map[string]any{"amount": 49.99},
//	})
//
// # Failure Semantics
//
// Tracking methods never return errors. A network failure or a non-2xx
// response makes the call report Success false; the error goes to the
// configured Logger and ErrorHandler. Requests are never retried, batched
// or queued.
//
// Click identifiers are persisted through an ordered list of
// [storage.Store] backends (durable first, session-scoped next). If every
// backend fails the identifier is simply not persisted; the click itself
// is still reported as successful.
//
// # Configuration
//
// Options can also come from the environment:
//
//	ATTRIBUTION_BASE_URL  collection API base URL (required)
//	ATTRIBUTION_API_KEY   bearer token (optional)
//	ATTRIBUTION_DEBUG     "true" or "1" enables debug logging
//
// Use [NewFromEnv] to read them.
//
// # Thread Safety
//
// The Client is safe for concurrent use. Concurrent clicks race on the
// stored click identifier and the last write wins.
package attribution
