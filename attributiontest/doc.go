// Package attributiontest provides testing utilities for applications using
// the attribution-go SDK.
//
// # Mock Server
//
// Use MockServer to record and inspect tracking requests:
//
//	server := attributiontest.NewMockServer()
//	defer server.Close()
//
//	client, _ := attribution.New(server.URL)
//	client.TrackClick(ctx, "summer-sale", nil)
//
//	payload := server.LastRequest().Payload
//	// assert on payload.ClickID, payload.DeviceInfo, ...
//
// # Test Client
//
// Use NewTestClient for a client wired to a mock server with a fixed
// environment, so fingerprints are the same on every machine:
//
//	func TestCheckout(t *testing.T) {
//	    client, server := attributiontest.NewTestClient(t)
//
//	    client.TrackConversion(ctx, "Purchase", nil)
//
//	    if server.RequestCount() != 1 {
//	        t.Error("expected 1 request")
//	    }
//	}
//
// # Storage
//
// FailingStore simulates storage that rejects every operation, such as a
// browser with storage disabled.
package attributiontest
