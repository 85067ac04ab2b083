// Package fingerprint builds the device fingerprint used for cross-platform
// attribution.
//
// The raw traits (screen geometry, pixel ratio, locale, time zone, user
// agent) come from an [Environment]. Use [StaticEnvironment] for fixed
// values, [HostEnvironment] for the current process, or [RequestEnvironment]
// when tracking on behalf of a browser request:
//
//	fp := fingerprint.Build(fingerprint.StaticEnvironment{
//	    ScreenInfo:   fingerprint.Screen{Width: 390, Height: 844, PixelRatio: 3},
//	    UserAgentStr: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
//	    LanguageTag:  "en-US",
//	    TimeZoneID:   "America/New_York",
//	})
//	fp.String() // device:mobile;lang:en;platform:web;region:US;scale:3;screen:1170x2532;tz:America_New_York
//
// The output of [Fingerprint.String] is a wire contract shared with the
// mobile SDKs and the backend matcher. Do not change field names or order.
package fingerprint
