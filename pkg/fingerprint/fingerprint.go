package fingerprint

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Platform is the platform label of every fingerprint built by this package.
const Platform = "web"

// DefaultRegion is used when neither the language tag nor the locale carry a region.
const DefaultRegion = "US"

// DeviceClass is the coarse form factor of a device.
type DeviceClass string

// Device classes.
const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
)

// Logical widths in [TabletMinWidth, TabletMaxWidth) classify as tablet when
// the user agent has no mobile or tablet marker.
const (
	TabletMinWidth = 768
	TabletMaxWidth = 1024
)

var (
	mobilePattern = regexp.MustCompile(`(?i)mobile|android|iphone`)
	tabletPattern = regexp.MustCompile(`(?i)tablet|ipad`)
)

// Fingerprint is an identity snapshot of a device used to match web
// activity with mobile-app activity reported under the same scheme.
type Fingerprint struct {
	// ScreenWidth and ScreenHeight are physical pixels.
	ScreenWidth  int
	ScreenHeight int
	PixelRatio   float64
	Platform     string
	DeviceClass  DeviceClass
	// TimeZone is the IANA identifier with "/" replaced by "_".
	TimeZone  string
	Language  string
	Region    string
	UserAgent string

	// Display is the raw screen the fingerprint was built from.
	Display Screen
}

// Build computes the fingerprint of env.
func Build(env Environment) Fingerprint {
	screen := env.Screen()
	ratio := screen.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	screen.PixelRatio = ratio

	ua := env.UserAgent()
	lang, region := ResolveLocale(env.Language(), env.Locale())

	return Fingerprint{
		ScreenWidth:  physical(screen.Width, ratio),
		ScreenHeight: physical(screen.Height, ratio),
		PixelRatio:   ratio,
		Platform:     Platform,
		DeviceClass:  ClassifyDevice(ua, screen.Width),
		TimeZone:     NormalizeTimeZone(env.TimeZone()),
		Language:     lang,
		Region:       region,
		UserAgent:    ua,
		Display:      screen,
	}
}

func physical(logical int, ratio float64) int {
	return int(math.Round(float64(logical) * ratio))
}

// ClassifyDevice returns the device class for a user agent and logical
// screen width. User agent markers take priority over the width rule.
func ClassifyDevice(userAgent string, screenWidth int) DeviceClass {
	switch {
	case mobilePattern.MatchString(userAgent):
		return DeviceMobile
	case tabletPattern.MatchString(userAgent):
		return DeviceTablet
	case screenWidth >= TabletMinWidth && screenWidth < TabletMaxWidth:
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

// NormalizeTimeZone replaces every "/" in an IANA zone id with "_".
func NormalizeTimeZone(tz string) string {
	return strings.ReplaceAll(tz, "/", "_")
}

// ResolveLocale derives the language code and region from a BCP-47 language
// tag and a resolved locale identifier. The region is the explicit region
// of tag, else the explicit region of locale, else DefaultRegion.
func ResolveLocale(tag, locale string) (lang, region string) {
	lang = baseLanguage(tag)
	if lang == "" {
		lang = baseLanguage(locale)
	}
	if r := explicitRegion(tag); r != "" {
		return lang, r
	}
	if r := explicitRegion(locale); r != "" {
		return lang, r
	}
	return lang, DefaultRegion
}

// baseLanguage returns the first subtag of s, lower-cased and otherwise
// as received. Deprecated or private codes are not rewritten.
func baseLanguage(s string) string {
	first, _, _ := strings.Cut(normalizeTag(s), "-")
	return strings.ToLower(first)
}

// explicitRegion returns the region subtag present in s. Inferred regions
// and canonical replacements are not applied.
func explicitRegion(s string) string {
	s = normalizeTag(s)
	if s == "" {
		return ""
	}
	if t, err := language.Raw.Parse(s); err == nil {
		if r, conf := t.Region(); conf == language.Exact {
			return r.String()
		}
		return ""
	}
	parts := strings.Split(s, "-")
	if len(parts) > 1 && len(parts[1]) == 2 {
		return strings.ToUpper(parts[1])
	}
	return ""
}

func normalizeTag(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
}

// String returns the canonical serialization consumed by the backend
// matcher. Field names and order are a wire contract:
// device;lang;platform;region;scale;screen;tz.
func (f Fingerprint) String() string {
	var b strings.Builder
	b.Grow(96)
	b.WriteString("device:")
	b.WriteString(string(f.DeviceClass))
	b.WriteString(";lang:")
	b.WriteString(f.Language)
	b.WriteString(";platform:")
	b.WriteString(Platform)
	b.WriteString(";region:")
	b.WriteString(f.Region)
	b.WriteString(";scale:")
	b.WriteString(formatScale(f.PixelRatio))
	b.WriteString(";screen:")
	b.WriteString(strconv.Itoa(f.ScreenWidth))
	b.WriteByte('x')
	b.WriteString(strconv.Itoa(f.ScreenHeight))
	b.WriteString(";tz:")
	b.WriteString(f.TimeZone)
	return b.String()
}

// ScreenFingerprint returns the diagnostic screen fingerprint:
// resolution|scale|colorDepth|orientation|viewport. It has no matching role.
func (f Fingerprint) ScreenFingerprint() string {
	d := f.Display
	return strings.Join([]string{
		strconv.Itoa(d.Width) + "x" + strconv.Itoa(d.Height),
		formatScale(f.PixelRatio),
		strconv.Itoa(d.ColorDepth),
		d.Orientation,
		strconv.Itoa(d.ViewportWidth) + "x" + strconv.Itoa(d.ViewportHeight),
	}, "|")
}

// formatScale prints the shortest decimal that round-trips, so 2 is "2" and 1.5 is "1.5".
func formatScale(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
