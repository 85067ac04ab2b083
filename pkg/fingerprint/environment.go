package fingerprint

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Screen describes the display the fingerprint is taken from.
// Width and Height are logical (CSS) pixels.
type Screen struct {
	Width          int
	Height         int
	PixelRatio     float64
	ColorDepth     int
	Orientation    string
	ViewportWidth  int
	ViewportHeight int
}

// Environment supplies the raw device and browser traits a fingerprint is
// built from. Implementations must return stable values for the lifetime of
// a client; the fingerprint is computed once.
type Environment interface {
	// Screen returns the display geometry.
	Screen() Screen
	// UserAgent returns the raw user agent string.
	UserAgent() string
	// Language returns the preferred BCP-47 language tag, e.g. "en-US".
	Language() string
	// Locale returns the resolved locale identifier used for formatting.
	Locale() string
	// TimeZone returns the IANA time zone identifier, e.g. "America/New_York".
	TimeZone() string
}

// StaticEnvironment is an Environment with fixed values.
type StaticEnvironment struct {
	ScreenInfo   Screen
	UserAgentStr string
	LanguageTag  string
	LocaleID     string
	TimeZoneID   string
}

func (e StaticEnvironment) Screen() Screen    { return e.ScreenInfo }
func (e StaticEnvironment) UserAgent() string { return e.UserAgentStr }
func (e StaticEnvironment) Language() string  { return e.LanguageTag }
func (e StaticEnvironment) Locale() string    { return e.LocaleID }
func (e StaticEnvironment) TimeZone() string  { return e.TimeZoneID }

var _ Environment = StaticEnvironment{}

// HostEnvironment reads locale and time zone from the current process.
// Screen and user agent have no process-level source and come from the
// struct fields.
type HostEnvironment struct {
	ScreenInfo   Screen
	UserAgentStr string

	// lookupEnv is os.LookupEnv unless overridden in tests.
	lookupEnv func(string) (string, bool)
}

// NewHostEnvironment returns a HostEnvironment with the given screen and user agent.
func NewHostEnvironment(screen Screen, userAgent string) *HostEnvironment {
	return &HostEnvironment{ScreenInfo: screen, UserAgentStr: userAgent}
}

func (e *HostEnvironment) Screen() Screen    { return e.ScreenInfo }
func (e *HostEnvironment) UserAgent() string { return e.UserAgentStr }

// Language returns the process locale from LC_ALL, LC_MESSAGES or LANG,
// normalized from POSIX form ("en_US.UTF-8") to a language tag ("en-US").
func (e *HostEnvironment) Language() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v, ok := e.lookup(name); ok && v != "" {
			if tag := posixToTag(v); tag != "" {
				return tag
			}
		}
	}
	return ""
}

// Locale returns the same value as Language; a process has a single locale.
func (e *HostEnvironment) Locale() string {
	return e.Language()
}

// TimeZone returns TZ when it names a zone, otherwise the name of time.Local.
func (e *HostEnvironment) TimeZone() string {
	if tz, ok := e.lookup("TZ"); ok && tz != "" {
		return strings.TrimPrefix(tz, ":")
	}
	if name := time.Local.String(); name != "Local" {
		return name
	}
	return "UTC"
}

func (e *HostEnvironment) lookup(key string) (string, bool) {
	if e.lookupEnv != nil {
		return e.lookupEnv(key)
	}
	return os.LookupEnv(key)
}

var _ Environment = (*HostEnvironment)(nil)

// posixToTag converts "en_US.UTF-8@euro" to "en-US". "C" and "POSIX" carry
// no language and yield "".
func posixToTag(v string) string {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "" || v == "C" || v == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(v, "_", "-")
}

// Header names read by RequestEnvironment.
const (
	HeaderTimeZone       = "X-Timezone"
	HeaderScreenWidth    = "X-Screen-Width"
	HeaderScreenHeight   = "X-Screen-Height"
	HeaderColorDepth     = "X-Color-Depth"
	HeaderDPR            = "Sec-CH-DPR"
	HeaderViewportWidth  = "Sec-CH-Viewport-Width"
	HeaderViewportHeight = "Sec-CH-Viewport-Height"
)

// RequestEnvironment builds an Environment from an incoming HTTP request,
// for servers that track on behalf of a browser. Missing headers leave the
// corresponding fields at their zero values.
func RequestEnvironment(r *http.Request) StaticEnvironment {
	screen := Screen{
		Width:          headerInt(r, HeaderScreenWidth),
		Height:         headerInt(r, HeaderScreenHeight),
		ColorDepth:     headerInt(r, HeaderColorDepth),
		ViewportWidth:  headerInt(r, HeaderViewportWidth),
		ViewportHeight: headerInt(r, HeaderViewportHeight),
	}
	if dpr, err := strconv.ParseFloat(strings.TrimSpace(r.Header.Get(HeaderDPR)), 64); err == nil && dpr > 0 {
		screen.PixelRatio = dpr
	}
	switch {
	case screen.Width == 0 || screen.Height == 0:
	case screen.Width >= screen.Height:
		screen.Orientation = "landscape-primary"
	default:
		screen.Orientation = "portrait-primary"
	}

	lang := firstAcceptLanguage(r.Header.Get("Accept-Language"))
	return StaticEnvironment{
		ScreenInfo:   screen,
		UserAgentStr: r.UserAgent(),
		LanguageTag:  lang,
		LocaleID:     lang,
		TimeZoneID:   strings.TrimSpace(r.Header.Get(HeaderTimeZone)),
	}
}

func headerInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.Header.Get(name)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// firstAcceptLanguage returns the first language range of an Accept-Language
// header, ignoring its quality value.
func firstAcceptLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	first = strings.TrimSpace(first)
	if first == "*" {
		return ""
	}
	return first
}
