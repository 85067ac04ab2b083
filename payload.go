package attribution

import (
	"maps"
	"time"

	"github.com/jdziat/attribution-go/pkg/fingerprint"
)

// timestampLayout is ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// DeviceInfo describes the device an event was recorded on.
// The fingerprint fields are only set on click events.
type DeviceInfo struct {
	Platform     string `json:"platform"`
	DeviceType   string `json:"device_type"`
	ScreenWidth  int    `json:"screen_width"`
	ScreenHeight int    `json:"screen_height"`
	Timezone     string `json:"timezone"`
	Language     string `json:"language"`
	UserAgent    string `json:"user_agent"`

	DeviceFingerprint        string `json:"device_fingerprint,omitempty"`
	ScreenFingerprint        string `json:"screen_fingerprint,omitempty"`
	WebCompatibleFingerprint string `json:"web_compatible_fingerprint,omitempty"`
}

// Payload is the JSON body posted to the track endpoint.
type Payload struct {
	Timestamp    string       `json:"timestamp"`
	EventType    string       `json:"event_type"`
	EventName    string       `json:"event_name"`
	TrackingType TrackingType `json:"tracking_type"`

	// LinkID is a pointer so that an empty link id is still sent on clicks.
	LinkID *string `json:"link_id,omitempty"`

	ClickID        string `json:"click_id,omitempty"`
	CustomerID     string `json:"customer_id,omitempty"`
	CustomerEmail  string `json:"customer_email,omitempty"`
	CustomerName   string `json:"customer_name,omitempty"`
	CustomerAvatar string `json:"customer_avatar,omitempty"`

	DeviceInfo DeviceInfo     `json:"device_info"`
	Properties map[string]any `json:"properties"`
}

// event describes one tracking call before it becomes a Payload.
type event struct {
	eventType    string
	eventName    string
	trackingType TrackingType
	linkID       *string
	clickID      string
	data         *TrackingRequest
	// enrich adds both fingerprint strings to device_info.
	enrich bool
}

// buildPayload assembles the common envelope for ev.
func buildPayload(fp fingerprint.Fingerprint, ev event, now time.Time) *Payload {
	canonical := fp.String()

	data := ev.data
	if data == nil {
		data = &TrackingRequest{}
	}

	props := make(map[string]any, len(data.CustomProperties)+1)
	maps.Copy(props, data.CustomProperties)
	props["device_fingerprint"] = canonical

	info := DeviceInfo{
		Platform:     fp.Platform,
		DeviceType:   string(fp.DeviceClass),
		ScreenWidth:  fp.ScreenWidth,
		ScreenHeight: fp.ScreenHeight,
		Timezone:     fp.TimeZone,
		Language:     fp.Language,
		UserAgent:    fp.UserAgent,
	}
	if ev.enrich {
		info.DeviceFingerprint = canonical
		info.ScreenFingerprint = fp.ScreenFingerprint()
		info.WebCompatibleFingerprint = canonical
	}

	return &Payload{
		Timestamp:      now.UTC().Format(timestampLayout),
		EventType:      ev.eventType,
		EventName:      ev.eventName,
		TrackingType:   ev.trackingType,
		LinkID:         ev.linkID,
		ClickID:        ev.clickID,
		CustomerID:     data.CustomerID,
		CustomerEmail:  data.CustomerEmail,
		CustomerName:   data.CustomerName,
		CustomerAvatar: data.CustomerAvatar,
		DeviceInfo:     info,
		Properties:     props,
	}
}
