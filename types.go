package attribution

// TrackingType discriminates which client method produced an event.
type TrackingType string

// Tracking types.
const (
	TrackingTypeLink    TrackingType = "link"
	TrackingTypeGeneral TrackingType = "general"
	TrackingTypeCustom  TrackingType = "custom"
)

// Event types and names set by the client.
const (
	EventTypeClick      = "click"
	EventTypeConversion = "conversion"
	EventNameLinkClick  = "Link Click"
)

// Storage keys of the persisted click identifier and its capture time.
const (
	StorageKeyClickID        = "attribution_click_id"
	StorageKeyClickTimestamp = "attribution_click_timestamp"
)

// TrackingRequest carries optional caller data for a tracking call.
// All fields are optional and none are validated.
type TrackingRequest struct {
	// ClickID overrides the generated or stored click identifier.
	ClickID string

	CustomerID     string
	CustomerEmail  string
	CustomerName   string
	CustomerAvatar string

	// CustomProperties are copied into the event's properties.
	CustomProperties map[string]any
}

// ClickResult is the outcome of TrackClick.
type ClickResult struct {
	Success bool   `json:"success"`
	ClickID string `json:"clickId"`
}

// TrackResult is the outcome of TrackConversion and TrackEvent.
type TrackResult struct {
	Success bool `json:"success"`
}
