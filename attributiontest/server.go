package attributiontest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/jdziat/attribution-go"
)

// MockServer is a test HTTP server that records tracking requests for verification.
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*RecordedRequest

	// responseFunc customizes responses. If nil, returns default success.
	responseFunc func(r *http.Request) (int, any)
}

// RecordedRequest represents a recorded HTTP request.
type RecordedRequest struct {
	Method        string
	Path          string
	Body          []byte
	ContentType   string
	Authorization string
	UserAgent     string

	// Payload is the decoded body, or nil when it is not a tracking payload.
	Payload *attribution.Payload
}

// NewMockServer creates a new mock server for testing.
func NewMockServer() *MockServer {
	ms := &MockServer{
		requests: make([]*RecordedRequest, 0),
	}

	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		rec := &RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Body:          body,
			ContentType:   r.Header.Get("Content-Type"),
			Authorization: r.Header.Get("Authorization"),
			UserAgent:     r.UserAgent(),
		}
		var p attribution.Payload
		if err := json.Unmarshal(body, &p); err == nil {
			rec.Payload = &p
		}

		ms.mu.Lock()
		ms.requests = append(ms.requests, rec)
		respond := ms.responseFunc
		ms.mu.Unlock()

		status := http.StatusOK
		var response any = map[string]any{"success": true}
		if respond != nil {
			status, response = respond(r)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if response != nil {
			json.NewEncoder(w).Encode(response)
		}
	}))

	return ms
}

// Requests returns all recorded requests.
func (ms *MockServer) Requests() []*RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]*RecordedRequest{}, ms.requests...)
}

// RequestCount returns the number of recorded requests.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requests)
}

// Reset clears all recorded requests.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = make([]*RecordedRequest, 0)
}

// LastRequest returns the most recent request, or nil if none.
func (ms *MockServer) LastRequest() *RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return nil
	}
	return ms.requests[len(ms.requests)-1]
}

// RequestAt returns the request at the given index, or nil if out of bounds.
func (ms *MockServer) RequestAt(index int) *RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if index < 0 || index >= len(ms.requests) {
		return nil
	}
	return ms.requests[index]
}

// Payloads returns the decoded payloads of all recorded tracking requests.
func (ms *MockServer) Payloads() []*attribution.Payload {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var out []*attribution.Payload
	for _, req := range ms.requests {
		if req.Payload != nil {
			out = append(out, req.Payload)
		}
	}
	return out
}

// PayloadsWithEventType returns recorded payloads whose event_type matches.
func (ms *MockServer) PayloadsWithEventType(eventType string) []*attribution.Payload {
	var matched []*attribution.Payload
	for _, p := range ms.Payloads() {
		if p.EventType == eventType {
			matched = append(matched, p)
		}
	}
	return matched
}

// SetResponseFunc sets the response function for customizing responses.
// A nil body writes no response body.
func (ms *MockServer) SetResponseFunc(fn func(r *http.Request) (int, any)) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responseFunc = fn
}

// Response scenarios

// RespondWithSuccess configures the server to accept every event.
func (ms *MockServer) RespondWithSuccess() {
	ms.SetResponseFunc(nil)
}

// RespondWithError configures the server to respond with an error.
func (ms *MockServer) RespondWithError(statusCode int, message string) {
	ms.RespondWith(statusCode, map[string]string{
		"error":   message,
		"message": message,
	})
}

// RespondWithUnauthorized configures the server to reject the API key.
func (ms *MockServer) RespondWithUnauthorized() {
	ms.RespondWithError(http.StatusUnauthorized, "Invalid API key")
}

// RespondWithServerError configures the server to respond with a 500 error.
func (ms *MockServer) RespondWithServerError() {
	ms.RespondWithError(http.StatusInternalServerError, "Internal server error")
}

// RespondWithEmptyBody configures the server to answer 204 with no body.
func (ms *MockServer) RespondWithEmptyBody() {
	ms.RespondWith(http.StatusNoContent, nil)
}

// RespondWith configures the server to respond with a custom status and body.
func (ms *MockServer) RespondWith(statusCode int, body any) {
	ms.SetResponseFunc(func(r *http.Request) (int, any) {
		return statusCode, body
	})
}
