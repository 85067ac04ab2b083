package attribution

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for configuration validation.
var (
	ErrNilConfig      = errors.New("attribution: config cannot be nil")
	ErrMissingBaseURL = errors.New("attribution: base URL is required")
	ErrInvalidBaseURL = errors.New("attribution: invalid base URL")
)

// Sentinel APIError values for use with errors.Is().
// These match on status code only.
var (
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &APIError{StatusCode: http.StatusForbidden}
	ErrRateLimited  = &APIError{StatusCode: http.StatusTooManyRequests}
)

// APIError is a non-2xx response from the collection API.
type APIError struct {
	StatusCode int    `json:"-"`
	Body       string `json:"-"`
	Message    string `json:"message"`
	ErrorText  string `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: string(body)}
	if len(body) > 0 {
		_ = json.Unmarshal(body, e)
	}
	return e
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.ErrorText
	}
	if msg != "" {
		return fmt.Sprintf("attribution: API error (status %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("attribution: API error (status %d)", e.StatusCode)
}

// Is matches on status code, allowing comparisons like:
//
//	if errors.Is(err, attribution.ErrUnauthorized) { ... }
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// IsServerError returns true for 5xx responses.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAPIError reports whether err's chain contains an *APIError.
func IsAPIError(err error) bool {
	_, ok := AsAPIError(err)
	return ok
}
