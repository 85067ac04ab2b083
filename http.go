package attribution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// TrackPath is the collection endpoint, relative to the base URL.
const TrackPath = "/api/track"

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// maxResponseBody caps how much of a successful response is read. Longer
// bodies are still success but yield no decoded result.
const maxResponseBody = 64 << 10

// httpClient posts events to the collection API.
type httpClient struct {
	client     *http.Client
	endpoint   string
	authHeader string
	userAgent  string
}

// newHTTPClient creates a new HTTP client.
func newHTTPClient(cfg *Config) *httpClient {
	h := &httpClient{
		client:    cfg.HTTPClient,
		endpoint:  strings.TrimSuffix(cfg.BaseURL, "/") + TrackPath,
		userAgent: cfg.UserAgent,
	}
	if cfg.APIKey != "" {
		h.authHeader = "Bearer " + cfg.APIKey
	}
	return h
}

// post sends one payload. It is never retried. Any status outside 2xx is
// returned as an *APIError carrying the response body.
func (h *httpClient) post(ctx context.Context, payload *Payload) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("attribution: failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("attribution: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if h.authHeader != "" {
		req.Header.Set("Authorization", h.authHeader)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("attribution: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("attribution: failed to read response body: %w", err)
	}

	// The response is informational; an empty or non-JSON body still counts
	// as delivered.
	var result map[string]any
	if len(bytes.TrimSpace(respBody)) > 0 {
		_ = json.Unmarshal(respBody, &result)
	}
	return result, nil
}
