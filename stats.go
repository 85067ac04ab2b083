package attribution

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jdziat/attribution-go/pkg/id"
)

// ClientStats contains a snapshot of client counters.
// Use this for monitoring and debugging.
type ClientStats struct {
	Uptime      string `json:"uptime"`
	UptimeNanos int64  `json:"uptime_nanos"`

	Fingerprint string `json:"fingerprint"`
	Stores      int    `json:"stores"`

	Events       EventStats `json:"events"`
	IDGeneration IDStats    `json:"id_generation"`
}

// EventStats counts tracking outcomes since the client was created.
type EventStats struct {
	Sent            int64 `json:"sent"`
	Failed          int64 `json:"failed"`
	StorageFailures int64 `json:"storage_failures"`
}

// IDStats contains click id generation metrics.
type IDStats struct {
	// CryptoFailures is process-wide, shared by all clients.
	CryptoFailures int64 `json:"crypto_failures"`
}

// Stats returns a snapshot of the client's counters.
// It is safe to call concurrently with tracking calls.
//
// Example:
//
//	stats := client.Stats()
//	log.Printf("sent=%d failed=%d", stats.Events.Sent, stats.Events.Failed)
func (c *Client) Stats() ClientStats {
	uptime := time.Since(c.createdAt)
	return ClientStats{
		Uptime:      uptime.String(),
		UptimeNanos: uptime.Nanoseconds(),
		Fingerprint: c.canonical,
		Stores:      c.store.Len(),
		Events: EventStats{
			Sent:            c.sent.Load(),
			Failed:          c.failed.Load(),
			StorageFailures: c.storageFailures.Load(),
		},
		IDGeneration: IDStats{
			CryptoFailures: id.CryptoFailureCount(),
		},
	}
}

// StatsHandler returns an http.Handler that serves client statistics as JSON.
//
// Example:
//
//	http.Handle("/attribution/stats", client.StatsHandler())
//	http.ListenAndServe(":8080", nil)
func (c *Client) StatsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(c.Stats()); err != nil {
			http.Error(w, "Failed to encode stats", http.StatusInternalServerError)
		}
	})
}
