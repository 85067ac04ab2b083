// Package metrics exports client telemetry to Prometheus.
//
// Prometheus implements the attribution.Metrics interface. Metric names
// reported by the client use dots ("attribution.track.success"); they are
// translated to Prometheus names ("attribution_track_success_total")
// and registered on first use:
//
//	m := metrics.NewPrometheus(prometheus.DefaultRegisterer)
//	client, _ := attribution.New(baseURL, attribution.WithMetrics(m))
package metrics
