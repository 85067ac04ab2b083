package metrics

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultBuckets are the histogram buckets for request durations, in seconds.
var DefaultBuckets = prometheus.ExponentialBuckets(0.005, 2, 14) // 5ms to ~41s

// Prometheus records client metrics as Prometheus collectors.
// Collectors are created lazily, one per metric name.
type Prometheus struct {
	reg     prometheus.Registerer
	buckets []float64

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	histograms map[string]prometheus.Histogram
	gauges     map[string]prometheus.Gauge
}

// Option configures a Prometheus recorder.
type Option func(*Prometheus)

// WithBuckets sets the histogram buckets used for durations.
func WithBuckets(buckets []float64) Option {
	return func(p *Prometheus) {
		p.buckets = buckets
	}
}

// NewPrometheus creates a recorder that registers its collectors on reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewPrometheus(reg prometheus.Registerer, opts ...Option) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		reg:        reg,
		buckets:    DefaultBuckets,
		counters:   make(map[string]prometheus.Counter),
		histograms: make(map[string]prometheus.Histogram),
		gauges:     make(map[string]prometheus.Gauge),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IncrementCounter adds value to the counter name. Negative values are ignored.
func (p *Prometheus) IncrementCounter(name string, value int64) {
	if value < 0 {
		return
	}
	p.counter(name).Add(float64(value))
}

// RecordDuration observes d, in seconds, on the histogram name.
func (p *Prometheus) RecordDuration(name string, d time.Duration) {
	p.histogram(name).Observe(d.Seconds())
}

// SetGauge sets the gauge name to value.
func (p *Prometheus) SetGauge(name string, value float64) {
	p.gauge(name).Set(value)
}

func (p *Prometheus) counter(name string) prometheus.Counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.counters[name]; ok {
		return c
	}
	c := register(p.reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricName(name) + "_total",
		Help: "Counter " + name + " reported by the attribution client.",
	}))
	p.counters[name] = c
	return c
}

func (p *Prometheus) histogram(name string) prometheus.Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.histograms[name]; ok {
		return h
	}
	h := register(p.reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricName(name) + "_seconds",
		Help:    "Duration " + name + " reported by the attribution client.",
		Buckets: p.buckets,
	}))
	p.histograms[name] = h
	return h
}

func (p *Prometheus) gauge(name string) prometheus.Gauge {
	p.mu.Lock()
	defer p.mu.Unlock()

	if g, ok := p.gauges[name]; ok {
		return g
	}
	g := register(p.reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricName(name),
		Help: "Gauge " + name + " reported by the attribution client.",
	}))
	p.gauges[name] = g
	return g
}

// register registers c, returning the existing collector when an identical
// one is already registered. A conflicting registration leaves c unregistered
// but usable.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// MetricName converts a dotted metric name to a valid Prometheus name.
// Characters outside [a-zA-Z0-9_:] become underscores.
func MetricName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == ':':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
