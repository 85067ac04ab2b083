package attributiontest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jdziat/attribution-go"
	"github.com/jdziat/attribution-go/pkg/storage"
)

// Compile-time interface assertions to catch drift between mock implementations
// and the actual interfaces they're supposed to implement.
var (
	_ attribution.Metrics = (*MockMetrics)(nil)
	_ attribution.Logger  = (*MockLogger)(nil)
	_ storage.Store       = FailingStore{}
)

// MockMetrics is a mock implementation of the Metrics interface for testing.
// It records all metrics operations for later verification.
type MockMetrics struct {
	mu       sync.Mutex
	Counters map[string]int64
	Gauges   map[string]float64
	Timings  map[string][]time.Duration
}

// NewMockMetrics creates a new mock metrics collector.
func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Counters: make(map[string]int64),
		Gauges:   make(map[string]float64),
		Timings:  make(map[string][]time.Duration),
	}
}

// IncrementCounter implements Metrics.IncrementCounter.
func (m *MockMetrics) IncrementCounter(name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters[name] += value
}

// RecordDuration implements Metrics.RecordDuration.
func (m *MockMetrics) RecordDuration(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Timings[name] = append(m.Timings[name], duration)
}

// SetGauge implements Metrics.SetGauge.
func (m *MockMetrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gauges[name] = value
}

// GetCounter returns the value of a counter.
func (m *MockMetrics) GetCounter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Counters[name]
}

// GetGauge returns the value of a gauge.
func (m *MockMetrics) GetGauge(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Gauges[name]
}

// GetTimings returns all recorded timings for a metric.
func (m *MockMetrics) GetTimings(name string) []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration{}, m.Timings[name]...)
}

// Reset clears all recorded metrics.
func (m *MockMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters = make(map[string]int64)
	m.Gauges = make(map[string]float64)
	m.Timings = make(map[string][]time.Duration)
}

// LogEntry is one message captured by MockLogger.
type LogEntry struct {
	Level   string
	Message string
	Args    []any
}

// MockLogger is a mock implementation of the Logger interface for testing.
// It captures all log messages for later verification.
type MockLogger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

// NewMockLogger creates a new mock logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		Entries: make([]LogEntry, 0),
	}
}

func (l *MockLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Message: msg, Args: args})
}

// Debug implements Logger.Debug.
func (l *MockLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }

// Info implements Logger.Info.
func (l *MockLogger) Info(msg string, args ...any) { l.record("info", msg, args) }

// Warn implements Logger.Warn.
func (l *MockLogger) Warn(msg string, args ...any) { l.record("warn", msg, args) }

// Error implements Logger.Error.
func (l *MockLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

// GetMessages returns all logged messages.
func (l *MockLogger) GetMessages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	msgs := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		msgs[i] = e.Message
	}
	return msgs
}

// MessageCount returns the number of logged messages.
func (l *MockLogger) MessageCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Entries)
}

// Reset clears all logged messages.
func (l *MockLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = make([]LogEntry, 0)
}

// ErrStorageDisabled is returned by FailingStore.
var ErrStorageDisabled = errors.New("attributiontest: storage disabled")

// FailingStore is a storage.Store that rejects every operation.
type FailingStore struct{}

// Get implements storage.Store.
func (FailingStore) Get(context.Context, string) (string, error) {
	return "", ErrStorageDisabled
}

// Set implements storage.Store.
func (FailingStore) Set(_ context.Context, key, _ string) error {
	return fmt.Errorf("set %q: %w", key, ErrStorageDisabled)
}
