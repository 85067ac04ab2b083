package attribution

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Logger provides structured logging for the SDK. Arguments are
// alternating key-value pairs, as with slog and zap's SugaredLogger.
//
// Use WithLogger() to configure:
//
//	client, _ := attribution.New(baseURL,
//	    attribution.WithLogger(attribution.NewSlogAdapter(slog.Default())),
//	)
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}

// Metrics is an optional interface for SDK telemetry.
type Metrics interface {
	// IncrementCounter increments a counter metric.
	IncrementCounter(name string, value int64)
	// RecordDuration records a duration metric.
	RecordDuration(name string, duration time.Duration)
	// SetGauge sets a gauge metric.
	SetGauge(name string, value float64)
}

// Metric names recorded by the client.
const (
	MetricTrackSuccess   = "attribution.track.success"
	MetricTrackFailure   = "attribution.track.failure"
	MetricTrackDuration  = "attribution.track.duration"
	MetricStorageFailure = "attribution.storage.failure"

	// MetricStorageBackends is a gauge of configured click stores.
	MetricStorageBackends = "attribution.storage.backends"
)

// NopLogger is a logger that discards all log messages.
type NopLogger struct{}

// Debug implements Logger.Debug.
func (NopLogger) Debug(msg string, args ...any) {}

// Info implements Logger.Info.
func (NopLogger) Info(msg string, args ...any) {}

// Warn implements Logger.Warn.
func (NopLogger) Warn(msg string, args ...any) {}

// Error implements Logger.Error.
func (NopLogger) Error(msg string, args ...any) {}

var _ Logger = NopLogger{}

// ============================================================================
// Zap Adapter
// ============================================================================

// ZapAdapter adapts a zap.Logger to the Logger interface.
//
// Example:
//
//	z, _ := zap.NewProduction()
//	client, _ := attribution.New(baseURL,
//	    attribution.WithLogger(attribution.NewZapAdapter(z)),
//	)
type ZapAdapter struct {
	logger *zap.SugaredLogger
}

// NewZapAdapter creates a new ZapAdapter. If logger is nil, a no-op zap
// logger is used.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapAdapter{logger: logger.Sugar()}
}

// Debug implements Logger.Debug.
func (a *ZapAdapter) Debug(msg string, args ...any) { a.logger.Debugw(msg, args...) }

// Info implements Logger.Info.
func (a *ZapAdapter) Info(msg string, args ...any) { a.logger.Infow(msg, args...) }

// Warn implements Logger.Warn.
func (a *ZapAdapter) Warn(msg string, args ...any) { a.logger.Warnw(msg, args...) }

// Error implements Logger.Error.
func (a *ZapAdapter) Error(msg string, args ...any) { a.logger.Errorw(msg, args...) }

// With returns a new ZapAdapter with the given key-value pairs attached.
func (a *ZapAdapter) With(args ...any) *ZapAdapter {
	return &ZapAdapter{logger: a.logger.With(args...)}
}

// Sync flushes buffered log entries.
func (a *ZapAdapter) Sync() error {
	return a.logger.Sync()
}

var _ Logger = (*ZapAdapter)(nil)

// newDebugLogger is the logger used when Debug is set and no logger was
// configured.
func newDebugLogger() Logger {
	z, err := zap.NewDevelopment()
	if err != nil {
		return NopLogger{}
	}
	return &ZapAdapter{logger: z.Named("attribution").Sugar()}
}

// ============================================================================
// Slog Adapter
// ============================================================================

// SlogAdapter adapts a slog.Logger to the Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Debug implements Logger.Debug.
func (a *SlogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }

// Info implements Logger.Info.
func (a *SlogAdapter) Info(msg string, args ...any) { a.logger.Info(msg, args...) }

// Warn implements Logger.Warn.
func (a *SlogAdapter) Warn(msg string, args ...any) { a.logger.Warn(msg, args...) }

// Error implements Logger.Error.
func (a *SlogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

// WithContext returns an adapter whose records carry ctx.
func (a *SlogAdapter) WithContext(ctx context.Context) Logger {
	return &slogContextAdapter{logger: a.logger, ctx: ctx}
}

// With returns a new SlogAdapter with the given attributes added.
func (a *SlogAdapter) With(args ...any) *SlogAdapter {
	return &SlogAdapter{logger: a.logger.With(args...)}
}

type slogContextAdapter struct {
	logger *slog.Logger
	ctx    context.Context
}

func (a *slogContextAdapter) Debug(msg string, args ...any) { a.logger.DebugContext(a.ctx, msg, args...) }
func (a *slogContextAdapter) Info(msg string, args ...any)  { a.logger.InfoContext(a.ctx, msg, args...) }
func (a *slogContextAdapter) Warn(msg string, args ...any)  { a.logger.WarnContext(a.ctx, msg, args...) }
func (a *slogContextAdapter) Error(msg string, args ...any) { a.logger.ErrorContext(a.ctx, msg, args...) }

var (
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = (*slogContextAdapter)(nil)
)

// MaskCredential masks a credential string for safe logging, keeping only
// the last 4 characters.
//
// Examples:
//
//	MaskCredential("live_1234567890abcdef") => "*****************cdef"
//	MaskCredential("abc") => "****"
func MaskCredential(s string) string {
	const visibleSuffix = 4
	if s == "" {
		return ""
	}
	if len(s) <= visibleSuffix {
		return "****"
	}
	return strings.Repeat("*", len(s)-visibleSuffix) + s[len(s)-visibleSuffix:]
}
