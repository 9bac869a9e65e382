package observe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// DefaultSentryFlushTimeout bounds FlushSentry when ctx has no deadline.
const DefaultSentryFlushTimeout = 2 * time.Second

// SentryConfig configures error reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN         string
	Environment string
	SampleRate  float64 // 0 means report everything
}

// InitSentry initializes the global Sentry client. It returns false when
// reporting is disabled.
func InitSentry(cfg SentryConfig, release string) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}
	if cfg.SampleRate < 0 || cfg.SampleRate > 1 {
		return false, errors.New("observe: sentry sample rate must be between 0.0 and 1.0")
	}
	rate := cfg.SampleRate
	if rate == 0 {
		rate = 1.0
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     release,
		SampleRate:  rate,
	})
	if err != nil {
		return false, fmt.Errorf("observe: init sentry: %w", err)
	}
	return true, nil
}

// FlushSentry waits for buffered events until ctx is done or the default
// timeout elapses.
func FlushSentry(ctx context.Context) {
	timeout := DefaultSentryFlushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout > 0 {
		sentry.Flush(timeout)
	}
}

// sentryLogger forwards error-level entries to Sentry as messages.
type sentryLogger struct {
	inner Logger
	hub   *sentry.Hub
	base  []Field
}

// NewSentryLogger wraps inner so Error calls are also reported to hub.
// A nil hub uses the current global hub.
func NewSentryLogger(inner Logger, hub *sentry.Hub) Logger {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &sentryLogger{inner: inner, hub: hub}
}

func (l *sentryLogger) With(fields ...Field) Logger {
	base := make([]Field, 0, len(l.base)+len(fields))
	base = append(base, l.base...)
	base = append(base, fields...)
	return &sentryLogger{inner: l.inner.With(fields...), hub: l.hub, base: base}
}

func (l *sentryLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.inner.Info(ctx, msg, fields...)
}

func (l *sentryLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.inner.Warn(ctx, msg, fields...)
}

func (l *sentryLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.inner.Debug(ctx, msg, fields...)
}

func (l *sentryLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.inner.Error(ctx, msg, fields...)

	extra := sentry.Context{}
	for _, f := range l.base {
		extra[f.Key] = redact(f)
	}
	for _, f := range fields {
		extra[f.Key] = redact(f)
	}

	l.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		if op, ok := extra["operation"].(string); ok {
			scope.SetTag("operation", op)
		}
		scope.SetContext("fields", extra)
		l.hub.CaptureMessage(msg)
	})
}

var _ Logger = (*sentryLogger)(nil)
