package observe

import (
	"context"
	"time"
)

// OperationFunc is the unit of work wrapped by Middleware.
type OperationFunc func(ctx context.Context) error

// Middleware wraps auth operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a func that is safe for concurrent use.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a Middleware that only runs the wrapped function.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Wrap returns fn instrumented for op.
func (m *Middleware) Wrap(op Operation, fn OperationFunc) OperationFunc {
	return func(ctx context.Context) error {
		ctx, span := m.tracer.StartSpan(ctx, op)
		start := time.Now()

		err := fn(ctx)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordOperation(ctx, op, duration, err)

		fields := []Field{
			F("operation", op.ID()),
			F("duration_ms", float64(duration.Milliseconds())),
		}
		if op.UserType != "" {
			fields = append(fields, F("user_type", op.UserType))
		}
		if err != nil {
			fields = append(fields, F("error", err.Error()))
			m.logger.Warn(ctx, "auth operation failed", fields...)
		} else {
			m.logger.Info(ctx, "auth operation completed", fields...)
		}

		return err
	}
}

// Run executes fn wrapped for op.
func (m *Middleware) Run(ctx context.Context, op Operation, fn OperationFunc) error {
	return m.Wrap(op, fn)(ctx)
}

// Event records a named auth event.
func (m *Middleware) Event(ctx context.Context, event string, fields ...Field) {
	m.metrics.RecordEvent(ctx, event)
	m.logger.Info(ctx, "auth event", append([]Field{F("event", event)}, fields...)...)
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
