package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type telemetry struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
	mw     *Middleware
}

func newTelemetry(t *testing.T) *telemetry {
	t.Helper()

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	logs := &bytes.Buffer{}
	logger := NewLoggerWithWriter("debug", logs)

	return &telemetry{
		spans:  spans,
		reader: reader,
		logs:   logs,
		mw:     NewMiddleware(NewTracer(tp.Tracer("test")), metrics, logger),
	}
}

func (tm *telemetry) collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := tm.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	if m == nil {
		t.Fatal("metric not found")
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s has data %T, want Sum[int64]", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMiddleware_SuccessPath(t *testing.T) {
	tm := newTelemetry(t)
	op := Operation{Component: "session", Name: "login", UserType: "admin"}

	called := false
	err := tm.mw.Run(context.Background(), op, func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !called {
		t.Fatal("wrapped function was not called")
	}

	spans := tm.spans.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if got := spans[0].Name(); got != "gamenet.session.login" {
		t.Errorf("span name = %q, want %q", got, "gamenet.session.login")
	}
	if got := spans[0].Status().Code; got != codes.Ok {
		t.Errorf("span status = %v, want Ok", got)
	}

	rm := tm.collect(t)
	if got := sumOf(t, findMetric(rm, "gamenet.auth.operations")); got != 1 {
		t.Errorf("operations = %d, want 1", got)
	}
	if m := findMetric(rm, "gamenet.auth.errors"); m != nil && sumOf(t, m) != 0 {
		t.Errorf("errors = %d, want 0", sumOf(t, m))
	}

	var entry map[string]any
	if err := json.Unmarshal(tm.logs.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["operation"] != "session.login" {
		t.Errorf("operation = %v, want session.login", entry["operation"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
}

func TestMiddleware_ErrorPath(t *testing.T) {
	tm := newTelemetry(t)
	op := Operation{Component: "session", Name: "refresh"}
	want := errors.New("refresh rejected")

	err := tm.mw.Run(context.Background(), op, func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("Run() error = %v, want %v", err, want)
	}

	spans := tm.spans.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if got := spans[0].Status().Code; got != codes.Error {
		t.Errorf("span status = %v, want Error", got)
	}

	rm := tm.collect(t)
	if got := sumOf(t, findMetric(rm, "gamenet.auth.errors")); got != 1 {
		t.Errorf("errors = %d, want 1", got)
	}
	if !strings.Contains(tm.logs.String(), `"level":"warn"`) {
		t.Errorf("log = %s, want warn level", tm.logs.String())
	}
}

func TestMiddleware_Event(t *testing.T) {
	tm := newTelemetry(t)

	tm.mw.Event(context.Background(), EventLoginBlocked, F("email", "a@b.c"))
	tm.mw.Event(context.Background(), EventLoginBlocked)

	rm := tm.collect(t)
	if got := sumOf(t, findMetric(rm, "gamenet.auth.events")); got != 2 {
		t.Errorf("events = %d, want 2", got)
	}
}

func TestNopMiddleware(t *testing.T) {
	mw := NopMiddleware()
	calls := 0
	for i := 0; i < 3; i++ {
		_ = mw.Run(context.Background(), Operation{Name: "noop"}, func(context.Context) error {
			calls++
			return nil
		})
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestOperation_Names(t *testing.T) {
	tests := []struct {
		name     string
		op       Operation
		wantSpan string
		wantID   string
	}{
		{"with component", Operation{Component: "apiclient", Name: "login"}, "gamenet.apiclient.login", "apiclient.login"},
		{"bare", Operation{Name: "bootstrap"}, "gamenet.bootstrap", "bootstrap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.SpanName(); got != tt.wantSpan {
				t.Errorf("SpanName() = %q, want %q", got, tt.wantSpan)
			}
			if got := tt.op.ID(); got != tt.wantID {
				t.Errorf("ID() = %q, want %q", got, tt.wantID)
			}
		})
	}
}
