package observability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Telemetry bundles the configured providers and the engine's instruments.
type Telemetry struct {
	// TracerProvider is nil when telemetry is disabled.
	TracerProvider *sdktrace.TracerProvider
	// MeterProvider is nil when telemetry is disabled.
	MeterProvider *sdkmetric.MeterProvider
	// Metrics is never nil. When telemetry is disabled it is backed by a
	// noop meter, so callers record unconditionally.
	Metrics *Metrics
}

// Init wires tracing and metric export per cfg. When cfg.Enabled is false no
// exporter is dialed and the returned Metrics are noop-backed.
func Init(ctx context.Context, cfg *Config) (*Telemetry, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.Enabled {
		metrics, err := NewMetrics(noop.NewMeterProvider().Meter(cfg.ServiceName))
		if err != nil {
			return nil, err
		}
		return &Telemetry{Metrics: metrics}, nil
	}

	tp, err := InitTracer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mp, err := InitMeter(ctx, cfg)
	if err != nil {
		shutdownErr := tp.Shutdown(ctx)
		return nil, errors.Join(err, shutdownErr)
	}
	metrics, err := NewMetrics(Meter(cfg.ServiceName))
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(ctx), mp.Shutdown(ctx))
	}

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		Metrics:        metrics,
	}, nil
}

// Shutdown flushes and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		errs = append(errs, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errs = append(errs, t.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
