package op

import (
	"context"
	"time"

	"github.com/kbukum/dagkit/logger"
	"github.com/kbukum/dagkit/observability"
)

// WithTracing wraps an Operation with OpenTelemetry span creation.
// Each execution creates a span named "{prefix}.{kind}".
func WithTracing(inner Operation, prefix string) Operation {
	return &tracingOp{inner: inner, prefix: prefix}
}

type tracingOp struct {
	inner  Operation
	prefix string
}

func (o *tracingOp) Kind() Kind         { return o.inner.Kind() }
func (o *tracingOp) Specs() []ParamSpec { return o.inner.Specs() }

func (o *tracingOp) Apply(ctx context.Context, inv *Invocation) ([]float64, error) {
	spanName := o.prefix + "." + string(o.inner.Kind())
	ctx, span := observability.StartSpan(ctx, spanName)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrNode, inv.Node)

	out, err := o.inner.Apply(ctx, inv)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}

	return out, err
}

// WithMetrics wraps an Operation with metric recording.
// Records operation count, duration, and errors.
func WithMetrics(inner Operation, metrics *observability.Metrics) Operation {
	return &metricsOp{inner: inner, metrics: metrics}
}

type metricsOp struct {
	inner   Operation
	metrics *observability.Metrics
}

func (o *metricsOp) Kind() Kind         { return o.inner.Kind() }
func (o *metricsOp) Specs() []ParamSpec { return o.inner.Specs() }

func (o *metricsOp) Apply(ctx context.Context, inv *Invocation) ([]float64, error) {
	start := time.Now()
	out, err := o.inner.Apply(ctx, inv)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		o.metrics.RecordError(ctx, "apply", inv.Node)
	}
	o.metrics.RecordOperation(ctx, inv.Node, string(o.inner.Kind()), status, duration)

	return out, err
}

// WithLogging wraps an Operation with execution logging.
// Logs: node id, kind, duration, and success/error status.
func WithLogging(inner Operation, log *logger.Logger) Operation {
	return &loggingOp{inner: inner, log: log}
}

type loggingOp struct {
	inner Operation
	log   *logger.Logger
}

func (o *loggingOp) Kind() Kind         { return o.inner.Kind() }
func (o *loggingOp) Specs() []ParamSpec { return o.inner.Specs() }

func (o *loggingOp) Apply(ctx context.Context, inv *Invocation) ([]float64, error) {
	start := time.Now()
	out, err := o.inner.Apply(ctx, inv)
	duration := time.Since(start)

	fields := map[string]interface{}{
		logger.FieldNode:     inv.Node,
		logger.FieldKind:     string(o.inner.Kind()),
		logger.FieldDuration: duration.Milliseconds(),
	}
	if rc := observability.RunContextFromContext(ctx); rc != nil {
		fields[logger.FieldRunID] = rc.RunID
	}

	if err != nil {
		fields[logger.FieldError] = err.Error()
		o.log.Error("operation failed", fields)
	} else {
		o.log.Debug("operation completed", fields)
	}

	return out, err
}
