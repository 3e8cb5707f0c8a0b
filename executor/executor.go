package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/kbukum/dagkit/errors"
	"github.com/kbukum/dagkit/logger"
	"github.com/kbukum/dagkit/observability"
	"github.com/kbukum/dagkit/op"
	"github.com/kbukum/dagkit/plan"
)

// Executor runs plans stage by stage.
type Executor struct {
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option customizes an Executor.
type Option func(*Executor)

// WithLogger attaches a logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// WithMetrics attaches metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// New builds an Executor. Zero config fields fall back to defaults.
func New(cfg Config, opts ...Option) (*Executor, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Executor{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.NewDefault("executor")
	}
	return e, nil
}

// outcome is what a node attempt reports back to the stage loop.
type outcome struct {
	id       string
	attempt  int
	output   []float64
	duration time.Duration
	err      error
	// started is false when the attempt ended before its operation ran,
	// i.e. while waiting for a worker slot or for its backoff delay.
	started bool
}

// Run executes the plan against reg, writing each node's output into frame
// under the node's id. A nil frame starts empty.
//
// On failure the returned result still reports every node: nodes whose
// attempts were in flight when the run aborted have finished, nodes of later
// stages stay pending. The error is the context error when the run was
// canceled, EXECUTION_ABORTED otherwise.
func (e *Executor) Run(ctx context.Context, p *plan.Plan, reg *op.Registry, frame *op.Frame) (*Result, error) {
	if frame == nil {
		frame = op.NewFrame()
	}

	ids := make([]string, 0, p.NodeCount())
	for i := 0; i < p.NumStages(); i++ {
		ids = append(ids, p.Stage(i)...)
	}
	res := newResult(ids)
	res.Stages = p.NumStages()

	log := e.log.WithFields(logger.Fields(logger.FieldRunID, res.RunID))
	log.Info("run started", logger.Fields(
		"nodes", p.NodeCount(),
		"stages", p.NumStages(),
		"workers", e.cfg.Workers,
	))

	rc := observability.NewRunContext("executor", res.RunID, e.metrics)
	ctx, span := rc.StartRunSpan(ctx)

	start := time.Now()
	pl := newPool(e.cfg.Workers)

	var runErr error
	for i := 0; i < p.NumStages(); i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := e.runStage(ctx, pl, i, p, reg, frame, res, log); err != nil {
			runErr = err
			break
		}
	}
	res.Duration = time.Since(start)

	succeeded, failed, pending := res.Counts()
	status := "succeeded"
	if runErr != nil {
		status = "failed"
	}
	rc.EndRun(ctx, span, status, res.Stages, runErr)

	fields := logger.Fields(
		logger.FieldStatus, status,
		"succeeded", succeeded,
		"failed", failed,
		"pending", pending,
		logger.FieldDuration, res.Duration.Milliseconds(),
	)
	if runErr != nil {
		log.Error("run finished", logger.MergeWithError(fields, runErr))
		return res, runErr
	}
	log.Info("run finished", fields)
	return res, nil
}

// runStage launches every node of the stage and drains outcomes until none
// are outstanding. It returns the error that aborted the stage, if any.
func (e *Executor) runStage(ctx context.Context, pl *pool, stage int, p *plan.Plan, reg *op.Registry, frame *op.Frame, res *Result, log *logger.Logger) error {
	ids := p.Stage(stage)
	outcomes := make(chan outcome, len(ids))

	launch := func(id string, attempt int, delay time.Duration) {
		go func() {
			if delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					outcomes <- outcome{id: id, attempt: attempt, err: ctx.Err()}
					return
				case <-timer.C:
				}
			}
			if err := pl.acquire(ctx); err != nil {
				outcomes <- outcome{id: id, attempt: attempt, err: err}
				return
			}
			defer pl.release()

			began := time.Now()
			out, err := e.applyNode(ctx, id, p, reg, frame)
			outcomes <- outcome{
				id:       id,
				attempt:  attempt,
				output:   out,
				duration: time.Since(began),
				err:      err,
				started:  true,
			}
		}()
	}

	log.Debug("stage started", logger.Fields(logger.FieldStage, stage, "nodes", len(ids)))
	for _, id := range ids {
		res.node(id).Status = StatusRunning
		launch(id, 1, 0)
	}

	var failure error
	for outstanding := len(ids); outstanding > 0; {
		oc := <-outcomes
		node := res.node(oc.id)
		planned, _ := p.Node(oc.id)

		if oc.err == nil {
			frame.Set(oc.id, oc.output)
			node.Status = StatusSucceeded
			node.Attempts = oc.attempt
			node.Duration = oc.duration
			node.Err = nil
			if e.metrics != nil {
				e.metrics.RecordNodeAttempt(ctx, string(planned.Kind), "succeeded", oc.duration)
			}
			log.Debug("node succeeded", logger.Fields(
				logger.FieldNode, oc.id,
				logger.FieldKind, string(planned.Kind),
				logger.FieldAttempt, oc.attempt,
				logger.FieldDuration, oc.duration.Milliseconds(),
			))
			outstanding--
			continue
		}

		if !oc.started {
			// The attempt never ran, which only happens on context errors.
			// A node with no finished attempts reverts to pending.
			if node.Attempts == 0 {
				node.Status = StatusPending
			} else {
				node.Status = StatusFailed
			}
			if failure == nil {
				failure = oc.err
			}
			outstanding--
			continue
		}

		cause := oc.err
		node.Attempts = oc.attempt
		node.Duration = oc.duration
		node.Err = apperrors.NodeExecution(oc.id, oc.attempt, cause)
		if e.metrics != nil {
			e.metrics.RecordNodeAttempt(ctx, string(planned.Kind), "failed", oc.duration)
			e.metrics.RecordError(ctx, string(apperrors.ErrCodeNodeExecutionFailed), "executor")
		}

		if failure == nil && ctx.Err() == nil && retryable(cause) && oc.attempt < e.cfg.MaxAttempts {
			delay := backoffFor(oc.attempt, e.cfg.Backoff)
			log.Warn("node attempt failed, retrying", logger.Fields(
				logger.FieldNode, oc.id,
				logger.FieldAttempt, oc.attempt,
				logger.FieldError, cause.Error(),
				"backoff_ms", delay.Milliseconds(),
			))
			if e.metrics != nil {
				e.metrics.RecordRetry(ctx, string(planned.Kind))
			}
			launch(oc.id, oc.attempt+1, delay)
			continue
		}

		node.Status = StatusFailed
		log.Error("node failed", logger.Fields(
			logger.FieldNode, oc.id,
			logger.FieldKind, string(planned.Kind),
			logger.FieldAttempt, oc.attempt,
			logger.FieldError, cause.Error(),
		))
		if failure == nil {
			if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
				failure = cause
			} else {
				failure = apperrors.ExecutionAborted(oc.id, cause)
			}
		}
		outstanding--
	}
	return failure
}

func (e *Executor) applyNode(ctx context.Context, id string, p *plan.Plan, reg *op.Registry, frame *op.Frame) ([]float64, error) {
	n, ok := p.Node(id)
	if !ok {
		return nil, apperrors.Inconsistent(fmt.Sprintf("planned node %s has no definition", id))
	}
	operation, err := reg.Lookup(n.Kind)
	if err != nil {
		return nil, err
	}
	// The store validated the parameters at insert time; re-checking here
	// keeps a stale or hand-built plan from reaching Apply.
	if err := reg.Validate(n.Kind, n.Params); err != nil {
		return nil, err
	}
	// Each attempt gets its own span under the run span.
	operation = op.WithTracing(operation, "dag")
	return operation.Apply(ctx, &op.Invocation{Node: id, Params: n.Params, Frame: frame})
}
