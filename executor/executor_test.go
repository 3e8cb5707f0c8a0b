package executor

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/dagkit/errors"
	"github.com/kbukum/dagkit/graph"
	"github.com/kbukum/dagkit/op"
	"github.com/kbukum/dagkit/plan"
)

type stubOp struct {
	kind op.Kind
	fn   func(ctx context.Context, inv *op.Invocation) ([]float64, error)
}

func (s *stubOp) Kind() op.Kind         { return s.kind }
func (s *stubOp) Specs() []op.ParamSpec { return nil }
func (s *stubOp) Apply(ctx context.Context, inv *op.Invocation) ([]float64, error) {
	return s.fn(ctx, inv)
}

// buildPlan wires nodes of the given kinds into a resolved plan.
func buildPlan(t *testing.T, reg *op.Registry, kinds map[string]op.Kind, edges [][2]string) *plan.Plan {
	t.Helper()
	s := graph.NewStore(reg)
	for id, kind := range kinds {
		if err := s.AddNode(id, kind, nil); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := s.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%s, %s): %v", e[0], e[1], err)
		}
	}
	p, err := plan.Resolve(s.Snapshot())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return p
}

func fastConfig() Config {
	return Config{
		Workers:     4,
		MaxAttempts: 3,
		Backoff: BackoffConfig{
			Initial: time.Millisecond,
			Max:     5 * time.Millisecond,
			Factor:  2,
		},
	}
}

func newTestExecutor(t *testing.T, cfg Config) *Executor {
	t.Helper()
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestRun_WritesOutputToFrame(t *testing.T) {
	reg := op.NewRegistry(&stubOp{kind: "CONST", fn: func(context.Context, *op.Invocation) ([]float64, error) {
		return []float64{1, 2, 3}, nil
	}})
	p := buildPlan(t, reg, map[string]op.Kind{"n": "CONST"}, nil)
	frame := op.NewFrame()

	res, err := newTestExecutor(t, fastConfig()).Run(context.Background(), p, reg, frame)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out, ok := frame.Get("n")
	if !ok {
		t.Fatal("expected output column under the node id")
	}
	if len(out) != 3 || out[0] != 1 || out[2] != 3 {
		t.Errorf("output = %v, want [1 2 3]", out)
	}

	nr, ok := res.Node("n")
	if !ok {
		t.Fatal("expected node result")
	}
	if nr.Status != StatusSucceeded || nr.Attempts != 1 {
		t.Errorf("node result = %+v, want succeeded in one attempt", nr)
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if succeeded, failed, pending := res.Counts(); succeeded != 1 || failed != 0 || pending != 0 {
		t.Errorf("counts = %d/%d/%d, want 1/0/0", succeeded, failed, pending)
	}
}

func TestRun_EmptyPlan(t *testing.T) {
	reg := op.NewRegistry()
	p, err := plan.Resolve(graph.NewStore(reg).Snapshot())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	res, err := newTestExecutor(t, fastConfig()).Run(context.Background(), p, reg, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Stages != 0 {
		t.Errorf("stages = %d, want 0", res.Stages)
	}
}

func TestRun_StageBarrier(t *testing.T) {
	// "later" depends only on "fast", but the stage barrier must hold it
	// back until the slow stage-0 sibling finished too.
	var slowDone atomic.Bool

	reg := op.NewRegistry(
		&stubOp{kind: "SLOW", fn: func(context.Context, *op.Invocation) ([]float64, error) {
			time.Sleep(50 * time.Millisecond)
			slowDone.Store(true)
			return []float64{1}, nil
		}},
		&stubOp{kind: "FAST", fn: func(context.Context, *op.Invocation) ([]float64, error) {
			return []float64{2}, nil
		}},
		&stubOp{kind: "CHECK", fn: func(context.Context, *op.Invocation) ([]float64, error) {
			if !slowDone.Load() {
				return nil, errors.New("started before the previous stage finished")
			}
			return []float64{3}, nil
		}},
	)
	p := buildPlan(t, reg,
		map[string]op.Kind{"slow": "SLOW", "fast": "FAST", "later": "CHECK"},
		[][2]string{{"fast", "later"}},
	)

	cfg := fastConfig()
	cfg.MaxAttempts = 1
	if _, err := newTestExecutor(t, cfg).Run(context.Background(), p, reg, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRun_DependencyOutputVisible(t *testing.T) {
	reg := op.NewRegistry(
		&stubOp{kind: "PRODUCE", fn: func(context.Context, *op.Invocation) ([]float64, error) {
			return []float64{10, 20}, nil
		}},
		&stubOp{kind: "CONSUME", fn: func(_ context.Context, inv *op.Invocation) ([]float64, error) {
			in, ok := inv.Frame.Get("a")
			if !ok {
				return nil, errors.New("dependency output missing from frame")
			}
			out := make([]float64, len(in))
			for i, v := range in {
				out[i] = v * 2
			}
			return out, nil
		}},
	)
	p := buildPlan(t, reg,
		map[string]op.Kind{"a": "PRODUCE", "b": "CONSUME"},
		[][2]string{{"a", "b"}},
	)
	frame := op.NewFrame()

	if _, err := newTestExecutor(t, fastConfig()).Run(context.Background(), p, reg, frame); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	out, _ := frame.Get("b")
	if len(out) != 2 || out[0] != 20 || out[1] != 40 {
		t.Errorf("output = %v, want [20 40]", out)
	}
}

func TestRun_WorkerLimit(t *testing.T) {
	var current, peak int64
	var mu sync.Mutex

	reg := op.NewRegistry(&stubOp{kind: "BUSY", fn: func(context.Context, *op.Invocation) ([]float64, error) {
		n := atomic.AddInt64(&current, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return []float64{1}, nil
	}})

	kinds := make(map[string]op.Kind)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		kinds[id] = "BUSY"
	}
	p := buildPlan(t, reg, kinds, nil)

	cfg := fastConfig()
	cfg.Workers = 2
	if _, err := newTestExecutor(t, cfg).Run(context.Background(), p, reg, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", peak)
	}
}

func TestRun_RetryThenSuccess(t *testing.T) {
	var calls int32
	reg := op.NewRegistry(&stubOp{kind: "FLAKY", fn: func(context.Context, *op.Invocation) ([]float64, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, errors.New("transient")
		}
		return []float64{42}, nil
	}})
	p := buildPlan(t, reg, map[string]op.Kind{"n": "FLAKY"}, nil)
	frame := op.NewFrame()

	res, err := newTestExecutor(t, fastConfig()).Run(context.Background(), p, reg, frame)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	nr, _ := res.Node("n")
	if nr.Status != StatusSucceeded {
		t.Fatalf("status = %s, want succeeded", nr.Status)
	}
	if nr.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", nr.Attempts)
	}
	if out, _ := frame.Get("n"); len(out) != 1 || out[0] != 42 {
		t.Errorf("output = %v, want [42]", out)
	}
}

func TestRun_NonRetryableFailsOnce(t *testing.T) {
	var calls int32
	reg := op.NewRegistry(&stubOp{kind: "BAD", fn: func(context.Context, *op.Invocation) ([]float64, error) {
		atomic.AddInt32(&calls, 1)
		return nil, apperrors.InvalidParameter("window_size", "must be a whole number")
	}})
	p := buildPlan(t, reg, map[string]op.Kind{"n": "BAD"}, nil)

	res, err := newTestExecutor(t, fastConfig()).Run(context.Background(), p, reg, nil)
	if !apperrors.IsCode(err, apperrors.ErrCodeExecutionAborted) {
		t.Fatalf("expected EXECUTION_ABORTED, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, non-retryable errors must not be retried", got)
	}

	nr, _ := res.Node("n")
	if nr.Status != StatusFailed || nr.Attempts != 1 {
		t.Errorf("node result = %+v, want failed after one attempt", nr)
	}
	if !apperrors.IsCode(nr.Err, apperrors.ErrCodeNodeExecutionFailed) {
		t.Errorf("node error = %v, want NODE_EXECUTION_FAILED", nr.Err)
	}
	if !apperrors.IsCode(nr.Err, apperrors.ErrCodeInvalidParameter) {
		t.Errorf("node error should wrap the cause, got %v", nr.Err)
	}
}

func TestRun_ExhaustedBudgetAborts(t *testing.T) {
	var calls int32
	reg := op.NewRegistry(&stubOp{kind: "DOOMED", fn: func(context.Context, *op.Invocation) ([]float64, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("still broken")
	}})
	p := buildPlan(t, reg, map[string]op.Kind{"n": "DOOMED"}, nil)

	cfg := fastConfig()
	cfg.MaxAttempts = 2
	res, err := newTestExecutor(t, cfg).Run(context.Background(), p, reg, nil)

	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeExecutionAborted {
		t.Fatalf("expected EXECUTION_ABORTED, got %v", err)
	}
	if appErr.Details["node"] != "n" {
		t.Errorf("expected the aborting node in details, got %v", appErr.Details)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want the full attempt budget of 2", got)
	}

	nr, _ := res.Node("n")
	if nr.Status != StatusFailed || nr.Attempts != 2 {
		t.Errorf("node result = %+v, want failed after 2 attempts", nr)
	}
}

func TestRun_SiblingsFinishAfterAbort(t *testing.T) {
	reg := op.NewRegistry(
		&stubOp{kind: "BAD", fn: func(context.Context, *op.Invocation) ([]float64, error) {
			return nil, apperrors.InvalidParameter("column", "no such column")
		}},
		&stubOp{kind: "SLOW", fn: func(context.Context, *op.Invocation) ([]float64, error) {
			time.Sleep(30 * time.Millisecond)
			return []float64{1}, nil
		}},
		&stubOp{kind: "AFTER", fn: func(context.Context, *op.Invocation) ([]float64, error) {
			return []float64{2}, nil
		}},
	)
	p := buildPlan(t, reg,
		map[string]op.Kind{"bad": "BAD", "slow": "SLOW", "after": "AFTER"},
		[][2]string{{"bad", "after"}, {"slow", "after"}},
	)

	res, err := newTestExecutor(t, fastConfig()).Run(context.Background(), p, reg, nil)
	if !apperrors.IsCode(err, apperrors.ErrCodeExecutionAborted) {
		t.Fatalf("expected EXECUTION_ABORTED, got %v", err)
	}

	slow, _ := res.Node("slow")
	if slow.Status != StatusSucceeded {
		t.Errorf("slow sibling = %s, want succeeded (in-flight work finishes)", slow.Status)
	}
	bad, _ := res.Node("bad")
	if bad.Status != StatusFailed {
		t.Errorf("bad = %s, want failed", bad.Status)
	}
	after, _ := res.Node("after")
	if after.Status != StatusPending {
		t.Errorf("after = %s, later stages must stay pending", after.Status)
	}
}

func TestRun_Cancellation(t *testing.T) {
	reg := op.NewRegistry(
		&stubOp{kind: "BLOCK", fn: func(ctx context.Context, _ *op.Invocation) ([]float64, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}},
		&stubOp{kind: "NEXT", fn: func(context.Context, *op.Invocation) ([]float64, error) {
			return []float64{1}, nil
		}},
	)
	p := buildPlan(t, reg,
		map[string]op.Kind{"a": "BLOCK", "b": "NEXT"},
		[][2]string{{"a", "b"}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	res, err := newTestExecutor(t, fastConfig()).Run(ctx, p, reg, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	a, _ := res.Node("a")
	if a.Status != StatusFailed {
		t.Errorf("a = %s, want failed", a.Status)
	}
	b, _ := res.Node("b")
	if b.Status != StatusPending {
		t.Errorf("b = %s, want pending", b.Status)
	}
}

func TestRun_CancelWhileWaitingForSlot(t *testing.T) {
	started := make(chan struct{}, 2)
	reg := op.NewRegistry(&stubOp{kind: "HOLD", fn: func(ctx context.Context, _ *op.Invocation) ([]float64, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}})
	p := buildPlan(t, reg, map[string]op.Kind{"a": "HOLD", "b": "HOLD"}, nil)

	cfg := fastConfig()
	cfg.Workers = 1
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// One node holds the only slot; the other is stuck acquiring.
		<-started
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	res, err := newTestExecutor(t, cfg).Run(ctx, p, reg, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	succeeded, failed, pending := res.Counts()
	if succeeded != 0 || failed != 1 || pending != 1 {
		t.Errorf("counts = %d/%d/%d, want 0 succeeded, 1 failed, 1 pending", succeeded, failed, pending)
	}
}

func TestRun_Builtins(t *testing.T) {
	reg := op.DefaultRegistry()
	s := graph.NewStore(reg)

	one := 1.0
	if err := s.AddNode("A", op.KindAdd, []op.Param{{Column: "x"}, {Value: &one}}); err != nil {
		t.Fatalf("AddNode(A): %v", err)
	}
	two := 2.0
	if err := s.AddNode("B", op.KindSMA, []op.Param{{Value: &two}, {Column: "A"}}); err != nil {
		t.Fatalf("AddNode(B): %v", err)
	}
	if err := s.AddEdge("A", "B"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	p, err := plan.Resolve(s.Snapshot())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	frame := op.NewFrame()
	frame.Set("x", []float64{1, 2, 3, 4, 5})

	res, err := newTestExecutor(t, fastConfig()).Run(context.Background(), p, reg, frame)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Stages != 2 {
		t.Errorf("stages = %d, want 2", res.Stages)
	}

	a, _ := frame.Get("A")
	if len(a) != 5 || a[0] != 2 || a[4] != 6 {
		t.Errorf("A = %v, want x+1", a)
	}

	b, _ := frame.Get("B")
	want := []float64{math.NaN(), 2.5, 3.5, 4.5, 5.5}
	if len(b) != len(want) {
		t.Fatalf("B length = %d, want %d", len(b), len(want))
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(b[i]) {
				t.Errorf("B[%d] = %v, want NaN", i, b[i])
			}
			continue
		}
		if b[i] != want[i] {
			t.Errorf("B[%d] = %v, want %v", i, b[i], want[i])
		}
	}
}

func TestRun_UnknownKindInPlanAborts(t *testing.T) {
	// A registry mismatch between planning and execution surfaces as a
	// non-retryable failure.
	planReg := op.NewRegistry(&stubOp{kind: "GONE", fn: func(context.Context, *op.Invocation) ([]float64, error) {
		return []float64{1}, nil
	}})
	p := buildPlan(t, planReg, map[string]op.Kind{"n": "GONE"}, nil)

	runReg := op.NewRegistry()
	res, err := newTestExecutor(t, fastConfig()).Run(context.Background(), p, runReg, nil)
	if !apperrors.IsCode(err, apperrors.ErrCodeExecutionAborted) {
		t.Fatalf("expected EXECUTION_ABORTED, got %v", err)
	}
	nr, _ := res.Node("n")
	if nr.Attempts != 1 {
		t.Errorf("attempts = %d, want 1 for unknown kind", nr.Attempts)
	}
}
