package executor

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Status of a node within one run.
type Status string

const (
	// StatusPending marks a node that never started.
	StatusPending Status = "pending"
	// StatusRunning marks a node with an attempt in flight.
	StatusRunning Status = "running"
	// StatusSucceeded marks a node whose output is in the frame.
	StatusSucceeded Status = "succeeded"
	// StatusFailed marks a node whose attempts are spent.
	StatusFailed Status = "failed"
)

// NodeResult is the recorded outcome of a single node.
type NodeResult struct {
	ID       string
	Status   Status
	Attempts int
	Duration time.Duration
	Err      error
}

// Result describes one run. Node outputs live in the frame the run was
// given; the result carries statuses, attempt counts and errors. It is not
// safe for concurrent use until Run has returned it.
type Result struct {
	RunID    string
	Stages   int
	Duration time.Duration

	nodes map[string]*NodeResult
}

func newResult(ids []string) *Result {
	r := &Result{
		RunID: uuid.NewString(),
		nodes: make(map[string]*NodeResult, len(ids)),
	}
	for _, id := range ids {
		r.nodes[id] = &NodeResult{ID: id, Status: StatusPending}
	}
	return r
}

// Node returns the recorded outcome for id.
func (r *Result) Node(id string) (NodeResult, bool) {
	n, ok := r.nodes[id]
	if !ok {
		return NodeResult{}, false
	}
	return *n, true
}

// Nodes returns all node outcomes sorted by id.
func (r *Result) Nodes() []NodeResult {
	out := make([]NodeResult, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Counts returns how many nodes succeeded, failed and never finished.
func (r *Result) Counts() (succeeded, failed, pending int) {
	for _, n := range r.nodes {
		switch n.Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		default:
			pending++
		}
	}
	return
}

func (r *Result) node(id string) *NodeResult {
	return r.nodes[id]
}
