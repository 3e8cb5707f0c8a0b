// Package executor runs resolved plans.
//
// Execution proceeds stage by stage: every node of a stage must finish
// before the next stage starts, so a node can always read its dependencies'
// outputs from the frame. Within a stage, nodes run concurrently under a
// shared worker limit. Failed attempts are retried with exponential backoff
// until the per-node attempt budget runs out; a node that exhausts its
// budget, or fails with a non-retryable error, aborts the run. Attempts
// already in flight still finish, nodes of later stages never start.
package executor
