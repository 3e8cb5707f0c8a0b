// Package pipeline ties the graph store, planner, executor, and frame into
// a single session handle.
//
// A Pipeline owns one mutable graph and one data frame. Mutations go through
// the same validation as the underlying store; Execute snapshots the graph,
// resolves it into stages, and runs it. Export and Load move whole graphs in
// and out as persist documents, and an optional autosave store persists the
// graph after every successful mutation.
//
// Pipelines are safe for concurrent use. Execute works on an immutable
// snapshot, so mutations during a run affect only later runs.
package pipeline
