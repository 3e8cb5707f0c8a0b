// Package graph holds the mutable operation graph: typed nodes, dependency
// edges, and the acyclicity guarantee enforced on every mutation.
//
// A Store accepts concurrent mutations and queries; execution works on
// immutable Snapshots so a running plan never observes a half-applied
// change.
package graph
