// Package plan orders a dependency graph into executable stages.
//
// A stage groups nodes whose dependencies are all satisfied by earlier
// stages, so the members of one stage can run concurrently. Stage membership
// is deterministic: it depends only on the graph, never on map iteration
// order.
package plan
