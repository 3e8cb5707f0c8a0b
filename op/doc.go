// Package op defines the typed operations a graph node can execute.
//
// An Operation pairs a kind (its registered type name) with the ordered
// list of parameters it requires and the computation it performs over
// columns of a Frame. The Registry maps kinds to operations and validates
// node parameters before a node enters the graph.
//
// # Usage
//
//	reg := op.DefaultRegistry()
//	unit, err := reg.Lookup("SMA")
//	out, err := unit.Apply(ctx, &op.Invocation{Node: "sma1", Params: params, Frame: frame})
package op
