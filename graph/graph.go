package graph

import "github.com/kbukum/dagkit/op"

// Node is one operation instance in the graph. Once stored it never changes;
// replacing a node means removing and re-adding it.
type Node struct {
	ID     string
	Kind   op.Kind
	Params op.Params
}

// Edge represents a dependency: Target consumes the output of Source.
type Edge struct {
	Source string
	Target string
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	return Node{ID: n.ID, Kind: n.Kind, Params: cloneParams(n.Params)}
}

func cloneParams(p op.Params) op.Params {
	out := op.Params{}
	if p.Columns != nil {
		out.Columns = make([]string, len(p.Columns))
		copy(out.Columns, p.Columns)
	}
	if p.Value != nil {
		v := *p.Value
		out.Value = &v
	}
	return out
}
