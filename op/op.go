package op

import (
	"context"

	apperrors "github.com/kbukum/dagkit/errors"
)

// Kind identifies an operation type.
type Kind string

// Built-in operation kinds.
const (
	KindAdd Kind = "ADD"
	KindSMA Kind = "SMA"
	KindADX Kind = "ADX"
)

// Param is a single parameter entry as it appears in documents and API
// payloads. Exactly one of Column or Value is set.
type Param struct {
	Column string   `json:"column,omitempty"`
	Value  *float64 `json:"value,omitempty"`
}

// Params is the internal parameter form shared by every operation:
// ordered column references plus an optional scalar.
type Params struct {
	Columns []string
	Value   *float64
}

// ConvertParams turns external parameter entries into the internal form.
// Column entries keep their order; at most one value entry is allowed.
func ConvertParams(entries []Param) (Params, error) {
	var p Params
	for _, e := range entries {
		hasColumn := e.Column != ""
		hasValue := e.Value != nil
		switch {
		case hasColumn && hasValue:
			return Params{}, apperrors.InvalidParameter("parameters", "an entry sets both column and value")
		case hasColumn:
			p.Columns = append(p.Columns, e.Column)
		case hasValue:
			if p.Value != nil {
				return Params{}, apperrors.InvalidParameter("value", "given more than once")
			}
			v := *e.Value
			p.Value = &v
		default:
			return Params{}, apperrors.InvalidParameter("parameters", "an entry sets neither column nor value")
		}
	}
	return p, nil
}

// ExternalParams converts internal params back to document entries,
// columns first in order, then the scalar.
func ExternalParams(p Params) []Param {
	entries := make([]Param, 0, len(p.Columns)+1)
	for _, c := range p.Columns {
		entries = append(entries, Param{Column: c})
	}
	if p.Value != nil {
		v := *p.Value
		entries = append(entries, Param{Value: &v})
	}
	return entries
}

// Arity describes how a required parameter binds against Params.
type Arity int

const (
	// ParamColumn binds exactly one column reference.
	ParamColumn Arity = iota
	// ParamColumnList binds one or more column references.
	ParamColumnList
	// ParamScalar binds the scalar value.
	ParamScalar
)

// ParamSpec declares one required parameter of an operation kind.
type ParamSpec struct {
	Name  string
	Arity Arity
}

// Invocation carries everything an operation needs for one node execution.
type Invocation struct {
	// Node is the id of the executing node; its output is stored under it.
	Node   string
	Params Params
	Frame  *Frame
}

// Operation is a typed execution unit. Implementations are stateless and
// safe for concurrent use.
type Operation interface {
	// Kind returns the registered type name.
	Kind() Kind
	// Specs returns the required parameters in declaration order.
	Specs() []ParamSpec
	// Apply computes the output series for one node.
	Apply(ctx context.Context, inv *Invocation) ([]float64, error)
}
