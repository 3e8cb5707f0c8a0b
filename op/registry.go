package op

import (
	"sort"

	apperrors "github.com/kbukum/dagkit/errors"
)

// Registry maps operation kinds to execution units. It is populated at
// construction and read-only afterwards, so lookups need no locking.
type Registry struct {
	ops map[Kind]Operation
}

// NewRegistry creates a registry from the given operations. A later
// operation with the same kind replaces an earlier one.
func NewRegistry(ops ...Operation) *Registry {
	m := make(map[Kind]Operation, len(ops))
	for _, o := range ops {
		m[o.Kind()] = o
	}
	return &Registry{ops: m}
}

// DefaultRegistry returns a registry with the built-in operations.
func DefaultRegistry() *Registry {
	return NewRegistry(Builtins()...)
}

// Lookup retrieves the operation registered for kind.
func (r *Registry) Lookup(kind Kind) (Operation, error) {
	o, ok := r.ops[kind]
	if !ok {
		return nil, apperrors.UnknownKind(string(kind))
	}
	return o, nil
}

// RequiredParams returns the required parameter names for kind in
// declaration order.
func (r *Registry) RequiredParams(kind Kind) ([]string, error) {
	o, err := r.Lookup(kind)
	if err != nil {
		return nil, err
	}
	specs := o.Specs()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names, nil
}

// Validate checks that params can satisfy every required parameter of kind.
// It reports all unbound names at once, in declaration order. Deeper value
// checks are left to the operation at execution time.
func (r *Registry) Validate(kind Kind, params Params) error {
	o, err := r.Lookup(kind)
	if err != nil {
		return err
	}
	missing := bind(o.Specs(), params)
	if len(missing) > 0 {
		return apperrors.MissingParameters(string(kind), missing)
	}
	return nil
}

// Kinds returns the sorted names of all registered kinds.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.ops))
	for k := range r.ops {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

// bind walks the specs against params positionally and returns the names
// that could not be bound. A column-list spec greedily takes every column
// not needed by a later single-column spec.
func bind(specs []ParamSpec, params Params) []string {
	var missing []string
	cursor := 0
	remaining := len(params.Columns)

	singlesAfter := func(from int) int {
		n := 0
		for _, s := range specs[from:] {
			if s.Arity == ParamColumn {
				n++
			}
		}
		return n
	}

	for i, s := range specs {
		switch s.Arity {
		case ParamColumn:
			if remaining-cursor >= 1 {
				cursor++
			} else {
				missing = append(missing, s.Name)
			}
		case ParamColumnList:
			take := remaining - cursor - singlesAfter(i+1)
			if take >= 1 {
				cursor += take
			} else {
				missing = append(missing, s.Name)
			}
		case ParamScalar:
			if params.Value == nil {
				missing = append(missing, s.Name)
			}
		}
	}
	return missing
}
