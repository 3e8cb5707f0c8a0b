package op

import (
	"context"
	"reflect"
	"testing"

	apperrors "github.com/kbukum/dagkit/errors"
)

type stubOp struct {
	kind  Kind
	specs []ParamSpec
	fn    func(ctx context.Context, inv *Invocation) ([]float64, error)
}

func (s *stubOp) Kind() Kind         { return s.kind }
func (s *stubOp) Specs() []ParamSpec { return s.specs }

func (s *stubOp) Apply(ctx context.Context, inv *Invocation) ([]float64, error) {
	if s.fn == nil {
		return nil, nil
	}
	return s.fn(ctx, inv)
}

func floatPtr(v float64) *float64 { return &v }

func TestRegistry_Lookup(t *testing.T) {
	reg := DefaultRegistry()

	unit, err := reg.Lookup(KindAdd)
	if err != nil {
		t.Fatalf("Lookup(ADD) failed: %v", err)
	}
	if unit.Kind() != KindAdd {
		t.Errorf("expected kind ADD, got %s", unit.Kind())
	}

	_, err = reg.Lookup("EMA")
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeUnknownKind) {
		t.Errorf("expected UNKNOWN_KIND, got %v", err)
	}
}

func TestRegistry_RequiredParams(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		kind Kind
		want []string
	}{
		{KindAdd, []string{"columns", "value"}},
		{KindSMA, []string{"window_size", "column"}},
		{KindADX, []string{"high", "low", "close", "time_period"}},
	}
	for _, tc := range tests {
		got, err := reg.RequiredParams(tc.kind)
		if err != nil {
			t.Fatalf("RequiredParams(%s) failed: %v", tc.kind, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("RequiredParams(%s) = %v, want %v", tc.kind, got, tc.want)
		}
	}

	if _, err := reg.RequiredParams("NOPE"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestRegistry_Validate(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		name    string
		kind    Kind
		params  Params
		missing []string
	}{
		{"add complete", KindAdd, Params{Columns: []string{"x", "y"}, Value: floatPtr(2)}, nil},
		{"add single column", KindAdd, Params{Columns: []string{"x"}, Value: floatPtr(2)}, nil},
		{"add no value", KindAdd, Params{Columns: []string{"x"}}, []string{"value"}},
		{"add no columns", KindAdd, Params{Value: floatPtr(2)}, []string{"columns"}},
		{"add empty", KindAdd, Params{}, []string{"columns", "value"}},
		{"sma complete", KindSMA, Params{Columns: []string{"a"}, Value: floatPtr(3)}, nil},
		{"sma no window", KindSMA, Params{Columns: []string{"a"}}, []string{"window_size"}},
		{"sma empty", KindSMA, Params{}, []string{"window_size", "column"}},
		{"adx complete", KindADX, Params{Columns: []string{"h", "l", "c"}, Value: floatPtr(14)}, nil},
		{"adx two columns", KindADX, Params{Columns: []string{"h", "l"}, Value: floatPtr(14)}, []string{"close"}},
		{"adx no scalar", KindADX, Params{Columns: []string{"h", "l", "c"}}, []string{"time_period"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := reg.Validate(tc.kind, tc.params)
			if tc.missing == nil {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			appErr, ok := apperrors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != apperrors.ErrCodeMissingParameter {
				t.Fatalf("expected MISSING_PARAMETER, got %s", appErr.Code)
			}
			got, ok := appErr.Details["missing"].([]string)
			if !ok {
				t.Fatalf("expected missing detail, got %v", appErr.Details["missing"])
			}
			if !reflect.DeepEqual(got, tc.missing) {
				t.Errorf("missing = %v, want %v", got, tc.missing)
			}
		})
	}
}

func TestRegistry_Validate_UnknownKind(t *testing.T) {
	reg := DefaultRegistry()
	err := reg.Validate("BOGUS", Params{})
	if !apperrors.IsCode(err, apperrors.ErrCodeUnknownKind) {
		t.Errorf("expected UNKNOWN_KIND, got %v", err)
	}
}

func TestRegistry_Kinds_Sorted(t *testing.T) {
	reg := DefaultRegistry()
	got := reg.Kinds()
	want := []string{"ADD", "ADX", "SMA"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Kinds() = %v, want %v", got, want)
	}
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	first := &stubOp{kind: "X", specs: []ParamSpec{{Name: "a", Arity: ParamScalar}}}
	second := &stubOp{kind: "X", specs: []ParamSpec{{Name: "b", Arity: ParamScalar}}}
	reg := NewRegistry(first, second)

	got, err := reg.RequiredParams("X")
	if err != nil {
		t.Fatalf("RequiredParams failed: %v", err)
	}
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("expected later registration to win, got %v", got)
	}
}

func TestConvertParams(t *testing.T) {
	entries := []Param{
		{Column: "x"},
		{Column: "y"},
		{Value: floatPtr(2.5)},
	}
	p, err := ConvertParams(entries)
	if err != nil {
		t.Fatalf("ConvertParams failed: %v", err)
	}
	if !reflect.DeepEqual(p.Columns, []string{"x", "y"}) {
		t.Errorf("columns = %v, want [x y]", p.Columns)
	}
	if p.Value == nil || *p.Value != 2.5 {
		t.Errorf("value = %v, want 2.5", p.Value)
	}
}

func TestConvertParams_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []Param
	}{
		{"both sides set", []Param{{Column: "x", Value: floatPtr(1)}}},
		{"neither side set", []Param{{}}},
		{"two values", []Param{{Value: floatPtr(1)}, {Value: floatPtr(2)}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ConvertParams(tc.entries)
			if !apperrors.IsCode(err, apperrors.ErrCodeInvalidParameter) {
				t.Errorf("expected INVALID_PARAMETER, got %v", err)
			}
		})
	}
}

func TestConvertParams_Empty(t *testing.T) {
	p, err := ConvertParams(nil)
	if err != nil {
		t.Fatalf("ConvertParams(nil) failed: %v", err)
	}
	if len(p.Columns) != 0 || p.Value != nil {
		t.Errorf("expected empty params, got %+v", p)
	}
}

func TestExternalParams_Order(t *testing.T) {
	p := Params{Columns: []string{"a", "b"}, Value: floatPtr(7)}
	entries := ExternalParams(p)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Column != "a" || entries[1].Column != "b" {
		t.Errorf("expected columns first in order, got %+v", entries)
	}
	if entries[2].Value == nil || *entries[2].Value != 7 {
		t.Errorf("expected trailing value entry, got %+v", entries[2])
	}

	// Round-trip back to internal form.
	back, err := ConvertParams(entries)
	if err != nil {
		t.Fatalf("round-trip failed: %v", err)
	}
	if !reflect.DeepEqual(back.Columns, p.Columns) || *back.Value != *p.Value {
		t.Errorf("round-trip = %+v, want %+v", back, p)
	}
}
