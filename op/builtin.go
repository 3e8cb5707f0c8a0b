package op

import (
	"context"
	"math"

	apperrors "github.com/kbukum/dagkit/errors"
)

// Builtins returns the built-in operation set: ADD, SMA and ADX.
func Builtins() []Operation {
	return []Operation{addOp{}, smaOp{}, adxOp{}}
}

// --- ADD ---

// addOp sums the referenced columns element-wise and adds a scalar.
type addOp struct{}

func (addOp) Kind() Kind { return KindAdd }

func (addOp) Specs() []ParamSpec {
	return []ParamSpec{
		{Name: "columns", Arity: ParamColumnList},
		{Name: "value", Arity: ParamScalar},
	}
}

func (addOp) Apply(_ context.Context, inv *Invocation) ([]float64, error) {
	if len(inv.Params.Columns) == 0 {
		return nil, apperrors.InvalidParameter("columns", "at least one column is required")
	}
	if inv.Params.Value == nil {
		return nil, apperrors.InvalidParameter("value", "a numeric value is required")
	}
	cols, err := inv.Frame.Columns(inv.Params.Columns)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(cols[0]))
	for i := range out {
		sum := *inv.Params.Value
		for _, c := range cols {
			sum += c[i]
		}
		out[i] = sum
	}
	return out, nil
}

// --- SMA ---

// smaOp computes a simple moving average over one column. Positions before
// the window fills are NaN.
type smaOp struct{}

func (smaOp) Kind() Kind { return KindSMA }

func (smaOp) Specs() []ParamSpec {
	return []ParamSpec{
		{Name: "window_size", Arity: ParamScalar},
		{Name: "column", Arity: ParamColumn},
	}
}

func (smaOp) Apply(_ context.Context, inv *Invocation) ([]float64, error) {
	window, err := wholeNumber(inv.Params.Value, "window_size")
	if err != nil {
		return nil, err
	}
	if window < 1 {
		return nil, apperrors.InvalidParameter("window_size", "must be at least 1")
	}
	if len(inv.Params.Columns) == 0 {
		return nil, apperrors.InvalidParameter("column", "a column reference is required")
	}
	col, ok := inv.Frame.Get(inv.Params.Columns[0])
	if !ok {
		return nil, apperrors.InvalidParameter("column", "references a column that does not exist")
	}

	out := make([]float64, len(col))
	sum := 0.0
	for i, v := range col {
		sum += v
		if i >= window {
			sum -= col[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// --- ADX ---

// adxOp computes Wilder's average directional index over high, low and
// close columns. The first valid value appears at index 2*period-1;
// everything before is NaN.
type adxOp struct{}

func (adxOp) Kind() Kind { return KindADX }

func (adxOp) Specs() []ParamSpec {
	return []ParamSpec{
		{Name: "high", Arity: ParamColumn},
		{Name: "low", Arity: ParamColumn},
		{Name: "close", Arity: ParamColumn},
		{Name: "time_period", Arity: ParamScalar},
	}
}

func (adxOp) Apply(_ context.Context, inv *Invocation) ([]float64, error) {
	period, err := wholeNumber(inv.Params.Value, "time_period")
	if err != nil {
		return nil, err
	}
	if period < 2 {
		return nil, apperrors.InvalidParameter("time_period", "must be at least 2")
	}
	if len(inv.Params.Columns) < 3 {
		return nil, apperrors.InvalidParameter("high", "high, low and close columns are required")
	}
	cols, err := inv.Frame.Columns(inv.Params.Columns[:3])
	if err != nil {
		return nil, err
	}
	high, low, closes := cols[0], cols[1], cols[2]

	n := len(high)
	out := nanSeries(n)
	if n < 2*period {
		return out, nil
	}

	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := high[i] - high[i-1]
		downMove := low[i-1] - low[i]
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - closes[i-1])
		lc := math.Abs(low[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	// Wilder smoothing seeded with the first period sums.
	var atr, pdm, mdm float64
	for i := 1; i <= period; i++ {
		atr += tr[i]
		pdm += plusDM[i]
		mdm += minusDM[i]
	}

	dx := make([]float64, n)
	dx[period] = directionalIndex(atr, pdm, mdm)
	for i := period + 1; i < n; i++ {
		atr = atr - atr/float64(period) + tr[i]
		pdm = pdm - pdm/float64(period) + plusDM[i]
		mdm = mdm - mdm/float64(period) + minusDM[i]
		dx[i] = directionalIndex(atr, pdm, mdm)
	}

	// First ADX is the average of the first period DX values, then
	// Wilder smoothing takes over.
	var sum float64
	for i := period; i < 2*period; i++ {
		sum += dx[i]
	}
	out[2*period-1] = sum / float64(period)
	for i := 2 * period; i < n; i++ {
		out[i] = (out[i-1]*float64(period-1) + dx[i]) / float64(period)
	}
	return out, nil
}

func directionalIndex(atr, pdm, mdm float64) float64 {
	if atr == 0 {
		return 0
	}
	plusDI := 100 * pdm / atr
	minusDI := 100 * mdm / atr
	total := plusDI + minusDI
	if total == 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / total
}

func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

func wholeNumber(v *float64, name string) (int, error) {
	if v == nil {
		return 0, apperrors.InvalidParameter(name, "a numeric value is required")
	}
	if *v != math.Trunc(*v) {
		return 0, apperrors.InvalidParameter(name, "must be a whole number")
	}
	return int(*v), nil
}
