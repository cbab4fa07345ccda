package flow

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/grid"
)

// ErrInvalidWindow is returned when a temporal window is shorter than one step.
var ErrInvalidWindow = errors.New("flow: temporal window must be at least 1")

// WindowCount returns how many full windows of length tsteps fit in n fields.
func WindowCount(n, tsteps int) int {
	if tsteps < 1 || tsteps > n {
		return 0
	}
	return n - tsteps + 1
}

// Mean averages the u and v components of equally sized fields.
func Mean(fields []*Field) *Field {
	if len(fields) == 0 {
		return NewField(0, 0)
	}
	sum := NewField(fields[0].Height(), fields[0].Width())
	for _, f := range fields {
		grid.AddInPlace(sum.U, f.U)
		grid.AddInPlace(sum.V, f.V)
	}
	inv := 1 / float32(len(fields))
	return &Field{U: grid.Scale(sum.U, inv), V: grid.Scale(sum.V, inv)}
}

// Aggregate slides a window of tsteps consecutive flow fields over fields and
// returns, for every window start i in [0, len(fields)-tsteps], the squared
// magnitude of the window's mean flow.
//
// Arguments:
//   - fields: Flow fields of consecutive frame pairs, all the same size.
//   - tsteps: The window length.
//
// Returns:
//   - []*grid.Grid[float32]: One scalar field per window; empty when tsteps exceeds
//     the number of fields.
//   - error: ErrInvalidWindow if tsteps < 1.
func Aggregate(fields []*Field, tsteps int) ([]*grid.Grid[float32], error) {
	if tsteps < 1 {
		return nil, errors.Wrapf(ErrInvalidWindow, "got %d", tsteps)
	}
	n := WindowCount(len(fields), tsteps)
	out := make([]*grid.Grid[float32], 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Mean(fields[i:i+tsteps]).SquaredMagnitude())
	}
	return out, nil
}
