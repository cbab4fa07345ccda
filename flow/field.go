package flow

import "github.com/nvr-ai/go-motionseg/grid"

// Field is a dense flow field stored as separate horizontal (U) and vertical (V)
// component grids of equal size.
type Field struct {
	U *grid.Grid[float32]
	V *grid.Grid[float32]
}

// NewField allocates a zero flow field.
func NewField(h, w int) *Field {
	return &Field{U: grid.New[float32](h, w), V: grid.New[float32](h, w)}
}

// FieldFromVectors splits a vector grid into a Field.
func FieldFromVectors(g *grid.Grid[grid.Vec2]) *Field {
	return &Field{U: grid.Channel(g, 0), V: grid.Channel(g, 1)}
}

// Height returns the number of rows.
func (f *Field) Height() int { return f.U.Height() }

// Width returns the number of columns.
func (f *Field) Width() int { return f.U.Width() }

// At returns the flow vector at linear index i.
func (f *Field) At(i int) grid.Vec2 { return grid.Vec2{f.U.At(i), f.V.At(i)} }

// Vectors zips the components into a single vector grid.
func (f *Field) Vectors() *grid.Grid[grid.Vec2] { return grid.Merge(f.U, f.V) }

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	return &Field{U: f.U.Clone(), V: f.V.Clone()}
}

// SquaredMagnitude returns u*u + v*v per cell.
func (f *Field) SquaredMagnitude() *grid.Grid[float32] {
	return grid.Add(grid.Mul(f.U, f.U), grid.Mul(f.V, f.V))
}
