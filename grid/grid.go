// Package grid provides the dense, row-major 2-D container shared by every image,
// flow field and kernel buffer in the engine.
//
// A Grid owns its storage. Copies made through Clone are deep, and Init always
// reallocates, so two distinct Grid values never alias each other.
package grid

import "math"

// Number is the set of element types that support the arithmetic operations of
// this package (Add, Sub, Mul, Scale, Sum, MinMax).
type Number interface {
	~float32 | ~float64 | ~int | ~int32 | ~int64 | ~uint8 | ~uint16
}

// Grid is a dense 2-D array addressed by the linear index row*width+col.
//
// Invariant: len(data) == height*width at all times.
type Grid[T any] struct {
	height int
	width  int
	data   []T
}

// New allocates a zero-filled grid of the given dimensions.
//
// Arguments:
//   - h: The number of rows (clamped to >= 0).
//   - w: The number of columns (clamped to >= 0).
//
// Returns:
//   - *Grid[T]: The zero-filled grid.
func New[T any](h, w int) *Grid[T] {
	g := &Grid[T]{}
	g.Init(h, w)
	return g
}

// FromSlice builds a grid from row-major values. The slice is copied.
// It panics if len(values) != h*w.
func FromSlice[T any](h, w int, values []T) *Grid[T] {
	if len(values) != h*w {
		panic("grid: slice length does not match dimensions")
	}
	g := New[T](h, w)
	copy(g.data, values)
	return g
}

// Init resets the grid to h x w zero values. It is idempotent and always rebuilds
// the storage, so any previously returned Data slice is detached.
// It panics if h*w overflows int.
func (g *Grid[T]) Init(h, w int) {
	if h < 0 {
		h = 0
	}
	if w < 0 {
		w = 0
	}
	if w != 0 && h > math.MaxInt/w {
		panic("grid: dimensions overflow")
	}
	g.height = h
	g.width = w
	g.data = make([]T, h*w)
}

// Height returns the number of rows.
func (g *Grid[T]) Height() int { return g.height }

// Width returns the number of columns.
func (g *Grid[T]) Width() int { return g.width }

// Len returns height*width.
func (g *Grid[T]) Len() int { return len(g.data) }

// Index converts a (row, col) pair into a linear index.
func (g *Grid[T]) Index(row, col int) int { return row*g.width + col }

// At returns the element at linear index i.
func (g *Grid[T]) At(i int) T { return g.data[i] }

// Set stores v at linear index i.
func (g *Grid[T]) Set(i int, v T) { g.data[i] = v }

// AtRC returns the element at (row, col).
func (g *Grid[T]) AtRC(row, col int) T { return g.data[row*g.width+col] }

// SetRC stores v at (row, col).
func (g *Grid[T]) SetRC(row, col int, v T) { g.data[row*g.width+col] = v }

// InBounds reports whether (row, col) addresses a cell of the grid.
func (g *Grid[T]) InBounds(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

// Data exposes the backing row-major slice. Writes through it mutate the grid.
func (g *Grid[T]) Data() []T { return g.data }

// Clone returns a deep copy.
func (g *Grid[T]) Clone() *Grid[T] {
	c := &Grid[T]{height: g.height, width: g.width, data: make([]T, len(g.data))}
	copy(c.data, g.data)
	return c
}

// SameSize reports whether two grids have identical dimensions.
func SameSize[A, B any](a *Grid[A], b *Grid[B]) bool {
	return a.height == b.height && a.width == b.width
}

// Crop returns the top-left h x w region of g. Cells outside g are zero.
func Crop[T any](g *Grid[T], h, w int) *Grid[T] {
	out := New[T](h, w)
	for r := 0; r < h && r < g.height; r++ {
		for c := 0; c < w && c < g.width; c++ {
			out.data[r*w+c] = g.data[r*g.width+c]
		}
	}
	return out
}

// Map applies fn to every element of g, producing a new grid of the same size.
func Map[T, U any](g *Grid[T], fn func(T) U) *Grid[U] {
	out := New[U](g.height, g.width)
	for i, v := range g.data {
		out.data[i] = fn(v)
	}
	return out
}
