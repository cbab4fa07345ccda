package grid

import "github.com/chewxy/math32"

// RGB is an 8-bit-per-channel colour pixel in R, G, B order.
type RGB [3]uint8

// Vec2 is a 2-component flow vector: index 0 is dx (columns), index 1 is dy (rows).
type Vec2 [2]float32

// DX returns the horizontal component.
func (v Vec2) DX() float32 { return v[0] }

// DY returns the vertical component.
func (v Vec2) DY() float32 { return v[1] }

// Channel extracts component n (0 or 1) of a vector grid as a scalar grid.
func Channel(g *Grid[Vec2], n int) *Grid[float32] {
	return Map(g, func(v Vec2) float32 { return v[n] })
}

// ColorChannel extracts colour channel n (0..2) of an RGB grid as floats.
func ColorChannel(g *Grid[RGB], n int) *Grid[float32] {
	return Map(g, func(p RGB) float32 { return float32(p[n]) })
}

// Merge zips two equally sized scalar grids into a vector grid.
func Merge(u, v *Grid[float32]) *Grid[Vec2] {
	mustMatch(u, v)
	out := New[Vec2](u.height, u.width)
	for i := range out.data {
		out.data[i] = Vec2{u.data[i], v.data[i]}
	}
	return out
}

// Magnitude returns the Euclidean length of every vector.
func Magnitude(g *Grid[Vec2]) *Grid[float32] {
	return Map(g, func(v Vec2) float32 {
		return math32.Sqrt(v[0]*v[0] + v[1]*v[1])
	})
}

// Direction returns atan2(dy, dx) of every vector, in radians.
func Direction(g *Grid[Vec2]) *Grid[float32] {
	return Map(g, func(v Vec2) float32 { return math32.Atan2(v[1], v[0]) })
}
