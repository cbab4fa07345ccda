package images

import (
	"github.com/nvr-ai/go-motionseg/grid"
)

// DefaultVectorSpacing is the distance in cells between drawn flow vectors.
const DefaultVectorSpacing = 10

// DrawLine rasterises the segment (r0,c0)-(r1,c1) into g with Bresenham's
// algorithm. Points outside g are skipped.
func DrawLine[T any](g *grid.Grid[T], r0, c0, r1, c1 int, v T) {
	dc := abs(c1 - c0)
	dr := -abs(r1 - r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}
	e := dc + dr

	for {
		if g.InBounds(r0, c0) {
			g.SetRC(r0, c0, v)
		}
		if r0 == r1 && c0 == c1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

// DrawFlowVectors renders a flow field as a needle diagram: starting at every
// spacing-th row and column, a line of value 255 runs from the cell to the cell
// displaced by its flow vector. Vectors are truncated to whole cells, and a
// vector whose end point falls outside the field is not drawn.
//
// Arguments:
//   - f: The flow field; index 0 is the column displacement.
//   - spacing: The sampling step; values below 1 use DefaultVectorSpacing.
//
// Returns:
//   - *grid.Grid[uint8]: A black canvas the size of f with the vectors drawn.
func DrawFlowVectors(f *grid.Grid[grid.Vec2], spacing int) *grid.Grid[uint8] {
	if spacing < 1 {
		spacing = DefaultVectorSpacing
	}
	canvas := grid.New[uint8](f.Height(), f.Width())
	for r := 0; r < f.Height(); r += spacing {
		for c := 0; c < f.Width(); c += spacing {
			v := f.AtRC(r, c)
			r1, c1 := r+int(v.DY()), c+int(v.DX())
			if !canvas.InBounds(r1, c1) {
				continue
			}
			DrawLine(canvas, r, c, r1, c1, 255)
		}
	}
	return canvas
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
