// Package segment partitions a scalar field into connected regions with a
// Felzenszwalb-style graph segmentation.
//
// The field is turned into an 8-connected neighbour graph whose edge weights are
// absolute value differences. Edges are merged in ascending weight order while
// every component keeps an adaptive tolerance, and a reduction pass then absorbs
// components below a minimum size into their neighbours.
package segment

import (
	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-motionseg/grid"
)

// Edge connects two cells, identified by linear index, with a non-negative weight.
type Edge struct {
	A, B int
	W    float32
}

// EdgeCount returns the number of edges BuildGraph produces for an h x w field:
// right, down, down-right and down-left neighbours.
func EdgeCount(h, w int) int {
	if h <= 0 || w <= 0 {
		return 0
	}
	return h*(w-1) + (h-1)*w + 2*(h-1)*(w-1)
}

// BuildGraph returns one edge per unique neighbour pair of field, weighted by the
// absolute difference of the two cell values.
//
// Every cell links to its right, down, down-right and down-left neighbour when
// they exist, which covers 8-connectivity without duplicates.
//
// Arguments:
//   - field: The scalar field to segment.
//
// Returns:
//   - []Edge: Exactly EdgeCount(height, width) edges.
func BuildGraph(field *grid.Grid[float32]) []Edge {
	h, w := field.Height(), field.Width()
	edges := make([]Edge, 0, EdgeCount(h, w))
	data := field.Data()

	link := func(a, b int) {
		edges = append(edges, Edge{A: a, B: b, W: math32.Abs(data[a] - data[b])})
	}

	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			i := r*w + c
			if c+1 < w {
				link(i, i+1)
			}
			if r+1 < h {
				link(i, i+w)
				if c+1 < w {
					link(i, i+w+1)
				}
				if c > 0 {
					link(i, i+w-1)
				}
			}
		}
	}
	return edges
}
