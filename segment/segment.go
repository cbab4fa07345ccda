package segment

import (
	"sort"

	"github.com/nvr-ai/go-motionseg/disjointset"
	"github.com/nvr-ai/go-motionseg/grid"
)

// Params controls a segmentation run.
type Params struct {
	// Threshold is the initial tolerance of every component. Larger values give
	// larger components.
	Threshold float32 `json:"threshold"`
	// MinSize is the smallest component kept by the reduction pass. Values below 2
	// disable reduction.
	MinSize int `json:"min_size"`
}

// Segment merges the cells 0..numCells-1 along edges in ascending weight order.
//
// Each component starts with tolerance threshold. An edge joins two distinct
// components when its weight does not exceed either tolerance; the surviving
// component's tolerance becomes weight + threshold/mergedSize. Components never
// split.
//
// Edges are sorted in place.
//
// Arguments:
//   - edges: The graph, typically from BuildGraph.
//   - numCells: The number of cells; keys are the cells' linear indices.
//   - threshold: The initial per-component tolerance.
//
// Returns:
//   - *disjointset.Set[int]: The partition.
func Segment(edges []Edge, numCells int, threshold float32) *disjointset.Set[int] {
	sort.Slice(edges, func(i, j int) bool { return edges[i].W < edges[j].W })

	u := disjointset.New[int](numCells)
	tol := make([]float32, numCells)
	for i := 0; i < numCells; i++ {
		u.MakeSet(i)
		tol[i] = threshold
	}

	for _, e := range edges {
		a, b := u.Find(e.A), u.Find(e.B)
		if a == b {
			continue
		}
		if e.W <= tol[a] && e.W <= tol[b] {
			root := u.Join(a, b)
			tol[root] = e.W + threshold/float32(u.Size(root))
		}
	}
	return u
}

// Reduce walks edges once and joins the two components of every edge when either
// is smaller than minSize, regardless of weight.
func Reduce(edges []Edge, minSize int, u *disjointset.Set[int]) {
	for _, e := range edges {
		a, b := u.Find(e.A), u.Find(e.B)
		if a != b && (u.Size(a) < minSize || u.Size(b) < minSize) {
			u.Join(a, b)
		}
	}
}

// Labels returns, for every cell of an h x w field, the representative of its
// component.
func Labels(u *disjointset.Set[int], h, w int) *grid.Grid[int] {
	labels := grid.New[int](h, w)
	for i := 0; i < labels.Len(); i++ {
		labels.Set(i, u.Find(i))
	}
	return labels
}

// Result is the outcome of Field.
type Result struct {
	Set    *disjointset.Set[int]
	Labels *grid.Grid[int]
	Stats  Stats
}

// Field builds the graph of field, segments it, reduces small components and
// labels every cell.
//
// Arguments:
//   - field: The scalar field to segment.
//   - p: Segmentation parameters.
//
// Returns:
//   - *Result: The partition, per-cell labels and component statistics.
func Field(field *grid.Grid[float32], p Params) *Result {
	edges := BuildGraph(field)
	u := Segment(edges, field.Len(), p.Threshold)
	if p.MinSize > 1 {
		Reduce(edges, p.MinSize, u)
	}
	return &Result{
		Set:    u,
		Labels: Labels(u, field.Height(), field.Width()),
		Stats:  Summarize(u),
	}
}
