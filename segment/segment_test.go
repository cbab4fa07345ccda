package segment

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-motionseg/grid"
)

// rowSplit is a 4x4 field with two flat halves.
func rowSplit() *grid.Grid[float32] {
	return grid.FromSlice(4, 4, []float32{
		0, 0, 0, 0,
		0, 0, 0, 0,
		100, 100, 100, 100,
		100, 100, 100, 100,
	})
}

func TestEdgeCount(t *testing.T) {
	tests := []struct {
		h, w, want int
	}{
		{0, 5, 0},
		{1, 1, 0},
		{1, 4, 3},
		{4, 1, 3},
		{2, 2, 6},
		{3, 3, 20},
		{4, 4, 42},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EdgeCount(tt.h, tt.w), "%dx%d", tt.h, tt.w)
		assert.Len(t, BuildGraph(grid.New[float32](tt.h, tt.w)), tt.want, "%dx%d", tt.h, tt.w)
	}
}

func TestBuildGraph(t *testing.T) {
	field := grid.FromSlice(2, 2, []float32{1, 4, 6, 2})
	want := []Edge{
		{A: 0, B: 1, W: 3},
		{A: 0, B: 2, W: 5},
		{A: 0, B: 3, W: 1},
		{A: 1, B: 3, W: 2},
		{A: 1, B: 2, W: 2},
		{A: 2, B: 3, W: 4},
	}
	if diff := cmp.Diff(want, BuildGraph(field)); diff != "" {
		t.Errorf("BuildGraph() mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentRowSplit(t *testing.T) {
	field := rowSplit()
	edges := BuildGraph(field)
	u := Segment(edges, field.Len(), 10)

	require.Equal(t, 2, u.Count())
	top, bottom := u.Find(0), u.Find(15)
	assert.NotEqual(t, top, bottom)
	assert.Equal(t, 8, u.Size(top))
	assert.Equal(t, 8, u.Size(bottom))

	// Edges are sorted in place.
	for i := 1; i < len(edges); i++ {
		require.LessOrEqual(t, edges[i-1].W, edges[i].W)
	}

	labels := Labels(u, 4, 4).Data()
	want := []int{
		top, top, top, top,
		top, top, top, top,
		bottom, bottom, bottom, bottom,
		bottom, bottom, bottom, bottom,
	}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("Labels() mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentLargeThresholdMergesEverything(t *testing.T) {
	field := rowSplit()
	u := Segment(BuildGraph(field), field.Len(), 1000)
	assert.Equal(t, 1, u.Count())
}

func TestSegmentZeroThresholdKeepsOnlyEqualCells(t *testing.T) {
	field := grid.FromSlice(1, 4, []float32{1, 1, 2, 3})
	u := Segment(BuildGraph(field), field.Len(), 0)
	assert.Equal(t, 3, u.Count())
	assert.Equal(t, u.Find(0), u.Find(1))
}

func TestReduceRemovesSmallComponents(t *testing.T) {
	// A single spike inside a flat field survives segmentation alone.
	field := grid.New[float32](5, 5)
	field.SetRC(2, 2, 50)
	edges := BuildGraph(field)
	u := Segment(edges, field.Len(), 1)
	require.Equal(t, 2, u.Count())

	Reduce(edges, 2, u)
	assert.Equal(t, 1, u.Count())
	assert.Equal(t, 25, u.Size(u.Find(12)))
}

func TestReduceMinimumSizeProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, minSize := range []int{2, 5, 13} {
		field := grid.New[float32](12, 9)
		for i := range field.Data() {
			field.Set(i, rng.Float32()*100)
		}
		edges := BuildGraph(field)
		u := Segment(edges, field.Len(), 5)
		Reduce(edges, minSize, u)

		for _, r := range u.Roots() {
			assert.GreaterOrEqual(t, u.Size(r), minSize, "minSize %d", minSize)
		}
	}
}

func TestField(t *testing.T) {
	res := Field(rowSplit(), Params{Threshold: 10, MinSize: 3})
	assert.Equal(t, 2, res.Stats.Components)
	assert.Equal(t, 8, res.Stats.MinSize)
	assert.Equal(t, 8, res.Stats.MaxSize)
	assert.InDelta(t, 8.0, res.Stats.MeanSize, 1e-9)
	assert.InDelta(t, 0.0, res.Stats.StdDev, 1e-9)
	assert.InDelta(t, 8.0, res.Stats.MedianSize, 1e-9)
	assert.Equal(t, 4, res.Labels.Height())
	assert.Contains(t, res.Stats.String(), "components=2")
}

func TestSummarizeSingleComponent(t *testing.T) {
	res := Field(grid.New[float32](3, 3), Params{Threshold: 1})
	assert.Equal(t, Stats{Components: 1, MinSize: 9, MaxSize: 9, MeanSize: 9, MedianSize: 9}, res.Stats)
}
