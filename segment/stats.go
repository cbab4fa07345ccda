package segment

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/nvr-ai/go-motionseg/disjointset"
)

// Stats summarises the component sizes of a partition.
type Stats struct {
	Components int
	MinSize    int
	MaxSize    int
	MeanSize   float64
	StdDev     float64
	MedianSize float64
}

// String formats the statistics for log lines.
func (s Stats) String() string {
	return fmt.Sprintf("components=%d size[min=%d max=%d mean=%.1f median=%.1f sd=%.1f]",
		s.Components, s.MinSize, s.MaxSize, s.MeanSize, s.MedianSize, s.StdDev)
}

// Summarize computes component-size statistics of u.
func Summarize(u *disjointset.Set[int]) Stats {
	roots := u.Roots()
	if len(roots) == 0 {
		return Stats{}
	}

	sizes := make([]float64, len(roots))
	for i, r := range roots {
		sizes[i] = float64(u.Size(r))
	}
	sort.Float64s(sizes)

	s := Stats{
		Components: len(sizes),
		MinSize:    int(sizes[0]),
		MaxSize:    int(sizes[len(sizes)-1]),
		MedianSize: stat.Quantile(0.5, stat.Empirical, sizes, nil),
	}
	if len(sizes) > 1 {
		s.MeanSize, s.StdDev = stat.MeanStdDev(sizes, nil)
	} else {
		s.MeanSize = sizes[0]
	}
	return s
}
