package kernels

import "github.com/nvr-ai/go-motionseg/grid"

// pyramidA parameterises the 5-tap Burt–Adelson smoothing kernel.
const pyramidA = 0.375

// pyramidKernel is {0.25-a/2, 0.25, a, 0.25, 0.25-a/2}.
var pyramidKernel = []float32{
	0.25 - pyramidA/2,
	0.25,
	pyramidA,
	0.25,
	0.25 - pyramidA/2,
}

// Pyramid builds a Gaussian pyramid with the given number of levels.
//
// Level 0 is a copy of src. Each further level smooths the previous one with the
// 5-tap kernel and keeps every other row and column, so its dimensions are
// ceil(dim/2) of the level above. Levels below 1 are treated as 1.
//
// Arguments:
//   - src: The finest level. It is not modified.
//   - levels: The number of levels to return.
//   - opt: Convolution options.
//
// Returns:
//   - []*grid.Grid[float32]: Exactly max(levels, 1) grids, finest first.
func Pyramid(src *grid.Grid[float32], levels int, opt Options) []*grid.Grid[float32] {
	if levels < 1 {
		levels = 1
	}
	py := make([]*grid.Grid[float32], 0, levels)
	py = append(py, src.Clone())

	for l := 1; l < levels; l++ {
		prev := py[l-1]
		smooth := Separable(prev, pyramidKernel, opt)

		h := (prev.Height() + 1) / 2
		w := (prev.Width() + 1) / 2
		next := grid.New[float32](h, w)
		for r := 0; r < h; r++ {
			for c := 0; c < w; c++ {
				next.SetRC(r, c, smooth.AtRC(2*r, 2*c))
			}
		}
		py = append(py, next)
	}
	return py
}

// Upsample2 doubles both dimensions of src, sampling it bilinearly at half-integer
// source coordinates.
func Upsample2(src *grid.Grid[float32]) *grid.Grid[float32] {
	h, w := 2*src.Height(), 2*src.Width()
	out := grid.New[float32](h, w)
	if src.Len() == 0 {
		return out
	}
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			out.SetRC(r, c, Bilinear(src, float32(r)/2, float32(c)/2))
		}
	}
	return out
}

// Bilinear interpolates src at fractional coordinates (y, x).
//
// When the upper neighbour would fall past the last row (or column), the lower
// and upper indices are both shifted down by one rather than clamped
// independently, so samples on the last row extrapolate from the last two rows.
// A grid with a single row (or column) uses that row for both neighbours.
func Bilinear(src *grid.Grid[float32], y, x float32) float32 {
	h, w := src.Height(), src.Width()

	lr, ur, wy0, wy1 := neighbours(y, h)
	lc, uc, wx0, wx1 := neighbours(x, w)

	v0 := src.AtRC(lr, lc)
	v1 := src.AtRC(lr, uc)
	v2 := src.AtRC(ur, lc)
	v3 := src.AtRC(ur, uc)

	t0 := wx0*v0 + wx1*v1
	t1 := wx0*v2 + wx1*v3
	return wy0*t0 + wy1*t1
}

// neighbours returns the bracketing indices of p along an axis of length n and
// their interpolation weights.
func neighbours(p float32, n int) (lo, hi int, wlo, whi float32) {
	if n == 1 {
		return 0, 0, 1, 0
	}
	lo = int(p)
	hi = lo + 1
	if hi >= n {
		lo--
		hi--
	}
	return lo, hi, float32(hi) - p, p - float32(lo)
}
