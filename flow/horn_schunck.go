package flow

import (
	"github.com/nvr-ai/go-motionseg/grid"
	"github.com/nvr-ai/go-motionseg/images/kernels"
)

// HornSchunck estimates flow with the Horn–Schunck iterative method.
//
// Every iteration averages the current estimate over its 3x3 neighbourhood and
// updates each cell with
//
//	d  = (Ix*avgU + Iy*avgV + It) / (alpha² + Ix² + Iy²)
//	u' = avgU - Ix*d
//	v' = avgV - Iy*d
//
// Two buffers alternate between the "current" and "next" roles. The roles swap
// after every iteration except the last, so the buffer written last is returned.
//
// Arguments:
//   - prev: The brightness field of the earlier frame.
//   - cur: The brightness field of the later frame (same size as prev).
//   - initial: The starting estimate, or nil for a zero field. It is not modified.
//   - cfg: Iterations, Alpha and Parallel are used.
//
// Returns:
//   - *Field: The estimated flow, same size as prev.
func HornSchunck(prev, cur *grid.Grid[float32], initial *Field, cfg Config) *Field {
	opt := cfg.kernelOptions()
	d := ComputeDerivatives(prev, cur, opt)
	h, w := prev.Height(), prev.Width()

	var bufs [2]*Field
	if initial != nil {
		bufs[0] = initial.Clone()
	} else {
		bufs[0] = NewField(h, w)
	}
	bufs[1] = NewField(h, w)
	current, next := 0, 1

	if cfg.Iterations < 1 {
		return bufs[current]
	}

	alpha2 := float32(cfg.Alpha * cfg.Alpha)
	ix, iy, it := d.DX.Data(), d.DY.Data(), d.DT.Data()

	for iter := 0; iter < cfg.Iterations; iter++ {
		avgU := kernels.Convolve2D(bufs[current].U, kernelAverage, 3, 3, opt).Data()
		avgV := kernels.Convolve2D(bufs[current].V, kernelAverage, 3, 3, opt).Data()
		outU, outV := bufs[next].U.Data(), bufs[next].V.Data()

		for i := range outU {
			ex, ey := ix[i], iy[i]
			f := (ex*avgU[i] + ey*avgV[i] + it[i]) / (alpha2 + ex*ex + ey*ey)
			outU[i] = avgU[i] - ex*f
			outV[i] = avgV[i] - ey*f
		}

		if iter < cfg.Iterations-1 {
			current, next = next, current
		}
	}
	return bufs[next]
}
