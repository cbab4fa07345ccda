package flow

import (
	"github.com/nvr-ai/go-motionseg/grid"
	"github.com/nvr-ai/go-motionseg/images/kernels"
)

// 2x2 derivative kernels. The temporal kernel is applied with a positive sign to
// the previous frame and a negative sign to the current frame.
var (
	kernelDX    = []float32{-0.25, 0.25, -0.25, 0.25}
	kernelDY    = []float32{-0.25, -0.25, 0.25, 0.25}
	kernelDT    = []float32{0.25, 0.25, 0.25, 0.25}
	kernelNegDT = []float32{-0.25, -0.25, -0.25, -0.25}
)

// kernelAverage is the 3x3 neighbourhood average used by Horn–Schunck: corners
// weigh 1/12, edges 1/6, the centre 0.
var kernelAverage = []float32{
	1.0 / 12, 1.0 / 6, 1.0 / 12,
	1.0 / 6, 0, 1.0 / 6,
	1.0 / 12, 1.0 / 6, 1.0 / 12,
}

// Derivatives holds the spatial and temporal derivative fields of a frame pair.
type Derivatives struct {
	DX *grid.Grid[float32]
	DY *grid.Grid[float32]
	DT *grid.Grid[float32]
}

// frameDerivatives returns one frame's share of the pair derivatives. dt is the
// temporal kernel to apply to this frame.
func frameDerivatives(img *grid.Grid[float32], dt []float32, opt kernels.Options) Derivatives {
	return Derivatives{
		DX: kernels.Convolve2D(img, kernelDX, 2, 2, opt),
		DY: kernels.Convolve2D(img, kernelDY, 2, 2, opt),
		DT: kernels.Convolve2D(img, dt, 2, 2, opt),
	}
}

// ComputeDerivatives estimates Ix, Iy and It for a frame pair. Each spatial
// derivative is the sum of both frames' responses; the temporal derivative is
// the previous frame's response minus the current frame's.
func ComputeDerivatives(prev, cur *grid.Grid[float32], opt kernels.Options) Derivatives {
	p := frameDerivatives(prev, kernelDT, opt)
	c := frameDerivatives(cur, kernelNegDT, opt)
	return Derivatives{
		DX: grid.Add(p.DX, c.DX),
		DY: grid.Add(p.DY, c.DY),
		DT: grid.Add(p.DT, c.DT),
	}
}
