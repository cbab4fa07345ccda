package flow

import (
	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-motionseg/grid"
	"github.com/nvr-ai/go-motionseg/images/kernels"
)

// moments holds the per-cell window sums of derivative products.
type moments struct {
	xx, yy, xy, xt, yt *grid.Grid[float32]
}

// LucasKanade estimates flow by solving, for every cell, the 2x2 system
// M·Δ = b built from derivative products summed over a WinSize x WinSize window.
//
// Without a prior the window sums are a uniform-kernel convolution of the
// derivative products. With a prior, every window tap samples the current frame's
// derivatives at a position displaced by the prior vector of the window centre
// (a crude warp); taps landing outside the grid contribute zero.
//
// Degenerate systems (|det|, either eigenvalue or their ratio below Epsilon) are
// not solved: the cell keeps the prior vector, or zero without a prior. Solved
// cells return Δ directly, or 2·prior − Δ when a prior is given.
//
// Arguments:
//   - prev: The brightness field of the earlier frame.
//   - cur: The brightness field of the later frame (same size as prev).
//   - prior: An initial displacement estimate of the same size, or nil.
//   - cfg: WinSize, Epsilon and Parallel are used.
//
// Returns:
//   - *Field: The estimated flow, same size as prev.
func LucasKanade(prev, cur *grid.Grid[float32], prior *Field, cfg Config) *Field {
	opt := cfg.kernelOptions()
	p := frameDerivatives(prev, kernelDT, opt)
	c := frameDerivatives(cur, kernelNegDT, opt)

	var m moments
	if prior != nil {
		if !grid.SameSize(prior.U, prev) {
			panic("flow: prior estimate does not match frame dimensions")
		}
		m = warpedMoments(p, c, prior, cfg.WinSize, opt.Parallel)
	} else {
		m = windowMoments(p, c, cfg.WinSize, opt)
	}

	h, w := prev.Height(), prev.Width()
	out := NewField(h, w)
	u, v := out.U.Data(), out.V.Data()
	eps := cfg.Epsilon

	kernels.ForEach(h, opt.Parallel, func(r int) {
		for col := 0; col < w; col++ {
			i := r*w + col
			m00 := m.xx.At(i)
			m11 := m.yy.At(i)
			m01 := m.xy.At(i)
			b0 := -m.xt.At(i)
			b1 := -m.yt.At(i)

			det := m00*m11 - m01*m01
			tr := m00 + m11
			disc := tr*tr/4 - det

			var eig1, eig2 float32
			if disc > 0 {
				eig1 = tr/2 + math32.Sqrt(disc)
				eig2 = tr/2 - math32.Sqrt(disc)
			}

			if math32.Abs(det) < eps || math32.Abs(eig1) < eps || math32.Abs(eig2) < eps ||
				math32.Abs(eig2/eig1) < eps {
				if prior != nil {
					u[i] = prior.U.At(i)
					v[i] = prior.V.At(i)
				} else {
					u[i], v[i] = 0, 0
				}
				continue
			}

			inv := 1 / det
			du := m11*inv*b0 - m01*inv*b1
			dv := -m01*inv*b0 + m00*inv*b1

			if prior != nil {
				du = 2*prior.U.At(i) - du
				dv = 2*prior.V.At(i) - dv
			}
			u[i], v[i] = du, dv
		}
	})
	return out
}

// windowMoments sums derivative products over the window with a uniform kernel.
func windowMoments(p, c Derivatives, winSize int, opt kernels.Options) moments {
	dx := grid.Add(p.DX, c.DX)
	dy := grid.Add(p.DY, c.DY)
	dt := grid.Add(p.DT, c.DT)

	k := kernels.Uniform(winSize, winSize)
	sum := func(g *grid.Grid[float32]) *grid.Grid[float32] {
		return kernels.Convolve2D(g, k, winSize, winSize, opt)
	}
	return moments{
		xx: sum(grid.Mul(dx, dx)),
		yy: sum(grid.Mul(dy, dy)),
		xy: sum(grid.Mul(dx, dy)),
		xt: sum(grid.Mul(dx, dt)),
		yt: sum(grid.Mul(dy, dt)),
	}
}

// warpedMoments sums derivative products over the window, pairing each previous-
// frame tap with the current-frame tap displaced by the prior vector of the
// window centre.
func warpedMoments(p, c Derivatives, prior *Field, winSize int, parallel bool) moments {
	h, w := p.DX.Height(), p.DX.Width()
	m := moments{
		xx: grid.New[float32](h, w),
		yy: grid.New[float32](h, w),
		xy: grid.New[float32](h, w),
		xt: grid.New[float32](h, w),
		yt: grid.New[float32](h, w),
	}
	half := winSize / 2

	pdx, pdy, pdt := p.DX.Data(), p.DY.Data(), p.DT.Data()
	cdx, cdy, cdt := c.DX.Data(), c.DY.Data(), c.DT.Data()

	kernels.ForEach(h, parallel, func(r int) {
		for col := 0; col < w; col++ {
			i := r*w + col
			u0 := prior.U.At(i)
			v0 := prior.V.At(i)

			var sxx, syy, sxy, sxt, syt float32
			for wi := 0; wi < winSize; wi++ {
				ip := r + wi - half
				dip := int(float32(ip) + v0)
				if ip < 0 || ip >= h || dip < 0 || dip >= h {
					continue
				}
				for wj := 0; wj < winSize; wj++ {
					jp := col + wj - half
					djp := int(float32(jp) + u0)
					if jp < 0 || jp >= w || djp < 0 || djp >= w {
						continue
					}
					a := ip*w + jp
					b := dip*w + djp
					x := pdx[a] + cdx[b]
					y := pdy[a] + cdy[b]
					t := pdt[a] + cdt[b]
					sxx += x * x
					syy += y * y
					sxy += x * y
					sxt += x * t
					syt += y * t
				}
			}
			m.xx.Set(i, sxx)
			m.yy.Set(i, syy)
			m.xy.Set(i, sxy)
			m.xt.Set(i, sxt)
			m.yt.Set(i, syt)
		}
	})
	return m
}
