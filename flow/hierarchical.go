package flow

import (
	"github.com/nvr-ai/go-motionseg/grid"
	"github.com/nvr-ai/go-motionseg/images/kernels"
)

// Hierarchical runs Lucas–Kanade coarse-to-fine over Gaussian pyramids of both
// frames.
//
// The coarsest level is solved without a prior. For every finer level the
// previous estimate is upsampled 2x, scaled by 2, cropped to the level's size and
// used as the prior for a warp-compensated Lucas–Kanade pass. The result has the
// resolution of the input frames.
func Hierarchical(prev, cur *grid.Grid[float32], cfg Config) *Field {
	opt := cfg.kernelOptions()
	p1 := kernels.Pyramid(prev, cfg.Levels, opt)
	p2 := kernels.Pyramid(cur, cfg.Levels, opt)

	top := len(p1) - 1
	f := LucasKanade(p1[top], p2[top], nil, cfg)

	for l := top - 1; l >= 0; l-- {
		f = LucasKanade(p1[l], p2[l], upscale(f, p1[l].Height(), p1[l].Width()), cfg)
	}
	return f
}

// upscale turns a coarse estimate into a prior for the next finer level.
func upscale(f *Field, h, w int) *Field {
	scale := func(g *grid.Grid[float32]) *grid.Grid[float32] {
		return grid.Crop(grid.Scale(kernels.Upsample2(g), 2), h, w)
	}
	return &Field{U: scale(f.U), V: scale(f.V)}
}
