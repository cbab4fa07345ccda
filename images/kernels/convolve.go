// Package kernels implements the convolution, Gaussian pyramid and interpolation
// primitives used by optical flow estimation.
//
// Boundary policy: taps that fall outside the grid are dropped from the weighted
// sum and the remaining weights are NOT renormalised. Results near the border are
// therefore attenuated; every caller in this module depends on that exact rule.
package kernels

import (
	"sync"

	"github.com/nvr-ai/go-motionseg/grid"
)

// Options configures a convolution call.
type Options struct {
	// Parallel splits rows (or columns) across goroutines. Every output cell is
	// computed independently, so results are identical to the sequential path.
	Parallel bool
}

// Separable convolves src with the 1-D kernel k along rows, then along columns,
// and returns a new grid.
//
// The kernel is centred at len(k)/2 and applied as a correlation (no flip).
//
// Arguments:
//   - src: The grid to filter. It is not modified.
//   - k: The 1-D kernel taps.
//   - opt: Execution options.
//
// Returns:
//   - *grid.Grid[float32]: The filtered grid.
func Separable(src *grid.Grid[float32], k []float32, opt Options) *grid.Grid[float32] {
	h, w := src.Height(), src.Width()
	center := len(k) >> 1
	s := src.Data()

	// Horizontal pass.
	tmp := grid.New[float32](h, w)
	t := tmp.Data()
	ForEach(h, opt.Parallel, func(r int) {
		row := s[r*w : (r+1)*w]
		for c := 0; c < w; c++ {
			var d float32
			for i, kv := range k {
				cp := c + i - center
				if cp >= 0 && cp < w {
					d += row[cp] * kv
				}
			}
			t[r*w+c] = d
		}
	})

	// Vertical pass.
	out := grid.New[float32](h, w)
	o := out.Data()
	ForEach(w, opt.Parallel, func(c int) {
		for r := 0; r < h; r++ {
			var d float32
			for i, kv := range k {
				rp := r + i - center
				if rp >= 0 && rp < h {
					d += t[rp*w+c] * kv
				}
			}
			o[r*w+c] = d
		}
	})
	return out
}

// Convolve2D correlates src with a full kh x kw kernel stored row-major in k.
//
// Even kernel sizes are centred as if they were one tap shorter: the offset is
// computed from (n%2 == 1 ? n : n-1)/2 while all n taps are still summed. A 2x2
// kernel therefore covers the cell, its right neighbour, the cell below and the
// cell diagonally below-right.
//
// It panics if len(k) != kh*kw.
func Convolve2D(src *grid.Grid[float32], k []float32, kh, kw int, opt Options) *grid.Grid[float32] {
	if len(k) != kh*kw {
		panic("kernels: kernel length does not match its dimensions")
	}
	h, w := src.Height(), src.Width()
	offH := centered(kh) >> 1
	offW := centered(kw) >> 1
	s := src.Data()

	out := grid.New[float32](h, w)
	o := out.Data()
	ForEach(h, opt.Parallel, func(r int) {
		for c := 0; c < w; c++ {
			var d float32
			for i := 0; i < kh; i++ {
				rp := r + i - offH
				if rp < 0 || rp >= h {
					continue
				}
				for j := 0; j < kw; j++ {
					cp := c + j - offW
					if cp >= 0 && cp < w {
						d += s[rp*w+cp] * k[i*kw+j]
					}
				}
			}
			o[r*w+c] = d
		}
	})
	return out
}

// centered returns the effective odd size used to position a kernel.
func centered(n int) int {
	if n%2 == 1 {
		return n
	}
	return n - 1
}

// ForEach runs fn for every index in [0, n), optionally in parallel chunks.
func ForEach(n int, parallel bool, fn func(i int)) {
	if !parallel || n < 4 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	// Parallelize by splitting indices into chunks.
	chunk := chooseChunk(n)
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// chooseChunk picks a work chunk size that balances overhead and cache locality.
func chooseChunk(n int) int {
	switch {
	case n >= 2048:
		return 128
	case n >= 512:
		return 64
	default:
		return 32
	}
}
