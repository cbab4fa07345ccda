package kernels

import (
	"math"

	"github.com/chewxy/math32"
)

var sqrt2Pi = math32.Sqrt(2 * math.Pi)

// Gaussian builds a normalised 1-D Gaussian kernel for the given standard
// deviation. The kernel has 1 + 2*ceil(2.5*sigma) taps and sums to 1.
//
// A non-positive sigma yields the identity kernel {1}.
func Gaussian(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1}
	}
	s := float32(sigma)
	size := 1 + 2*int(math32.Ceil(2.5*s))
	return gaussian(size, s)
}

// GaussianWindow builds a normalised Gaussian kernel with exactly size taps,
// using sigma = size/5.
func GaussianWindow(size int) []float32 {
	if size <= 0 {
		return nil
	}
	return gaussian(size, float32(size)/5)
}

func gaussian(size int, sigma float32) []float32 {
	k := make([]float32, size)
	center := size >> 1

	var sum float32
	for i := range k {
		x := float32(i - center)
		fx := math32.Exp(-0.5*x*x/(sigma*sigma)) / (sigma * sqrt2Pi)
		k[i] = fx
		sum += fx
	}

	// Normalise so the taps integrate to 1.
	for i := range k {
		k[i] /= sum
	}
	return k
}

// Uniform returns a kh x kw kernel of ones, used to accumulate window sums.
func Uniform(kh, kw int) []float32 {
	k := make([]float32, kh*kw)
	for i := range k {
		k[i] = 1
	}
	return k
}
