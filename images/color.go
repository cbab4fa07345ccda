// Package images converts between RGB grids and image files and renders flow
// and segmentation results for inspection.
package images

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-motionseg/grid"
)

// Luma weights used by Luminance.
const (
	lumaR = 0.2989
	lumaG = 0.5870
	lumaB = 0.1140
)

// Brightness reduces every pixel to the Euclidean norm of its channels.
func Brightness(g *grid.Grid[grid.RGB]) *grid.Grid[float32] {
	return grid.Map(g, func(p grid.RGB) float32 {
		r, gr, b := float32(p[0]), float32(p[1]), float32(p[2])
		return math32.Sqrt(r*r + gr*gr + b*b)
	})
}

// Luminance reduces every pixel to its weighted luma.
func Luminance(g *grid.Grid[grid.RGB]) *grid.Grid[float32] {
	return grid.Map(g, func(p grid.RGB) float32 {
		return lumaR*float32(p[0]) + lumaG*float32(p[1]) + lumaB*float32(p[2])
	})
}

// FromImage copies img into an RGB grid, dropping alpha.
func FromImage(img image.Image) *grid.Grid[grid.RGB] {
	b := img.Bounds()
	g := grid.New[grid.RGB](b.Dy(), b.Dx())

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*b.Dx()]
			for x := 0; x < b.Dx(); x++ {
				g.SetRC(y, x, grid.RGB{row[4*x], row[4*x+1], row[4*x+2]})
			}
		}
		return g
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			g.SetRC(y, x, grid.RGB{c.R, c.G, c.B})
		}
	}
	return g
}

// ToImage copies g into an opaque RGBA image.
func ToImage(g *grid.Grid[grid.RGB]) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Height()))
	for i, p := range g.Data() {
		img.Pix[4*i] = p[0]
		img.Pix[4*i+1] = p[1]
		img.Pix[4*i+2] = p[2]
		img.Pix[4*i+3] = 0xff
	}
	return img
}

// ColorSegments paints every component of labels with a random colour drawn
// from rng. Colours are assigned in row-major order of first appearance, so a
// given seed always yields the same picture.
func ColorSegments(labels *grid.Grid[int], rng *rand.Rand) *grid.Grid[grid.RGB] {
	palette := make(map[int]grid.RGB)
	return grid.Map(labels, func(l int) grid.RGB {
		c, ok := palette[l]
		if !ok {
			c = grid.RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
			palette[l] = c
		}
		return c
	})
}
