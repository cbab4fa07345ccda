package images

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-motionseg/grid"
)

func TestBrightness(t *testing.T) {
	g := grid.FromSlice(1, 3, []grid.RGB{{0, 0, 0}, {3, 4, 0}, {255, 255, 255}})
	b := Brightness(g)
	assert.InDelta(t, 0.0, float64(b.At(0)), 1e-6)
	assert.InDelta(t, 5.0, float64(b.At(1)), 1e-5)
	assert.InDelta(t, 441.6730, float64(b.At(2)), 1e-3)
}

func TestLuminance(t *testing.T) {
	g := grid.FromSlice(1, 3, []grid.RGB{{100, 0, 0}, {0, 100, 0}, {0, 0, 100}})
	l := Luminance(g)
	assert.InDelta(t, 29.89, float64(l.At(0)), 1e-4)
	assert.InDelta(t, 58.70, float64(l.At(1)), 1e-4)
	assert.InDelta(t, 11.40, float64(l.At(2)), 1e-4)
}

func TestImageConversionRoundTrip(t *testing.T) {
	g := grid.FromSlice(2, 2, []grid.RGB{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {250, 251, 252}})
	img := ToImage(g)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	assert.Equal(t, color.RGBA{4, 5, 6, 255}, img.RGBAAt(1, 0))
	assert.Equal(t, g.Data(), FromImage(img).Data())
}

func TestFromImageGenericPath(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(1, 0, color.Gray{Y: 80})
	g := FromImage(img)
	assert.Equal(t, []grid.RGB{{0, 0, 0}, {80, 80, 80}}, g.Data())
}

func TestColorSegments(t *testing.T) {
	labels := grid.FromSlice(2, 3, []int{5, 5, 9, 9, 5, 2})

	a := ColorSegments(labels, rand.New(rand.NewSource(42)))
	b := ColorSegments(labels, rand.New(rand.NewSource(42)))
	require.Equal(t, a.Data(), b.Data())

	assert.Equal(t, a.At(0), a.At(1))
	assert.Equal(t, a.At(0), a.At(4))
	assert.Equal(t, a.At(2), a.At(3))
	assert.Equal(t, 2, a.Height())
}
