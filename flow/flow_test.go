package flow

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-motionseg/grid"
)

// constantFrame returns an h x w field filled with v.
func constantFrame(h, w int, v float32) *grid.Grid[float32] {
	g := grid.New[float32](h, w)
	for i := range g.Data() {
		g.Set(i, v)
	}
	return g
}

// textureFrame returns a reproducible random brightness field.
func textureFrame(h, w int, seed int64) *grid.Grid[float32] {
	rng := rand.New(rand.NewSource(seed))
	g := grid.New[float32](h, w)
	for i := range g.Data() {
		g.Set(i, rng.Float32()*255)
	}
	return g
}

// shiftedParaboloids returns f(r,c) = c² + r² and the same surface moved one
// column to the right.
func shiftedParaboloids(h, w int) (prev, cur *grid.Grid[float32]) {
	prev = grid.New[float32](h, w)
	cur = grid.New[float32](h, w)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			fr, fc := float32(r), float32(c)
			prev.SetRC(r, c, fc*fc+fr*fr)
			cur.SetRC(r, c, (fc-1)*(fc-1)+fr*fr)
		}
	}
	return prev, cur
}

// centredParaboloids returns f(r,c) = (c-w/2)² + (r-h/2)² and the same surface
// moved by (dr, dc).
func centredParaboloids(h, w int, dr, dc float32) (prev, cur *grid.Grid[float32]) {
	prev = grid.New[float32](h, w)
	cur = grid.New[float32](h, w)
	r0, c0 := float32(h/2), float32(w/2)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			y, x := float32(r)-r0, float32(c)-c0
			prev.SetRC(r, c, x*x+y*y)
			cur.SetRC(r, c, (x-dc)*(x-dc)+(y-dr)*(y-dr))
		}
	}
	return prev, cur
}

func assertZeroField(t *testing.T, f *Field) {
	t.Helper()
	for i := 0; i < f.U.Len(); i++ {
		require.InDelta(t, 0.0, float64(f.U.At(i)), 1e-9, "u at %d", i)
		require.InDelta(t, 0.0, float64(f.V.At(i)), 1e-9, "v at %d", i)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 20, cfg.Iterations)
	assert.Equal(t, 3, cfg.Levels)
	assert.Equal(t, float32(0.001), cfg.Epsilon)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative iterations", func(c *Config) { c.Iterations = -1 }},
		{"no levels", func(c *Config) { c.Levels = 0 }},
		{"zero alpha", func(c *Config) { c.Alpha = 0 }},
		{"zero window", func(c *Config) { c.WinSize = 0 }},
		{"zero epsilon", func(c *Config) { c.Epsilon = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestDerivativesOfRamp(t *testing.T) {
	prev := grid.New[float32](6, 6)
	cur := grid.New[float32](6, 6)
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			prev.SetRC(r, c, float32(c))
			cur.SetRC(r, c, float32(c-1))
		}
	}
	d := ComputeDerivatives(prev, cur, DefaultConfig().kernelOptions())
	assert.InDelta(t, 1.0, float64(d.DX.AtRC(2, 2)), 1e-6)
	assert.InDelta(t, 0.0, float64(d.DY.AtRC(2, 2)), 1e-6)
	assert.InDelta(t, 1.0, float64(d.DT.AtRC(2, 2)), 1e-6)
}

func TestHornSchunckSingleIteration(t *testing.T) {
	prev := grid.New[float32](6, 6)
	cur := grid.New[float32](6, 6)
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			prev.SetRC(r, c, float32(c))
			cur.SetRC(r, c, float32(c-1))
		}
	}
	cfg := DefaultConfig()
	cfg.Iterations = 1
	cfg.Alpha = 1

	// With a zero start the neighbour average is zero, so u = -Ix*It/(α²+Ix²).
	f := HornSchunck(prev, cur, nil, cfg)
	assert.InDelta(t, -0.5, float64(f.U.AtRC(2, 2)), 1e-6)
	assert.InDelta(t, 0.0, float64(f.V.AtRC(2, 2)), 1e-6)
}

func TestHornSchunckIdenticalFramesYieldZero(t *testing.T) {
	img := textureFrame(12, 10, 1)
	assertZeroField(t, HornSchunck(img, img.Clone(), nil, DefaultConfig()))
}

func TestHornSchunckIsDeterministic(t *testing.T) {
	prev := textureFrame(16, 16, 2)
	cur := textureFrame(16, 16, 3)
	cfg := DefaultConfig()

	a := HornSchunck(prev, cur, nil, cfg)
	b := HornSchunck(prev, cur, nil, cfg)
	assert.Equal(t, a.U.Data(), b.U.Data())
	assert.Equal(t, a.V.Data(), b.V.Data())
}

func TestHornSchunckLeavesInitialUntouched(t *testing.T) {
	prev := textureFrame(8, 8, 4)
	cur := textureFrame(8, 8, 5)
	initial := NewField(8, 8)
	for i := range initial.U.Data() {
		initial.U.Set(i, 1)
	}
	cfg := DefaultConfig()
	cfg.Iterations = 3

	HornSchunck(prev, cur, initial, cfg)
	for i := range initial.U.Data() {
		require.Equal(t, float32(1), initial.U.At(i))
	}

	cfg.Iterations = 0
	out := HornSchunck(prev, cur, initial, cfg)
	assert.Equal(t, initial.U.Data(), out.U.Data())
}

func TestLucasKanadeTexturelessFallsBackToZero(t *testing.T) {
	img := constantFrame(10, 10, 50)
	f := LucasKanade(img, img.Clone(), nil, DefaultConfig())
	require.Equal(t, 10, f.Height())
	require.Equal(t, 10, f.Width())
	assertZeroField(t, f)
}

func TestLucasKanadeFallsBackToPrior(t *testing.T) {
	img := constantFrame(12, 12, 80)
	prior := NewField(12, 12)
	for i := range prior.U.Data() {
		prior.U.Set(i, 1)
	}
	cfg := DefaultConfig()
	cfg.WinSize = 3

	f := LucasKanade(img, img.Clone(), prior, cfg)
	assert.Equal(t, float32(1), f.U.AtRC(6, 6))
	assert.Equal(t, float32(0), f.V.AtRC(6, 6))
}

func TestLucasKanadeRecoversTranslation(t *testing.T) {
	prev, cur := shiftedParaboloids(20, 20)
	cfg := DefaultConfig()
	cfg.WinSize = 3

	// Ix == It and Iy carries no temporal change, so the system solves to (-1, 0).
	f := LucasKanade(prev, cur, nil, cfg)
	assert.InDelta(t, -1.0, float64(f.U.AtRC(10, 10)), 1e-3)
	assert.InDelta(t, 0.0, float64(f.V.AtRC(10, 10)), 1e-3)
}

func TestLucasKanadeWarpedNewtonStep(t *testing.T) {
	// With an integer prior p and a shift d the warped system solves to
	// Δ = p - d, so the estimate 2p - Δ is p + d.
	tests := []struct {
		name         string
		u0, v0       float32
		wantU, wantV float64
	}{
		{"one column", 1, 0, 2, 0},
		{"two columns", 2, 0, 3, 0},
		{"diagonal", 2, 1, 3, 1},
		{"against the shift", -1, 0, 0, 0},
	}
	prev, cur := centredParaboloids(20, 20, 0, 1)
	cfg := DefaultConfig()
	cfg.WinSize = 3

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prior := NewField(20, 20)
			for i := 0; i < prior.U.Len(); i++ {
				prior.U.Set(i, tt.u0)
				prior.V.Set(i, tt.v0)
			}

			f := LucasKanade(prev, cur, prior, cfg)
			assert.InDelta(t, tt.wantU, float64(f.U.AtRC(10, 10)), 1e-3)
			assert.InDelta(t, tt.wantV, float64(f.V.AtRC(10, 10)), 1e-3)
			assert.Equal(t, tt.u0, prior.U.AtRC(10, 10), "prior must not be modified")
		})
	}
}

func TestHierarchicalRefinesCoarseEstimate(t *testing.T) {
	prev, cur := centredParaboloids(64, 64, 1.5, 1.5)
	cfg := DefaultConfig()
	cfg.Levels = 2
	cfg.WinSize = 3

	// The finest level alone solves to the negated shift.
	single := LucasKanade(prev, cur, nil, cfg)
	assert.InDelta(t, -1.5, float64(single.U.AtRC(32, 32)), 1e-3)
	assert.InDelta(t, -1.5, float64(single.V.AtRC(32, 32)), 1e-3)

	// The coarse level sees a 0.75 shift and yields -0.75, doubled to a -1.5
	// prior. The warp truncates that to -2, so Δ = -3.5 and 2p - Δ = 0.5.
	f := Hierarchical(prev, cur, cfg)
	assert.InDelta(t, 0.5, float64(f.U.AtRC(32, 32)), 1e-2)
	assert.InDelta(t, 0.5, float64(f.V.AtRC(32, 32)), 1e-2)

	cfg.Levels = 1
	one := Hierarchical(prev, cur, cfg)
	assert.Equal(t, single.U.Data(), one.U.Data())
	assert.Equal(t, single.V.Data(), one.V.Data())
}

func TestLucasKanadePanicsOnPriorSizeMismatch(t *testing.T) {
	img := constantFrame(4, 4, 1)
	assert.Panics(t, func() {
		LucasKanade(img, img, NewField(3, 3), DefaultConfig())
	})
}

func TestHierarchicalIdenticalFramesYieldZero(t *testing.T) {
	tests := []struct {
		name string
		h, w int
	}{
		{"even", 16, 16},
		{"odd", 13, 9},
		{"tiny", 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := textureFrame(tt.h, tt.w, 9)
			f := Hierarchical(img, img.Clone(), DefaultConfig())
			require.Equal(t, tt.h, f.Height())
			require.Equal(t, tt.w, f.Width())
			assertZeroField(t, f)
		})
	}
}

func TestHierarchicalTexturelessYieldsZero(t *testing.T) {
	img := constantFrame(20, 24, 128)
	assertZeroField(t, Hierarchical(img, img.Clone(), DefaultConfig()))
}

func TestEstimators(t *testing.T) {
	img := textureFrame(8, 8, 11)
	for _, m := range []Method{MethodHierarchical, MethodLucasKanade, MethodHornSchunck} {
		t.Run(string(m), func(t *testing.T) {
			e, err := NewEstimator(m, DefaultConfig())
			require.NoError(t, err)
			assert.Equal(t, string(m), e.Name())
			assertZeroField(t, e.Estimate(img, img.Clone()))
		})
	}

	_, err := NewEstimator("bogus", DefaultConfig())
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	bad := DefaultConfig()
	bad.Levels = 0
	_, err = NewEstimator(MethodHierarchical, bad)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" HLK ")
	require.NoError(t, err)
	assert.Equal(t, MethodHierarchical, m)

	_, err = ParseMethod("farneback")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
