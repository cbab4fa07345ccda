package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-motionseg/grid"
	"github.com/nvr-ai/go-motionseg/images"
)

func TestSegImageSplitsHalves(t *testing.T) {
	dir := t.TempDir()
	g := grid.New[grid.RGB](8, 8)
	for r := 4; r < 8; r++ {
		for c := 0; c < 8; c++ {
			g.SetRC(r, c, grid.RGB{200, 200, 200})
		}
	}
	in := filepath.Join(dir, "in.ppm")
	require.NoError(t, images.WritePPMFile(in, g))
	out := filepath.Join(dir, "seg.ppm")

	var stderr bytes.Buffer
	require.Equal(t, 0, run("segimage", []string{"-out", out, in, "0", "5", "2"}, &stderr), stderr.String())
	assert.Contains(t, stderr.String(), "components=2")

	seg, err := images.ReadPPMFile(out)
	require.NoError(t, err)
	assert.Equal(t, seg.AtRC(0, 0), seg.AtRC(3, 7))
	assert.Equal(t, seg.AtRC(4, 0), seg.AtRC(7, 7))
}

func TestSegImageErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"usage", []string{"a.ppm"}},
		{"bad sigma", []string{"a.ppm", "-1", "5", "2"}},
		{"bad threshold", []string{"a.ppm", "1", "x", "2"}},
		{"bad min size", []string{"a.ppm", "1", "5", "-2"}},
		{"missing image", []string{filepath.Join(dir, "none.ppm"), "1", "5", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, 1, run("segimage", append([]string{"-out", filepath.Join(dir, "o.ppm")}, tt.args...), &stderr))
			assert.Contains(t, stderr.String(), "Error:")
		})
	}
}
