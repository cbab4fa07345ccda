// Package flow estimates dense optical flow between consecutive brightness fields
// and aggregates flow fields over time.
//
// Three estimators are provided:
//
//   - Horn–Schunck: a global method that relaxes a smoothness-regularised field for
//     a fixed number of iterations.
//   - Lucas–Kanade: a local method that solves a 2x2 least-squares system over a
//     square window around every cell.
//   - Hierarchical Lucas–Kanade: Lucas–Kanade run coarse-to-fine over a Gaussian
//     pyramid, each level refining the upsampled estimate of the level above.
//
// All estimators are deterministic: they run a bounded number of numeric passes
// and never check for convergence.
package flow

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/images/kernels"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("flow: invalid configuration")

// Config contains the tuning parameters shared by the estimators.
type Config struct {
	// Iterations is the fixed number of Horn–Schunck relaxation passes.
	Iterations int `json:"iterations"`
	// Levels is the number of Gaussian pyramid levels for hierarchical estimation.
	Levels int `json:"levels"`
	// Alpha is the Horn–Schunck smoothness weight.
	Alpha float64 `json:"alpha"`
	// WinSize is the side of the square Lucas–Kanade window.
	WinSize int `json:"win_size"`
	// Epsilon bounds the determinant, eigenvalues and eigenvalue ratio below which a
	// Lucas–Kanade system is treated as degenerate.
	Epsilon float32 `json:"epsilon"`
	// Parallel enables row-parallel convolution and window accumulation.
	Parallel bool `json:"parallel"`
}

// DefaultConfig returns the default estimator configuration.
func DefaultConfig() Config {
	return Config{
		Iterations: 20,
		Levels:     3,
		Alpha:      1.0,
		WinSize:    5,
		Epsilon:    0.001,
	}
}

// Validate reports whether the configuration can drive every estimator.
func (c Config) Validate() error {
	switch {
	case c.Iterations < 0:
		return errors.Wrapf(ErrInvalidConfig, "iterations must be >= 0, got %d", c.Iterations)
	case c.Levels < 1:
		return errors.Wrapf(ErrInvalidConfig, "levels must be >= 1, got %d", c.Levels)
	case c.Alpha <= 0:
		return errors.Wrapf(ErrInvalidConfig, "alpha must be > 0, got %g", c.Alpha)
	case c.WinSize < 1:
		return errors.Wrapf(ErrInvalidConfig, "window size must be >= 1, got %d", c.WinSize)
	case c.Epsilon <= 0:
		return errors.Wrapf(ErrInvalidConfig, "epsilon must be > 0, got %g", c.Epsilon)
	}
	return nil
}

func (c Config) kernelOptions() kernels.Options {
	return kernels.Options{Parallel: c.Parallel}
}
