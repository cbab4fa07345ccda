package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/flow"
)

// ErrInvalidConfig is returned when a pipeline configuration is unusable.
var ErrInvalidConfig = errors.New("pipeline: invalid configuration")

// maxConfigFileSize caps configuration files read by LoadConfig.
const maxConfigFileSize = 1 * 1024 * 1024

// Config contains the parameters of a batch run.
type Config struct {
	// Sigma is the standard deviation of the Gaussian applied to every brightness
	// field before flow estimation. Zero disables smoothing.
	Sigma float64
	// TSteps is the number of consecutive flow fields averaged per window.
	TSteps int
	// Threshold is the initial per-component segmentation tolerance.
	Threshold float32
	// MinSize is the smallest component kept after reduction.
	MinSize int
	// Method selects the flow estimator.
	Method flow.Method
	// OutputDir receives seg_<i>.ppm and, optionally, flow_<i>.pgm.
	OutputDir string
	// Workers is the number of windows segmented concurrently.
	Workers int
	// Seed drives segment colouring. Window i uses Seed+i.
	Seed int64
	// FlowVectors enables a needle diagram per frame pair.
	FlowVectors bool
	// VectorSpacing is the lattice step of the needle diagrams.
	VectorSpacing int
	// MaxWidth downscales wider frames. Zero keeps the native size.
	MaxWidth int
	// Flow configures the estimator; Flow.WinSize is the Lucas–Kanade window.
	Flow flow.Config
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Sigma:         1.0,
		TSteps:        2,
		Threshold:     1.0,
		MinSize:       20,
		Method:        flow.MethodHierarchical,
		OutputDir:     ".",
		Workers:       1,
		Seed:          1,
		VectorSpacing: 10,
		Flow:          flow.DefaultConfig(),
	}
}

// Validate checks that the configuration can drive a run.
//
// Returns:
//   - error: flow.ErrInvalidWindow when TSteps < 1, ErrInvalidConfig for any
//     other problem, nil otherwise.
func (c Config) Validate() error {
	if c.TSteps < 1 {
		return errors.Wrapf(flow.ErrInvalidWindow, "tsteps must be >= 1, got %d", c.TSteps)
	}
	switch {
	case c.Sigma < 0:
		return errors.Wrapf(ErrInvalidConfig, "sigma must be >= 0, got %g", c.Sigma)
	case c.Threshold < 0:
		return errors.Wrapf(ErrInvalidConfig, "threshold must be >= 0, got %g", c.Threshold)
	case c.MinSize < 0:
		return errors.Wrapf(ErrInvalidConfig, "min size must be >= 0, got %d", c.MinSize)
	case c.Workers < 1:
		return errors.Wrapf(ErrInvalidConfig, "workers must be >= 1, got %d", c.Workers)
	case c.MaxWidth < 0:
		return errors.Wrapf(ErrInvalidConfig, "max width must be >= 0, got %d", c.MaxWidth)
	case c.VectorSpacing < 1:
		return errors.Wrapf(ErrInvalidConfig, "vector spacing must be >= 1, got %d", c.VectorSpacing)
	case c.OutputDir == "":
		return errors.Wrap(ErrInvalidConfig, "output directory is empty")
	}
	if _, err := flow.ParseMethod(string(c.Method)); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if err := c.Flow.Validate(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

// fileConfig is the JSON form of Config. Fields left out of a file keep the
// value they had before loading.
type fileConfig struct {
	Sigma         *float64 `json:"sigma,omitempty"`
	TSteps        *int     `json:"tsteps,omitempty"`
	Threshold     *float32 `json:"threshold,omitempty"`
	MinSize       *int     `json:"min_size,omitempty"`
	Method        *string  `json:"method,omitempty"`
	OutputDir     *string  `json:"output_dir,omitempty"`
	Workers       *int     `json:"workers,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`
	FlowVectors   *bool    `json:"flow_vectors,omitempty"`
	VectorSpacing *int     `json:"vector_spacing,omitempty"`
	MaxWidth      *int     `json:"max_width,omitempty"`

	WinSize    *int     `json:"win_size,omitempty"`
	Iterations *int     `json:"iterations,omitempty"`
	Levels     *int     `json:"levels,omitempty"`
	Alpha      *float64 `json:"alpha,omitempty"`
	Epsilon    *float32 `json:"epsilon,omitempty"`
	Parallel   *bool    `json:"parallel,omitempty"`
}

// LoadConfig overlays the JSON file at path onto base.
//
// The file must have a .json extension and be at most 1 MiB. Only the fields
// present in the file are changed, so partial files are safe.
//
// Arguments:
//   - path: The configuration file.
//   - base: The configuration to start from, typically DefaultConfig().
//
// Returns:
//   - Config: The merged, validated configuration.
//   - error: ErrInvalidConfig if the file cannot be used.
func LoadConfig(path string, base Config) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return base, errors.Wrapf(ErrInvalidConfig, "config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return base, errors.Wrapf(ErrInvalidConfig, "stat config file: %v", err)
	}
	if info.Size() > maxConfigFileSize {
		return base, errors.Wrapf(ErrInvalidConfig, "config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return base, errors.Wrapf(ErrInvalidConfig, "read config file: %v", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return base, errors.Wrapf(ErrInvalidConfig, "parse config JSON: %v", err)
	}

	cfg := fc.apply(base)
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

func (fc fileConfig) apply(c Config) Config {
	set(&c.Sigma, fc.Sigma)
	set(&c.TSteps, fc.TSteps)
	set(&c.Threshold, fc.Threshold)
	set(&c.MinSize, fc.MinSize)
	if fc.Method != nil {
		c.Method = flow.Method(*fc.Method)
	}
	set(&c.OutputDir, fc.OutputDir)
	set(&c.Workers, fc.Workers)
	set(&c.Seed, fc.Seed)
	set(&c.FlowVectors, fc.FlowVectors)
	set(&c.VectorSpacing, fc.VectorSpacing)
	set(&c.MaxWidth, fc.MaxWidth)

	set(&c.Flow.WinSize, fc.WinSize)
	set(&c.Flow.Iterations, fc.Iterations)
	set(&c.Flow.Levels, fc.Levels)
	set(&c.Flow.Alpha, fc.Alpha)
	set(&c.Flow.Epsilon, fc.Epsilon)
	set(&c.Flow.Parallel, fc.Parallel)
	return c
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
