package flow

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/grid"
)

// Method names a flow estimation algorithm.
type Method string

// Method constants
const (
	// MethodHierarchical is coarse-to-fine Lucas–Kanade over a Gaussian pyramid.
	MethodHierarchical Method = "hlk"
	// MethodLucasKanade is single-level Lucas–Kanade.
	MethodLucasKanade Method = "lk"
	// MethodHornSchunck is the Horn–Schunck global method from a zero field.
	MethodHornSchunck Method = "hs"
)

// Estimator computes the flow between two brightness fields.
type Estimator interface {
	Estimate(prev, cur *grid.Grid[float32]) *Field
	Name() string
}

// ParseMethod converts a case-insensitive method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodHierarchical, MethodLucasKanade, MethodHornSchunck:
		return m, nil
	default:
		return "", errors.Wrapf(ErrInvalidConfig, "unknown flow method %q", s)
	}
}

// NewEstimator returns the estimator for method configured with cfg.
//
// Arguments:
//   - method: The algorithm to use.
//   - cfg: Estimator configuration; it is validated here.
//
// Returns:
//   - Estimator: The configured estimator.
//   - error: ErrInvalidConfig if cfg or method is invalid.
func NewEstimator(method Method, cfg Config) (Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch method {
	case MethodHierarchical:
		return hierarchicalEstimator{cfg: cfg}, nil
	case MethodLucasKanade:
		return lucasKanadeEstimator{cfg: cfg}, nil
	case MethodHornSchunck:
		return hornSchunckEstimator{cfg: cfg}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown flow method %q", method)
	}
}

type hierarchicalEstimator struct{ cfg Config }

func (e hierarchicalEstimator) Estimate(prev, cur *grid.Grid[float32]) *Field {
	return Hierarchical(prev, cur, e.cfg)
}

func (e hierarchicalEstimator) Name() string { return string(MethodHierarchical) }

type lucasKanadeEstimator struct{ cfg Config }

func (e lucasKanadeEstimator) Estimate(prev, cur *grid.Grid[float32]) *Field {
	return LucasKanade(prev, cur, nil, e.cfg)
}

func (e lucasKanadeEstimator) Name() string { return string(MethodLucasKanade) }

type hornSchunckEstimator struct{ cfg Config }

func (e hornSchunckEstimator) Estimate(prev, cur *grid.Grid[float32]) *Field {
	return HornSchunck(prev, cur, nil, e.cfg)
}

func (e hornSchunckEstimator) Name() string { return string(MethodHornSchunck) }
