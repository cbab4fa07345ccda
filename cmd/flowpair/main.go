// Command flowpair estimates the optical flow between two images.
//
// Usage:
//
//	flowpair [flags] <img1> <img2> <sigma> <winSize> <num>
//
// Both images are reduced to luminance and smoothed before estimation. The flow
// is written as a needle diagram ovecs_<num>.pgm and a magnitude map
// omag_<num>.pgm.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/flow"
	"github.com/nvr-ai/go-motionseg/grid"
	"github.com/nvr-ai/go-motionseg/images"
	"github.com/nvr-ai/go-motionseg/images/kernels"
)

type options struct {
	img1, img2 string
	sigma      float64
	num        int
	outputDir  string
	method     flow.Method
	spacing    int
	flow       flow.Config
}

func main() {
	os.Exit(run(os.Args[0], os.Args[1:], os.Stderr))
}

func run(name string, args []string, stderr io.Writer) int {
	log.SetOutput(stderr)

	opts, err := parseArgs(name, args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, "usage: %s [flags] <img1> <img2> <sigma> <winSize> <num>\n", name)
		return 1
	}
	if err := estimate(opts); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseArgs(name string, args []string, stderr io.Writer) (options, error) {
	opts := options{flow: flow.DefaultConfig()}
	var method string

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.outputDir, "out", ".", "Output directory")
	fs.StringVar(&method, "method", string(flow.MethodHierarchical), "Flow method: hlk, lk or hs")
	fs.IntVar(&opts.spacing, "spacing", images.DefaultVectorSpacing, "Needle diagram lattice step")
	fs.IntVar(&opts.flow.Levels, "levels", opts.flow.Levels, "Pyramid levels for hierarchical flow")
	fs.IntVar(&opts.flow.Iterations, "iterations", opts.flow.Iterations, "Horn-Schunck iterations")
	fs.Float64Var(&opts.flow.Alpha, "alpha", opts.flow.Alpha, "Horn-Schunck smoothness weight")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 5 {
		return opts, errors.Errorf("expected 5 arguments, got %d", fs.NArg())
	}

	var err error
	opts.img1, opts.img2 = fs.Arg(0), fs.Arg(1)
	if opts.sigma, err = strconv.ParseFloat(fs.Arg(2), 64); err != nil || opts.sigma < 0 {
		return opts, errors.Errorf("invalid sigma %q", fs.Arg(2))
	}
	if opts.flow.WinSize, err = strconv.Atoi(fs.Arg(3)); err != nil {
		return opts, errors.Errorf("invalid winSize %q", fs.Arg(3))
	}
	if opts.num, err = strconv.Atoi(fs.Arg(4)); err != nil {
		return opts, errors.Errorf("invalid num %q", fs.Arg(4))
	}
	if opts.method, err = flow.ParseMethod(method); err != nil {
		return opts, err
	}
	return opts, opts.flow.Validate()
}

// luminance reads an image and returns its smoothed luma field.
func luminance(path string, gauss []float32) (*grid.Grid[float32], error) {
	img, err := images.ReadFrameFile(path, 0)
	if err != nil {
		return nil, err
	}
	return kernels.Separable(images.Luminance(img), gauss, kernels.Options{}), nil
}

func estimate(opts options) error {
	gauss := kernels.Gaussian(opts.sigma)
	prev, err := luminance(opts.img1, gauss)
	if err != nil {
		return err
	}
	cur, err := luminance(opts.img2, gauss)
	if err != nil {
		return err
	}
	if !grid.SameSize(prev, cur) {
		return errors.Errorf("image sizes differ: %dx%d and %dx%d",
			prev.Width(), prev.Height(), cur.Width(), cur.Height())
	}

	est, err := flow.NewEstimator(opts.method, opts.flow)
	if err != nil {
		return err
	}
	log.Printf("computing optical flow vectors (%s)", est.Name())
	vecs := est.Estimate(prev, cur).Vectors()

	needles := filepath.Join(opts.outputDir, fmt.Sprintf("ovecs_%d.pgm", opts.num))
	if err := images.WritePGMFile(needles, images.DrawFlowVectors(vecs, opts.spacing)); err != nil {
		return err
	}
	mag := filepath.Join(opts.outputDir, fmt.Sprintf("omag_%d.pgm", opts.num))
	return images.WritePGMFile(mag, grid.Magnitude(vecs))
}
