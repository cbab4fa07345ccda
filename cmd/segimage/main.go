// Command segimage segments a single image by brightness and writes the
// colour-coded result.
//
// Usage:
//
//	segimage [-out file] [-seed n] <img> <sigma> <threshold> <minSize>
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/images"
	"github.com/nvr-ai/go-motionseg/images/kernels"
	"github.com/nvr-ai/go-motionseg/segment"
)

func main() {
	os.Exit(run(os.Args[0], os.Args[1:], os.Stderr))
}

func run(name string, args []string, stderr io.Writer) int {
	log.SetOutput(stderr)

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("out", "segImg.ppm", "Output file")
	seed := fs.Int64("seed", 1, "Seed for segment colours")

	usage := func(err error) int {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, "usage: %s [-out file] [-seed n] <img> <sigma> <threshold> <minSize>\n", name)
		return 1
	}
	if err := fs.Parse(args); err != nil {
		return usage(err)
	}
	if fs.NArg() != 4 {
		return usage(errors.Errorf("expected 4 arguments, got %d", fs.NArg()))
	}

	sigma, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil || sigma < 0 {
		return usage(errors.Errorf("invalid sigma %q", fs.Arg(1)))
	}
	threshold, err := strconv.ParseFloat(fs.Arg(2), 32)
	if err != nil || threshold < 0 {
		return usage(errors.Errorf("invalid threshold %q", fs.Arg(2)))
	}
	minSize, err := strconv.Atoi(fs.Arg(3))
	if err != nil || minSize < 0 {
		return usage(errors.Errorf("invalid minSize %q", fs.Arg(3)))
	}

	img, err := images.ReadFrameFile(fs.Arg(0), 0)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	field := kernels.Separable(images.Brightness(img), kernels.Gaussian(sigma), kernels.Options{})
	res := segment.Field(field, segment.Params{Threshold: float32(threshold), MinSize: minSize})
	log.Printf("%s", res.Stats)

	colored := images.ColorSegments(res.Labels, rand.New(rand.NewSource(*seed)))
	if err := images.WritePPMFile(*output, colored); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
