// Command motionseg segments a video into regions of coherent motion.
//
// Usage:
//
//	motionseg [flags] <video> <sigma> <winSize> <tsteps> <threshold> <minSize>
//
// <video> is a video file or a directory of frame_N / frame-N images. One
// seg_<i>.ppm is written per aggregation window.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/flow"
	"github.com/nvr-ai/go-motionseg/pipeline"
	"github.com/nvr-ai/go-motionseg/profiler"
	"github.com/nvr-ai/go-motionseg/video"
)

const usage = "usage: %s [flags] <video> <sigma> <winSize> <tsteps> <threshold> <minSize>\n"

func main() {
	os.Exit(run(os.Args[0], os.Args[1:], os.Stderr))
}

// run executes the command and returns the process exit code.
func run(name string, args []string, stderr io.Writer) int {
	log.SetOutput(stderr)

	cfg, positional, err := parseArgs(name, args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, usage, name)
		return 1
	}

	if err := process(positional[0], cfg); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseArgs applies, in order, the defaults, an optional -config file, the
// positional parameters and finally any explicitly set flag.
func parseArgs(name string, args []string, stderr io.Writer) (pipeline.Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  string
		outputDir   string
		method      string
		workers     int
		seed        int64
		flowVectors bool
		maxWidth    int
		iterations  int
		levels      int
		alpha       float64
		parallel    bool
	)
	def := pipeline.DefaultConfig()
	fs.StringVar(&configPath, "config", "", "Path to a JSON configuration file")
	fs.StringVar(&outputDir, "out", def.OutputDir, "Output directory for seg_<i>.ppm files")
	fs.StringVar(&method, "method", string(def.Method), "Flow method: hlk, lk or hs")
	fs.IntVar(&workers, "workers", def.Workers, "Number of windows segmented concurrently")
	fs.Int64Var(&seed, "seed", def.Seed, "Seed for segment colours")
	fs.BoolVar(&flowVectors, "flow-vectors", def.FlowVectors, "Write flow_<i>.pgm needle diagrams")
	fs.IntVar(&maxWidth, "max-width", def.MaxWidth, "Downscale frames wider than this (0 keeps size)")
	fs.IntVar(&iterations, "iterations", def.Flow.Iterations, "Horn-Schunck iterations")
	fs.IntVar(&levels, "levels", def.Flow.Levels, "Pyramid levels for hierarchical flow")
	fs.Float64Var(&alpha, "alpha", def.Flow.Alpha, "Horn-Schunck smoothness weight")
	fs.BoolVar(&parallel, "parallel", def.Flow.Parallel, "Parallelise convolutions across rows")
	fs.Usage = func() {
		fmt.Fprintf(stderr, usage, name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return def, nil, err
	}
	if fs.NArg() != 6 {
		return def, nil, errors.Errorf("expected 6 arguments, got %d", fs.NArg())
	}

	cfg := def
	if configPath != "" {
		var err error
		if cfg, err = pipeline.LoadConfig(configPath, def); err != nil {
			return def, nil, err
		}
	}

	pos := fs.Args()
	sigma, err := strconv.ParseFloat(pos[1], 64)
	if err != nil {
		return def, nil, errors.Wrapf(err, "sigma %q", pos[1])
	}
	winSize, err := strconv.Atoi(pos[2])
	if err != nil {
		return def, nil, errors.Wrapf(err, "winSize %q", pos[2])
	}
	tsteps, err := strconv.Atoi(pos[3])
	if err != nil {
		return def, nil, errors.Wrapf(err, "tsteps %q", pos[3])
	}
	threshold, err := strconv.ParseFloat(pos[4], 32)
	if err != nil {
		return def, nil, errors.Wrapf(err, "threshold %q", pos[4])
	}
	minSize, err := strconv.Atoi(pos[5])
	if err != nil {
		return def, nil, errors.Wrapf(err, "minSize %q", pos[5])
	}
	cfg.Sigma = sigma
	cfg.Flow.WinSize = winSize
	cfg.TSteps = tsteps
	cfg.Threshold = float32(threshold)
	cfg.MinSize = minSize

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.OutputDir = outputDir
		case "method":
			cfg.Method = flow.Method(method)
		case "workers":
			cfg.Workers = workers
		case "seed":
			cfg.Seed = seed
		case "flow-vectors":
			cfg.FlowVectors = flowVectors
		case "max-width":
			cfg.MaxWidth = maxWidth
		case "iterations":
			cfg.Flow.Iterations = iterations
		case "levels":
			cfg.Flow.Levels = levels
		case "alpha":
			cfg.Flow.Alpha = alpha
		case "parallel":
			cfg.Flow.Parallel = parallel
		}
	})

	if err := cfg.Validate(); err != nil {
		return def, nil, err
	}
	return cfg, pos, nil
}

// process runs the pipeline over the video at path.
func process(path string, cfg pipeline.Config) error {
	prof := profiler.New(profiler.Options{ReportInterval: 10 * time.Second})
	prof.Start()
	defer prof.Stop()

	log.Printf("initializing video stream decoder")
	src, err := video.Open(path, video.Options{MaxWidth: cfg.MaxWidth})
	if err != nil {
		return err
	}
	defer src.Close()

	p, err := pipeline.New(cfg, prof)
	if err != nil {
		return err
	}
	res, err := p.Run(context.Background(), src)
	if err != nil {
		return err
	}

	log.Printf("wrote %d segmentations from %d frames", len(res.Windows), res.Frames)
	prof.Report()
	return nil
}
