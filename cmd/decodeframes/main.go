// Command decodeframes writes every frame of a video as frame_<i>.ppm.
//
// Usage:
//
//	decodeframes [-out dir] [-max-width n] <video>
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/images"
	"github.com/nvr-ai/go-motionseg/video"
)

func main() {
	os.Exit(run(os.Args[0], os.Args[1:], os.Stderr))
}

func run(name string, args []string, stderr io.Writer) int {
	log.SetOutput(stderr)

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	outputDir := fs.String("out", ".", "Output directory")
	maxWidth := fs.Int("max-width", 0, "Downscale frames wider than this (0 keeps size)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		fmt.Fprintf(stderr, "usage: %s [-out dir] [-max-width n] <video stream file>\n", name)
		return 1
	}

	n, err := decode(fs.Arg(0), *outputDir, *maxWidth)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	log.Printf("wrote %d frames to %s", n, *outputDir)
	return 0
}

// decode writes every frame of the source at path and returns how many were
// written.
func decode(path, outputDir string, maxWidth int) (int, error) {
	src, err := video.Open(path, video.Options{MaxWidth: maxWidth})
	if err != nil {
		return 0, err
	}
	defer src.Close()

	for i := 0; ; i++ {
		frame, err := src.NextFrame()
		if err == io.EOF {
			return i, nil
		}
		if err != nil {
			return i, errors.Wrapf(err, "frame %d", i)
		}
		if err := images.WritePPMFile(filepath.Join(outputDir, fmt.Sprintf("frame_%d.ppm", i)), frame); err != nil {
			return i, err
		}
	}
}
