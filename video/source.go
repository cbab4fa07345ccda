// Package video provides ordered, forward-only sequences of RGB frames.
//
// A Source yields frames until it returns io.EOF. Sources backed by files wrap
// open and read failures in ErrSourceUnavailable.
package video

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/grid"
)

// ErrSourceUnavailable is returned when a frame source cannot be opened or read.
var ErrSourceUnavailable = errors.New("video: source unavailable")

// Source produces frames in order.
type Source interface {
	// NextFrame returns the next frame, or io.EOF after the last one.
	NextFrame() (*grid.Grid[grid.RGB], error)
	// Close releases the resources held by the source.
	Close() error
}

// Options configures file-backed sources.
type Options struct {
	// MaxWidth downscales wider frames to this width, keeping the aspect ratio.
	// Zero keeps the native size.
	MaxWidth int
}

// Open returns a DirectorySource when path is a directory and a CaptureSource
// otherwise.
func Open(path string, opts Options) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "%s: %v", path, err)
	}
	if info.IsDir() {
		return OpenDirectory(path, opts)
	}
	return OpenCapture(path, opts)
}

// ReadAll drains src and returns every frame in order. It does not close src.
func ReadAll(src Source) ([]*grid.Grid[grid.RGB], error) {
	var frames []*grid.Grid[grid.RGB]
	for {
		f, err := src.NextFrame()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
}

// SliceSource serves frames from memory.
type SliceSource struct {
	frames []*grid.Grid[grid.RGB]
	next   int
}

// NewSliceSource returns a source over frames.
func NewSliceSource(frames ...*grid.Grid[grid.RGB]) *SliceSource {
	return &SliceSource{frames: frames}
}

// NextFrame implements Source.
func (s *SliceSource) NextFrame() (*grid.Grid[grid.RGB], error) {
	if s.next >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

// Close implements Source.
func (s *SliceSource) Close() error { return nil }
