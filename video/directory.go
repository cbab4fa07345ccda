package video

import (
	"io"
	"log"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/grid"
	"github.com/nvr-ai/go-motionseg/images"
	"github.com/nvr-ai/go-motionseg/util"
)

// DirectorySource reads numbered frame images (frame-N or frame_N) from a
// directory in frame order. Files are decoded lazily.
type DirectorySource struct {
	files []util.ImageFile
	opts  Options
	next  int
}

// OpenDirectory lists the frames of dir.
func OpenDirectory(dir string, opts Options) (*DirectorySource, error) {
	files, err := util.ListFrameFiles(dir)
	if err != nil {
		return nil, errors.Wrap(ErrSourceUnavailable, err.Error())
	}
	log.Printf("decoding %d frames from %s", len(files), dir)
	return &DirectorySource{files: files, opts: opts}, nil
}

// Len returns the number of frames in the directory.
func (s *DirectorySource) Len() int { return len(s.files) }

// NextFrame implements Source.
func (s *DirectorySource) NextFrame() (*grid.Grid[grid.RGB], error) {
	if s.next >= len(s.files) {
		return nil, io.EOF
	}
	f := s.files[s.next]
	s.next++

	g, err := images.ReadFrameFile(f.Path, s.opts.MaxWidth)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "frame %d: %v", f.Frame, err)
	}
	return g, nil
}

// Close implements Source.
func (s *DirectorySource) Close() error { return nil }
