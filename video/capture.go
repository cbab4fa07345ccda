package video

import (
	"io"
	"log"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-motionseg/grid"
	"github.com/nvr-ai/go-motionseg/images"
)

// CaptureSource decodes a video container with OpenCV.
type CaptureSource struct {
	path    string
	opts    Options
	capture *gocv.VideoCapture
	mat     gocv.Mat
	frames  int
}

// OpenCapture opens the video at path.
//
// Arguments:
//   - path: The video file.
//   - opts: Frame options.
//
// Returns:
//   - *CaptureSource: The opened source; Close it when done.
//   - error: ErrSourceUnavailable if the file cannot be opened.
func OpenCapture(path string, opts Options) (*CaptureSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "open %s: %v", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrapf(ErrSourceUnavailable, "open %s", path)
	}
	log.Printf("decoding %s", path)

	return &CaptureSource{
		path:    path,
		opts:    opts,
		capture: capture,
		mat:     gocv.NewMat(),
	}, nil
}

// NextFrame implements Source.
func (s *CaptureSource) NextFrame() (*grid.Grid[grid.RGB], error) {
	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, endOfStream(s.path, s.frames, s.capture.Get(gocv.VideoCaptureFrameCount))
	}

	img, err := s.mat.ToImage()
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "%s frame %d: %v", s.path, s.frames, err)
	}
	s.frames++

	return images.Downscale(images.FromImage(img), s.opts.MaxWidth), nil
}

// endOfStream ends a capture after decoded frames. When the container reports
// more frames than were decoded, the early stop is logged.
func endOfStream(path string, decoded int, reported float64) error {
	if total := int(reported); total > decoded {
		log.Printf("%s: decoding stopped after %d of %d frames", path, decoded, total)
	}
	return io.EOF
}

// Frames returns the number of frames decoded so far.
func (s *CaptureSource) Frames() int { return s.frames }

// Close implements Source.
func (s *CaptureSource) Close() error {
	s.mat.Close()
	return s.capture.Close()
}
