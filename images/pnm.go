package images

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/grid"
)

var (
	// ErrMalformedFile is returned when an image file has an invalid header or a
	// truncated body.
	ErrMalformedFile = errors.New("images: malformed file")
	// ErrIOWrite is returned when an output image cannot be persisted.
	ErrIOWrite = errors.New("images: write failed")
)

// maxPNMPixels bounds width*height of a decoded pixmap.
const maxPNMPixels = 1 << 28

// pnmHeader is the parsed "magic width height maxval" preamble.
type pnmHeader struct {
	magic         string
	width, height int
	maxVal        int
}

// readPNMHeader parses the header tokens and consumes the single whitespace byte
// that separates maxval from the pixel data. '#' comments run to end of line.
func readPNMHeader(br *bufio.Reader, magic string) (pnmHeader, error) {
	var h pnmHeader
	tok, err := pnmToken(br)
	if err != nil {
		return h, err
	}
	if tok != magic {
		return h, errors.Wrapf(ErrMalformedFile, "magic %q, want %q", tok, magic)
	}
	h.magic = tok

	fields := []*int{&h.width, &h.height, &h.maxVal}
	for _, f := range fields {
		tok, err := pnmToken(br)
		if err != nil {
			return h, err
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return h, errors.Wrapf(ErrMalformedFile, "header token %q", tok)
		}
		*f = v
	}

	if h.width < 0 || h.height < 0 {
		return h, errors.Wrapf(ErrMalformedFile, "dimensions %dx%d", h.width, h.height)
	}
	if h.width != 0 && h.height > maxPNMPixels/h.width {
		return h, errors.Wrapf(ErrMalformedFile, "dimensions %dx%d exceed %d pixels", h.width, h.height, maxPNMPixels)
	}
	if h.maxVal < 1 || h.maxVal > 255 {
		return h, errors.Wrapf(ErrMalformedFile, "maxval %d not in [1,255]", h.maxVal)
	}
	return h, nil
}

// pnmToken returns the next whitespace-delimited header token. The delimiter
// that ends the token is consumed.
func pnmToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", errors.Wrap(ErrMalformedFile, "truncated header")
		}
		switch {
		case b == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", errors.Wrap(ErrMalformedFile, "truncated header comment")
			}
		case isPNMSpace(b):
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}

func isPNMSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// ReadPPM decodes a binary colour pixmap (P6).
//
// Arguments:
//   - r: The encoded image.
//
// Returns:
//   - *grid.Grid[grid.RGB]: The pixels, unscaled.
//   - error: ErrMalformedFile on a bad header or truncated body.
func ReadPPM(r io.Reader) (*grid.Grid[grid.RGB], error) {
	br := bufio.NewReader(r)
	h, err := readPNMHeader(br, "P6")
	if err != nil {
		return nil, err
	}

	buf := make([]byte, h.width*h.height*3)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, errors.Wrapf(ErrMalformedFile, "truncated body: %v", err)
	}

	g := grid.New[grid.RGB](h.height, h.width)
	for i := range g.Data() {
		g.Set(i, grid.RGB{buf[3*i], buf[3*i+1], buf[3*i+2]})
	}
	return g, nil
}

// WritePPM encodes g as a binary colour pixmap (P6).
func WritePPM(w io.Writer, g *grid.Grid[grid.RGB]) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P6\n%d %d\n255\n", g.Width(), g.Height())
	for _, p := range g.Data() {
		bw.Write(p[:])
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(ErrIOWrite, err.Error())
	}
	return nil
}

// ReadPGM decodes a binary graymap (P5).
func ReadPGM(r io.Reader) (*grid.Grid[uint8], error) {
	br := bufio.NewReader(r)
	h, err := readPNMHeader(br, "P5")
	if err != nil {
		return nil, err
	}

	buf := make([]byte, h.width*h.height)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, errors.Wrapf(ErrMalformedFile, "truncated body: %v", err)
	}
	return grid.FromSlice(h.height, h.width, buf), nil
}

// WritePGM encodes g as a binary graymap (P5), linearly rescaling the observed
// [min, max] range of g to [0, 255]. A constant grid is written as all zeros.
//
// Arguments:
//   - w: The destination.
//   - g: The scalar field to encode.
//
// Returns:
//   - error: ErrIOWrite if the data cannot be written.
func WritePGM[T grid.Number](w io.Writer, g *grid.Grid[T]) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P5\n%d %d\n255\n", g.Width(), g.Height())

	if g.Len() > 0 {
		lo, hi := grid.MinMax(g)
		scale := 1.0
		if hi != lo {
			scale = 255 / (float64(hi) - float64(lo))
		}
		for _, v := range g.Data() {
			bw.WriteByte(uint8((float64(v)-float64(lo))*scale + 0.5))
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(ErrIOWrite, err.Error())
	}
	return nil
}

// ReadPPMFile reads a colour pixmap from path.
func ReadPPMFile(path string) (*grid.Grid[grid.RGB], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	g, err := ReadPPM(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return g, nil
}

// WritePPMFile writes g to path as a colour pixmap.
func WritePPMFile(path string, g *grid.Grid[grid.RGB]) error {
	return writeFile(path, func(w io.Writer) error { return WritePPM(w, g) })
}

// WritePGMFile writes g to path as a rescaled graymap.
func WritePGMFile[T grid.Number](path string, g *grid.Grid[T]) error {
	return writeFile(path, func(w io.Writer) error { return WritePGM(w, g) })
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(ErrIOWrite, "create %s: %v", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(ErrIOWrite, "close %s: %v", path, err)
	}
	return nil
}
