package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/chai2010/webp"
	"github.com/cshum/vipsgen/vips"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/grid"
)

// DecodeFrame decodes an encoded image into an RGB grid.
//
// Compressed formats wider than maxWidth are thumbnailed by libvips before
// decoding, preserving the aspect ratio. Pixmaps are decoded directly and then
// downscaled with Downscale.
//
// Arguments:
//   - data: The encoded image.
//   - format: The encoding of data.
//   - maxWidth: The largest accepted width, or 0 for no limit.
//
// Returns:
//   - *grid.Grid[grid.RGB]: The decoded frame.
//   - error: ErrMalformedFile when the data cannot be decoded.
func DecodeFrame(data []byte, format ImageFormat, maxWidth int) (*grid.Grid[grid.RGB], error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrMalformedFile, "empty image data")
	}

	switch format {
	case FormatPPM:
		g, err := ReadPPM(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return Downscale(g, maxWidth), nil
	case FormatJPEG, FormatPNG, FormatWebP:
	default:
		return nil, errors.Wrapf(ErrMalformedFile, "unsupported image format: %q", format)
	}

	cfg, err := decodeConfig(data, format)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedFile, "%s header: %v", format, err)
	}

	if maxWidth > 0 && cfg.Width > maxWidth {
		data, format, err = thumbnail(data, maxWidth, scaledHeight(cfg.Width, cfg.Height, maxWidth))
		if err != nil {
			return nil, err
		}
	}

	img, err := decode(data, format)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedFile, "decode %s: %v", format, err)
	}
	return FromImage(img), nil
}

// ReadFrameFile reads and decodes the image at path, inferring the format from
// its extension.
func ReadFrameFile(path string, maxWidth int) (*grid.Grid[grid.RGB], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	g, err := DecodeFrame(data, FormatFromPath(path), maxWidth)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return g, nil
}

// Downscale shrinks g to maxWidth columns with Lanczos resampling, keeping the
// aspect ratio. Grids already within the limit are returned unchanged.
func Downscale(g *grid.Grid[grid.RGB], maxWidth int) *grid.Grid[grid.RGB] {
	if maxWidth <= 0 || g.Width() <= maxWidth {
		return g
	}
	h := scaledHeight(g.Width(), g.Height(), maxWidth)
	return FromImage(resize.Resize(uint(maxWidth), uint(h), ToImage(g), resize.Lanczos3))
}

func scaledHeight(w, h, maxWidth int) int {
	sh := (h*maxWidth + w/2) / w
	if sh < 1 {
		sh = 1
	}
	return sh
}

func decodeConfig(data []byte, format ImageFormat) (image.Config, error) {
	r := bytes.NewReader(data)
	switch format {
	case FormatJPEG:
		return jpeg.DecodeConfig(r)
	case FormatWebP:
		return webp.DecodeConfig(r)
	default:
		return png.DecodeConfig(r)
	}
}

func decode(data []byte, format ImageFormat) (image.Image, error) {
	r := bytes.NewReader(data)
	switch format {
	case FormatJPEG:
		return jpeg.Decode(r)
	case FormatWebP:
		return webp.Decode(r)
	default:
		return png.Decode(r)
	}
}

// thumbnail resizes an encoded image with libvips and re-encodes it as PNG so
// no further generation loss is introduced.
func thumbnail(data []byte, width, height int) ([]byte, ImageFormat, error) {
	img, err := vips.NewImageFromBuffer(data, &vips.LoadOptions{
		Access: vips.AccessSequential,
	})
	if err != nil {
		return nil, "", errors.Wrapf(ErrMalformedFile, "failed to load image: %v", err)
	}
	defer img.Close()

	err = img.ThumbnailImage(width, &vips.ThumbnailImageOptions{
		Height: height,
		FailOn: vips.FailOnError,
	})
	if err != nil {
		return nil, "", errors.Wrapf(ErrMalformedFile, "failed to resize image: %v", err)
	}

	out, err := img.PngsaveBuffer(&vips.PngsaveBufferOptions{})
	if err != nil || len(out) == 0 {
		return nil, "", errors.Wrap(ErrMalformedFile, "failed to encode resized image")
	}
	return out, FormatPNG, nil
}
