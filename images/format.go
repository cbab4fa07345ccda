package images

import (
	"path/filepath"
	"strings"
)

// ImageFormat represents supported image file formats.
type ImageFormat string

// ImageFormat constants
const (
	// FormatPPM is the binary portable pixmap (P6).
	FormatPPM ImageFormat = "ppm"
	// FormatPGM is the binary portable graymap (P5).
	FormatPGM ImageFormat = "pgm"
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// FormatFromPath returns the format implied by a file extension, or "" when the
// extension is not recognised.
func FormatFromPath(path string) ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm":
		return FormatPPM
	case ".pgm":
		return FormatPGM
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".webp":
		return FormatWebP
	case ".png":
		return FormatPNG
	default:
		return ""
	}
}
