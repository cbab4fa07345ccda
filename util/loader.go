package util

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// frameName matches "frame-12.png", "frame_3.ppm" and similar.
var frameName = regexp.MustCompile(`^frame[-_](\d+)$`)

// ImageFile represents a numbered frame image on disk.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Frame is the frame number parsed from the file name.
	Frame int
}

// ListFrameFiles returns the frame images of a directory ordered by frame number.
//
// Files are recognised by the name pattern frame-N or frame_N with a .ppm, .png,
// .jpg, .jpeg or .webp extension. Other entries are ignored.
//
// Arguments:
//   - dir: Directory path containing image files.
//
// Returns:
//   - []ImageFile: The frames, lowest number first.
//   - error: Error if the directory cannot be read.
func ListFrameFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}

	var images []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		switch strings.ToLower(ext) {
		case ".ppm", ".png", ".jpg", ".jpeg", ".webp":
			m := frameName.FindStringSubmatch(strings.TrimSuffix(file.Name(), ext))
			if m == nil {
				continue
			}
			frame, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			images = append(images, ImageFile{
				Path:  filepath.Join(dir, file.Name()),
				Frame: frame,
			})
		}
	}

	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Frame < images[j].Frame
	})

	return images, nil
}
