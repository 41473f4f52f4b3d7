// Package scanner finds the image files for a filtering run and tracks
// progress while they are analyzed.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/omelkes/phaicull/logging"
)

// supportedExtensions are the formats a run will consider, matched
// case-insensitively against the file extension.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// IsImageFile reports whether path has a supported image extension.
func IsImageFile(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// ListImages returns every supported image under root, in lexicographic path
// order so runs are deterministic. When recursive is false, subdirectories
// are skipped. Unreadable entries are logged and skipped.
func ListImages(root string, recursive bool) ([]string, error) {
	var images []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logging.LogWarning("cannot access %s: %v", path, err)
			return nil
		}
		if info.IsDir() {
			if !recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if IsImageFile(path) {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(images)
	return images, nil
}
