package imageprocessor

import (
	"fmt"
	"image"
	"os"

	"github.com/corona10/goimagehash"

	// Decoders for every supported extension.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ComputeAverageHash decodes the image at path and returns its 64-bit average
// hash (8x8 grayscale grid). The hash is a pure function of the file contents.
func ComputeAverageHash(path string) (*goimagehash.ImageHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open image %s: %v", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode image %s: %v", path, err)
	}

	return goimagehash.AverageHash(img)
}

// HashImage hashes an already-decoded image.
func HashImage(img image.Image) (*goimagehash.ImageHash, error) {
	return goimagehash.AverageHash(img)
}
