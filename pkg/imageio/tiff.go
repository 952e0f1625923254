package imageio

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"

	"panoptes/internal/models"
)

// SaveGray16TIFF writes a 16-bit grayscale image as a deflate-compressed
// TIFF file, for consumers that want reconstructed frames outside PNG.
func SaveGray16TIFF(img *image.Gray16, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrEncodeFailure, filepath.Base(path), err)
	}

	opts := &tiff.Options{Compression: tiff.Deflate}
	if err := tiff.Encode(f, img, opts); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%w: %s: %v", models.ErrEncodeFailure, filepath.Base(path), err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrEncodeFailure, filepath.Base(path), err)
	}
	return nil
}
