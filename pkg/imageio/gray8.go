package imageio

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"

	"panoptes/internal/models"
)

// SaveGray8 writes an 8-bit grayscale image, choosing the encoder from the
// file extension (png, jpg, tif and friends). The enhancement flow uses
// this for its viewable output; tiles always go through SaveGray16PNG to
// keep their full bit depth.
func SaveGray8(img *image.Gray, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrEncodeFailure, filepath.Base(path), err)
	}
	return nil
}
