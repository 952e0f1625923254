package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"panoptes/internal/models"
)

// SaveGray16PNG writes a 16-bit grayscale image as a PNG file. Failures are
// reported as ErrEncodeFailure so a tiling run can abandon the image.
func SaveGray16PNG(img *image.Gray16, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrEncodeFailure, filepath.Base(path), err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%w: %s: %v", models.ErrEncodeFailure, filepath.Base(path), err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrEncodeFailure, filepath.Base(path), err)
	}
	return nil
}

// LoadGray16PNG reads a PNG file and returns it as a 16-bit grayscale
// image. Images stored with other color models are converted, so tiles
// round-trip regardless of how the PNG encoder chose to store them.
func LoadGray16PNG(path string) (*image.Gray16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v", filepath.Base(path), err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %v", filepath.Base(path), err)
	}

	if gray, ok := img.(*image.Gray16); ok {
		return gray, nil
	}

	b := img.Bounds()
	gray := image.NewGray16(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x-b.Min.X, y-b.Min.Y, color.Gray16Model.Convert(img.At(x, y)))
		}
	}
	return gray, nil
}
