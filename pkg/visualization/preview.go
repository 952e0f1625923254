// Package visualization renders quick-look previews of pipeline outputs.
// Reconstructed frames are 16-bit and often thousands of pixels on a side,
// which most viewers handle poorly; a preview is an 8-bit downscaled copy
// meant for eyeballing a run, never for analysis.
package visualization

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// RenderPreview converts a 16-bit grayscale image to 8-bit and scales it to
// fit within maxEdge pixels on its longer side. Images already small enough
// keep their size; only the bit depth changes.
func RenderPreview(img *image.Gray16, maxEdge int) (*image.NRGBA, error) {
	if maxEdge <= 0 {
		return nil, fmt.Errorf("preview edge must be positive, got %d", maxEdge)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("cannot preview an empty image")
	}

	if b.Dx() <= maxEdge && b.Dy() <= maxEdge {
		return imaging.Clone(img), nil
	}
	return imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos), nil
}

// SavePreview renders a preview and writes it to path, with the format
// chosen from the file extension
func SavePreview(img *image.Gray16, maxEdge int, path string) error {
	preview, err := RenderPreview(img, maxEdge)
	if err != nil {
		return err
	}
	if err := imaging.Save(preview, path); err != nil {
		return fmt.Errorf("failed to save preview: %v", err)
	}
	return nil
}
