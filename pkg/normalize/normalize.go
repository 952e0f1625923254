// Package normalize rescales raw intensity samples into the 16-bit output
// range using one fixed pair of global bounds. The bounds are configuration,
// never derived from the image or tile being processed: every tile of every
// image in a run is mapped through the same function, so relative brightness
// stays comparable across the whole dataset. Per-tile min/max stretching
// would destroy that comparability and is deliberately not offered.
package normalize

import (
	"fmt"
	"image"
	"image/color"

	"panoptes/internal/models"
)

// MaxOutput is the top of the output encoding range (16-bit grayscale)
const MaxOutput = 65535

// Normalizer maps raw samples from [Min, Max] onto [0, MaxOutput].
type Normalizer struct {
	min   float64
	max   float64
	scale float64
}

// New creates a normalizer for the given global bounds. The bounds must
// describe a non-empty range.
func New(min, max float64) (*Normalizer, error) {
	if max <= min {
		return nil, fmt.Errorf("%w: normalization bounds [%g, %g] are not a valid range", models.ErrInvalidConfiguration, min, max)
	}
	return &Normalizer{
		min:   min,
		max:   max,
		scale: MaxOutput / (max - min),
	}, nil
}

// Bounds returns the configured global bounds
func (n *Normalizer) Bounds() (min, max float64) {
	return n.min, n.max
}

// Normalize maps one sample into the output range. Samples outside the
// global bounds are clamped, not wrapped or rejected.
func (n *Normalizer) Normalize(sample float64) uint16 {
	if sample <= n.min {
		return 0
	}
	if sample >= n.max {
		return MaxOutput
	}
	return uint16((sample - n.min) * n.scale)
}

// Block normalizes the sub-rectangle of src described by spec into a 16-bit
// grayscale image of the same dimensions, anchored at (0,0).
func (n *Normalizer) Block(src *models.SourceImage, spec models.TileSpec) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, spec.Width(), spec.Height()))
	for y := spec.YStart; y < spec.YEnd; y++ {
		for x := spec.XStart; x < spec.XEnd; x++ {
			img.SetGray16(x-spec.XStart, y-spec.YStart, color.Gray16{Y: n.Normalize(src.At(x, y))})
		}
	}
	return img
}
