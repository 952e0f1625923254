// Package enhance rescales raw FITS intensities to make faint signals
// visible: logarithmic dynamic-range compression, percentile clipping and
// clip-limited adaptive histogram equalization (CLAHE), in that order. The
// pipeline is a pure per-image transform, independent of tiling; it never
// feeds back into tile hashing or duplicate detection.
package enhance

import (
	"fmt"
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"panoptes/internal/models"
)

// Options selects and parameterizes the enhancement stages.
type Options struct {
	// ApplyLogScale enables logarithmic scaling of the raw samples
	ApplyLogScale bool `json:"apply_log_scale"`

	// LogScale is the multiplier applied before the log1p compression;
	// larger values compress the dynamic range harder
	LogScale float64 `json:"log_scale"`

	// ApplyClipping enables percentile-based intensity clipping
	ApplyClipping bool `json:"apply_clipping"`

	// LowerPercentile and UpperPercentile bound the clip range, in
	// percent of the sample distribution (0-100)
	LowerPercentile float64 `json:"lower_percentile"`
	UpperPercentile float64 `json:"upper_percentile"`

	// ApplyCLAHE enables clip-limited adaptive histogram equalization on
	// the 8-bit result
	ApplyCLAHE bool `json:"apply_clahe"`

	// CLAHEClipLimit is the normalized histogram clip limit (0-1);
	// higher values give more local contrast
	CLAHEClipLimit float64 `json:"clahe_clip_limit"`
}

// DefaultOptions mirrors the settings used for exoplanet transit
// preprocessing: strong log compression, a 15-90 percentile window and
// gentle CLAHE.
func DefaultOptions() Options {
	return Options{
		ApplyLogScale:   true,
		LogScale:        100,
		ApplyClipping:   true,
		LowerPercentile: 15,
		UpperPercentile: 90,
		ApplyCLAHE:      true,
		CLAHEClipLimit:  0.05,
	}
}

// Validate checks the option values for the enabled stages
func (o Options) Validate() error {
	if o.ApplyLogScale && o.LogScale <= 0 {
		return fmt.Errorf("%w: log scale must be positive, got %g", models.ErrInvalidConfiguration, o.LogScale)
	}
	if o.ApplyClipping {
		if o.LowerPercentile < 0 || o.UpperPercentile > 100 || o.LowerPercentile >= o.UpperPercentile {
			return fmt.Errorf("%w: percentile window [%g, %g] is not a valid range within 0-100",
				models.ErrInvalidConfiguration, o.LowerPercentile, o.UpperPercentile)
		}
	}
	if o.ApplyCLAHE && (o.CLAHEClipLimit <= 0 || o.CLAHEClipLimit > 1) {
		return fmt.Errorf("%w: CLAHE clip limit must be in (0, 1], got %g", models.ErrInvalidConfiguration, o.CLAHEClipLimit)
	}
	return nil
}

// Enhance runs the configured stages over one source image and returns the
// result as an 8-bit grayscale image. The input is not modified.
func Enhance(src *models.SourceImage, opts Options) (*image.Gray, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if src.Width == 0 || src.Height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", models.ErrEmptyImage, src.Width, src.Height)
	}

	data := make([]float64, len(src.Data))
	copy(data, src.Data)

	if opts.ApplyLogScale {
		// Background subtraction can leave slightly negative samples;
		// clamp at zero so the log stays defined
		for i, v := range data {
			if v < 0 {
				v = 0
			}
			data[i] = math.Log1p(v * opts.LogScale)
		}
	}

	if opts.ApplyClipping {
		lo, hi := percentiles(data, opts.LowerPercentile, opts.UpperPercentile)
		for i, v := range data {
			if v < lo {
				data[i] = lo
			} else if v > hi {
				data[i] = hi
			}
		}
	}

	img := rescaleToGray(data, src.Width, src.Height)

	if opts.ApplyCLAHE {
		img = equalizeAdaptive(img, opts.CLAHEClipLimit)
	}

	return img, nil
}

// percentiles returns the lower and upper percentile values of the samples
func percentiles(data []float64, lower, upper float64) (float64, float64) {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	lo := stat.Quantile(lower/100, stat.Empirical, sorted, nil)
	hi := stat.Quantile(upper/100, stat.Empirical, sorted, nil)
	return lo, hi
}

// rescaleToGray maps the samples linearly from their own min/max onto
// 0-255. A uniform image maps to all zeros. This per-image stretch is what
// makes the enhancement output viewable; the tiling pipeline instead uses
// fixed global bounds so its output stays comparable across images.
func rescaleToGray(data []float64, width, height int) *image.Gray {
	min, max := data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	if max == min {
		return img
	}

	scale := 255 / (max - min)
	for i, v := range data {
		out := math.Round((v - min) * scale)
		if out < 0 {
			out = 0
		} else if out > 255 {
			out = 255
		}
		img.Pix[i] = uint8(out)
	}
	return img
}
