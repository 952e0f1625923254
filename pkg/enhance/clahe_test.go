package enhance

import (
	"image"
	"testing"
)

// grayImage builds an 8-bit test image from a pattern function
func grayImage(width, height int, pattern func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Pix[y*img.Stride+x] = pattern(x, y)
		}
	}
	return img
}

// spread returns the min and max pixel values of an image
func spread(img *image.Gray) (uint8, uint8) {
	min, max := img.Pix[0], img.Pix[0]
	for _, v := range img.Pix {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// TestEqualizeAdaptiveExpandsContrast verifies that a low-contrast image
// comes out with a wider value range
func TestEqualizeAdaptiveExpandsContrast(t *testing.T) {
	// All values squeezed into 100..131
	img := grayImage(128, 128, func(x, y int) uint8 {
		return uint8(100 + (x+y)%32)
	})

	out := equalizeAdaptive(img, 0.05)

	inMin, inMax := spread(img)
	outMin, outMax := spread(out)

	if int(outMax)-int(outMin) <= int(inMax)-int(inMin) {
		t.Errorf("Expected contrast expansion: input range %d-%d, output range %d-%d",
			inMin, inMax, outMin, outMax)
	}
}

// TestEqualizeAdaptivePreservesShape verifies the output has the input's
// dimensions
func TestEqualizeAdaptivePreservesShape(t *testing.T) {
	img := grayImage(97, 43, func(x, y int) uint8 { return uint8(x) })
	out := equalizeAdaptive(img, 0.1)

	if out.Bounds() != img.Bounds() {
		t.Errorf("Bounds changed: %v to %v", img.Bounds(), out.Bounds())
	}
}

// TestEqualizeAdaptiveDeterministic verifies repeated runs agree
func TestEqualizeAdaptiveDeterministic(t *testing.T) {
	img := grayImage(64, 64, func(x, y int) uint8 { return uint8(x * y) })

	a := equalizeAdaptive(img, 0.05)
	b := equalizeAdaptive(img, 0.05)

	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("Pixel %d differs between runs", i)
		}
	}
}

// TestEqualizeAdaptiveTinyImage verifies images smaller than the region
// grid are handled
func TestEqualizeAdaptiveTinyImage(t *testing.T) {
	img := grayImage(3, 5, func(x, y int) uint8 { return uint8(40 * x) })

	out := equalizeAdaptive(img, 0.5)
	if out.Bounds().Dx() != 3 || out.Bounds().Dy() != 5 {
		t.Fatalf("Expected 3x5 output, got %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

// TestEqualizeAdaptiveMonotonicPerRegion verifies that equalization never
// inverts the ordering of values within one region's mapping
func TestEqualizeAdaptiveMonotonicPerRegion(t *testing.T) {
	lut := regionLUT(grayImage(32, 32, func(x, y int) uint8 { return uint8(x * 8) }), 0, 0, 32, 32, 0.1)

	for i := 1; i < len(lut); i++ {
		if lut[i] < lut[i-1] {
			t.Fatalf("Mapping not monotonic at value %d: %d then %d", i, lut[i-1], lut[i])
		}
	}
}
