package normalize

import (
	"errors"
	"testing"

	"panoptes/internal/models"
)

// TestNormalizeMidpointAndClamp verifies the documented mapping for global
// bounds [0, 1000]: 500 lands on the midpoint of the output range and 1500
// clamps to the same value as 1000
func TestNormalizeMidpointAndClamp(t *testing.T) {
	n, err := New(0, 1000)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := n.Normalize(500); got != 32767 {
		t.Errorf("Expected midpoint 32767 for sample 500, got %d", got)
	}

	atMax := n.Normalize(1000)
	if atMax != MaxOutput {
		t.Errorf("Expected %d for sample at upper bound, got %d", MaxOutput, atMax)
	}
	if got := n.Normalize(1500); got != atMax {
		t.Errorf("Expected out-of-range sample to clamp to %d, got %d", atMax, got)
	}

	if got := n.Normalize(-250); got != 0 {
		t.Errorf("Expected below-range sample to clamp to 0, got %d", got)
	}
}

// TestNormalizeIsGlobal verifies that the mapping depends only on the
// configured bounds, not on which values were previously normalized
func TestNormalizeIsGlobal(t *testing.T) {
	n, err := New(100, 300)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first := n.Normalize(200)
	n.Normalize(300)
	n.Normalize(100)
	if got := n.Normalize(200); got != first {
		t.Errorf("Normalization drifted: %d then %d for the same sample", first, got)
	}
}

// TestNormalizeMonotonic verifies that in-range samples keep their ordering
func TestNormalizeMonotonic(t *testing.T) {
	n, err := New(0, 4096)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	prev := n.Normalize(0)
	for v := 64.0; v <= 4096; v += 64 {
		cur := n.Normalize(v)
		if cur < prev {
			t.Fatalf("Normalize(%g) = %d is below Normalize of the previous sample (%d)", v, cur, prev)
		}
		prev = cur
	}
}

// TestNewInvalidBounds verifies that empty or inverted ranges are rejected
func TestNewInvalidBounds(t *testing.T) {
	cases := []struct {
		name     string
		min, max float64
	}{
		{"Inverted", 100, 0},
		{"Empty", 42, 42},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.min, tc.max)
			if !errors.Is(err, models.ErrInvalidConfiguration) {
				t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

// TestBlock verifies sub-rectangle extraction and that the output image is
// anchored at the origin with the spec's dimensions
func TestBlock(t *testing.T) {
	src := models.NewSourceImage(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, float64(y*4+x))
		}
	}

	n, err := New(0, 15)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	spec := models.TileSpec{XStart: 2, YStart: 1, XEnd: 4, YEnd: 3}
	img := n.Block(src, spec)

	b := img.Bounds()
	if b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("Expected 2x2 block, got %dx%d", b.Dx(), b.Dy())
	}

	// Top-left of the block is source pixel (2,1) = 6
	want := n.Normalize(6)
	if got := img.Gray16At(0, 0).Y; got != want {
		t.Errorf("Expected block origin value %d, got %d", want, got)
	}

	// Bottom-right of the block is source pixel (3,2) = 11
	want = n.Normalize(11)
	if got := img.Gray16At(1, 1).Y; got != want {
		t.Errorf("Expected block corner value %d, got %d", want, got)
	}
}
