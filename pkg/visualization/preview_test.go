package visualization

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

// testGray16 builds a 16-bit gradient image
func testGray16(width, height int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16((x + y) * 257)})
		}
	}
	return img
}

// TestRenderPreviewDownscales verifies a large frame fits within the edge
// limit while keeping its aspect ratio
func TestRenderPreviewDownscales(t *testing.T) {
	preview, err := RenderPreview(testGray16(400, 200), 100)
	if err != nil {
		t.Fatalf("RenderPreview failed: %v", err)
	}

	b := preview.Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("Expected 100x50 preview, got %dx%d", b.Dx(), b.Dy())
	}
}

// TestRenderPreviewKeepsSmallImages verifies small frames only change bit
// depth
func TestRenderPreviewKeepsSmallImages(t *testing.T) {
	preview, err := RenderPreview(testGray16(60, 40), 100)
	if err != nil {
		t.Fatalf("RenderPreview failed: %v", err)
	}

	b := preview.Bounds()
	if b.Dx() != 60 || b.Dy() != 40 {
		t.Errorf("Expected 60x40 preview, got %dx%d", b.Dx(), b.Dy())
	}
}

// TestRenderPreviewRejectsBadInput verifies the guard conditions
func TestRenderPreviewRejectsBadInput(t *testing.T) {
	if _, err := RenderPreview(testGray16(10, 10), 0); err == nil {
		t.Error("Expected error for non-positive edge")
	}
	if _, err := RenderPreview(image.NewGray16(image.Rect(0, 0, 0, 0)), 100); err == nil {
		t.Error("Expected error for empty image")
	}
}

// TestSavePreview verifies the file lands on disk
func TestSavePreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	if err := SavePreview(testGray16(300, 300), 64, path); err != nil {
		t.Fatalf("SavePreview failed: %v", err)
	}
}
