package tiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"panoptes/internal/models"
	"panoptes/pkg/imageio"
)

// rampImage builds a source image whose samples are a deterministic
// function of position
func rampImage(width, height int) *models.SourceImage {
	img := models.NewSourceImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, float64(x*13+y*31))
		}
	}
	return img
}

// TestTileImage verifies tile count, row-major IDs, positions and artifacts
// for the canonical 1000x1000 / 500 case (scaled down to keep the test fast)
func TestTileImage(t *testing.T) {
	dir := t.TempDir()

	tl, err := New(50, 0, 5000)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	src := rampImage(100, 100)
	meta, err := tl.TileImage(src, "obs.fits", dir)
	if err != nil {
		t.Fatalf("TileImage failed: %v", err)
	}

	if meta.FitsFile != "obs.fits" || meta.TileSize != 50 {
		t.Errorf("Header mismatch: got %q/%d", meta.FitsFile, meta.TileSize)
	}
	if len(meta.Tiles) != 4 {
		t.Fatalf("Expected 4 tiles, got %d", len(meta.Tiles))
	}

	expected := []struct {
		id   string
		spec models.TileSpec
	}{
		{"obs.fits_tile_0_0", models.TileSpec{XStart: 0, YStart: 0, XEnd: 50, YEnd: 50}},
		{"obs.fits_tile_0_1", models.TileSpec{XStart: 50, YStart: 0, XEnd: 100, YEnd: 50}},
		{"obs.fits_tile_1_0", models.TileSpec{XStart: 0, YStart: 50, XEnd: 50, YEnd: 100}},
		{"obs.fits_tile_1_1", models.TileSpec{XStart: 50, YStart: 50, XEnd: 100, YEnd: 100}},
	}

	for i, want := range expected {
		tile := meta.Tiles[i]
		if tile.TileID != want.id {
			t.Errorf("Tile %d: expected ID %s, got %s", i, want.id, tile.TileID)
		}
		if tile.Position != want.spec {
			t.Errorf("Tile %d: expected position %v, got %v", i, want.spec, tile.Position)
		}
		if tile.Filename != want.id+".png" {
			t.Errorf("Tile %d: expected filename %s.png, got %s", i, want.id, tile.Filename)
		}

		// Artifact exists and matches the recorded dimensions
		img, err := imageio.LoadGray16PNG(filepath.Join(dir, tile.Filename))
		if err != nil {
			t.Fatalf("Tile %d artifact: %v", i, err)
		}
		if img.Bounds().Dx() != tile.Position.Width() || img.Bounds().Dy() != tile.Position.Height() {
			t.Errorf("Tile %d artifact is %dx%d, spec says %dx%d",
				i, img.Bounds().Dx(), img.Bounds().Dy(), tile.Position.Width(), tile.Position.Height())
		}
	}
}

// TestTileImageIdempotent verifies that re-tiling the same image reproduces
// identical IDs, hashes and positions
func TestTileImageIdempotent(t *testing.T) {
	tl, err := New(30, 0, 10000)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	src := rampImage(90, 60)
	first, err := tl.TileImage(src, "same.fits", t.TempDir())
	if err != nil {
		t.Fatalf("First TileImage failed: %v", err)
	}
	second, err := tl.TileImage(src, "same.fits", t.TempDir())
	if err != nil {
		t.Fatalf("Second TileImage failed: %v", err)
	}

	if len(first.Tiles) != len(second.Tiles) {
		t.Fatalf("Tile counts differ: %d vs %d", len(first.Tiles), len(second.Tiles))
	}
	for i := range first.Tiles {
		if first.Tiles[i] != second.Tiles[i] {
			t.Errorf("Tile %d differs between runs: %+v vs %+v", i, first.Tiles[i], second.Tiles[i])
		}
	}
}

// TestTileImageEdgeTiles verifies clipped edge tiles for non-divisible
// dimensions
func TestTileImageEdgeTiles(t *testing.T) {
	tl, err := New(40, 0, 10000)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	meta, err := tl.TileImage(rampImage(100, 70), "edge.fits", t.TempDir())
	if err != nil {
		t.Fatalf("TileImage failed: %v", err)
	}

	// 3 columns (40, 40, 20) by 2 rows (40, 30)
	if len(meta.Tiles) != 6 {
		t.Fatalf("Expected 6 tiles, got %d", len(meta.Tiles))
	}

	corner := meta.Tiles[5]
	if corner.TileID != "edge.fits_tile_1_2" {
		t.Errorf("Expected corner tile edge.fits_tile_1_2, got %s", corner.TileID)
	}
	if corner.Position.Width() != 20 || corner.Position.Height() != 30 {
		t.Errorf("Expected 20x30 corner tile, got %dx%d", corner.Position.Width(), corner.Position.Height())
	}
}

// TestTileImageHashesIgnorePosition verifies that identical pixel content at
// different grid positions hashes identically
func TestTileImageHashesIgnorePosition(t *testing.T) {
	tl, err := New(10, 0, 100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Uniform image: every tile has identical content
	src := models.NewSourceImage(30, 10)
	for i := range src.Data {
		src.Data[i] = 42
	}

	meta, err := tl.TileImage(src, "flat.fits", t.TempDir())
	if err != nil {
		t.Fatalf("TileImage failed: %v", err)
	}

	for i := 1; i < len(meta.Tiles); i++ {
		if meta.Tiles[i].Hash != meta.Tiles[0].Hash {
			t.Errorf("Tile %d hash differs from tile 0 despite identical content", i)
		}
	}
}

// TestTileImageEmptyImage verifies the empty-image failure class
func TestTileImageEmptyImage(t *testing.T) {
	tl, err := New(10, 0, 100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = tl.TileImage(models.NewSourceImage(0, 50), "empty.fits", t.TempDir())
	if !errors.Is(err, models.ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}

// TestTileImageEncodeFailure verifies that an unwritable output aborts the
// image with no metadata
func TestTileImageEncodeFailure(t *testing.T) {
	tl, err := New(10, 0, 100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// A regular file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocking file: %v", err)
	}

	meta, err := tl.TileImage(rampImage(20, 20), "blocked.fits", blocker)
	if !errors.Is(err, models.ErrEncodeFailure) {
		t.Errorf("Expected ErrEncodeFailure, got %v", err)
	}
	if meta != nil {
		t.Error("Expected no metadata for a failed tiling run")
	}
}

// TestNewInvalidConfiguration verifies up-front validation of tile size and
// bounds
func TestNewInvalidConfiguration(t *testing.T) {
	cases := []struct {
		name     string
		tileSize int
		min, max float64
	}{
		{"ZeroTileSize", 0, 0, 100},
		{"NegativeTileSize", -5, 0, 100},
		{"InvertedBounds", 500, 100, 0},
		{"EmptyBounds", 500, 50, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.tileSize, tc.min, tc.max)
			if !errors.Is(err, models.ErrInvalidConfiguration) {
				t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

// TestTileImageManyTiles exercises a larger ragged grid end to end
func TestTileImageManyTiles(t *testing.T) {
	tl, err := New(16, 0, 65535)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	meta, err := tl.TileImage(rampImage(100, 52), "big.fits", t.TempDir())
	if err != nil {
		t.Fatalf("TileImage failed: %v", err)
	}

	// 7 columns by 4 rows
	if len(meta.Tiles) != 28 {
		t.Fatalf("Expected 28 tiles, got %d", len(meta.Tiles))
	}

	// IDs follow the row-major index
	for i, tile := range meta.Tiles {
		want := fmt.Sprintf("big.fits_tile_%d_%d", i/7, i%7)
		if tile.TileID != want {
			t.Fatalf("Tile %d: expected ID %s, got %s", i, want, tile.TileID)
		}
	}
}
