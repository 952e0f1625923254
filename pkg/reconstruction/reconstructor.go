// Package reconstruction re-renders a full image from its tiles using the
// positions recorded in the image's metadata. Because the tile grid covers
// the source exactly with no overlaps, placement order does not matter and
// the result is byte-identical to the normalized source at every pixel.
package reconstruction

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"panoptes/internal/models"
	"panoptes/pkg/imageio"
)

// TileLoader resolves a tile record to its decoded pixel buffer. The
// reconstructor does not care where tiles live; loaders may read from disk,
// memory or anywhere else.
type TileLoader interface {
	LoadTile(tile models.Tile) (*image.Gray16, error)
}

// DirLoader loads tile artifacts from a single directory, the layout the
// tiler produces: every tile file sits next to its metadata file.
type DirLoader struct {
	// Dir is the directory containing the tile image files
	Dir string
}

// LoadTile reads one tile PNG from the loader's directory. A tile whose
// file does not exist fails with ErrMissingTile.
func (l DirLoader) LoadTile(tile models.Tile) (*image.Gray16, error) {
	path := filepath.Join(l.Dir, tile.Filename)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s (%s)", models.ErrMissingTile, tile.TileID, tile.Filename)
	}

	img, err := imageio.LoadGray16PNG(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrMissingTile, tile.TileID, err)
	}
	return img, nil
}

// Reconstruct rebuilds the full image described by one metadata record.
// The output buffer is sized from the union of all tile positions (max
// x_end by max y_end) and each tile's pixels are copied to its recorded
// bounding box.
//
// A tile the loader cannot resolve fails with ErrMissingTile; a tile whose
// decoded dimensions disagree with its recorded position fails with
// ErrGeometryMismatch. Either aborts this reconstruction only.
func Reconstruct(meta *models.ImageMetadata, loader TileLoader) (*image.Gray16, error) {
	width, height := 0, 0
	for _, tile := range meta.Tiles {
		if tile.Position.XEnd > width {
			width = tile.Position.XEnd
		}
		if tile.Position.YEnd > height {
			height = tile.Position.YEnd
		}
	}

	full := image.NewGray16(image.Rect(0, 0, width, height))

	for _, tile := range meta.Tiles {
		img, err := loader.LoadTile(tile)
		if err != nil {
			if errors.Is(err, models.ErrMissingTile) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s: %v", models.ErrMissingTile, tile.TileID, err)
		}

		b := img.Bounds()
		if b.Dx() != tile.Position.Width() || b.Dy() != tile.Position.Height() {
			return nil, fmt.Errorf("%w: tile %s is %dx%d but its position %v is %dx%d",
				models.ErrGeometryMismatch, tile.TileID, b.Dx(), b.Dy(),
				tile.Position, tile.Position.Width(), tile.Position.Height())
		}

		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				full.SetGray16(tile.Position.XStart+x, tile.Position.YStart+y,
					img.Gray16At(b.Min.X+x, b.Min.Y+y))
			}
		}
	}

	return full, nil
}
