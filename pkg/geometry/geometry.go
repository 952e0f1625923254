// Package geometry computes the tile grid for a source image. It is the
// single authority on how an image is partitioned: every other component
// (tiling, reconstruction) derives positions from the specs produced here.
package geometry

import (
	"fmt"

	"panoptes/internal/models"
)

// ComputeTiles partitions the pixel rectangle [0,width) x [0,height) into a
// row-major grid of tileSize x tileSize cells. The last column and last row
// are clipped to the image bounds, so edge tiles may be smaller than
// tileSize but no pixel is left uncovered and no two tiles overlap.
//
// The returned order (rows outer, columns inner) is an invariant: tile
// naming and addressing rely on a tile's row-major index.
func ComputeTiles(width, height, tileSize int) ([]models.TileSpec, error) {
	if tileSize <= 0 {
		return nil, fmt.Errorf("%w: tile size must be positive, got %d", models.ErrInvalidConfiguration, tileSize)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative image dimensions %dx%d", models.ErrInvalidConfiguration, width, height)
	}

	rows := (height + tileSize - 1) / tileSize
	cols := (width + tileSize - 1) / tileSize

	specs := make([]models.TileSpec, 0, rows*cols)
	for row := 0; row < rows; row++ {
		yEnd := (row + 1) * tileSize
		if yEnd > height {
			yEnd = height
		}
		for col := 0; col < cols; col++ {
			xEnd := (col + 1) * tileSize
			if xEnd > width {
				xEnd = width
			}
			specs = append(specs, models.TileSpec{
				XStart: col * tileSize,
				YStart: row * tileSize,
				XEnd:   xEnd,
				YEnd:   yEnd,
			})
		}
	}

	return specs, nil
}

// GridSize returns the number of tile rows and columns for the given image
// dimensions and tile size, without materializing the specs.
func GridSize(width, height, tileSize int) (rows, cols int) {
	if tileSize <= 0 {
		return 0, 0
	}
	return (height + tileSize - 1) / tileSize, (width + tileSize - 1) / tileSize
}
