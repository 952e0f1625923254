// Package tiler cuts one source image into fixed-size tiles, hashing and
// saving each tile and producing the image's metadata record. It ties
// together the geometry, normalization and hashing components; persistence
// of the resulting record is the caller's job.
package tiler

import (
	"fmt"
	"os"
	"path/filepath"

	"panoptes/internal/models"
	"panoptes/pkg/geometry"
	"panoptes/pkg/hashing"
	"panoptes/pkg/imageio"
	"panoptes/pkg/normalize"
)

// Tiler converts source images into tile artifacts plus metadata. One Tiler
// carries the run-wide configuration (tile size and global normalization
// bounds) and may be reused across images; it keeps no per-image state, so
// independent images can be tiled by independent Tilers without coordination.
type Tiler struct {
	tileSize int
	norm     *normalize.Normalizer
}

// New creates a tiler for the given tile size and global normalization
// bounds. Both are validated here, before any image is touched: a bad tile
// size or an empty bounds range fails with ErrInvalidConfiguration.
func New(tileSize int, globalMin, globalMax float64) (*Tiler, error) {
	if tileSize <= 0 {
		return nil, fmt.Errorf("%w: tile size must be positive, got %d", models.ErrInvalidConfiguration, tileSize)
	}

	norm, err := normalize.New(globalMin, globalMax)
	if err != nil {
		return nil, err
	}

	return &Tiler{
		tileSize: tileSize,
		norm:     norm,
	}, nil
}

// TileSize returns the configured nominal tile edge length
func (t *Tiler) TileSize() int {
	return t.tileSize
}

// TileImage tiles one source image. imageID names the source (the base name
// of the FITS file); it seeds the deterministic per-tile IDs
// "<imageID>_tile_<row>_<col>", so re-tiling an unchanged image reproduces
// identical IDs. Tile artifacts are written into outputDir as 16-bit
// grayscale PNGs.
//
// Tiling an image is all-or-nothing: the metadata record is returned only
// after every tile has been written, and any encode failure aborts the
// image with no record. An image with zero width or height fails with
// ErrEmptyImage.
func (t *Tiler) TileImage(src *models.SourceImage, imageID, outputDir string) (*models.ImageMetadata, error) {
	if src.Width == 0 || src.Height == 0 {
		return nil, fmt.Errorf("%w: %s has dimensions %dx%d", models.ErrEmptyImage, imageID, src.Width, src.Height)
	}

	specs, err := geometry.ComputeTiles(src.Width, src.Height, t.tileSize)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create output directory %s: %v", models.ErrEncodeFailure, outputDir, err)
	}

	_, cols := geometry.GridSize(src.Width, src.Height, t.tileSize)

	meta := &models.ImageMetadata{
		FitsFile: imageID,
		TileSize: t.tileSize,
		Tiles:    make([]models.Tile, 0, len(specs)),
	}

	for i, spec := range specs {
		row, col := i/cols, i%cols

		block := t.norm.Block(src, spec)
		hash := hashing.HashTile(block)

		tileID := fmt.Sprintf("%s_tile_%d_%d", imageID, row, col)
		filename := tileID + ".png"

		if err := imageio.SaveGray16PNG(block, filepath.Join(outputDir, filename)); err != nil {
			return nil, fmt.Errorf("tile %s: %w", tileID, err)
		}

		meta.Tiles = append(meta.Tiles, models.Tile{
			TileID:   tileID,
			Filename: filename,
			Hash:     hash,
			Position: spec,
		})
	}

	return meta, nil
}
