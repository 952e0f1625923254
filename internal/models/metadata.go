package models

import "fmt"

// TileSpec is the pixel-coordinate bounding box of one tile within its
// source image. Coordinates are half-open: the tile covers columns
// [XStart, XEnd) and rows [YStart, YEnd).
type TileSpec struct {
	// XStart is the leftmost column of the tile (inclusive)
	XStart int `json:"x_start"`

	// YStart is the topmost row of the tile (inclusive)
	YStart int `json:"y_start"`

	// XEnd is one past the rightmost column of the tile (exclusive)
	XEnd int `json:"x_end"`

	// YEnd is one past the bottom row of the tile (exclusive)
	YEnd int `json:"y_end"`
}

// Width returns the tile width in pixels
func (s TileSpec) Width() int {
	return s.XEnd - s.XStart
}

// Height returns the tile height in pixels
func (s TileSpec) Height() int {
	return s.YEnd - s.YStart
}

// String renders the spec in (x_start,y_start,x_end,y_end) form for log messages
func (s TileSpec) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", s.XStart, s.YStart, s.XEnd, s.YEnd)
}

// Tile describes one stored tile artifact.
type Tile struct {
	// TileID uniquely identifies the tile within the dataset. It is derived
	// from the source image name and the tile's grid position alone
	// ("<image>_tile_<row>_<col>"), so re-tiling an unchanged image
	// reproduces identical IDs.
	TileID string `json:"tile_id"`

	// Filename is the tile image file, relative to its metadata file
	Filename string `json:"filename"`

	// Hash is the SHA-256 hex digest of the tile's normalized pixel data.
	// It depends only on pixel content, never on position or filename.
	Hash string `json:"hash"`

	// Position is the tile's bounding box within the source image
	Position TileSpec `json:"position"`
}

// ImageMetadata is the durable record produced by tiling one source image.
// It is written once after all tiles of the image have been emitted and is
// never mutated afterwards.
type ImageMetadata struct {
	// FitsFile is the base name of the source FITS file
	FitsFile string `json:"fits_file"`

	// TileSize is the nominal tile edge length in pixels; edge tiles may
	// be smaller when the image dimensions are not multiples of it
	TileSize int `json:"tile_size"`

	// Tiles lists every tile of the image in row-major order (all tiles
	// of row 0 left to right, then row 1, and so on)
	Tiles []Tile `json:"tiles"`
}

// TileRef points at one tile occurrence inside one metadata record.
type TileRef struct {
	// SourceFile is the FitsFile of the metadata record the tile belongs to
	SourceFile string `json:"source_file"`

	// TileID is the tile's identifier within that record
	TileID string `json:"tile_id"`
}

// DuplicateGroup collects every tile that shares one content hash.
// Groups are only materialized for hashes seen at least twice; they are
// derived data, recomputed on demand and never persisted.
type DuplicateGroup struct {
	// Hash is the shared SHA-256 hex digest
	Hash string `json:"hash"`

	// Members lists each (source file, tile id) pair carrying the hash,
	// in the order the tiles were encountered
	Members []TileRef `json:"members"`
}
