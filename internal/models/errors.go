package models

import "errors"

// Failure classes shared across the pipeline. Packages wrap these with
// fmt.Errorf("...: %w", ...) so callers can dispatch with errors.Is while
// still seeing the file name or tile id that failed.
var (
	// ErrInvalidConfiguration reports a bad tile size or bad normalization
	// bounds. Fatal: nothing is processed.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedSourceFormat reports a source file that cannot be
	// decoded as a 2D image. The offending image is skipped.
	ErrUnsupportedSourceFormat = errors.New("unsupported source format")

	// ErrEmptyImage reports a source image with zero width or height
	ErrEmptyImage = errors.New("empty image")

	// ErrEncodeFailure reports a tile artifact that could not be written.
	// It aborts that image's tiling run; no metadata is persisted for it.
	ErrEncodeFailure = errors.New("encode failure")

	// ErrCorruptMetadata reports a stored metadata file that does not
	// parse into the ImageMetadata shape
	ErrCorruptMetadata = errors.New("corrupt metadata")

	// ErrMissingTile reports a tile referenced by metadata that the tile
	// loader cannot resolve
	ErrMissingTile = errors.New("missing tile")

	// ErrGeometryMismatch reports a loaded tile whose pixel dimensions do
	// not match its recorded bounding box
	ErrGeometryMismatch = errors.New("geometry mismatch")
)
