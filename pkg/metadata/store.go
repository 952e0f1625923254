// Package metadata persists one JSON metadata record per source image and
// loads them back for reconstruction and duplicate scanning. It is pure
// persistence: records are written exactly as produced by the tiler and
// validated, not interpreted, on the way back in.
package metadata

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"panoptes/internal/models"
)

// Suffix is appended to a source file name to form its metadata file name
const Suffix = "_metadata.json"

// Store reads and writes metadata records under one root directory. Records
// may live in subdirectories (the tiler keeps one directory per source
// image); LoadAll finds them wherever they are under the root.
type Store struct {
	root string
}

// NewStore creates a store rooted at the given directory
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's root directory
func (s *Store) Root() string {
	return s.root
}

// Path returns the metadata file path for a source file name, relative to
// the store root
func (s *Store) Path(sourceFile string) string {
	return filepath.Join(s.root, sourceFile+Suffix)
}

// Save writes one metadata record as indented JSON. The write is atomic
// with respect to readers: the record is written to a temporary file in the
// same directory and renamed into place, so a concurrent LoadAll never
// observes a half-written file.
func (s *Store) Save(meta *models.ImageMetadata) error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %v", err)
	}

	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata for %s: %v", meta.FitsFile, err)
	}

	final := s.Path(meta.FitsFile)
	tmp, err := os.CreateTemp(s.root, ".metadata-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary metadata file: %v", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write metadata for %s: %v", meta.FitsFile, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write metadata for %s: %v", meta.FitsFile, err)
	}

	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store metadata for %s: %v", meta.FitsFile, err)
	}
	return nil
}

// Load reads the metadata record for one source file name
func (s *Store) Load(sourceFile string) (*models.ImageMetadata, error) {
	return LoadFile(s.Path(sourceFile))
}

// LoadAll walks the store root and returns every parsable metadata record
// in walk order. Files that fail to parse are logged and skipped so a
// duplicate scan can proceed over the remaining valid records; only a
// failure to walk the tree itself is an error.
func (s *Store) LoadAll() ([]*models.ImageMetadata, error) {
	var records []*models.ImageMetadata

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), Suffix) {
			return nil
		}

		meta, err := LoadFile(path)
		if err != nil {
			log.Printf("Skipping %s: %v", path, err)
			return nil
		}
		records = append(records, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk metadata directory %s: %v", s.root, err)
	}

	return records, nil
}

// LoadFile parses one metadata file, enforcing the ImageMetadata shape.
// A record missing required fields or containing malformed tile entries
// fails with ErrCorruptMetadata.
func LoadFile(path string) (*models.ImageMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %v", err)
	}

	// Pointer fields distinguish a missing key from a zero value
	var raw struct {
		FitsFile *string        `json:"fits_file"`
		TileSize *int           `json:"tile_size"`
		Tiles    *[]models.Tile `json:"tiles"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrCorruptMetadata, filepath.Base(path), err)
	}

	switch {
	case raw.FitsFile == nil || *raw.FitsFile == "":
		return nil, fmt.Errorf("%w: %s: missing fits_file", models.ErrCorruptMetadata, filepath.Base(path))
	case raw.TileSize == nil || *raw.TileSize <= 0:
		return nil, fmt.Errorf("%w: %s: missing or invalid tile_size", models.ErrCorruptMetadata, filepath.Base(path))
	case raw.Tiles == nil:
		return nil, fmt.Errorf("%w: %s: missing tiles", models.ErrCorruptMetadata, filepath.Base(path))
	}

	for i, tile := range *raw.Tiles {
		if tile.TileID == "" || tile.Filename == "" || tile.Hash == "" {
			return nil, fmt.Errorf("%w: %s: tile %d is missing required fields", models.ErrCorruptMetadata, filepath.Base(path), i)
		}
		if tile.Position.Width() <= 0 || tile.Position.Height() <= 0 {
			return nil, fmt.Errorf("%w: %s: tile %s has degenerate position %v", models.ErrCorruptMetadata, filepath.Base(path), tile.TileID, tile.Position)
		}
	}

	return &models.ImageMetadata{
		FitsFile: *raw.FitsFile,
		TileSize: *raw.TileSize,
		Tiles:    *raw.Tiles,
	}, nil
}
