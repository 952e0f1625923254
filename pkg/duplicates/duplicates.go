// Package duplicates finds tiles with identical content across a metadata
// collection. Content hashes are the only comparison key: two tiles are
// duplicates exactly when their normalized pixel data hashed identically,
// wherever in the dataset they occur.
package duplicates

import (
	"panoptes/internal/models"
)

// FindDuplicates groups tiles by content hash across all supplied metadata
// records and returns one group per hash with at least two members. Groups
// appear in first-seen order of the hash and members in encounter order, so
// output is deterministic for a fixed input order. The scan is read-only:
// input records are never mutated, and repeated or concurrent calls on the
// same snapshot yield the same result.
func FindDuplicates(records []*models.ImageMetadata) []models.DuplicateGroup {
	byHash := make(map[string][]models.TileRef)
	var order []string

	for _, meta := range records {
		for _, tile := range meta.Tiles {
			refs, seen := byHash[tile.Hash]
			if !seen {
				order = append(order, tile.Hash)
			}
			byHash[tile.Hash] = append(refs, models.TileRef{
				SourceFile: meta.FitsFile,
				TileID:     tile.TileID,
			})
		}
	}

	var groups []models.DuplicateGroup
	for _, hash := range order {
		refs := byHash[hash]
		if len(refs) < 2 {
			continue
		}
		groups = append(groups, models.DuplicateGroup{
			Hash:    hash,
			Members: refs,
		})
	}

	return groups
}

// CountTiles returns the total number of tile entries across all records,
// for run summaries
func CountTiles(records []*models.ImageMetadata) int {
	total := 0
	for _, meta := range records {
		total += len(meta.Tiles)
	}
	return total
}
