// Package hashing provides the content digests used across the pipeline:
// per-tile SHA-256 hashes for duplicate detection and the Merkle root used
// for dataset integrity audits. Tiling and duplicate scanning must agree on
// how a tile hashes, so this is the only place a tile digest is computed.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"image"
)

// HashTile computes the SHA-256 hex digest of a normalized tile's raw pixel
// bytes. The digest depends only on pixel content: two tiles with identical
// normalized pixels produce identical digests regardless of which image or
// grid position they came from.
func HashTile(tile *image.Gray16) string {
	h := sha256.New()
	b := tile.Bounds()
	rowBytes := b.Dx() * 2
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := tile.PixOffset(b.Min.X, y)
		h.Write(tile.Pix[off : off+rowBytes])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashGray computes the SHA-256 hex digest of an 8-bit grayscale image's
// raw pixel bytes. The enhancement flow uses these digests as Merkle leaves.
func HashGray(img *image.Gray) string {
	h := sha256.New()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		h.Write(img.Pix[off : off+b.Dx()])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashString computes the SHA-256 hex digest of a string. Merkle nodes are
// built from the concatenated hex digests of their children.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// MerkleRoot reduces a sequence of file hashes to a single root by pairwise
// combination: adjacent digests are concatenated and re-hashed, a trailing
// odd digest is combined with the empty string, and the process repeats on
// the resulting level until one digest remains. The reduction is iterative,
// so arbitrarily large datasets never grow the stack.
//
// An empty input yields an empty root; a single hash is returned unchanged.
func MerkleRoot(hashes []string) string {
	if len(hashes) == 0 {
		return ""
	}

	level := make([]string, len(hashes))
	copy(level, hashes)

	for len(level) > 1 {
		next := make([]string, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, HashString(level[i]+level[i+1]))
			} else {
				next = append(next, HashString(level[i]))
			}
		}
		level = next
	}

	return level[0]
}
