package enhance

import (
	"image"
	"math"
)

// claheBins is the histogram resolution for 8-bit input
const claheBins = 256

// claheGrid is the nominal number of tile regions along each axis
const claheGrid = 8

// equalizeAdaptive implements clip-limited adaptive histogram equalization.
// The image is divided into a grid of regions, each region gets its own
// clip-limited equalization mapping, and every pixel is remapped by
// bilinear interpolation between the mappings of the four nearest regions.
// The interpolation removes the visible seams plain per-region equalization
// would produce.
//
// clipLimit is normalized: the per-bin cap is clipLimit times the region's
// pixel count, with clipped excess redistributed uniformly over all bins.
func equalizeAdaptive(src *image.Gray, clipLimit float64) *image.Gray {
	width := src.Bounds().Dx()
	height := src.Bounds().Dy()

	tilesX := claheGrid
	if tilesX > width {
		tilesX = width
	}
	tilesY := claheGrid
	if tilesY > height {
		tilesY = height
	}

	tileW := (width + tilesX - 1) / tilesX
	tileH := (height + tilesY - 1) / tilesY

	// Recompute the grid so no region falls entirely outside the image
	tilesX = (width + tileW - 1) / tileW
	tilesY = (height + tileH - 1) / tileH

	// Per-region equalization lookup tables
	luts := make([][][claheBins]uint8, tilesY)
	for ty := 0; ty < tilesY; ty++ {
		luts[ty] = make([][claheBins]uint8, tilesX)
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := x0+tileW, y0+tileH
			if x1 > width {
				x1 = width
			}
			if y1 > height {
				y1 = height
			}
			luts[ty][tx] = regionLUT(src, x0, y0, x1, y1, clipLimit)
		}
	}

	dst := image.NewGray(src.Bounds())

	for y := 0; y < height; y++ {
		// Position in grid coordinates, measured from region centers
		gy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(math.Floor(gy))
		fy := gy - float64(ty0)
		ty1 := ty0 + 1
		if ty0 < 0 {
			ty0, ty1, fy = 0, 0, 0
		}
		if ty1 >= tilesY {
			ty1 = tilesY - 1
			if ty0 > ty1 {
				ty0 = ty1
			}
		}

		for x := 0; x < width; x++ {
			gx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(math.Floor(gx))
			fx := gx - float64(tx0)
			tx1 := tx0 + 1
			if tx0 < 0 {
				tx0, tx1, fx = 0, 0, 0
			}
			if tx1 >= tilesX {
				tx1 = tilesX - 1
				if tx0 > tx1 {
					tx0 = tx1
				}
			}

			v := src.GrayAt(x, y).Y
			top := (1-fx)*float64(luts[ty0][tx0][v]) + fx*float64(luts[ty0][tx1][v])
			bottom := (1-fx)*float64(luts[ty1][tx0][v]) + fx*float64(luts[ty1][tx1][v])
			dst.Pix[y*dst.Stride+x] = uint8(math.Round((1-fy)*top + fy*bottom))
		}
	}

	return dst
}

// regionLUT builds the clip-limited equalization mapping for one region
func regionLUT(src *image.Gray, x0, y0, x1, y1 int, clipLimit float64) [claheBins]uint8 {
	var hist [claheBins]int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[src.GrayAt(x, y).Y]++
		}
	}

	area := (x1 - x0) * (y1 - y0)
	var lut [claheBins]uint8
	if area <= 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	// Clip the histogram and pool the excess
	clip := int(clipLimit * float64(area))
	if clip < 1 {
		clip = 1
	}
	excess := 0
	for i, n := range hist {
		if n > clip {
			excess += n - clip
			hist[i] = clip
		}
	}

	// Redistribute the excess uniformly; the remainder goes one count per
	// bin from the bottom so the total mass is preserved
	share := excess / claheBins
	rest := excess % claheBins
	for i := range hist {
		hist[i] += share
		if i < rest {
			hist[i]++
		}
	}

	cdf := 0
	scale := 255.0 / float64(area)
	for i, n := range hist {
		cdf += n
		lut[i] = uint8(math.Round(float64(cdf) * scale))
	}
	return lut
}
