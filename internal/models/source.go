package models

// SourceImage holds the decoded pixel data of one source image as a single
// channel of float64 intensity samples in row-major order. It is read-only
// input to the tiler and is not retained after tiling.
type SourceImage struct {
	// Data is the intensity samples, Height rows of Width samples each
	Data []float64

	// Width is the image width in pixels
	Width int

	// Height is the image height in pixels
	Height int
}

// At returns the intensity sample at column x, row y. Bounds are the
// caller's responsibility.
func (s *SourceImage) At(x, y int) float64 {
	return s.Data[y*s.Width+x]
}

// Set stores an intensity sample at column x, row y
func (s *SourceImage) Set(x, y int, v float64) {
	s.Data[y*s.Width+x] = v
}

// NewSourceImage allocates a zero-filled source image of the given size
func NewSourceImage(width, height int) *SourceImage {
	return &SourceImage{
		Data:   make([]float64, width*height),
		Width:  width,
		Height: height,
	}
}
