// Package imageio adapts on-disk image formats to the pipeline's in-memory
// types: FITS files decode to float64 source images, tiles and reconstructed
// images are written as 16-bit grayscale PNG, and reconstructed images can
// alternatively be written as 16-bit TIFF.
package imageio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"panoptes/internal/models"
)

// fitsBlockSize is the FITS unit of storage: headers and data are both
// padded to multiples of 2880 bytes
const fitsBlockSize = 2880

// fitsCardSize is the length of one header card (one keyword record)
const fitsCardSize = 80

// fitsHeader holds the subset of primary-HDU keywords the decoder needs
type fitsHeader struct {
	bitpix int
	naxis  int
	axes   []int
	bzero  float64
	bscale float64
}

// DecodeSource decodes a source file into intensity samples, dispatching on
// the file extension. Only FITS input is supported; anything else fails with
// ErrUnsupportedSourceFormat.
func DecodeSource(path string) (*models.SourceImage, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fits", ".fit", ".fts":
		return DecodeFITS(path)
	default:
		return nil, fmt.Errorf("%w: %s is not a FITS file", models.ErrUnsupportedSourceFormat, filepath.Base(path))
	}
}

// DecodeFITS reads the primary HDU of a FITS file and returns its image data
// as float64 samples with BZERO/BSCALE scaling applied. The primary HDU must
// contain a 2D image; higher-dimensional or table extensions fail with
// ErrUnsupportedSourceFormat, and a 2D image with a zero-length axis fails
// with ErrEmptyImage.
func DecodeFITS(path string) (*models.SourceImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnsupportedSourceFormat, filepath.Base(path), err)
	}
	defer f.Close()

	hdr, err := readFITSHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnsupportedSourceFormat, filepath.Base(path), err)
	}

	if hdr.naxis != 2 {
		return nil, fmt.Errorf("%w: %s: primary HDU has NAXIS=%d, need 2D image data", models.ErrUnsupportedSourceFormat, filepath.Base(path), hdr.naxis)
	}

	width, height := hdr.axes[0], hdr.axes[1]
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %s has dimensions %dx%d", models.ErrEmptyImage, filepath.Base(path), width, height)
	}

	sampleBytes := abs(hdr.bitpix) / 8
	raw := make([]byte, width*height*sampleBytes)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, fmt.Errorf("%w: %s: truncated data unit: %v", models.ErrUnsupportedSourceFormat, filepath.Base(path), err)
	}

	img := models.NewSourceImage(width, height)
	if err := decodeFITSSamples(raw, hdr, img.Data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnsupportedSourceFormat, filepath.Base(path), err)
	}

	return img, nil
}

// readFITSHeader consumes 2880-byte header blocks up to and including the
// one containing the END card
func readFITSHeader(r io.Reader) (*fitsHeader, error) {
	hdr := &fitsHeader{bscale: 1}
	block := make([]byte, fitsBlockSize)
	first := true

	for {
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, fmt.Errorf("truncated header: %v", err)
		}

		for off := 0; off < fitsBlockSize; off += fitsCardSize {
			card := string(block[off : off+fitsCardSize])
			key := strings.TrimRight(card[:8], " ")

			if first && off == 0 && key != "SIMPLE" {
				return nil, fmt.Errorf("missing SIMPLE keyword")
			}

			switch key {
			case "END":
				if hdr.naxis != len(hdr.axes) {
					return nil, fmt.Errorf("NAXIS=%d but %d axis keywords present", hdr.naxis, len(hdr.axes))
				}
				return hdr, nil
			case "BITPIX":
				v, err := fitsIntValue(card)
				if err != nil {
					return nil, err
				}
				switch v {
				case 8, 16, 32, 64, -32, -64:
					hdr.bitpix = v
				default:
					return nil, fmt.Errorf("unsupported BITPIX %d", v)
				}
			case "NAXIS":
				v, err := fitsIntValue(card)
				if err != nil {
					return nil, err
				}
				hdr.naxis = v
			case "BZERO":
				v, err := fitsFloatValue(card)
				if err != nil {
					return nil, err
				}
				hdr.bzero = v
			case "BSCALE":
				v, err := fitsFloatValue(card)
				if err != nil {
					return nil, err
				}
				hdr.bscale = v
			default:
				if strings.HasPrefix(key, "NAXIS") {
					v, err := fitsIntValue(card)
					if err != nil {
						return nil, err
					}
					hdr.axes = append(hdr.axes, v)
				}
			}
		}
		first = false
	}
}

// fitsValue extracts the raw value field of a header card, stripping any
// trailing comment
func fitsValue(card string) (string, error) {
	if len(card) < 10 || card[8] != '=' {
		return "", fmt.Errorf("card %q has no value field", strings.TrimSpace(card[:8]))
	}
	v := card[10:]
	if i := strings.IndexByte(v, '/'); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v), nil
}

func fitsIntValue(card string) (int, error) {
	v, err := fitsValue(card)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("card %q: bad integer %q", strings.TrimSpace(card[:8]), v)
	}
	return n, nil
}

func fitsFloatValue(card string) (float64, error) {
	v, err := fitsValue(card)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("card %q: bad float %q", strings.TrimSpace(card[:8]), v)
	}
	return f, nil
}

// decodeFITSSamples converts the big-endian data unit into physical values,
// applying the linear BZERO/BSCALE transform
func decodeFITSSamples(raw []byte, hdr *fitsHeader, out []float64) error {
	for i := range out {
		var v float64
		switch hdr.bitpix {
		case 8:
			v = float64(raw[i])
		case 16:
			v = float64(int16(binary.BigEndian.Uint16(raw[i*2:])))
		case 32:
			v = float64(int32(binary.BigEndian.Uint32(raw[i*4:])))
		case 64:
			v = float64(int64(binary.BigEndian.Uint64(raw[i*8:])))
		case -32:
			v = float64(math.Float32frombits(binary.BigEndian.Uint32(raw[i*4:])))
		case -64:
			v = math.Float64frombits(binary.BigEndian.Uint64(raw[i*8:]))
		default:
			return fmt.Errorf("unsupported BITPIX %d", hdr.bitpix)
		}
		out[i] = hdr.bzero + hdr.bscale*v
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
