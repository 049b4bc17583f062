package pngdec

import (
	"encoding/binary"
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
)

const headerChunkLength = 13

const maxDimension = (1 << 31) - 1

// Header is the content of the IHDR chunk.
type Header struct {
	Width       uint32
	Height      uint32
	BitDepth    uint8
	ColorType   ColorType
	Compression uint8
	Filter      uint8
	Interlace   Interlace
}

func isLegalCombination(ct ColorType, depth uint8) bool {
	switch ct {
	case Greyscale:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16
	case Indexed:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	case Truecolor, GreyscaleAlpha, TruecolorAlpha:
		return depth == 8 || depth == 16
	default:
		return false
	}
}

func parseHeaderBytes(p []byte) (Header, uint8) {
	var h Header
	h.Width = binary.BigEndian.Uint32(p[0:4])
	h.Height = binary.BigEndian.Uint32(p[4:8])
	h.BitDepth = p[8]
	h.ColorType = colorTypeFromWire(p[9])
	h.Compression = p[10]
	h.Filter = p[11]
	h.Interlace = Interlace(p[12])
	return h, p[9]
}

// validate checks every field and returns all violations at once, or nil.
func (h Header) validate(wireColor uint8) error {
	var errlist []error
	if h.Width == 0 || h.Width > maxDimension {
		errlist = append(errlist, fmt.Errorf("width %d out of range [1, %d]", h.Width, maxDimension))
	}
	if h.Height == 0 || h.Height > maxDimension {
		errlist = append(errlist, fmt.Errorf("height %d out of range [1, %d]", h.Height, maxDimension))
	}
	switch h.BitDepth {
	case 1, 2, 4, 8, 16:
		// pass
	default:
		errlist = append(errlist, fmt.Errorf("bit depth %d is not one of 1, 2, 4, 8, 16", h.BitDepth))
	}
	if !h.ColorType.IsValid() {
		errlist = append(errlist, fmt.Errorf("colour type %d is not one of 0, 2, 3, 4, 6", wireColor))
	} else if !isLegalCombination(h.ColorType, h.BitDepth) {
		errlist = append(errlist, fmt.Errorf("colour type %v does not allow bit depth %d", h.ColorType, h.BitDepth))
	}
	if h.Compression != 0 {
		errlist = append(errlist, fmt.Errorf("compression method %d, expected 0", h.Compression))
	}
	if h.Filter != 0 {
		errlist = append(errlist, fmt.Errorf("filter method %d, expected 0", h.Filter))
	}
	if !h.Interlace.IsValid() {
		errlist = append(errlist, fmt.Errorf("interlace method %d, expected 0 or 1", uint8(h.Interlace)))
	}
	if len(errlist) == 0 {
		return nil
	}
	return &multierror.Error{Errors: errlist}
}

// BitsPerPixel returns the number of bits in one pixel of a scanline.
func (h Header) BitsPerPixel() uint32 {
	return uint32(h.BitDepth) * h.ColorType.Channels()
}

// BytesPerPixel returns the filter distance: the number of bytes per
// complete pixel, rounded up to 1.
func (h Header) BytesPerPixel() uint32 {
	return ((h.BitsPerPixel() - 1) >> 3) + 1
}

// RowBytes returns the size of a scanline of the given pixel width, not
// counting the filter type byte.
func (h Header) RowBytes(width uint32) uint64 {
	if width == 0 {
		return 0
	}
	return ((uint64(width)*uint64(h.BitsPerPixel()) - 1) >> 3) + 1
}

// reportedDepth is the pixel depth reported to the caller: palette entries
// count as 24-bit colour.
func (h Header) reportedDepth() uint32 {
	d := uint32(h.BitDepth)
	switch h.ColorType {
	case Greyscale:
		return d
	case Truecolor:
		return d * 3
	case Indexed:
		return 24
	case GreyscaleAlpha:
		return d * 2
	case TruecolorAlpha:
		return d * 4
	default:
		return 0
	}
}
