// Package framebuf provides pixel sinks that lay decoded pixels out in the
// memory formats used by display controllers.
package framebuf

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/chronos-tachyon/assert"

	"github.com/chronos-tachyon/pngdec"
)

// FrameBuffer is a pngdec.Sink that stores pixels in one of the Format
// layouts.  Formats without alpha composite transparent pixels over the
// background colour.
type FrameBuffer struct {
	format Format
	width  uint32
	height uint32
	bg     color.RGBA

	// pix holds the packed formats.  y, cb and cr hold the planar ones.
	pix []byte
	y   []byte
	cb  []byte
	cr  []byte

	cstride uint32
	written uint64
}

var bytesPerPixel = [...]uint32{RGB565: 2, RGB888: 3, RGBA8888: 4}

// New allocates a FrameBuffer of the given size.
func New(format Format, width, height uint32) *FrameBuffer {
	assert.Assertf(format.IsValid(), "invalid Format %d", uint(format))
	assert.Assertf(width != 0 && height != 0, "empty frame buffer %dx%d", width, height)

	fb := &FrameBuffer{
		format: format,
		width:  width,
		height: height,
		bg:     color.RGBA{A: 0xff},
	}
	n := int(width) * int(height)
	switch format {
	case YUV444:
		fb.cstride = width
		fb.y = make([]byte, n)
		fb.cb = make([]byte, n)
		fb.cr = make([]byte, n)
	case YUV420:
		fb.cstride = (width + 1) / 2
		cn := int(fb.cstride) * int((height+1)/2)
		fb.y = make([]byte, n)
		fb.cb = make([]byte, cn)
		fb.cr = make([]byte, cn)
	default:
		fb.pix = make([]byte, n*int(bytesPerPixel[format]))
	}
	fb.Clear()
	return fb
}

// SetBackground sets the colour that transparent pixels are composited
// over.  It takes effect for pixels written afterwards, and for Clear.
func (fb *FrameBuffer) SetBackground(c color.Color) {
	fb.bg = color.RGBAModel.Convert(c).(color.RGBA)
}

// Clear fills the frame buffer with the background colour.  RGBA8888 is
// filled with transparent black instead.
func (fb *FrameBuffer) Clear() {
	fb.written = 0
	if fb.format == RGBA8888 {
		for i := range fb.pix {
			fb.pix[i] = 0
		}
		return
	}
	for yy := uint32(0); yy < fb.height; yy++ {
		for xx := uint32(0); xx < fb.width; xx++ {
			fb.store(xx, yy, fb.bg.R, fb.bg.G, fb.bg.B, 0xff)
		}
	}
}

// Format returns the memory layout.
func (fb *FrameBuffer) Format() Format {
	return fb.format
}

// Canvas returns the size to pass to pngdec.Decoder.Init.
func (fb *FrameBuffer) Canvas() pngdec.Canvas {
	return pngdec.Canvas{Width: fb.width, Height: fb.height}
}

// Written returns the number of pixels written since the last Clear.
func (fb *FrameBuffer) Written() uint64 {
	return fb.written
}

// Bytes returns the packed pixel memory of RGB565, RGB888 or RGBA8888.
func (fb *FrameBuffer) Bytes() []byte {
	return fb.pix
}

// Planes returns the Y, Cb and Cr planes of YUV420 or YUV444.
func (fb *FrameBuffer) Planes() (y, cb, cr []byte) {
	return fb.y, fb.cb, fb.cr
}

// WritePixel fulfills pngdec.Sink.
func (fb *FrameBuffer) WritePixel(px pngdec.Pixel) {
	if px.X >= fb.width || px.Y >= fb.height {
		return
	}
	assert.Assertf(px.Format == pngdec.ComponentsRGB, "unsupported component format %v", px.Format)

	r, g, b, a := px.Comp[0], px.Comp[1], px.Comp[2], px.Comp[3]
	if !px.Alpha {
		a = 0xff
	}
	if a != 0xff && fb.format != RGBA8888 {
		r = blend(r, fb.bg.R, a)
		g = blend(g, fb.bg.G, a)
		b = blend(b, fb.bg.B, a)
		a = 0xff
	}
	fb.store(px.X, px.Y, r, g, b, a)
	fb.written++
}

var _ pngdec.Sink = (*FrameBuffer)(nil)

func blend(fg, bg, a uint8) uint8 {
	return uint8((uint32(fg)*uint32(a) + uint32(bg)*uint32(0xff-a) + 0x7f) / 0xff)
}

func (fb *FrameBuffer) store(x, y uint32, r, g, b, a uint8) {
	i := int(y)*int(fb.width) + int(x)
	switch fb.format {
	case RGB565:
		v := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
		binary.LittleEndian.PutUint16(fb.pix[2*i:], v)

	case RGB888:
		p := fb.pix[3*i : 3*i+3]
		p[0], p[1], p[2] = r, g, b

	case RGBA8888:
		p := fb.pix[4*i : 4*i+4]
		p[0], p[1], p[2], p[3] = r, g, b, a

	case YUV444:
		fb.y[i], fb.cb[i], fb.cr[i] = color.RGBToYCbCr(r, g, b)

	case YUV420:
		yy, cb, cr := color.RGBToYCbCr(r, g, b)
		fb.y[i] = yy
		if (x&1) == 0 && (y&1) == 0 {
			j := int(y/2)*int(fb.cstride) + int(x/2)
			fb.cb[j], fb.cr[j] = cb, cr
		}
	}
}

// Image returns a view of the frame buffer.  The planar formats share
// memory with the frame buffer; the packed formats are copied into an
// *image.NRGBA.
func (fb *FrameBuffer) Image() image.Image {
	rect := image.Rect(0, 0, int(fb.width), int(fb.height))
	switch fb.format {
	case YUV444:
		return &image.YCbCr{
			Y:              fb.y,
			Cb:             fb.cb,
			Cr:             fb.cr,
			YStride:        int(fb.width),
			CStride:        int(fb.cstride),
			SubsampleRatio: image.YCbCrSubsampleRatio444,
			Rect:           rect,
		}

	case YUV420:
		return &image.YCbCr{
			Y:              fb.y,
			Cb:             fb.cb,
			Cr:             fb.cr,
			YStride:        int(fb.width),
			CStride:        int(fb.cstride),
			SubsampleRatio: image.YCbCrSubsampleRatio420,
			Rect:           rect,
		}
	}

	img := image.NewNRGBA(rect)
	n := int(fb.width) * int(fb.height)
	for i := 0; i < n; i++ {
		q := img.Pix[4*i : 4*i+4]
		switch fb.format {
		case RGB565:
			v := binary.LittleEndian.Uint16(fb.pix[2*i:])
			q[0] = expand(uint8(v>>11), 5)
			q[1] = expand(uint8(v>>5)&0x3f, 6)
			q[2] = expand(uint8(v)&0x1f, 5)
			q[3] = 0xff
		case RGB888:
			copy(q[0:3], fb.pix[3*i:3*i+3])
			q[3] = 0xff
		case RGBA8888:
			copy(q, fb.pix[4*i:4*i+4])
		}
	}
	return img
}

// expand widens an n-bit channel to 8 bits by bit replication.
func expand(v uint8, n uint) uint8 {
	return v<<(8-n) | v>>(2*n-8)
}
