package pngdec

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustDecodeHex(str string) []byte {
	raw, err := hex.DecodeString(str)
	if err != nil {
		panic(err)
	}
	return raw
}

func hexDump(p []byte) []string {
	length := uint(len(p))
	lines := make([]string, 0, (length+15)>>4)
	var buf strings.Builder
	for offset := uint(0); offset < length || offset == 0; offset += 16 {
		buf.Reset()
		fmt.Fprintf(&buf, "%08x|", offset)
		for i := uint(0); i < 16; i++ {
			if index := offset + i; index < length {
				fmt.Fprintf(&buf, " %02x", p[index])
			} else {
				buf.WriteString(" --")
			}
			if i == 7 {
				buf.WriteByte(' ')
			}
		}
		lines = append(lines, buf.String())
		if length == 0 {
			break
		}
	}
	return lines
}

func hexDiff(a, b []byte) []string {
	aLines := hexDump(a)
	bLines := hexDump(b)

	n := len(aLines)
	if n < len(bLines) {
		n = len(bLines)
	}

	diffLines := make([]string, 0, len(aLines)+len(bLines))
	for i := 0; i < n; i++ {
		switch {
		case i >= len(aLines):
			diffLines = append(diffLines, "+"+bLines[i])
		case i >= len(bLines):
			diffLines = append(diffLines, "-"+aLines[i])
		case aLines[i] != bLines[i]:
			diffLines = append(diffLines, "-"+aLines[i], "+"+bLines[i])
		}
	}
	return diffLines
}

func tabify(lines []string) string {
	var buf strings.Builder
	for _, line := range lines {
		buf.WriteByte('\n')
		buf.WriteByte('\t')
		buf.WriteString(line)
	}
	return buf.String()
}

// type pixelGrid {{{

// pixelGrid is a Sink that records the last pixel written to each canvas
// position, and how many times each position was written.
type pixelGrid struct {
	canvas Canvas
	pix    []Pixel
	count  []uint32
	total  uint64
}

func newPixelGrid(canvas Canvas) *pixelGrid {
	n := int(canvas.Width) * int(canvas.Height)
	return &pixelGrid{
		canvas: canvas,
		pix:    make([]Pixel, n),
		count:  make([]uint32, n),
	}
}

func (g *pixelGrid) WritePixel(px Pixel) {
	if px.X >= g.canvas.Width || px.Y >= g.canvas.Height {
		panic(fmt.Errorf("pixel (%d, %d) outside %dx%d canvas", px.X, px.Y, g.canvas.Width, g.canvas.Height))
	}
	if px.Offset != px.Y*g.canvas.Width+px.X {
		panic(fmt.Errorf("pixel (%d, %d) has offset %d", px.X, px.Y, px.Offset))
	}
	g.pix[px.Offset] = px
	g.count[px.Offset]++
	g.total++
}

func (g *pixelGrid) at(x, y uint32) (Pixel, uint32) {
	i := y*g.canvas.Width + x
	return g.pix[i], g.count[i]
}

// rgba returns the pixel at (x, y) as colour.NRGBA.
func (g *pixelGrid) rgba(x, y uint32) color.NRGBA {
	px, _ := g.at(x, y)
	return color.NRGBA{R: px.Comp[0], G: px.Comp[1], B: px.Comp[2], A: px.Comp[3]}
}

// equalPixels reports whether both grids saw the same pixels in the same
// places.
func (g *pixelGrid) equalPixels(other *pixelGrid) bool {
	if g.canvas != other.canvas || g.total != other.total {
		return false
	}
	for i := range g.pix {
		if g.pix[i] != other.pix[i] || g.count[i] != other.count[i] {
			return false
		}
	}
	return true
}

var _ Sink = (*pixelGrid)(nil)

// }}}

// decodeBudget runs a Decoder to completion with a fixed budget per Step.
func decodeBudget(file []byte, canvas Canvas, budget uint, useAlpha bool, opts ...Option) (*pixelGrid, Info, error) {
	grid := newPixelGrid(canvas)
	var d Decoder
	info, err := d.Init(bytes.NewReader(file), int64(len(file)), canvas, opts...)
	if err != nil {
		return grid, info, err
	}
	for {
		status, err := d.StepBudget(budget, grid, useAlpha)
		switch status {
		case StatusDone:
			return grid, info, nil
		case StatusFailed:
			return grid, info, err
		}
	}
}

// refNRGBA decodes file with image/png and reduces every sample to its
// most significant byte, without premultiplying.
func refNRGBA(t *testing.T, file []byte) *image.NRGBA {
	t.Helper()

	src, err := png.Decode(bytes.NewReader(file))
	require.NoError(t, err)

	b := src.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var c color.NRGBA
			switch img := src.(type) {
			case *image.NRGBA64:
				p := img.Pix[img.PixOffset(x, y):]
				c = color.NRGBA{R: p[0], G: p[2], B: p[4], A: p[6]}
			case *image.RGBA64:
				p := img.Pix[img.PixOffset(x, y):]
				c = color.NRGBA{R: p[0], G: p[2], B: p[4], A: 0xff}
			case *image.Gray16:
				p := img.Pix[img.PixOffset(x, y):]
				c = color.NRGBA{R: p[0], G: p[0], B: p[0], A: 0xff}
			default:
				c = color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// requireMatchesReference checks a 1:1 decode against image/png.
func requireMatchesReference(t *testing.T, file []byte, grid *pixelGrid) {
	t.Helper()

	ref := refNRGBA(t, file)
	b := ref.Bounds()
	require.Equal(t, uint32(b.Dx()), grid.canvas.Width)
	require.Equal(t, uint32(b.Dy()), grid.canvas.Height)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			_, n := grid.at(uint32(x), uint32(y))
			require.Equal(t, uint32(1), n, "pixel (%d, %d) written %d times", x, y, n)
			require.Equal(t, ref.NRGBAAt(x, y), grid.rgba(uint32(x), uint32(y)), "pixel (%d, %d)", x, y)
		}
	}
}
