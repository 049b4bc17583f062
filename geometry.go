package pngdec

import (
	"encoding/binary"
	"fmt"
)

// Canvas is the size of the destination the pixels are written into.
type Canvas struct {
	Width  uint32
	Height uint32
}

// pass describes one interlace pass: the first column and row it covers,
// and the column and row steps.
type pass struct {
	hs, vs uint32
	hi, vi uint32
}

var progressivePasses = []pass{
	{0, 0, 1, 1},
}

var adam7Passes = []pass{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

func passesFor(il Interlace) []pass {
	if il == Adam7Interlace {
		return adam7Passes
	}
	return progressivePasses
}

// size returns the width and height of the sub-image this pass covers.
func (p pass) size(w, h uint32) (uint32, uint32) {
	var pw, ph uint32
	if w > p.hs {
		pw = (w - p.hs + p.hi - 1) / p.hi
	}
	if h > p.vs {
		ph = (h - p.vs + p.vi - 1) / p.vi
	}
	return pw, ph
}

// geometry is the placement of the image on the canvas.
type geometry struct {
	mode    Mode
	canvasW uint32
	canvasH uint32
	width   uint32
	height  uint32
	offX    uint32
	offY    uint32
}

// fitGeometry places a w x h image on canvas.  Images that fit are placed
// 1:1; larger images, or any image with upscale set, are scaled to the
// largest size with the same aspect ratio that fits.  Placement is centred
// unless pos is non-nil.
func fitGeometry(w, h uint32, canvas Canvas, upscale bool, pos *[2]uint32) (geometry, error) {
	if canvas.Width == 0 || canvas.Height == 0 {
		return geometry{}, GeometryError{
			Problem: fmt.Sprintf("canvas %dx%d has no pixels", canvas.Width, canvas.Height),
		}
	}

	g := geometry{
		mode:    OriginMode,
		canvasW: canvas.Width,
		canvasH: canvas.Height,
		width:   w,
		height:  h,
	}

	if upscale || w > canvas.Width || h > canvas.Height {
		g.mode = ResizeMode
		cw, ch := uint64(canvas.Width), uint64(canvas.Height)
		W, H := uint64(w), uint64(h)
		if W*ch > H*cw {
			g.width = canvas.Width
			g.height = uint32(H * cw / W)
		} else {
			g.height = canvas.Height
			g.width = uint32(W * ch / H)
		}
		if g.width == 0 {
			g.width = 1
		}
		if g.height == 0 {
			g.height = 1
		}
	}

	if pos != nil {
		g.offX, g.offY = pos[0], pos[1]
	} else {
		if g.width < g.canvasW {
			g.offX = (g.canvasW - g.width) / 2
		}
		if g.height < g.canvasH {
			g.offY = (g.canvasH - g.height) / 2
		}
	}
	return g, nil
}

// mapBytes is the heap space the resize maps need.
func (g geometry) mapBytes() uint64 {
	if g.mode != ResizeMode {
		return 0
	}
	return 4 * (uint64(g.width) + uint64(g.height))
}

// fillMap writes n entries i*src/n to p as little-endian uint32 values.
func fillMap(p []byte, src uint32, n uint32) {
	for i := uint32(0); i < n; i++ {
		v := uint32(uint64(i) * uint64(src) / uint64(n))
		binary.LittleEndian.PutUint32(p[4*i:], v)
	}
}

func mapAt(p []byte, i uint32) uint32 {
	return binary.LittleEndian.Uint32(p[4*uint64(i):])
}
