package pngdec

import (
	"encoding/binary"
)

type rowAction byte

const (
	rowPending rowAction = iota
	rowEmit
	rowDefilterOnly
	rowDiscard
)

// lowDepthScale maps a sample of 1, 2 or 4 bits onto 0..255.
var lowDepthScale = [9]uint8{1: 0xff, 2: 0x55, 4: 0x11, 8: 0x01}

// enterPass moves to the first non-empty pass at or after index, or
// finishes the image if there is none.
func (d *Decoder) enterPass(index int) {
	for ; index < len(d.passes); index++ {
		w, h := d.passes[index].size(d.header.Width, d.header.Height)
		if w == 0 || h == 0 {
			continue
		}

		d.passIndex = index
		d.pass = d.passes[index]
		d.passW, d.passH = w, h
		d.passRowBytes = d.header.RowBytes(w)
		d.srcY = 0
		d.destRow = 0
		d.resetRow()

		row := d.row[:d.passRowBytes]
		for i := range row {
			row[i] = 0
		}

		d.sendEvent(Event{
			Type: PassBeginEvent,
			Pass: &PassEvent{
				Index:    uint8(index),
				Width:    w,
				Height:   h,
				RowBytes: d.passRowBytes,
			},
		})
		return
	}
	d.finishImage()
}

func (d *Decoder) resetRow() {
	d.action = rowPending
	d.filterRead = false
	d.rowPos = 0
	d.discardLeft = 0
}

func (d *Decoder) finishImage() {
	if d.imageDone {
		return
	}
	d.imageDone = true
	d.sendEvent(Event{Type: ImageEndEvent})
}

// beginRow decides what to do with the next row of the current pass.
func (d *Decoder) beginRow() {
	yAbs := d.pass.vs + d.srcY*d.pass.vi
	action := rowEmit

	switch d.geom.mode {
	case ResizeMode:
		for d.destRow < d.geom.height && mapAt(d.mapY, d.destRow) < yAbs {
			d.destRow++
		}
		switch {
		case d.destRow >= d.geom.height:
			action = rowDiscard
		case mapAt(d.mapY, d.destRow) != yAbs:
			action = rowDefilterOnly
		}

	default:
		if uint64(d.geom.offY)+uint64(yAbs) >= uint64(d.geom.canvasH) {
			action = rowDiscard
		}
	}

	if action == rowDiscard && d.header.Interlace == NoInterlace {
		// Every later row lies below the canvas too.
		d.finishImage()
		return
	}

	d.action = action
	if action == rowDiscard {
		d.discardLeft = 1 + d.passRowBytes
	}
}

func (d *Decoder) endRow() {
	d.rows++
	d.srcY++
	d.resetRow()
	if d.srcY >= d.passH {
		d.enterPass(d.passIndex + 1)
	}
}

// runImage reconstructs rows from every byte in the window.  It returns to
// the job that yielded once the window is empty.
func (d *Decoder) runImage() error {
	for !d.imageDone {
		if d.action == rowPending {
			d.beginRow()
			continue
		}

		avail := d.win.available()
		if avail == 0 {
			break
		}

		if d.action == rowDiscard {
			n := uint32(minU64(uint64(avail), d.discardLeft))
			d.win.discard(n)
			d.discardLeft -= uint64(n)
			if d.discardLeft == 0 {
				d.endRow()
			}
			continue
		}

		if !d.filterRead {
			ft := FilterType(d.win.pop())
			if !ft.IsValid() {
				return d.formatf("invalid filter type %d in row %d of pass %d", uint8(ft), d.srcY, d.passIndex)
			}
			d.filter = ft
			d.filterRead = true
			continue
		}

		n := uint32(minU64(uint64(avail), d.passRowBytes-d.rowPos))
		d.defilterSpan(n)
		if d.rowPos == d.passRowBytes {
			if d.action == rowEmit {
				d.emitRow()
			}
			d.endRow()
		}
	}

	if d.imageDone {
		if d.sum != nil && !d.streamEnded && d.prevJob != JobDone {
			// Keep inflating so that the trailer can be checked.
			d.win.discard(d.win.available())
			d.job = d.prevJob
			return nil
		}
		d.job = JobDone
		return nil
	}
	if d.prevJob == JobDone {
		return d.formatf("image data ended after %d rows, before the image was complete", d.rows)
	}
	d.job = d.prevJob
	return nil
}

func (d *Decoder) emitRow() {
	alpha := d.useAlpha && d.alphaCapable && d.alphaAvailable
	yAbs := d.pass.vs + d.srcY*d.pass.vi
	cw := uint64(d.geom.canvasW)
	ch := uint64(d.geom.canvasH)

	if d.geom.mode != ResizeMode {
		y := uint64(d.geom.offY) + uint64(yAbs)
		for i := uint32(0); i < d.passW; i++ {
			x := uint64(d.geom.offX) + uint64(d.pass.hs) + uint64(i)*uint64(d.pass.hi)
			if x >= cw {
				break
			}
			d.writePixel(i, x, y, cw, alpha)
		}
		return
	}

	for ; d.destRow < d.geom.height && mapAt(d.mapY, d.destRow) == yAbs; d.destRow++ {
		y := uint64(d.geom.offY) + uint64(d.destRow)
		if y >= ch {
			continue
		}
		for dx := uint32(0); dx < d.geom.width; dx++ {
			x := uint64(d.geom.offX) + uint64(dx)
			if x >= cw {
				break
			}
			sx := mapAt(d.mapX, dx)
			if sx < d.pass.hs || (sx-d.pass.hs)%d.pass.hi != 0 {
				continue
			}
			d.writePixel((sx-d.pass.hs)/d.pass.hi, x, y, cw, alpha)
		}
	}
}

func (d *Decoder) writePixel(i uint32, x, y, cw uint64, alpha bool) {
	px := Pixel{
		Comp:   d.samplePixel(i),
		Alpha:  alpha,
		X:      uint32(x),
		Y:      uint32(y),
		Offset: uint32(y*cw + x),
		Format: ComponentsRGB,
	}
	if !alpha {
		px.Comp[3] = 0xff
	}
	d.sink.WritePixel(px)
}

// lowSample extracts sample i of a row packed at less than 8 bits.
func (d *Decoder) lowSample(i uint64) uint8 {
	depth := uint64(d.header.BitDepth)
	bitpos := i * depth
	shift := 8 - depth - (bitpos & 7)
	return (d.row[bitpos>>3] >> shift) & uint8(makeMask(uint8(depth)))
}

// samplePixel returns pixel i of the reconstructed row as R, G, B, A.
func (d *Decoder) samplePixel(i uint32) [4]uint8 {
	row := d.row
	j := uint64(i)
	depth := d.header.BitDepth
	var out [4]uint8

	switch d.header.ColorType {
	case Greyscale:
		var v uint8
		var full uint16
		switch depth {
		case 16:
			full = binary.BigEndian.Uint16(row[2*j:])
			v = row[2*j]
		case 8:
			v = row[j]
			full = uint16(v)
		default:
			raw := d.lowSample(j)
			full = uint16(raw)
			v = raw * lowDepthScale[depth]
		}
		out = [4]uint8{v, v, v, 0xff}
		if d.key.present && full == d.key.r {
			out[3] = 0
		}

	case Truecolor:
		var r, g, b uint16
		if depth == 16 {
			p := row[6*j:]
			r = binary.BigEndian.Uint16(p[0:])
			g = binary.BigEndian.Uint16(p[2:])
			b = binary.BigEndian.Uint16(p[4:])
			out = [4]uint8{p[0], p[2], p[4], 0xff}
		} else {
			p := row[3*j:]
			r, g, b = uint16(p[0]), uint16(p[1]), uint16(p[2])
			out = [4]uint8{p[0], p[1], p[2], 0xff}
		}
		if d.key.present && r == d.key.r && g == d.key.g && b == d.key.b {
			out[3] = 0
		}

	case Indexed:
		var index uint8
		if depth == 8 {
			index = row[j]
		} else {
			index = d.lowSample(j)
		}
		e := d.palette[index]
		out = [4]uint8{e.R, e.G, e.B, e.A}

	case GreyscaleAlpha:
		if depth == 16 {
			p := row[4*j:]
			out = [4]uint8{p[0], p[0], p[0], p[2]}
		} else {
			p := row[2*j:]
			out = [4]uint8{p[0], p[0], p[0], p[1]}
		}

	case TruecolorAlpha:
		if depth == 16 {
			p := row[8*j:]
			out = [4]uint8{p[0], p[2], p[4], p[6]}
		} else {
			p := row[4*j:]
			out = [4]uint8{p[0], p[1], p[2], p[3]}
		}
	}
	return out
}
