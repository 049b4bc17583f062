package pngdec

import (
	"encoding/binary"
)

const maxPaletteEntries = 256

// PaletteEntry is one colour of an indexed image's palette.
type PaletteEntry struct {
	R, G, B, A uint8
}

type paletteTable [maxPaletteEntries]PaletteEntry

func (pt *paletteTable) reset() {
	for i := range pt {
		pt[i] = PaletteEntry{A: 0xff}
	}
}

// colorKey is the single transparent colour of a greyscale or truecolour
// image, compared against full-precision samples.
type colorKey struct {
	present bool
	r, g, b uint16
}

// parsePalette reads the PLTE payload.  The chunk header has been consumed;
// the CRC has not.
func (d *Decoder) parsePalette(length uint32) error {
	if length == 0 || length%3 != 0 || length > 3*maxPaletteEntries {
		return d.formatf("PLTE length %d is not a non-zero multiple of 3 <= %d", length, 3*maxPaletteEntries)
	}
	var rgb [3]byte
	n := length / 3
	for i := uint32(0); i < n; i++ {
		if err := d.br.readFull(rgb[:]); err != nil {
			return err
		}
		d.palette[i].R = rgb[0]
		d.palette[i].G = rgb[1]
		d.palette[i].B = rgb[2]
	}
	d.paletteLen = n
	d.paletteSeen = true
	if err := d.br.skipBytes(chunkCRCSize); err != nil {
		return err
	}
	d.sendEvent(Event{
		Type:  PaletteEvent,
		Chunk: &ChunkInfo{Type: chunkPLTE.String(), Length: length},
	})
	return nil
}

// parseTransparency reads the tRNS payload.  The chunk header has been
// consumed; the CRC has not.
func (d *Decoder) parseTransparency(length uint32) error {
	if d.coerced {
		return d.skipChunkPayload(chunkTRNS, length)
	}
	switch d.header.ColorType {
	case Indexed:
		limit := uint32(maxPaletteEntries)
		if d.paletteSeen {
			limit = d.paletteLen
		}
		if length > limit {
			return d.formatf("tRNS length %d > %d palette entries", length, limit)
		}
		for i := uint32(0); i < length; i++ {
			ch, err := d.br.nextByte()
			if err != nil {
				return err
			}
			d.palette[i].A = ch
		}
		for i := length; i < maxPaletteEntries; i++ {
			d.palette[i].A = 0xff
		}

	case Greyscale:
		if length != 2 {
			return d.formatf("tRNS length %d for greyscale image, expected 2", length)
		}
		var tmp [2]byte
		if err := d.br.readFull(tmp[:]); err != nil {
			return err
		}
		v := binary.BigEndian.Uint16(tmp[:])
		d.key = colorKey{present: true, r: v, g: v, b: v}

	case Truecolor:
		if length != 6 {
			return d.formatf("tRNS length %d for truecolour image, expected 6", length)
		}
		var tmp [6]byte
		if err := d.br.readFull(tmp[:]); err != nil {
			return err
		}
		d.key = colorKey{
			present: true,
			r:       binary.BigEndian.Uint16(tmp[0:2]),
			g:       binary.BigEndian.Uint16(tmp[2:4]),
			b:       binary.BigEndian.Uint16(tmp[4:6]),
		}

	default:
		// Pixels already carry alpha.
		return d.skipChunkPayload(chunkTRNS, length)
	}

	d.alphaAvailable = true
	if err := d.br.skipBytes(chunkCRCSize); err != nil {
		return err
	}
	d.sendEvent(Event{
		Type:  TransparencyEvent,
		Chunk: &ChunkInfo{Type: chunkTRNS.String(), Length: length},
	})
	return nil
}
