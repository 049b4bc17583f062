package pngdec

// paeth returns whichever of a (left), b (above) or c (above-left) is
// closest to a+b-c, preferring a, then b.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := absInt(p - int(a))
	pb := absInt(p - int(b))
	pc := absInt(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func predict(ft FilterType, a, b, c byte) byte {
	switch ft {
	case FilterSub:
		return a
	case FilterUp:
		return b
	case FilterAverage:
		return byte((uint(a) + uint(b)) >> 1)
	case FilterPaeth:
		return paeth(a, b, c)
	default:
		return 0
	}
}

// defilterRow reverses filter ft on cur in place, given the reconstructed
// previous row (all zero for the first row of a pass).
func defilterRow(ft FilterType, cur []byte, prev []byte, bpp int) {
	for i := range cur {
		var a, c byte
		b := prev[i]
		if i >= bpp {
			a = cur[i-bpp]
			c = prev[i-bpp]
		}
		cur[i] += predict(ft, a, b, c)
	}
}

// filterRow applies filter ft to cur, writing the result to dst.
func filterRow(ft FilterType, dst []byte, cur []byte, prev []byte, bpp int) {
	for i := range cur {
		var a, c byte
		b := prev[i]
		if i >= bpp {
			a = cur[i-bpp]
			c = prev[i-bpp]
		}
		dst[i] = cur[i] - predict(ft, a, b, c)
	}
}

// defilterSpan pops n filtered bytes from the window and reconstructs them
// in place in the scanline buffer, which still holds the previous row from
// d.rowPos onwards.  Above-left bytes overwritten earlier in the row are
// kept in d.above.
func (d *Decoder) defilterSpan(n uint32) {
	row := d.row
	bpp := uint64(d.bpp)
	pos := d.rowPos
	ft := d.filter
	for ; n != 0; n-- {
		x := d.win.pop()
		b := row[pos]
		slot := pos % bpp
		var a, c byte
		if pos >= bpp {
			a = row[pos-bpp]
			c = d.above[slot]
		}
		d.above[slot] = b
		row[pos] = x + predict(ft, a, b, c)
		pos++
	}
	d.rowPos = pos
}
