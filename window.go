package pngdec

import (
	"github.com/chronos-tachyon/assert"

	"github.com/chronos-tachyon/pngdec/internal/adler32"
)

const historySize = 1 << 15

const historyMask = historySize - 1

// window is the LZ77 history ring.  The inflater pushes at wr, the scanline
// reconstructor pops at rd, and back-references read behind wr.
//
// Invariant: 0 <= wr - rd <= historySize.  Indexing is by masking.
type window struct {
	buf *[historySize]byte
	wr  uint64
	rd  uint64
}

func (w *window) init(buf *[historySize]byte) {
	assert.NotNil(&buf)
	*w = window{buf: buf}
}

func (w *window) reset() {
	w.wr = 0
	w.rd = 0
}

// available returns the number of pushed bytes not yet popped.
func (w *window) available() uint32 {
	return uint32(w.wr - w.rd)
}

// free returns the number of bytes that can be pushed without overwriting
// unconsumed data.
func (w *window) free() uint32 {
	return historySize - uint32(w.wr-w.rd)
}

// written returns the number of bytes pushed since the last reset.
func (w *window) written() uint64 {
	return w.wr
}

func (w *window) push(ch byte) {
	assert.Assertf(w.wr-w.rd < historySize, "push into full window: wr %d rd %d", w.wr, w.rd)
	w.buf[w.wr&historyMask] = ch
	w.wr++
}

func (w *window) pop() byte {
	assert.Assertf(w.rd < w.wr, "pop from empty window: wr %d rd %d", w.wr, w.rd)
	ch := w.buf[w.rd&historyMask]
	w.rd++
	return ch
}

// peekAhead returns the unconsumed byte i positions after rd.
func (w *window) peekAhead(i uint32) byte {
	assert.Assertf(uint64(i) < w.wr-w.rd, "peekAhead %d beyond available %d", i, w.wr-w.rd)
	return w.buf[(w.rd+uint64(i))&historyMask]
}

// peekBack returns the byte dist positions behind wr.  Requires
// 1 <= dist <= min(written, historySize).
func (w *window) peekBack(dist uint32) byte {
	assert.Assertf(dist >= 1 && dist <= historySize, "dist %d out of range", dist)
	assert.Assertf(uint64(dist) <= w.wr, "dist %d > written %d", dist, w.wr)
	return w.buf[(w.wr-uint64(dist))&historyMask]
}

// copyBack appends n bytes copied from dist positions behind wr.  The
// regions may overlap, in which case the copy repeats.  Requires
// n <= free().
func (w *window) copyBack(dist uint32, n uint32, sum *adler32.Digest) {
	assert.Assertf(n <= w.free(), "copy of %d bytes exceeds free space %d", n, w.free())
	for ; n != 0; n-- {
		ch := w.buf[(w.wr-uint64(dist))&historyMask]
		w.buf[w.wr&historyMask] = ch
		w.wr++
		if sum != nil {
			_ = sum.WriteByte(ch)
		}
	}
}

// discard pops n bytes without looking at them.
func (w *window) discard(n uint32) {
	assert.Assertf(uint64(n) <= w.wr-w.rd, "discard %d beyond available %d", n, w.wr-w.rd)
	w.rd += uint64(n)
}
