package pngdec

import (
	"errors"
	"fmt"
	"io"

	"github.com/chronos-tachyon/assert"
)

const inputChunkSize = 2048

const inputCacheSize = 2 * inputChunkSize

// bitReader caches the byte source in two alternating halves and keeps a
// little-endian bit accumulator on top of it.
//
// Invariants: pos..limit is the unread part of the active half;
// consumed <= fetched <= total; nbits <= bitsPerAccumulator.
type bitReader struct {
	src   io.Reader
	cache *[inputCacheSize]byte

	half  uint8
	pos   uint32
	limit uint32
	valid [2]uint32

	total    uint64
	fetched  uint64
	consumed uint64
	srcErr   error
	srcEOF   bool

	acc   uint32
	nbits uint8
}

func (br *bitReader) init(src io.Reader, total uint64, cache *[inputCacheSize]byte) {
	assert.NotNil(&src)
	assert.NotNil(&cache)

	*br = bitReader{
		src:   src,
		cache: cache,
		total: total,
	}
	br.refill(0)
	br.refill(1)
	br.half = 0
	br.pos = 0
	br.limit = br.valid[0]
}

// refill loads the given half with the next chunk of the source.  Short
// reads are retried until the chunk is complete or the source ends.
func (br *bitReader) refill(half uint8) {
	base := uint32(half) * inputChunkSize
	want := uint32(minU64(inputChunkSize, br.total-br.fetched))
	got := uint32(0)
	for got < want && br.srcErr == nil && !br.srcEOF {
		n, err := br.src.Read(br.cache[base+got : base+want])
		if n < 0 || uint32(n) > want-got {
			n = 0
			err = fmt.Errorf("byte source returned invalid count")
		}
		got += uint32(n)
		switch {
		case err == nil:
			// pass
		case errors.Is(err, io.EOF):
			br.srcEOF = true
		default:
			br.srcErr = err
		}
	}
	br.fetched += uint64(got)
	br.valid[half] = got
}

func (br *bitReader) advance() error {
	if br.consumed >= br.total {
		return br.readErrorf(nil, "read past declared end of source (%d bytes)", br.total)
	}
	if br.valid[br.half] == inputChunkSize {
		old := br.half
		br.half ^= 1
		br.pos = uint32(br.half) * inputChunkSize
		br.limit = br.pos + br.valid[br.half]
		br.refill(old)
		if br.pos < br.limit {
			return nil
		}
	}
	if br.srcErr != nil {
		return br.readErrorf(br.srcErr, "byte source failed")
	}
	return br.readErrorf(io.ErrUnexpectedEOF, "source ended early after %d of %d declared bytes", br.consumed, br.total)
}

func (br *bitReader) readErrorf(err error, format string, v ...interface{}) error {
	return StreamReadError{
		Offset:  br.consumed,
		Problem: fmt.Sprintf(format, v...),
		Err:     err,
	}
}

// nextByte returns the next raw byte of the source, bypassing the
// accumulator.
func (br *bitReader) nextByte() (byte, error) {
	if br.consumed >= br.total {
		return 0, br.readErrorf(nil, "read past declared end of source (%d bytes)", br.total)
	}
	if br.pos >= br.limit {
		if err := br.advance(); err != nil {
			return 0, err
		}
	}
	ch := br.cache[br.pos]
	br.pos++
	br.consumed++
	return ch, nil
}

// readFull fills p with raw bytes from the source.
func (br *bitReader) readFull(p []byte) error {
	for i := range p {
		ch, err := br.nextByte()
		if err != nil {
			return err
		}
		p[i] = ch
	}
	return nil
}

// skipBytes discards n raw bytes from the source in cache-sized strides.
func (br *bitReader) skipBytes(n uint64) error {
	for n != 0 {
		if br.consumed >= br.total {
			return br.readErrorf(nil, "read past declared end of source (%d bytes)", br.total)
		}
		if br.pos >= br.limit {
			if err := br.advance(); err != nil {
				return err
			}
		}
		stride := minU64(n, uint64(br.limit-br.pos))
		stride = minU64(stride, br.total-br.consumed)
		br.pos += uint32(stride)
		br.consumed += stride
		n -= stride
	}
	return nil
}

// pushByte appends 8 bits above the valid bits of the accumulator.
func (br *bitReader) pushByte(ch byte) {
	assert.Assertf(br.nbits <= maxNeedBits, "nbits %d > limit %d", br.nbits, maxNeedBits)
	br.acc |= uint32(ch) << br.nbits
	br.nbits += bitsPerByte
}

// need ensures that at least n bits are in the accumulator, pulling raw
// bytes from the source.
func (br *bitReader) need(n uint8) error {
	assert.Assertf(n <= maxNeedBits, "n %d > limit %d", n, maxNeedBits)
	for br.nbits < n {
		ch, err := br.nextByte()
		if err != nil {
			return err
		}
		br.pushByte(ch)
	}
	return nil
}

// peek returns the low n bits of the accumulator.  Requires n <= nbits.
func (br *bitReader) peek(n uint8) uint32 {
	assert.Assertf(n <= br.nbits, "n %d > nbits %d", n, br.nbits)
	return br.acc & makeMask(n)
}

// skip drops the low n bits of the accumulator.  Requires n <= nbits.
func (br *bitReader) skip(n uint8) {
	assert.Assertf(n <= br.nbits, "n %d > nbits %d", n, br.nbits)
	if n >= bitsPerAccumulator {
		br.acc = 0
	} else {
		br.acc >>= n
	}
	br.nbits -= n
}

// take returns and drops the low n bits of the accumulator.
func (br *bitReader) take(n uint8) uint32 {
	out := br.peek(n)
	br.skip(n)
	return out
}

// alignToByte drops the bits left over from a partially consumed byte.
func (br *bitReader) alignToByte() {
	br.skip(br.nbits % bitsPerByte)
}

// wholeBytes returns the number of complete bytes held in the accumulator.
func (br *bitReader) wholeBytes() uint8 {
	return br.nbits / bitsPerByte
}

// drainByte removes the earliest complete byte from the accumulator.
// Requires a byte-aligned accumulator holding at least one byte.
func (br *bitReader) drainByte() byte {
	assert.Assertf(br.nbits%bitsPerByte == 0, "accumulator not byte-aligned: nbits %d", br.nbits)
	return byte(br.take(bitsPerByte))
}

func (br *bitReader) discardBits() {
	br.acc = 0
	br.nbits = 0
}

// offset returns the number of source bytes consumed so far, including
// bytes still held in the accumulator.
func (br *bitReader) offset() uint64 {
	return br.consumed
}
