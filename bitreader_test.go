package pngdec

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCounting(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i*7 + i/256)
	}
	return p
}

func TestBitReader_Bytes(t *testing.T) {
	type testRow struct {
		name string
		src  func(p []byte) io.Reader
	}

	testData := [...]testRow{
		{"whole", func(p []byte) io.Reader { return bytes.NewReader(p) }},
		{"one-byte", func(p []byte) io.Reader { return iotest.OneByteReader(bytes.NewReader(p)) }},
		{"half", func(p []byte) io.Reader { return iotest.HalfReader(bytes.NewReader(p)) }},
		{"data-eof", func(p []byte) io.Reader { return iotest.DataErrReader(bytes.NewReader(p)) }},
	}

	data := makeCounting(3*inputChunkSize + 123)
	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			var cache [inputCacheSize]byte
			var br bitReader
			br.init(row.src(data), uint64(len(data)), &cache)

			got := make([]byte, 0, len(data))
			for i := 0; i < len(data); i++ {
				ch, err := br.nextByte()
				require.NoError(t, err, "byte %d", i)
				got = append(got, ch)
			}
			if !bytes.Equal(data, got) {
				t.Errorf("wrong bytes:%s", tabify(hexDiff(data, got)))
			}
			assert.Equal(t, uint64(len(data)), br.offset())

			_, err := br.nextByte()
			var readErr StreamReadError
			require.True(t, errors.As(err, &readErr), "%v", err)
			assert.Equal(t, uint64(len(data)), readErr.Offset)
		})
	}
}

func TestBitReader_Skip(t *testing.T) {
	data := makeCounting(5*inputChunkSize + 7)

	var cache [inputCacheSize]byte
	var br bitReader
	br.init(bytes.NewReader(data), uint64(len(data)), &cache)

	pos := 0
	for _, n := range []int{1, 500, 2047, 2048, 4096, 1, 1500} {
		require.NoError(t, br.skipBytes(uint64(n)))
		pos += n
		ch, err := br.nextByte()
		require.NoError(t, err)
		require.Equal(t, data[pos], ch, "after skipping to %d", pos)
		pos++
	}

	err := br.skipBytes(uint64(len(data)))
	var readErr StreamReadError
	require.True(t, errors.As(err, &readErr), "%v", err)
}

func TestBitReader_Bits(t *testing.T) {
	data := []byte{0xb5, 0x3c, 0xff, 0x01, 0x80}

	var cache [inputCacheSize]byte
	var br bitReader
	br.init(bytes.NewReader(data), uint64(len(data)), &cache)

	require.NoError(t, br.need(3))
	assert.Equal(t, uint8(8), br.nbits)
	assert.Equal(t, uint32(0x5), br.take(3))
	assert.Equal(t, uint32(0x16), br.take(5))
	assert.Equal(t, uint8(0), br.nbits)

	require.NoError(t, br.need(12))
	assert.Equal(t, uint32(0xf3c), br.peek(12))
	assert.Equal(t, uint32(0xc), br.take(4))
	br.alignToByte()
	assert.Equal(t, uint8(8), br.nbits)
	assert.Equal(t, uint8(1), br.wholeBytes())
	assert.Equal(t, byte(0xff), br.drainByte())

	require.NoError(t, br.need(16))
	assert.Equal(t, uint32(0x8001), br.take(16))

	err := br.need(1)
	var readErr StreamReadError
	require.True(t, errors.As(err, &readErr), "%v", err)
	assert.Equal(t, uint64(5), br.offset())
}

func TestBitReader_SourceError(t *testing.T) {
	boom := errors.New("boom")
	src := io.MultiReader(bytes.NewReader(makeCounting(10)), iotest.ErrReader(boom))

	var cache [inputCacheSize]byte
	var br bitReader
	br.init(src, 100, &cache)

	require.NoError(t, br.skipBytes(10))
	_, err := br.nextByte()
	var readErr StreamReadError
	require.True(t, errors.As(err, &readErr), "%v", err)
	assert.True(t, errors.Is(err, boom))
}
