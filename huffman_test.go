package pngdec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/chronos-tachyon/huffman"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronos-tachyon/pngdec/internal/pngtest"
)

// newStreamDecoder returns a Decoder whose zlib data bytes are p, for
// driving decodeSymbol directly.
func newStreamDecoder(p []byte, scratch *Scratch) *Decoder {
	d := &Decoder{}
	d.br.init(bytes.NewReader(p), uint64(len(p)), &scratch.input)
	d.arena.init(&scratch.arena)
	d.chunkLen = uint32(len(p))
	return d
}

// packCodes writes codes LSB-first, the way a DEFLATE stream carries them.
func packCodes(codes []huffman.Code) []byte {
	var out []byte
	var acc uint64
	var nbits uint
	for _, hc := range codes {
		acc |= uint64(hc.Bits) << nbits
		nbits += uint(hc.Size)
		for nbits >= 8 {
			out = append(out, byte(acc))
			acc >>= 8
			nbits -= 8
		}
	}
	if nbits != 0 {
		out = append(out, byte(acc))
	}
	return append(out, 0, 0, 0, 0)
}

// oracleDecode resolves the code at the bottom of bits with the reference
// decoder.
func oracleDecode(hdec *huffman.Decoder, bits uint32) (huffman.Symbol, byte) {
	numBits := hdec.MinSize()
	max := hdec.MaxSize()
	for numBits <= max {
		hc := huffman.MakeCode(numBits, bits&makeMask(numBits))
		symbol, newMin, newMax := hdec.Decode(hc)
		if symbol >= 0 {
			return symbol, numBits
		}
		if newMax == 0 {
			break
		}
		numBits = newMin
	}
	return huffman.InvalidSymbol, 0
}

func entrySymbol(e huffEntry) int {
	if e.op == opEnd {
		return endOfBlock
	}
	return int(e.val)
}

func TestHuffman_Fixed(t *testing.T) {
	var sLL [physicalNumLLCodes]uint8
	var sD [physicalNumDCodes]uint8
	fixedLengths(&sLL, &sD)

	var eLL, eD huffman.Encoder
	require.NoError(t, eLL.InitFromSizes(sLL[:]))
	require.NoError(t, eD.InitFromSizes(sD[:]))

	var codes []huffman.Code
	for sym := 0; sym < logicalNumLLCodes; sym++ {
		codes = append(codes, eLL.Encode(huffman.Symbol(sym)))
	}
	for sym := 0; sym < logicalNumDCodes; sym++ {
		codes = append(codes, eD.Encode(huffman.Symbol(sym)))
	}

	var scratch Scratch
	d := newStreamDecoder(packCodes(codes), &scratch)
	require.NoError(t, d.buildFixedTables())
	assert.True(t, d.fixedBuilt)

	for sym := uint16(0); sym < logicalNumLLCodes; sym++ {
		e, err := d.decodeSymbol(d.ll)
		require.NoError(t, err, "literal/length symbol %d", sym)
		want := makeEntry(sym, numLiteralSymbols, lengthBase[:], lengthExtra[:])
		assert.Equal(t, want.op, e.op, "literal/length symbol %d", sym)
		assert.Equal(t, want.val, e.val, "literal/length symbol %d", sym)
	}
	for sym := uint16(0); sym < logicalNumDCodes; sym++ {
		e, err := d.decodeSymbol(d.dist)
		require.NoError(t, err, "distance symbol %d", sym)
		assert.Equal(t, distExtra[sym], e.op, "distance symbol %d", sym)
		assert.Equal(t, distBase[sym], e.val, "distance symbol %d", sym)
	}

	// A second build reuses the tables already in the arena.
	used := d.arena.used
	require.NoError(t, d.buildFixedTables())
	assert.Equal(t, used, d.arena.used)
}

func TestHuffman_MatchesOracle(t *testing.T) {
	deep := make([]uint8, physicalNumLLCodes)
	for i, sym := range []int{0, 256, 257, 285, 65, 100, 200, 270, 280, 10, 20, 30, 40, 50, 60} {
		deep[sym] = uint8(i + 1)
	}
	deep[255] = 15

	skewed := make([]uint32, physicalNumLLCodes)
	for i := range skewed {
		skewed[i] = uint32(1 + (i%23)*(i%7)*(i%3))
	}
	skewed[endOfBlock] = 1
	var enc huffman.Encoder
	enc.Init(physicalNumLLCodes, skewed)

	type testRow struct {
		name  string
		sizes []uint8
		root  uint8
	}

	testData := [...]testRow{
		{"deep-root9", deep, rootBitsLL},
		{"deep-root6", deep, rootBitsD},
		{"skewed-root9", pngtest.LimitSizes(enc.SizeBySymbol(), maxCodeBits), rootBitsLL},
	}

	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			var hdec huffman.Decoder
			require.NoError(t, hdec.Init(row.sizes))

			var scratch Scratch
			var arena huffArena
			arena.init(&scratch.arena)
			table, complete, err := arena.build(row.sizes, physicalNumLLCodes, nil, nil, row.root)
			require.NoError(t, err)
			assert.True(t, complete)

			state := uint32(12345)
			for i := 0; i < 4000; i++ {
				state = state*1664525 + 1013904223
				bits := state
				if i < 64 {
					// Long runs of ones reach the deepest codes.
					bits = ^uint32(0) >> uint(i%16)
				}

				wantSym, wantSize := oracleDecode(&hdec, bits)
				require.True(t, wantSym >= 0, "oracle failed on %#08x", bits)

				var raw [4]byte
				binary.LittleEndian.PutUint32(raw[:], bits)
				d := newStreamDecoder(raw[:], &scratch)
				d.arena = arena
				e, err := d.decodeSymbol(table)
				require.NoError(t, err, "bits %#08x", bits)
				assert.Equal(t, int(wantSym), entrySymbol(e), "bits %#08x", bits)
				used := 8*uint32(d.chunkUsed) - uint32(d.br.nbits)
				assert.Equal(t, uint32(wantSize), used, "bits %#08x", bits)
			}
		})
	}
}

func TestHuffman_Build(t *testing.T) {
	type testRow struct {
		name     string
		sizes    []uint8
		complete bool
		wantErr  bool
	}

	testData := [...]testRow{
		{"single", []uint8{0, 1, 0}, false, false},
		{"pair", []uint8{1, 1}, true, false},
		{"incomplete", []uint8{1, 2, 0, 3}, false, false},
		{"empty", []uint8{0, 0, 0, 0}, false, false},
		{"over-subscribed", []uint8{1, 1, 1}, false, true},
		{"over-subscribed-deep", []uint8{1, 2, 2, 15}, false, true},
	}

	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			var scratch Scratch
			var arena huffArena
			arena.init(&scratch.arena)
			_, complete, err := arena.build(row.sizes, uint16(len(row.sizes)), nil, nil, rootBitsX)
			if row.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, row.complete, complete)
		})
	}

	assert.True(t, isSingleShortCode([]uint8{0, 0, 1, 0}))
	assert.False(t, isSingleShortCode([]uint8{0, 2, 0}))
	assert.False(t, isSingleShortCode([]uint8{1, 1}))
}

func TestHuffman_Errors(t *testing.T) {
	t.Run("unassigned-code", func(t *testing.T) {
		var scratch Scratch
		d := newStreamDecoder([]byte{0xff, 0xff}, &scratch)
		table, _, err := d.arena.build([]uint8{0, 1, 0}, 3, nil, nil, rootBitsX)
		require.NoError(t, err)

		_, err = d.decodeSymbol(table)
		var huffErr HuffmanError
		require.True(t, errors.As(err, &huffErr), "%v", err)
	})

	t.Run("empty-code", func(t *testing.T) {
		var scratch Scratch
		d := newStreamDecoder([]byte{0x00}, &scratch)
		table, _, err := d.arena.build(make([]uint8, physicalNumDCodes), 0, distBase[:], distExtra[:], rootBitsD)
		require.NoError(t, err)

		_, err = d.decodeSymbol(table)
		var huffErr HuffmanError
		require.True(t, errors.As(err, &huffErr), "%v", err)
	})

	t.Run("arena-exhausted", func(t *testing.T) {
		var scratch Scratch
		d := newStreamDecoder([]byte{0x00}, &scratch)
		d.arena.limit = 100
		err := d.buildFixedTables()
		var huffErr HuffmanError
		require.True(t, errors.As(err, &huffErr), "%v", err)
		assert.False(t, d.fixedBuilt)
	})
}

func TestSizeList_MarshalJSON(t *testing.T) {
	type testRow struct {
		input SizeList
		want  string
	}

	testData := [...]testRow{
		{nil, "[]"},
		{SizeList{}, "[]"},
		{SizeList{1, 2, 0, 15}, "[1,2,0,15]"},
	}

	for index, row := range testData {
		t.Run(fmt.Sprintf("%03d", index), func(t *testing.T) {
			raw, err := row.input.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, row.want, string(raw))
		})
	}
}
