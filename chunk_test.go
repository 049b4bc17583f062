package pngdec

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChunkDecoder(p []byte, scratch *Scratch) *Decoder {
	d := &Decoder{}
	d.br.init(bytes.NewReader(p), uint64(len(p)), &scratch.input)
	return d
}

func TestChunkType(t *testing.T) {
	type testRow struct {
		ct        chunkType
		str       string
		ancillary bool
	}

	testData := [...]testRow{
		{chunkIHDR, "IHDR", false},
		{chunkIDAT, "IDAT", false},
		{chunkTRNS, "tRNS", true},
		{makeChunkType("prVt"), "prVt", true},
		{chunkType(0x00414243), "?ABC", false},
		{chunkType(0x61ff6263), "a?bc", true},
	}

	for index, row := range testData {
		t.Run(fmt.Sprintf("%03d", index), func(t *testing.T) {
			assert.Equal(t, row.str, row.ct.String())
			assert.Equal(t, row.ancillary, row.ct.isAncillary())
		})
	}
}

func TestReadChunkHeader(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		var scratch Scratch
		d := newChunkDecoder([]byte{0, 0, 0, 13, 'I', 'H', 'D', 'R'}, &scratch)
		length, ct, err := d.readChunkHeader(false)
		require.NoError(t, err)
		assert.Equal(t, uint32(13), length)
		assert.Equal(t, chunkIHDR, ct)
	})

	t.Run("resume", func(t *testing.T) {
		var scratch Scratch
		d := newChunkDecoder([]byte{0xab, 0, 0, 0, 5, 'I', 'D', 'A', 'T'}, &scratch)
		require.NoError(t, d.br.need(16))
		assert.Equal(t, uint32(0x3), d.br.take(3))
		length, ct, err := d.readChunkHeader(true)
		require.NoError(t, err)
		assert.Equal(t, uint32(5), length)
		assert.Equal(t, chunkIDAT, ct)
		assert.Equal(t, uint8(0), d.br.nbits)
		assert.Equal(t, uint64(9), d.br.offset())
	})

	t.Run("too-long", func(t *testing.T) {
		var scratch Scratch
		d := newChunkDecoder([]byte{0x80, 0, 0, 0, 'I', 'D', 'A', 'T'}, &scratch)
		_, _, err := d.readChunkHeader(false)
		var formatErr FormatError
		require.True(t, errors.As(err, &formatErr), "%v", err)
	})

	t.Run("short", func(t *testing.T) {
		var scratch Scratch
		d := newChunkDecoder([]byte{0, 0, 0}, &scratch)
		_, _, err := d.readChunkHeader(false)
		var readErr StreamReadError
		require.True(t, errors.As(err, &readErr), "%v", err)
	})
}

func TestSkipOtherChunk(t *testing.T) {
	type testRow struct {
		name    string
		ct      string
		policy  ChunkPolicy
		wantErr bool
	}

	testData := [...]testRow{
		{"known-skip", "tEXt", SkipUnknownChunks, false},
		{"known-reject", "tEXt", RejectUnknownChunks, false},
		{"unknown-skip", "prVt", SkipUnknownChunks, false},
		{"unknown-reject", "prVt", RejectUnknownChunks, true},
		{"critical-skip", "QuUx", SkipUnknownChunks, true},
		{"critical-reject", "QuUx", RejectUnknownChunks, true},
	}

	payload := make([]byte, 3*skipStride+17+chunkCRCSize)
	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			var scratch Scratch
			d := newChunkDecoder(payload, &scratch)
			d.chunkPolicy = row.policy

			var events []Event
			d.tracers = []Tracer{TracerFunc(func(e Event) { events = append(events, e) })}

			err := d.skipOtherChunk(makeChunkType(row.ct), uint32(len(payload)-chunkCRCSize))
			if row.wantErr {
				var formatErr FormatError
				require.True(t, errors.As(err, &formatErr), "%v", err)
				assert.Empty(t, events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(len(payload)), d.br.offset())
			require.Len(t, events, 1)
			assert.Equal(t, ChunkEvent, events[0].Type)
			assert.Equal(t, &ChunkInfo{Type: row.ct, Length: uint32(len(payload) - chunkCRCSize)}, events[0].Chunk)
		})
	}
}
