// Package pngtest builds PNG files with precise control over their layout:
// filter choices, DEFLATE block types, IDAT splitting, and chunk ordering.
// It exists to produce fixtures for the decoder's tests.
package pngtest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/chronos-tachyon/assert"
	"github.com/klauspost/compress/zlib"

	"github.com/chronos-tachyon/pngdec/internal/adler32"
)

// Wire values of the IHDR colour type field.
const (
	Greyscale      uint8 = 0
	Truecolor      uint8 = 2
	Indexed        uint8 = 3
	GreyscaleAlpha uint8 = 4
	TruecolorAlpha uint8 = 6
)

// Channels returns the number of samples per pixel of a colour type.
func Channels(colorType uint8) int {
	switch colorType {
	case Greyscale, Indexed:
		return 1
	case GreyscaleAlpha:
		return 2
	case Truecolor:
		return 3
	case TruecolorAlpha:
		return 4
	default:
		panic(fmt.Errorf("unknown colour type %d", colorType))
	}
}

// Image is the content to encode.  Samples holds Width*Height*Channels
// values in row-major order, each already in the range of BitDepth; for
// Indexed images they are palette indices.
type Image struct {
	Width     uint32
	Height    uint32
	BitDepth  uint8
	ColorType uint8
	Interlace bool
	Samples   []uint16

	// Palette is written as PLTE when non-empty.
	Palette [][3]uint8

	// Alphas is written as the tRNS of an indexed image when non-empty.
	Alphas []uint8

	// Key is written as the tRNS of a greyscale (1 value) or truecolour
	// (3 values) image when non-empty.
	Key []uint16
}

// Sample returns sample c of pixel (x, y).
func (img *Image) Sample(x, y uint32, c int) uint16 {
	ch := Channels(img.ColorType)
	return img.Samples[(int(y)*int(img.Width)+int(x))*ch+c]
}

// Compression selects how the image data is compressed.
type Compression byte

const (
	Stored Compression = iota
	Fixed
	Dynamic
	Zlib
)

// Filter modes.  FilterCycle uses filter type (row number % 5).
const (
	FilterNone    = 0
	FilterSub     = 1
	FilterUp      = 2
	FilterAverage = 3
	FilterPaeth   = 4
	FilterCycle   = 5
)

// Chunk is a raw chunk to insert.
type Chunk struct {
	Type string
	Data []byte
}

// Config controls the layout of the encoded file.
type Config struct {
	Compression Compression

	// Level is the klauspost/compress level for Zlib.
	Level int

	Filter int

	// BlockSize bounds the raw bytes per DEFLATE block for Stored, Fixed
	// and Dynamic.  Zero means 16384.
	BlockSize int

	// IDATSize bounds the payload of each IDAT chunk.  Zero means one
	// IDAT for the whole stream.
	IDATSize int

	// EmptyIDATs inserts a zero-length IDAT between data chunks.
	EmptyIDATs bool

	// TrailingIDAT appends an IDAT after the end of the zlib stream.
	TrailingIDAT bool

	// EarlyTransparency writes tRNS before PLTE.
	EarlyTransparency bool

	// BeforePalette are written between IHDR and PLTE, AfterPalette
	// between PLTE and the first IDAT, and Trailing between the last
	// IDAT and IEND.
	BeforePalette []Chunk
	AfterPalette  []Chunk
	Trailing      []Chunk

	// CorruptAdler32 flips the bits of the zlib trailer.
	CorruptAdler32 bool
}

var adam7 = [7][4]uint32{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

// Scanlines returns the filtered scanlines of img, as they appear in the
// decompressed image data.
func Scanlines(img *Image, filter int) []byte {
	assert.Assertf(len(img.Samples) == int(img.Width)*int(img.Height)*Channels(img.ColorType), "have %d samples, want %d", len(img.Samples), int(img.Width)*int(img.Height)*Channels(img.ColorType))

	passes := [][4]uint32{{0, 0, 1, 1}}
	if img.Interlace {
		passes = adam7[:]
	}

	bitsPerPixel := int(img.BitDepth) * Channels(img.ColorType)
	bpp := (bitsPerPixel + 7) / 8

	var out bytes.Buffer
	for _, p := range passes {
		hs, vs, hi, vi := p[0], p[1], p[2], p[3]
		if img.Width <= hs || img.Height <= vs {
			continue
		}
		pw := (img.Width - hs + hi - 1) / hi
		ph := (img.Height - vs + vi - 1) / vi
		rowBytes := (int(pw)*bitsPerPixel + 7) / 8

		prev := make([]byte, rowBytes)
		cur := make([]byte, rowBytes)
		filtered := make([]byte, rowBytes)
		for j := uint32(0); j < ph; j++ {
			packRow(img, cur, vs+j*vi, hs, hi, pw)
			ft := filter
			if ft == FilterCycle {
				ft = int(j % 5)
			}
			filterRow(ft, filtered, cur, prev, bpp)
			out.WriteByte(byte(ft))
			out.Write(filtered)
			prev, cur = cur, prev
		}
	}
	return out.Bytes()
}

func packRow(img *Image, dst []byte, y uint32, hs uint32, hi uint32, pw uint32) {
	for i := range dst {
		dst[i] = 0
	}
	ch := Channels(img.ColorType)
	depth := int(img.BitDepth)
	bitpos := 0
	for i := uint32(0); i < pw; i++ {
		x := hs + i*hi
		for c := 0; c < ch; c++ {
			v := img.Sample(x, y, c)
			switch depth {
			case 16:
				binary.BigEndian.PutUint16(dst[bitpos>>3:], v)
			case 8:
				dst[bitpos>>3] = byte(v)
			default:
				shift := 8 - depth - (bitpos & 7)
				dst[bitpos>>3] |= byte(v) << uint(shift)
			}
			bitpos += depth
		}
	}
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func filterRow(ft int, dst []byte, cur []byte, prev []byte, bpp int) {
	for i := range cur {
		var a, c byte
		b := prev[i]
		if i >= bpp {
			a, c = cur[i-bpp], prev[i-bpp]
		}
		var pred byte
		switch ft {
		case FilterSub:
			pred = a
		case FilterUp:
			pred = b
		case FilterAverage:
			pred = byte((int(a) + int(b)) / 2)
		case FilterPaeth:
			pred = paeth(a, b, c)
		}
		dst[i] = cur[i] - pred
	}
}

// ZlibStream compresses raw into a zlib stream.
func ZlibStream(raw []byte, cfg Config) ([]byte, error) {
	if cfg.Compression == Zlib {
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, cfg.Level)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(raw); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		out := buf.Bytes()
		if cfg.CorruptAdler32 {
			for i := len(out) - 4; i < len(out); i++ {
				out[i] ^= 0xff
			}
		}
		return out, nil
	}

	blockSize := cfg.BlockSize
	if blockSize <= 0 {
		blockSize = 16384
	}
	if cfg.Compression == Stored && blockSize > 0xffff {
		blockSize = 0xffff
	}

	var bw bitWriter
	// CMF=0x78 (DEFLATE, 32 KiB window); FLG chosen so CMF<<8|FLG is a
	// multiple of 31.
	bw.writeBytes([]byte{0x78, 0x9c})

	head, prev := newMatchTables()
	for start := 0; start < len(raw); start += blockSize {
		end := start + blockSize
		if end > len(raw) {
			end = len(raw)
		}
		isFinal := (end == len(raw))
		switch cfg.Compression {
		case Stored:
			writeStoredBlock(&bw, raw[start:end], isFinal)
		case Fixed:
			writeFixedBlock(&bw, tokenize(raw, start, end, head, prev), isFinal)
		case Dynamic:
			writeDynamicBlock(&bw, tokenize(raw, start, end, head, prev), isFinal)
		default:
			return nil, fmt.Errorf("unknown Compression %d", cfg.Compression)
		}
	}
	if len(raw) == 0 {
		writeStoredBlock(&bw, nil, true)
	}

	sum := adler32.Checksum(raw)
	if cfg.CorruptAdler32 {
		sum = ^sum
	}
	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], sum)
	bw.align()
	bw.writeBytes(trailer[:])
	return append([]byte(nil), bw.bytes()...), nil
}

// AppendChunk appends a chunk with its length and CRC.
func AppendChunk(out []byte, typ string, data []byte) []byte {
	assert.Assertf(len(typ) == 4, "chunk type %q is not 4 bytes", typ)
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(data)))
	out = append(out, tmp[:]...)
	start := len(out)
	out = append(out, typ...)
	out = append(out, data...)
	binary.BigEndian.PutUint32(tmp[:], crc32.ChecksumIEEE(out[start:]))
	return append(out, tmp[:]...)
}

// Signature is the 8-byte PNG file signature.
var Signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Header returns the 13-byte IHDR payload of img.
func Header(img *Image) []byte {
	var p [13]byte
	binary.BigEndian.PutUint32(p[0:4], img.Width)
	binary.BigEndian.PutUint32(p[4:8], img.Height)
	p[8] = img.BitDepth
	p[9] = img.ColorType
	if img.Interlace {
		p[12] = 1
	}
	return p[:]
}

func transparency(img *Image) []byte {
	switch {
	case len(img.Alphas) != 0:
		return append([]byte(nil), img.Alphas...)
	case len(img.Key) != 0:
		out := make([]byte, 2*len(img.Key))
		for i, v := range img.Key {
			binary.BigEndian.PutUint16(out[2*i:], v)
		}
		return out
	default:
		return nil
	}
}

// Encode produces a complete PNG file for img laid out per cfg.
func Encode(img *Image, cfg Config) ([]byte, error) {
	stream, err := ZlibStream(Scanlines(img, cfg.Filter), cfg)
	if err != nil {
		return nil, err
	}

	out := append([]byte(nil), Signature...)
	out = AppendChunk(out, "IHDR", Header(img))
	for _, c := range cfg.BeforePalette {
		out = AppendChunk(out, c.Type, c.Data)
	}

	trns := transparency(img)
	if trns != nil && cfg.EarlyTransparency {
		out = AppendChunk(out, "tRNS", trns)
	}
	if len(img.Palette) != 0 {
		plte := make([]byte, 0, 3*len(img.Palette))
		for _, e := range img.Palette {
			plte = append(plte, e[0], e[1], e[2])
		}
		out = AppendChunk(out, "PLTE", plte)
	}
	if trns != nil && !cfg.EarlyTransparency {
		out = AppendChunk(out, "tRNS", trns)
	}
	for _, c := range cfg.AfterPalette {
		out = AppendChunk(out, c.Type, c.Data)
	}

	step := cfg.IDATSize
	if step <= 0 {
		step = len(stream)
	}
	for start := 0; start < len(stream); start += step {
		end := start + step
		if end > len(stream) {
			end = len(stream)
		}
		if cfg.EmptyIDATs && start != 0 {
			out = AppendChunk(out, "IDAT", nil)
		}
		out = AppendChunk(out, "IDAT", stream[start:end])
	}
	if cfg.TrailingIDAT {
		out = AppendChunk(out, "IDAT", []byte{0xde, 0xad, 0xbe, 0xef})
	}

	for _, c := range cfg.Trailing {
		out = AppendChunk(out, c.Type, c.Data)
	}
	out = AppendChunk(out, "IEND", nil)
	return out, nil
}

// MustEncode is Encode for tests; it panics on error.
func MustEncode(img *Image, cfg Config) []byte {
	out, err := Encode(img, cfg)
	if err != nil {
		panic(err)
	}
	return out
}
