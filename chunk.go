package pngdec

import (
	"bytes"
	"encoding/binary"
)

const chunkHeaderSize = 8

const chunkCRCSize = 4

const skipStride = 512

var pngSignature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type chunkType uint32

func makeChunkType(name string) chunkType {
	return chunkType(binary.BigEndian.Uint32([]byte(name)))
}

var (
	chunkIHDR = makeChunkType("IHDR")
	chunkPLTE = makeChunkType("PLTE")
	chunkIDAT = makeChunkType("IDAT")
	chunkIEND = makeChunkType("IEND")
	chunkTRNS = makeChunkType("tRNS")
	chunkBKGD = makeChunkType("bKGD")
	chunkHIST = makeChunkType("hIST")
)

// Ancillary chunks from the PNG specification and its registered
// extensions.  All are skipped.
var knownAncillary = map[chunkType]struct{}{
	makeChunkType("cHRM"): {},
	makeChunkType("gAMA"): {},
	makeChunkType("iCCP"): {},
	makeChunkType("sBIT"): {},
	makeChunkType("sRGB"): {},
	makeChunkType("cICP"): {},
	makeChunkType("mDCv"): {},
	makeChunkType("cLLi"): {},
	makeChunkType("bKGD"): {},
	makeChunkType("hIST"): {},
	makeChunkType("pHYs"): {},
	makeChunkType("sPLT"): {},
	makeChunkType("eXIf"): {},
	makeChunkType("tIME"): {},
	makeChunkType("tEXt"): {},
	makeChunkType("zTXt"): {},
	makeChunkType("iTXt"): {},
	makeChunkType("acTL"): {},
	makeChunkType("fcTL"): {},
	makeChunkType("fdAT"): {},
	makeChunkType("oFFs"): {},
	makeChunkType("pCAL"): {},
	makeChunkType("sCAL"): {},
	makeChunkType("sTER"): {},
	makeChunkType("gIFg"): {},
	makeChunkType("gIFx"): {},
	makeChunkType("dSIG"): {},
}

func (ct chunkType) String() string {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(ct))
	for i, ch := range tmp {
		if ch < 0x20 || ch > 0x7e {
			tmp[i] = '?'
		}
	}
	return string(tmp[:])
}

// isAncillary reports whether bit 5 of the first type byte is set.
func (ct chunkType) isAncillary() bool {
	return (ct>>24)&0x20 != 0
}

type chunkResult byte

const (
	chunkData chunkResult = iota
	chunkEnd
)

func (d *Decoder) verifySignature() error {
	var sig [8]byte
	if err := d.br.readFull(sig[:]); err != nil {
		return err
	}
	if !bytes.Equal(sig[:], pngSignature[:]) {
		return d.formatf("invalid PNG signature % x", sig[:])
	}
	return nil
}

// readChunkHeader reads the length and type of the next chunk.  With
// resume, whole bytes already buffered in the bit accumulator are used
// first; otherwise the accumulator is left alone.
func (d *Decoder) readChunkHeader(resume bool) (uint32, chunkType, error) {
	var tmp [chunkHeaderSize]byte
	i := 0
	if resume {
		d.br.alignToByte()
		for i < chunkHeaderSize && d.br.wholeBytes() != 0 {
			tmp[i] = d.br.drainByte()
			i++
		}
	}
	if err := d.br.readFull(tmp[i:]); err != nil {
		return 0, 0, err
	}
	length := binary.BigEndian.Uint32(tmp[0:4])
	ct := chunkType(binary.BigEndian.Uint32(tmp[4:8]))
	if length > maxDimension {
		return 0, 0, d.formatf("chunk %v length %d exceeds 2^31-1", ct, length)
	}
	return length, ct, nil
}

func (d *Decoder) parseHeaderChunk() error {
	length, ct, err := d.readChunkHeader(false)
	if err != nil {
		return err
	}
	if ct != chunkIHDR {
		return d.formatf("first chunk is %v, expected IHDR", ct)
	}
	if length != headerChunkLength {
		return d.formatf("IHDR length %d, expected %d", length, headerChunkLength)
	}

	var raw [headerChunkLength]byte
	if err := d.br.readFull(raw[:]); err != nil {
		return err
	}
	if err := d.br.skipBytes(chunkCRCSize); err != nil {
		return err
	}

	h, wireColor := parseHeaderBytes(raw[:])
	if err := h.validate(wireColor); err != nil {
		return d.wrapFormat(err, "invalid IHDR")
	}

	if (d.features&FeatureCompatGreyscale) != 0 && h.ColorType == Indexed && h.BitDepth == 8 && h.Interlace == NoInterlace {
		h.ColorType = Greyscale
		d.coerced = true
	}

	d.header = h
	return nil
}

// skipChunkPayload discards the payload and CRC of a chunk whose header has
// been consumed.
func (d *Decoder) skipChunkPayload(ct chunkType, length uint32) error {
	remaining := uint64(length)
	for remaining >= skipStride {
		if err := d.br.skipBytes(skipStride); err != nil {
			return err
		}
		remaining -= skipStride
	}
	for ; remaining != 0; remaining-- {
		if _, err := d.br.nextByte(); err != nil {
			return err
		}
	}
	if err := d.br.skipBytes(chunkCRCSize); err != nil {
		return err
	}
	d.sendEvent(Event{
		Type:  ChunkEvent,
		Chunk: &ChunkInfo{Type: ct.String(), Length: length},
	})
	return nil
}

// skipOtherChunk applies the unknown-chunk policy.  An unknown critical
// chunk cannot be skipped under any policy.
func (d *Decoder) skipOtherChunk(ct chunkType, length uint32) error {
	if _, known := knownAncillary[ct]; !known {
		if !ct.isAncillary() {
			return d.formatf("unknown critical chunk %v", ct)
		}
		if d.chunkPolicy == RejectUnknownChunks {
			return d.formatf("unknown chunk %v", ct)
		}
	}
	return d.skipChunkPayload(ct, length)
}

// locatePalette walks the chunks between IHDR and PLTE of an indexed image
// and parses PLTE.
func (d *Decoder) locatePalette() error {
	for {
		length, ct, err := d.readChunkHeader(false)
		if err != nil {
			return err
		}
		switch ct {
		case chunkPLTE:
			return d.parsePalette(length)

		case chunkTRNS:
			switch d.trnsOrder {
			case AcceptEarlyTransparency:
				err = d.parseTransparency(length)
			case RejectEarlyTransparency:
				err = d.formatf("tRNS before PLTE")
			default:
				err = d.skipChunkPayload(ct, length)
			}

		case chunkBKGD, chunkHIST:
			err = d.formatf("%v before PLTE", ct)

		case chunkIHDR, chunkIDAT, chunkIEND:
			err = d.formatf("%v before PLTE in indexed image", ct)

		default:
			err = d.skipOtherChunk(ct, length)
		}
		if err != nil {
			return err
		}
	}
}

// findNextDataChunk walks chunks until IDAT or IEND.  On IDAT the payload
// length is recorded and the payload is left unread.  On IEND its CRC is
// consumed.
func (d *Decoder) findNextDataChunk(resume bool) (chunkResult, error) {
	for {
		length, ct, err := d.readChunkHeader(resume)
		if err != nil {
			return chunkEnd, err
		}
		resume = false

		switch ct {
		case chunkIDAT:
			d.chunkLen = length
			d.chunkUsed = 0
			d.sendEvent(Event{
				Type:  DataChunkEvent,
				Chunk: &ChunkInfo{Type: ct.String(), Length: length},
			})
			return chunkData, nil

		case chunkIEND:
			if err := d.skipChunkPayload(ct, length); err != nil {
				return chunkEnd, err
			}
			return chunkEnd, nil

		case chunkTRNS:
			err = d.parseTransparency(length)

		case chunkPLTE:
			err = d.skipChunkPayload(ct, length)

		case chunkIHDR:
			err = d.formatf("duplicate IHDR")

		default:
			err = d.skipOtherChunk(ct, length)
		}
		if err != nil {
			return chunkEnd, err
		}
	}
}
