package pngdec

// StreamHeader is the content of the two-byte zlib header at the start of
// the image data.
type StreamHeader struct {
	WindowBits    uint8
	CompressLevel CompressLevel
}

const maxWindowBits = 15

// nextDataByte returns the next byte of the zlib stream, moving on to the
// next IDAT chunk when the current payload is exhausted.
func (d *Decoder) nextDataByte() (byte, error) {
	for d.chunkUsed >= d.chunkLen {
		if err := d.br.skipBytes(chunkCRCSize); err != nil {
			return 0, err
		}
		res, err := d.findNextDataChunk(false)
		if err != nil {
			return 0, err
		}
		if res == chunkEnd {
			d.iendSeen = true
			return 0, d.formatf("zlib stream truncated: IEND before end of stream")
		}
	}
	ch, err := d.br.nextByte()
	if err != nil {
		return 0, err
	}
	d.chunkUsed++
	return ch, nil
}

// needBits is the chunk-aware version of bitReader.need.
func (d *Decoder) needBits(n uint8) error {
	for d.br.nbits < n {
		ch, err := d.nextDataByte()
		if err != nil {
			return err
		}
		d.br.pushByte(ch)
	}
	return nil
}

func (d *Decoder) readBits(n uint8) (uint32, error) {
	if err := d.needBits(n); err != nil {
		return 0, err
	}
	return d.br.take(n), nil
}

// readAlignedByte returns the next whole byte of the stream, draining the
// accumulator first.  Requires a byte-aligned accumulator.
func (d *Decoder) readAlignedByte() (byte, error) {
	if d.br.wholeBytes() != 0 {
		return d.br.drainByte(), nil
	}
	return d.nextDataByte()
}

func (d *Decoder) readAlignedU16LE() (uint16, error) {
	lo, err := d.readAlignedByte()
	if err != nil {
		return 0, err
	}
	hi, err := d.readAlignedByte()
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

func (d *Decoder) readAlignedU32BE() (uint32, error) {
	var u32 uint32
	for i := 0; i < 4; i++ {
		ch, err := d.readAlignedByte()
		if err != nil {
			return 0, err
		}
		u32 = (u32 << 8) | uint32(ch)
	}
	return u32, nil
}

func (d *Decoder) runSearchData() error {
	res, err := d.findNextDataChunk(true)
	if err != nil {
		return err
	}

	if res == chunkEnd {
		d.iendSeen = true
		if !d.streamStarted {
			return d.formatf("IEND before any IDAT")
		}
		d.prevJob = JobDone
		d.job = JobImage
		return nil
	}

	if d.streamEnded {
		// Trailing IDATs after the end of the zlib stream carry nothing.
		remaining := d.chunkLen
		d.chunkLen, d.chunkUsed = 0, 0
		return d.skipChunkPayload(chunkIDAT, remaining)
	}

	d.streamStarted = true
	d.job = JobZlibHeader
	return nil
}

func (d *Decoder) runZlibHeader() error {
	cmf, err := d.nextDataByte()
	if err != nil {
		return err
	}
	flg, err := d.nextDataByte()
	if err != nil {
		return err
	}

	u16 := uint16(cmf)<<8 | uint16(flg)
	if mod := (u16 % 31); mod != 0 {
		return d.formatf("invalid zlib header checksum -- expected %#04x mod 31 == 0, got %d", u16, mod)
	}
	if method := (cmf & 0x0f); method != 0x08 {
		return d.formatf("invalid zlib compression method -- expected 0x8 (DEFLATE), got %#x", method)
	}
	wbits := 8 + (cmf >> 4)
	if wbits > maxWindowBits {
		return d.formatf("zlib window size is too big -- data uses 2**%d, limit is 2**%d", wbits, maxWindowBits)
	}
	if (flg & 0x20) != 0 {
		return d.formatf("zlib stream was compressed with a pre-set dictionary")
	}

	d.stream = StreamHeader{
		WindowBits:    wbits,
		CompressLevel: CompressLevel(flg >> 6),
	}
	if d.sum != nil {
		d.sum.Reset()
	}
	d.win.reset()

	streamHeader := d.stream
	d.sendEvent(Event{
		Type:   StreamHeaderEvent,
		Stream: &streamHeader,
	})

	d.job = JobBlockHeader
	return nil
}

func (d *Decoder) runBlockHeader() error {
	out, err := d.readBits(3)
	if err != nil {
		return err
	}

	d.blockFinal = (out & 0x01) != 0
	d.blockType = BlockType(1+byte(out>>1)) & 0x03

	d.sendEvent(Event{
		Type: BlockBeginEvent,
		Block: &BlockEvent{
			Type:    d.blockType,
			IsFinal: d.blockFinal,
		},
	})

	switch d.blockType {
	case StoredBlock:
		return d.readStoredHeader()
	case FixedBlock:
		d.job = JobBuildFixed
	case DynamicBlock:
		d.job = JobBuildDynamic
	default:
		return d.formatf("BTYPE 11 is reserved")
	}
	return nil
}

func (d *Decoder) readStoredHeader() error {
	d.br.alignToByte()
	len0, err := d.readAlignedU16LE()
	if err != nil {
		return err
	}
	len1, err := d.readAlignedU16LE()
	if err != nil {
		return err
	}
	if len1 != ^len0 {
		return d.formatf("got LEN %#04x NLEN %#04x, expected NLEN %#04x", len0, len1, ^len0)
	}
	d.storedRemaining = uint32(len0)
	d.job = JobStoredBody
	return nil
}

func (d *Decoder) runBuildFixed() error {
	if err := d.buildFixedTables(); err != nil {
		return err
	}
	d.sendEvent(Event{
		Type: BlockTreesEvent,
		Block: &BlockEvent{
			Type:    FixedBlock,
			IsFinal: d.blockFinal,
		},
	})
	d.job = JobCompressedBody
	return nil
}

func (d *Decoder) runBuildDynamic() error {
	// https://www.rfc-editor.org/rfc/rfc1951.html - Section 3.2.7

	out, err := d.readBits(14)
	if err != nil {
		return err
	}
	numLL := 257 + uint32(out&0x1f)
	numD := 1 + uint32((out>>5)&0x1f)
	numX := 4 + uint32((out>>10)&0x0f)

	if numLL > logicalNumLLCodes {
		return d.formatf("HLIT %d > %d", numLL, logicalNumLLCodes)
	}
	if numD > logicalNumDCodes {
		return d.formatf("HDIST %d > %d", numD, logicalNumDCodes)
	}

	var sX [physicalNumXCodes]uint8
	for i := uint32(0); i < numX; i++ {
		out, err = d.readBits(3)
		if err != nil {
			return err
		}
		sX[scramble[i]] = uint8(out)
	}

	d.fixedBuilt = false
	d.arena.reset()
	hX, _, err := d.arena.build(sX[:], physicalNumXCodes, nil, nil, rootBitsX)
	if err != nil {
		return d.wrapHuffman(err, "code length table")
	}

	total := numLL + numD
	lengths := d.lengths[:total]
	i := uint32(0)
	for i < total {
		e, err := d.decodeSymbol(hX)
		if err != nil {
			return err
		}
		i, err = d.expandCodeLength(e.val, lengths, i)
		if err != nil {
			return err
		}
	}
	if lengths[endOfBlock] == 0 {
		return d.formatf("dynamic block has no end-of-block code")
	}

	var sLL [physicalNumLLCodes]uint8
	copy(sLL[:], lengths[:numLL])
	var sD [physicalNumDCodes]uint8
	copy(sD[:], lengths[numLL:])

	d.arena.reset()
	ll, complete, err := d.arena.build(sLL[:], numLiteralSymbols, lengthBase[:], lengthExtra[:], rootBitsLL)
	if err != nil {
		return d.wrapHuffman(err, "literal/length table")
	}
	if !complete && !isSingleShortCode(sLL[:]) {
		return d.huffmanf("incomplete literal/length code")
	}
	dist, _, err := d.arena.build(sD[:], 0, distBase[:], distExtra[:], rootBitsD)
	if err != nil {
		return d.wrapHuffman(err, "distance table")
	}
	d.ll, d.dist = ll, dist

	if len(d.tracers) == 0 {
		d.job = JobCompressedBody
		return nil
	}
	d.sendEvent(Event{
		Type: BlockTreesEvent,
		Block: &BlockEvent{
			Type:    DynamicBlock,
			IsFinal: d.blockFinal,
		},
		Trees: &TreesEvent{
			CodeCount:          uint16(numX),
			LiteralLengthCount: uint16(numLL),
			DistanceCount:      uint16(numD),
			CodeSizes:          append(SizeList(nil), sX[:]...),
			LiteralLengthSizes: append(SizeList(nil), sLL[:]...),
			DistanceSizes:      append(SizeList(nil), sD[:]...),
		},
	})

	d.job = JobCompressedBody
	return nil
}

// isSingleShortCode reports whether lengths hold exactly one code, of
// length 1.  Such a code is incomplete but legal.
func isSingleShortCode(lengths []uint8) bool {
	var num, maxLen uint8
	for _, n := range lengths {
		if n != 0 {
			num++
			if n > maxLen {
				maxLen = n
			}
		}
	}
	return num == 1 && maxLen == 1
}

func (d *Decoder) expandCodeLength(sym uint16, lengths []uint8, i uint32) (uint32, error) {
	total := uint32(len(lengths))
	var count uint32
	var value uint8

	switch {
	case sym < 16:
		// next output symbol has length of sym bits
		lengths[i] = uint8(sym)
		return i + 1, nil

	case sym == 16:
		// next 3 .. 6 output symbols have length equal to previous output symbol
		if i == 0 {
			return i, d.formatf("attempt to repeat -1'st length")
		}
		out, err := d.readBits(2)
		if err != nil {
			return i, err
		}
		count = 3 + out
		value = lengths[i-1]

	case sym == 17:
		// next 3 .. 10 output symbols have length of 0 bits
		out, err := d.readBits(3)
		if err != nil {
			return i, err
		}
		count = 3 + out

	default:
		// next 11 .. 138 output symbols have length of 0 bits
		out, err := d.readBits(7)
		if err != nil {
			return i, err
		}
		count = 11 + out
	}

	if count > (total - i) {
		return i, d.formatf("attempt to repeat %d times but only %d codes remain", count, total-i)
	}
	for ; count != 0; count-- {
		lengths[i] = value
		i++
	}
	return i, nil
}

// yieldToImage hands control to the scanline reconstructor, which returns
// to the current job once the window has been drained.
func (d *Decoder) yieldToImage() {
	d.prevJob = d.job
	d.job = JobImage
}

func (d *Decoder) runStoredBody() error {
	for d.storedRemaining != 0 {
		if d.win.free() == 0 {
			d.yieldToImage()
			return nil
		}
		ch, err := d.readAlignedByte()
		if err != nil {
			return err
		}
		d.win.push(ch)
		if d.sum != nil {
			_ = d.sum.WriteByte(ch)
		}
		d.storedRemaining--
	}
	return d.endBlock()
}

func (d *Decoder) runCompressedBody() error {
	for {
		if d.copyLen != 0 {
			n := minU32(d.copyLen, d.win.free())
			if n == 0 {
				d.yieldToImage()
				return nil
			}
			d.win.copyBack(d.copyDist, n, d.sum)
			d.copyLen -= n
			continue
		}

		if d.win.free() == 0 {
			d.yieldToImage()
			return nil
		}

		e, err := d.decodeSymbol(d.ll)
		if err != nil {
			return err
		}

		switch e.op {
		case opLiteral:
			ch := byte(e.val)
			d.win.push(ch)
			if d.sum != nil {
				_ = d.sum.WriteByte(ch)
			}
			continue

		case opEnd:
			return d.endBlock()
		}

		extra, err := d.readBits(e.op)
		if err != nil {
			return err
		}
		length := uint32(e.val) + extra

		e, err = d.decodeSymbol(d.dist)
		if err != nil {
			return err
		}
		extra, err = d.readBits(e.op)
		if err != nil {
			return err
		}
		distance := uint32(e.val) + extra

		if uint64(distance) > d.win.written() {
			return d.formatf("distance %d > %d bytes of output so far", distance, d.win.written())
		}
		d.copyLen = length
		d.copyDist = distance
	}
}

// endBlock finishes the current block and hands the window to the scanline
// reconstructor before the next block header or the trailer.
func (d *Decoder) endBlock() error {
	d.sendEvent(Event{
		Type: BlockEndEvent,
		Block: &BlockEvent{
			Type:    d.blockType,
			IsFinal: d.blockFinal,
		},
	})

	if !d.blockFinal {
		d.job = JobBlockHeader
		d.yieldToImage()
		return nil
	}
	return d.readTrailer()
}

func (d *Decoder) readTrailer() error {
	d.br.alignToByte()
	expected, err := d.readAlignedU32BE()
	if err != nil {
		return err
	}

	footer := &FooterEvent{Expected: Checksum32(expected)}
	if d.sum != nil {
		computed := d.sum.Sum32()
		footer.Computed = Checksum32(computed)
		if expected != computed {
			return d.formatf("invalid zlib Adler-32 checksum -- footer value %#08x, computed value %#08x", expected, computed)
		}
	}
	d.sendEvent(Event{
		Type:   StreamEndEvent,
		Footer: footer,
	})

	d.br.discardBits()
	leftover := d.chunkLen - d.chunkUsed
	if err := d.br.skipBytes(uint64(leftover) + chunkCRCSize); err != nil {
		return err
	}
	d.chunkLen, d.chunkUsed = 0, 0
	d.streamEnded = true

	d.job = JobSearchData
	d.yieldToImage()
	return nil
}
