package pngtest

import (
	"bytes"
	"fmt"
	"math/bits"

	"github.com/chronos-tachyon/assert"
	"github.com/chronos-tachyon/huffman"
)

const (
	physicalNumLLCodes = 288
	physicalNumDCodes  = 32
	physicalNumXCodes  = 19

	maxCodeSize       = 15
	maxCodeLengthSize = 7

	minMatch   = 3
	maxMatch   = 258
	windowSize = 1 << 15
	hashBits   = 14
)

var scramble = [physicalNumXCodes]byte{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

var (
	gFixedEncoderLL huffman.Encoder
	gFixedEncoderD  huffman.Encoder
)

func init() {
	// https://www.rfc-editor.org/rfc/rfc1951.html - Section 3.2.6
	sizes := make([]byte, physicalNumLLCodes)
	for i := 0; i < 144; i++ {
		sizes[i] = 8
	}
	for i := 144; i < 256; i++ {
		sizes[i] = 9
	}
	for i := 256; i < 280; i++ {
		sizes[i] = 7
	}
	for i := 280; i < 288; i++ {
		sizes[i] = 8
	}
	if err := gFixedEncoderLL.InitFromSizes(sizes); err != nil {
		panic(fmt.Errorf("failed to initialize gFixedEncoderLL: %w", err))
	}

	sizes = sizes[:physicalNumDCodes]
	for i := range sizes {
		sizes[i] = 5
	}
	if err := gFixedEncoderD.InitFromSizes(sizes); err != nil {
		panic(fmt.Errorf("failed to initialize gFixedEncoderD: %w", err))
	}
}

// type token {{{

type token struct {
	literalOrLength uint16
	distance        uint16
}

func makeCopyToken(length uint16, distance uint16) token {
	assert.Assertf(length >= minMatch, "copy length %d < minimum 3", length)
	assert.Assertf(length <= maxMatch, "copy length %d > maximum 258", length)
	assert.Assertf(distance >= 1, "copy distance %d < minimum 1", distance)
	assert.Assertf(distance <= windowSize, "copy distance %d > maximum 32768", distance)
	return token{literalOrLength: length, distance: distance}
}

func makeLiteralToken(ch byte) token {
	return token{literalOrLength: uint16(ch)}
}

func makeStopToken() token {
	return token{literalOrLength: 256}
}

func makeTreeLenToken(size byte) token {
	assert.Assertf(size < 16, "symbol bit length %d >= 16", size)
	return token{literalOrLength: 512 + uint16(size)}
}

func makeTreeDupToken(count uint) token {
	assert.Assertf(count >= 3 && count <= 6, "symbol bit length copy count %d outside [3, 6]", count)
	return token{literalOrLength: 1024 + uint16(count-3)}
}

func makeTreeZeroRunToken(count uint) token {
	assert.Assertf(count >= 3 && count <= 138, "symbol bit length zero count %d outside [3, 138]", count)
	if count < 11 {
		return token{literalOrLength: 2048 + uint16(count-3)}
	}
	return token{literalOrLength: 4096 + uint16(count-11)}
}

func (t token) isStop() bool {
	return t.distance == 0 && t.literalOrLength == 256
}

// symbolLL returns the literal/length symbol and its extra bits.
func (t token) symbolLL() (symbol huffman.Symbol, extraLen byte, extraBits uint32) {
	n := t.literalOrLength
	switch {
	case t.distance == 0 && n > 256:
		return huffman.InvalidSymbol, 0, 0
	case t.distance == 0:
		return huffman.Symbol(n), 0, 0
	case n <= 10:
		return huffman.Symbol(254 + n), 0, 0
	case n == maxMatch:
		return huffman.Symbol(285), 0, 0
	}

	// Lengths 11..257 come in groups of 4 symbols per extra bit count.
	x := uint32(n - 3)
	k := byte(bits.Len32(x)) - 3
	sym := 261 + 4*uint32(k) + ((x >> k) & 3)
	return huffman.Symbol(sym), k, x & ((1 << k) - 1)
}

// symbolD returns the distance symbol and its extra bits.
func (t token) symbolD() (symbol huffman.Symbol, extraLen byte, extraBits uint32) {
	switch {
	case t.distance == 0:
		return huffman.InvalidSymbol, 0, 0

	case t.distance <= 4:
		return huffman.Symbol(t.distance - 1), 0, 0

	default:
		d := (t.distance - 1)
		k := 16 - bits.LeadingZeros16(d)
		code := k*2 - 1
		if bit := uint16(1) << (k - 2); (d & bit) == 0 {
			code--
		}
		size := byte((code / 2) - 1)
		mask := (uint16(1) << size) - 1
		return huffman.Symbol(code), size, uint32(d & mask)
	}
}

// symbolX returns the code length alphabet symbol and its extra bits.
func (t token) symbolX() (symbol huffman.Symbol, extraLen byte, extraBits uint32) {
	n := t.literalOrLength
	switch {
	case t.distance != 0 || n < 512:
		return huffman.InvalidSymbol, 0, 0
	case n < 512+16:
		return huffman.Symbol(n - 512), 0, 0
	case n >= 1024 && n < 1024+4:
		return huffman.Symbol(16), 2, uint32(n - 1024)
	case n >= 2048 && n < 2048+8:
		return huffman.Symbol(17), 3, uint32(n - 2048)
	case n >= 4096 && n < 4096+128:
		return huffman.Symbol(18), 7, uint32(n - 4096)
	default:
		return huffman.InvalidSymbol, 0, 0
	}
}

func (t token) encodeLLD(bw *bitWriter, hLL *huffman.Encoder, hD *huffman.Encoder) {
	symLL, sizeLL, bitsLL := t.symbolLL()
	if symLL < 0 {
		return
	}
	bw.writeCode(hLL.Encode(symLL))
	bw.writeBits(sizeLL, bitsLL)

	symD, sizeD, bitsD := t.symbolD()
	if symD < 0 {
		return
	}
	bw.writeCode(hD.Encode(symD))
	bw.writeBits(sizeD, bitsD)
}

func (t token) encodeX(bw *bitWriter, hX *huffman.Encoder) {
	symX, sizeX, bitsX := t.symbolX()
	if symX < 0 {
		return
	}
	bw.writeCode(hX.Encode(symX))
	bw.writeBits(sizeX, bitsX)
}

// }}}

// type bitWriter {{{

// bitWriter packs bits least-significant first, as DEFLATE requires.
type bitWriter struct {
	buf   bytes.Buffer
	acc   uint64
	nbits byte
	count uint64
}

func (bw *bitWriter) writeBits(n byte, v uint32) {
	assert.Assertf(n <= 32, "n %d > 32", n)
	if n == 0 {
		return
	}
	bw.acc |= uint64(v&uint32((uint64(1)<<n)-1)) << bw.nbits
	bw.nbits += n
	bw.count += uint64(n)
	for bw.nbits >= 8 {
		bw.buf.WriteByte(byte(bw.acc))
		bw.acc >>= 8
		bw.nbits -= 8
	}
}

func (bw *bitWriter) writeCode(hc huffman.Code) {
	bw.writeBits(hc.Size, hc.Bits)
}

// align pads with zero bits up to the next byte boundary.
func (bw *bitWriter) align() {
	if bw.nbits != 0 {
		pad := 8 - bw.nbits
		bw.writeBits(pad, 0)
	}
}

func (bw *bitWriter) writeBytes(p []byte) {
	assert.Assert(bw.nbits == 0, "writeBytes on unaligned bitWriter")
	bw.buf.Write(p)
	bw.count += 8 * uint64(len(p))
}

func (bw *bitWriter) bytes() []byte {
	bw.align()
	return bw.buf.Bytes()
}

// }}}

// tokenize runs a greedy LZ77 match over data[start:end], using data[:start]
// as history.
func tokenize(data []byte, start int, end int, head []int32, prev []int32) []token {
	tokens := make([]token, 0, end-start+1)
	hash := func(i int) uint32 {
		v := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16
		return (v * 0x1e35a7bd) >> (32 - hashBits)
	}
	insert := func(i int) {
		if i+minMatch <= len(data) {
			h := hash(i)
			prev[i&(windowSize-1)] = head[h]
			head[h] = int32(i)
		}
	}

	i := start
	for i < end {
		bestLen, bestDist := 0, 0
		if i+minMatch <= end {
			h := hash(i)
			for cand, chain := int(head[h]), 0; cand >= 0 && i-cand <= windowSize && chain < 32; chain++ {
				n := 0
				for n < maxMatch && i+n < end && data[cand+n] == data[i+n] {
					n++
				}
				if n > bestLen {
					bestLen, bestDist = n, i-cand
				}
				next := int(prev[cand&(windowSize-1)])
				if next >= cand {
					break
				}
				cand = next
			}
		}

		if bestLen >= minMatch {
			tokens = append(tokens, makeCopyToken(uint16(bestLen), uint16(bestDist)))
			for j := 0; j < bestLen; j++ {
				insert(i + j)
			}
			i += bestLen
			continue
		}
		tokens = append(tokens, makeLiteralToken(data[i]))
		insert(i)
		i++
	}
	return append(tokens, makeStopToken())
}

func newMatchTables() ([]int32, []int32) {
	head := make([]int32, 1<<hashBits)
	for i := range head {
		head[i] = -1
	}
	prev := make([]int32, windowSize)
	for i := range prev {
		prev[i] = -1
	}
	return head, prev
}

func studyFrequenciesLLD(tokens []token) (freqLL []uint32, freqD []uint32) {
	freqLL = make([]uint32, physicalNumLLCodes)
	freqD = make([]uint32, physicalNumDCodes)
	for _, t := range tokens {
		if symLL, _, _ := t.symbolLL(); symLL >= 0 {
			freqLL[symLL]++
		}
		if symD, _, _ := t.symbolD(); symD >= 0 {
			freqD[symD]++
		}
	}
	return
}

func studyFrequenciesX(tokens []token) (freqX []uint32) {
	freqX = make([]uint32, physicalNumXCodes)
	for _, t := range tokens {
		if symX, _, _ := t.symbolX(); symX >= 0 {
			freqX[symX]++
		}
	}
	return
}

func sizesAllZeroes(sizes []byte) bool {
	for _, size := range sizes {
		if size != 0 {
			return false
		}
	}
	return true
}

func sizeRunLength(sizes []byte, size byte) uint {
	var count uint
	for _, s := range sizes {
		if s != size {
			break
		}
		count++
	}
	return count
}

// encodeTreeTokens run-length encodes a list of code lengths, emitting at
// least min of them.
func encodeTreeTokens(xtokens []token, sizes []byte, min uint) ([]token, uint) {
	i := uint(0)
	sizesLen := uint(len(sizes))
	for i < sizesLen {
		if i >= min && sizesAllZeroes(sizes[i:]) {
			break
		}

		if size := sizes[i]; size != 0 {
			xtokens = append(xtokens, makeTreeLenToken(size))
			i++

			run := sizeRunLength(sizes[i:], size)
			for run >= 9 {
				xtokens = append(xtokens, makeTreeDupToken(6))
				i += 6
				run -= 6
			}
			if run > 6 {
				xtokens = append(xtokens, makeTreeDupToken(4))
				i += 4
				run -= 4
			}
			if run > 2 {
				xtokens = append(xtokens, makeTreeDupToken(run))
				i += run
				run = 0
			}
			for ; run != 0; run-- {
				xtokens = append(xtokens, makeTreeLenToken(size))
				i++
			}
			continue
		}

		run := sizeRunLength(sizes[i:], 0)
		if i+run >= sizesLen && i < min {
			run = min - i
		} else if i+run >= sizesLen {
			break
		}
		for run >= 141 {
			xtokens = append(xtokens, makeTreeZeroRunToken(138))
			i += 138
			run -= 138
		}
		if run > 138 {
			xtokens = append(xtokens, makeTreeZeroRunToken(136))
			i += 136
			run -= 136
		}
		if run >= 3 {
			xtokens = append(xtokens, makeTreeZeroRunToken(run))
			i += run
			run = 0
		}
		for ; run != 0; run-- {
			xtokens = append(xtokens, makeTreeLenToken(0))
			i++
		}
	}
	return xtokens, i
}

// LimitSizes returns a copy of sizes in which no code is longer than
// maxSize.  Codes over the limit are clamped, then the deepest codes still
// under the limit are lengthened until the Kraft sum fits, then codes are
// shortened again until the code is complete.  Sizes already within the limit are returned as-is.
func LimitSizes(sizes []byte, maxSize byte) []byte {
	assert.Assertf(maxSize >= 1 && maxSize <= 15, "maxSize %d out of range [1, 15]", maxSize)
	assert.Assertf(len(sizes) <= (1 << maxSize), "%d symbols cannot fit in codes of %d bits", len(sizes), maxSize)

	longest := byte(0)
	for _, size := range sizes {
		if size > longest {
			longest = size
		}
	}
	if longest <= maxSize {
		return sizes
	}

	out := make([]byte, len(sizes))
	full := uint32(1) << maxSize
	var kraft uint32
	for i, size := range sizes {
		if size > maxSize {
			size = maxSize
		}
		out[i] = size
		if size != 0 {
			kraft += uint32(1) << (maxSize - size)
		}
	}

	for kraft > full {
		best := -1
		for i, size := range out {
			if size != 0 && size < maxSize && (best < 0 || size > out[best]) {
				best = i
			}
		}
		assert.Assert(best >= 0, "no code left to lengthen")
		kraft -= uint32(1) << (maxSize - out[best] - 1)
		out[best]++
	}

	for kraft < full {
		slack := full - kraft
		best := -1
		for i, size := range out {
			if size >= 2 && (uint32(1)<<(maxSize-size)) <= slack && (best < 0 || size > out[best]) {
				best = i
			}
		}
		assert.Assert(best >= 0, "no code left to shorten")
		kraft += uint32(1) << (maxSize - out[best])
		out[best]--
	}
	return out
}

// limitEncoder rebuilds h from length-limited sizes if its code is too
// deep, and returns the sizes in use.
func limitEncoder(h *huffman.Encoder, maxSize byte) []byte {
	sizes := h.SizeBySymbol()
	limited := LimitSizes(sizes, maxSize)
	if !bytes.Equal(limited, sizes) {
		if err := h.InitFromSizes(limited); err != nil {
			panic(fmt.Errorf("failed to rebuild length-limited code: %w", err))
		}
	}
	return limited
}

func writeStoredBlock(bw *bitWriter, data []byte, isFinal bool) {
	assert.Assertf(len(data) <= 0xffff, "stored block length %d exceeds 65535", len(data))

	// BTYPE=00 BFINAL=x
	bw.writeBits(3, boolBit(isFinal))
	bw.align()

	u16 := uint16(len(data))
	bw.writeBytes([]byte{byte(u16), byte(u16 >> 8), byte(^u16), byte(^u16 >> 8)})
	bw.writeBytes(data)
}

func writeFixedBlock(bw *bitWriter, tokens []token, isFinal bool) {
	assert.Assert(len(tokens) >= 1 && tokens[len(tokens)-1].isStop(), "last token must be a stop token")

	// BTYPE=01 BFINAL=x
	bw.writeBits(3, 0x02|boolBit(isFinal))
	for _, t := range tokens {
		t.encodeLLD(bw, &gFixedEncoderLL, &gFixedEncoderD)
	}
}

func writeDynamicBlock(bw *bitWriter, tokens []token, isFinal bool) {
	assert.Assert(len(tokens) >= 1 && tokens[len(tokens)-1].isStop(), "last token must be a stop token")

	freqLL, freqD := studyFrequenciesLLD(tokens)

	var hLL huffman.Encoder
	hLL.Init(physicalNumLLCodes, freqLL)
	sLL := limitEncoder(&hLL, maxCodeSize)

	var hD huffman.Encoder
	hD.Init(physicalNumDCodes, freqD)
	sD := limitEncoder(&hD, maxCodeSize)

	// BTYPE=10 BFINAL=x
	bw.writeBits(3, 0x04|boolBit(isFinal))

	var xtokens []token
	var numLL, numD uint
	xtokens, numLL = encodeTreeTokens(xtokens, sLL[:286], 257)
	xtokens, numD = encodeTreeTokens(xtokens, sD[:30], 1)

	var hX huffman.Encoder
	hX.Init(physicalNumXCodes, studyFrequenciesX(xtokens))
	sX := limitEncoder(&hX, maxCodeLengthSize)
	numX := uint(physicalNumXCodes)
	for numX > 4 && sX[scramble[numX-1]] == 0 {
		numX--
	}

	bw.writeBits(5, uint32(numLL-257))
	bw.writeBits(5, uint32(numD-1))
	bw.writeBits(4, uint32(numX-4))
	for i := uint(0); i < numX; i++ {
		bw.writeBits(3, uint32(sX[scramble[i]]))
	}
	for _, t := range xtokens {
		t.encodeX(bw, &hX)
	}
	for _, t := range tokens {
		t.encodeLLD(bw, &hLL, &hD)
	}
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
