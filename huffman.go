package pngdec

import (
	"encoding/json"
	"fmt"
	"math/bits"
)

const (
	logicalNumLLCodes  = 286
	logicalNumDCodes   = 30
	physicalNumLLCodes = 288
	physicalNumDCodes  = 32
	physicalNumXCodes  = 19
	maxCodeBits        = 15
	endOfBlock         = 256
	numLiteralSymbols  = 257
)

var scramble = [physicalNumXCodes]byte{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// Table widths for the root level.  With these widths the worst case for a
// literal/length table is 852 entries and for a distance table is 592.
const (
	rootBitsX     = 7
	rootBitsLL    = 9
	rootBitsD     = 6
	rootBitsFixLL = 7
	rootBitsFixD  = 5
	arenaSize     = 852 + 592
)

const (
	opEnd     = 15
	opLiteral = 16
	opLink    = 16
	opInvalid = 99
)

// huffEntry is one slot of a lookup table.  op is the number of extra bits
// (0..13), opEnd, opLiteral, opLink plus the subtable width, or opInvalid.
// bits is the number of code bits consumed at this level.
type huffEntry struct {
	op   uint8
	bits uint8
	val  uint16
}

func (e huffEntry) isLink() bool {
	return e.op > opLink && e.op < opInvalid
}

var invalidEntry = huffEntry{op: opInvalid}

// Base values and extra bit counts for length symbols 257..287 and distance
// symbols 0..31.  The last two entries of each are unassigned.
var (
	lengthBase  = [physicalNumLLCodes - numLiteralSymbols]uint16{3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31, 35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258, 0, 0}
	lengthExtra = [physicalNumLLCodes - numLiteralSymbols]uint8{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0, opInvalid, opInvalid}
	distBase    = [physicalNumDCodes]uint16{1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193, 257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577, 0, 0}
	distExtra   = [physicalNumDCodes]uint8{0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13, opInvalid, opInvalid}
)

// huffTable locates a built table inside the arena.
type huffTable struct {
	offset uint16
	root   uint8
}

// type huffArena {{{

// huffArena hands out table space from a fixed array.  It is reset as a
// whole; tables are never freed individually.
type huffArena struct {
	table *[arenaSize]huffEntry
	used  uint32
	limit uint32
}

func (a *huffArena) init(table *[arenaSize]huffEntry) {
	*a = huffArena{table: table, limit: arenaSize}
}

func (a *huffArena) reset() {
	a.used = 0
}

// alloc reserves n entries, all set to invalid, and returns their offset.
func (a *huffArena) alloc(n uint32) (uint32, error) {
	if a.limit-a.used < n {
		return 0, fmt.Errorf("table arena exhausted: need %d entries, %d of %d in use", n, a.used, a.limit)
	}
	offset := a.used
	a.used += n
	for i := offset; i < a.used; i++ {
		a.table[i] = invalidEntry
	}
	return offset, nil
}

// build constructs a two-level lookup table for the canonical code described
// by lengths.  Symbols below simple are literals (or end-of-block, for
// symbol 256); the rest take their value from base and extra.  complete
// reports whether every bit pattern maps to a symbol.
func (a *huffArena) build(lengths []uint8, simple uint16, base []uint16, extra []uint8, requested uint8) (huffTable, bool, error) {
	var count [maxCodeBits + 1]uint16
	for _, n := range lengths {
		count[n]++
	}

	maxLen := uint8(maxCodeBits)
	for maxLen >= 1 && count[maxLen] == 0 {
		maxLen--
	}
	if maxLen == 0 {
		offset, err := a.alloc(2)
		if err != nil {
			return huffTable{}, false, err
		}
		return huffTable{offset: uint16(offset), root: 1}, false, nil
	}
	minLen := uint8(1)
	for minLen < maxLen && count[minLen] == 0 {
		minLen++
	}

	root := requested
	if root > maxLen {
		root = maxLen
	}
	if root < minLen {
		root = minLen
	}

	left := 1
	for n := 1; n <= maxCodeBits; n++ {
		left <<= 1
		left -= int(count[n])
		if left < 0 {
			return huffTable{}, false, fmt.Errorf("over-subscribed code: %d codes of length %d leave no room", count[n], n)
		}
	}
	complete := (left == 0)

	var offs [maxCodeBits + 2]uint16
	for n := 1; n <= maxCodeBits; n++ {
		offs[n+1] = offs[n] + count[n]
	}
	var sorted [physicalNumLLCodes + physicalNumDCodes]uint16
	numCodes := uint16(0)
	for sym, n := range lengths {
		if n != 0 {
			sorted[offs[n]] = uint16(sym)
			offs[n]++
			numCodes++
		}
	}

	rootOffset, err := a.alloc(uint32(1) << root)
	if err != nil {
		return huffTable{}, false, err
	}
	rootMask := (uint32(1) << root) - 1

	remaining := count
	code := uint32(0)
	prevLen := lengths[sorted[0]]
	subOffset := uint32(0)
	subBits := uint8(0)
	low := ^uint32(0)

	for i := uint16(0); i < numCodes; i++ {
		sym := sorted[i]
		n := lengths[sym]
		code <<= n - prevLen
		prevLen = n

		entry := makeEntry(sym, simple, base, extra)
		rev := uint32(bits.Reverse16(uint16(code))) >> (16 - n)

		if n <= root {
			entry.bits = n
			for idx := rev; idx <= rootMask; idx += uint32(1) << n {
				a.table[rootOffset+idx] = entry
			}
		} else {
			if rev&rootMask != low {
				low = rev & rootMask
				subBits = subtableBits(remaining[:], n, root, maxLen)
				subOffset, err = a.alloc(uint32(1) << subBits)
				if err != nil {
					return huffTable{}, false, err
				}
				a.table[rootOffset+low] = huffEntry{
					op:   opLink + subBits,
					bits: root,
					val:  uint16(subOffset),
				}
			}
			entry.bits = n - root
			for idx := rev >> root; idx < (uint32(1) << subBits); idx += uint32(1) << (n - root) {
				a.table[subOffset+idx] = entry
			}
		}

		remaining[n]--
		code++
	}

	return huffTable{offset: uint16(rootOffset), root: root}, complete, nil
}

// }}}

// subtableBits picks the width of a subtable starting with a code of length
// n: just wide enough to hold every remaining code sharing its root prefix.
func subtableBits(remaining []uint16, n uint8, root uint8, maxLen uint8) uint8 {
	curr := n - root
	left := int(1) << curr
	for curr+root < maxLen {
		left -= int(remaining[curr+root])
		if left <= 0 {
			break
		}
		curr++
		left <<= 1
	}
	return curr
}

func makeEntry(sym uint16, simple uint16, base []uint16, extra []uint8) huffEntry {
	switch {
	case sym < simple && sym == endOfBlock:
		return huffEntry{op: opEnd}
	case sym < simple:
		return huffEntry{op: opLiteral, val: sym}
	default:
		return huffEntry{op: extra[sym-simple], val: base[sym-simple]}
	}
}

func fixedLengths(ll *[physicalNumLLCodes]uint8, d *[physicalNumDCodes]uint8) {
	// https://www.rfc-editor.org/rfc/rfc1951.html - Section 3.2.6
	for i := 0; i < 144; i++ {
		ll[i] = 8
	}
	for i := 144; i < 256; i++ {
		ll[i] = 9
	}
	for i := 256; i < 280; i++ {
		ll[i] = 7
	}
	for i := 280; i < physicalNumLLCodes; i++ {
		ll[i] = 8
	}
	for i := range d {
		d[i] = 5
	}
}

// buildFixedTables fills the arena with the fixed literal/length and
// distance tables, unless they are already there.
func (d *Decoder) buildFixedTables() error {
	if d.fixedBuilt {
		d.ll, d.dist = d.fixedLL, d.fixedD
		return nil
	}

	var sLL [physicalNumLLCodes]uint8
	var sD [physicalNumDCodes]uint8
	fixedLengths(&sLL, &sD)

	d.arena.reset()
	ll, _, err := d.arena.build(sLL[:], numLiteralSymbols, lengthBase[:], lengthExtra[:], rootBitsFixLL)
	if err != nil {
		return d.wrapHuffman(err, "fixed literal/length table")
	}
	dist, _, err := d.arena.build(sD[:], 0, distBase[:], distExtra[:], rootBitsFixD)
	if err != nil {
		return d.wrapHuffman(err, "fixed distance table")
	}

	d.fixedLL, d.fixedD = ll, dist
	d.fixedBuilt = true
	d.ll, d.dist = ll, dist
	return nil
}

// decodeSymbol resolves one code through t, consuming its bits.
func (d *Decoder) decodeSymbol(t huffTable) (huffEntry, error) {
	if err := d.needBits(t.root); err != nil {
		return invalidEntry, err
	}
	e := d.arena.table[uint32(t.offset)+d.br.peek(t.root)]
	if e.isLink() {
		d.br.skip(e.bits)
		w := e.op - opLink
		if err := d.needBits(w); err != nil {
			return invalidEntry, err
		}
		e = d.arena.table[uint32(e.val)+d.br.peek(w)]
	}
	if e.op == opInvalid {
		return invalidEntry, d.huffmanf("invalid Huffman code")
	}
	d.br.skip(e.bits)
	return e, nil
}

// SizeList represents a list of symbol sizes in a Canonical Huffman Code.
type SizeList []byte

// MarshalJSON returns the JSON representation of this SizeList, as a JSON
// Array of JSON Numbers.
func (sizelist SizeList) MarshalJSON() ([]byte, error) {
	var arr []uint
	if sizelist != nil {
		arr = make([]uint, len(sizelist))
		for index, size := range sizelist {
			arr[index] = uint(size)
		}
	}
	return json.Marshal(arr)
}
