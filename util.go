package pngdec

const bitsPerByte = 8

const bitsPerAccumulator = 32

// Largest n for which need(n) is always satisfiable without overflowing the
// accumulator.
const maxNeedBits = bitsPerAccumulator - bitsPerByte

func makeMask(shift uint8) uint32 {
	if shift == 0 {
		return 0
	} else if shift >= bitsPerAccumulator {
		return ^uint32(0)
	} else {
		return (uint32(1) << shift) - 1
	}
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func alignUp4(n uint64) uint64 {
	return (n + 3) &^ 3
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
