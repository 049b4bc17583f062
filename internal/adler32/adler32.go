// Package adler32 implements the Adler-32 checksum used by the zlib trailer
// of PNG image data, tuned for byte-at-a-time feeding.
package adler32

import (
	"encoding/binary"
	"hash"
	"io"
)

const Size = 4

const modulus = 65521

// Largest n such that 255n(n+1)/2 + (n+1)(modulus-1) fits in 32 bits.
const nmax = 5552

// Update returns the Adler-32 checksum of sum extended by p.
func Update(sum uint32, p []byte) uint32 {
	s1, s2 := (sum & 0xffff), (sum >> 16)
	for len(p) > 0 {
		q := p
		if len(q) > nmax {
			q = q[:nmax]
		}
		p = p[len(q):]
		for _, ch := range q {
			s1 += uint32(ch)
			s2 += s1
		}
		s1 %= modulus
		s2 %= modulus
	}
	return (s2 << 16) | s1
}

// Checksum returns the Adler-32 checksum of p.
func Checksum(p []byte) uint32 {
	return Update(1, p)
}

// Digest is a running Adler-32 checksum.  Reductions modulo 65521 are
// deferred until nmax bytes have been added, so WriteByte is cheap.
type Digest struct {
	s1      uint32
	s2      uint32
	pending uint32
}

// New returns a Digest in its initial state.
func New() *Digest {
	d := new(Digest)
	d.Reset()
	return d
}

func (d *Digest) Size() int      { return Size }
func (d *Digest) BlockSize() int { return 1 }

func (d *Digest) Reset() {
	*d = Digest{s1: 1}
}

func (d *Digest) reduce() {
	d.s1 %= modulus
	d.s2 %= modulus
	d.pending = 0
}

// WriteByte adds one byte to the checksum.  It never fails.
func (d *Digest) WriteByte(ch byte) error {
	d.s1 += uint32(ch)
	d.s2 += d.s1
	d.pending++
	if d.pending == nmax {
		d.reduce()
	}
	return nil
}

func (d *Digest) Write(p []byte) (int, error) {
	d.reduce()
	sum := Update((d.s2<<16)|d.s1, p)
	d.s1, d.s2 = (sum & 0xffff), (sum >> 16)
	return len(p), nil
}

func (d *Digest) Sum(slice []byte) []byte {
	var tmp [Size]byte
	binary.BigEndian.PutUint32(tmp[:], d.Sum32())
	return append(slice, tmp[:]...)
}

func (d *Digest) Sum32() uint32 {
	s1, s2 := (d.s1 % modulus), (d.s2 % modulus)
	return (s2 << 16) | s1
}

var _ hash.Hash32 = (*Digest)(nil)
var _ io.ByteWriter = (*Digest)(nil)
