package adler32

import (
	"fmt"
	stdadler32 "hash/adler32"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeData(n int, fill bool) []byte {
	p := make([]byte, n)
	for i := range p {
		if fill {
			p[i] = 0xff
		} else {
			p[i] = byte(i*31 + i>>8)
		}
	}
	return p
}

func TestDigest(t *testing.T) {
	type testRow struct {
		n    int
		fill bool
	}

	testData := [...]testRow{
		{0, false},
		{1, false},
		{nmax - 1, true},
		{nmax, true},
		{nmax + 1, true},
		{3*nmax + 17, true},
		{100000, false},
	}

	for _, row := range testData {
		t.Run(fmt.Sprintf("%d-%v", row.n, row.fill), func(t *testing.T) {
			data := makeData(row.n, row.fill)
			want := stdadler32.Checksum(data)

			assert.Equal(t, want, Checksum(data))

			d := New()
			for _, ch := range data {
				_ = d.WriteByte(ch)
			}
			assert.Equal(t, want, d.Sum32())

			d.Reset()
			half := len(data) / 2
			for _, ch := range data[:half] {
				_ = d.WriteByte(ch)
			}
			_, _ = d.Write(data[half:])
			assert.Equal(t, want, d.Sum32())
			assert.Equal(t, []byte{byte(want >> 24), byte(want >> 16), byte(want >> 8), byte(want)}, d.Sum(nil))
		})
	}
}
