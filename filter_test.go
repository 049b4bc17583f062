package pngdec

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaeth(t *testing.T) {
	type testRow struct {
		a, b, c byte
		want    byte
	}

	testData := [...]testRow{
		{0, 0, 0, 0},
		{10, 20, 10, 20},
		{20, 10, 10, 20},
		{10, 10, 20, 10},
		{100, 50, 60, 100},
		{1, 255, 128, 128},
		{255, 1, 0, 255},
	}

	for index, row := range testData {
		t.Run(fmt.Sprintf("%03d", index), func(t *testing.T) {
			assert.Equal(t, row.want, paeth(row.a, row.b, row.c))
		})
	}
}

func makeRows(n, rowBytes int) [][]byte {
	rows := make([][]byte, n)
	state := uint32(99)
	for j := range rows {
		rows[j] = make([]byte, rowBytes)
		for i := range rows[j] {
			state = state*1664525 + 1013904223
			rows[j][i] = byte(i*3+j*5) + byte(state>>29)
		}
	}
	return rows
}

func TestFilter_RoundTrip(t *testing.T) {
	for _, bpp := range []int{1, 2, 3, 4, 6, 8} {
		for ft := FilterNone; ft <= FilterPaeth; ft++ {
			t.Run(fmt.Sprintf("bpp-%d/%v", bpp, ft), func(t *testing.T) {
				rows := makeRows(4, 5*bpp+1)
				prev := make([]byte, len(rows[0]))
				filtered := make([]byte, len(rows[0]))
				for j, row := range rows {
					filterRow(ft, filtered, row, prev, bpp)
					got := append([]byte(nil), filtered...)
					defilterRow(ft, got, prev, bpp)
					if !bytes.Equal(row, got) {
						t.Errorf("row %d:%s", j, tabify(hexDiff(row, got)))
					}
					prev = row
				}
			})
		}
	}
}

func TestDefilterSpan(t *testing.T) {
	for _, bpp := range []uint32{1, 2, 3, 4, 6, 8} {
		t.Run(fmt.Sprintf("bpp-%d", bpp), func(t *testing.T) {
			rowBytes := int(7*bpp + 2)
			rows := makeRows(10, rowBytes)

			var buf [historySize]byte
			var d Decoder
			d.win.init(&buf)
			d.bpp = bpp
			d.row = make([]byte, rowBytes)

			prev := make([]byte, rowBytes)
			filtered := make([]byte, rowBytes)
			for j, row := range rows {
				ft := FilterType(j % numFilterTypes)
				filterRow(ft, filtered, row, prev, int(bpp))
				for _, ch := range filtered {
					d.win.push(ch)
				}

				d.filter = ft
				d.rowPos = 0
				for step := uint32(1); d.rowPos < uint64(rowBytes); step++ {
					n := minU32(step, uint32(uint64(rowBytes)-d.rowPos))
					d.defilterSpan(n)
				}

				if !bytes.Equal(row, d.row) {
					t.Errorf("row %d (%v):%s", j, ft, tabify(hexDiff(row, d.row)))
				}
				prev = row
			}
			assert.Equal(t, uint32(0), d.win.available())
		})
	}
}
