package pngdec

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitGeometry(t *testing.T) {
	type testRow struct {
		w, h    uint32
		canvas  Canvas
		upscale bool
		pos     *[2]uint32
		want    geometry
	}

	testData := [...]testRow{
		{
			w: 10, h: 10, canvas: Canvas{10, 10},
			want: geometry{mode: OriginMode, canvasW: 10, canvasH: 10, width: 10, height: 10},
		},
		{
			w: 4, h: 2, canvas: Canvas{9, 9},
			want: geometry{mode: OriginMode, canvasW: 9, canvasH: 9, width: 4, height: 2, offX: 2, offY: 3},
		},
		{
			w: 4, h: 2, canvas: Canvas{9, 9}, pos: &[2]uint32{7, 0},
			want: geometry{mode: OriginMode, canvasW: 9, canvasH: 9, width: 4, height: 2, offX: 7, offY: 0},
		},
		{
			w: 640, h: 480, canvas: Canvas{320, 320},
			want: geometry{mode: ResizeMode, canvasW: 320, canvasH: 320, width: 320, height: 240, offY: 40},
		},
		{
			w: 480, h: 640, canvas: Canvas{320, 320},
			want: geometry{mode: ResizeMode, canvasW: 320, canvasH: 320, width: 240, height: 320, offX: 40},
		},
		{
			w: 4, h: 2, canvas: Canvas{8, 8}, upscale: true,
			want: geometry{mode: ResizeMode, canvasW: 8, canvasH: 8, width: 8, height: 4, offY: 2},
		},
		{
			w: 1000, h: 1, canvas: Canvas{10, 10},
			want: geometry{mode: ResizeMode, canvasW: 10, canvasH: 10, width: 10, height: 1, offY: 4},
		},
	}

	for index, row := range testData {
		t.Run(fmt.Sprintf("%03d", index), func(t *testing.T) {
			g, err := fitGeometry(row.w, row.h, row.canvas, row.upscale, row.pos)
			require.NoError(t, err)
			assert.Equal(t, row.want, g)
		})
	}

	_, err := fitGeometry(1, 1, Canvas{0, 0}, false, nil)
	var geomErr GeometryError
	require.True(t, errors.As(err, &geomErr), "%v", err)
}

func TestPass_Size(t *testing.T) {
	type testRow struct {
		w, h uint32
		want [7][2]uint32
	}

	testData := [...]testRow{
		{1, 1, [7][2]uint32{{1, 1}, {0, 1}, {1, 0}, {0, 1}, {1, 0}, {0, 1}, {1, 0}}},
		{8, 8, [7][2]uint32{{1, 1}, {1, 1}, {2, 1}, {2, 2}, {4, 2}, {4, 4}, {8, 4}}},
		{13, 9, [7][2]uint32{{2, 2}, {2, 2}, {4, 1}, {3, 3}, {7, 2}, {6, 5}, {13, 4}}},
	}

	for _, row := range testData {
		t.Run(fmt.Sprintf("%dx%d", row.w, row.h), func(t *testing.T) {
			var total uint64
			for i, p := range adam7Passes {
				pw, ph := p.size(row.w, row.h)
				assert.Equal(t, row.want[i], [2]uint32{pw, ph}, "pass %d", i)
				total += uint64(pw) * uint64(ph)
			}
			assert.Equal(t, uint64(row.w)*uint64(row.h), total)
		})
	}
}

func TestFillMap(t *testing.T) {
	p := make([]byte, 4*5)
	fillMap(p, 12, 5)
	got := make([]uint32, 5)
	for i := range got {
		got[i] = mapAt(p, uint32(i))
	}
	assert.Equal(t, []uint32{0, 2, 4, 7, 9}, got)
}
