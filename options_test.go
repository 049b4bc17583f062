package pngdec

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeature_String(t *testing.T) {
	type testRow struct {
		input Feature
		want  string
	}

	testData := [...]testRow{
		{0, "none"},
		{FeatureCompatGreyscale, "compat-grey"},
		{FeatureUpscale | FeatureVerifyAdler32, "upscale|verify-adler32"},
		{allFeatures, "compat-grey|upscale|verify-adler32"},
	}

	for index, row := range testData {
		t.Run(fmt.Sprintf("%03d", index), func(t *testing.T) {
			assert.Equal(t, row.want, row.input.String())
		})
	}
}

func TestOptions(t *testing.T) {
	var o options
	o.reset()
	assert.Equal(t, Feature(0), o.features)
	assert.True(t, o.alphaCapable)
	assert.Equal(t, SkipUnknownChunks, o.chunkPolicy)
	assert.Equal(t, SkipEarlyTransparency, o.trnsOrder)
	assert.Nil(t, o.position)
	assert.Equal(t, uint64(DefaultHeapLimit), o.heapLimit)
	assert.Nil(t, o.tracers)

	scratch := new(Scratch)
	o.apply([]Option{
		WithFeatures(FeatureUpscale),
		WithFeatures(FeatureCompatGreyscale),
		WithAlphaIfAvailable(false),
		WithUnknownChunks(RejectUnknownChunks),
		WithTransparencyOrder(AcceptEarlyTransparency),
		WithImagePosition(3, 4),
		WithHeapLimit(1 << 40),
		WithScratch(scratch),
		WithTracers(NoOpTracer{}),
		WithTracers(),
	})
	assert.Equal(t, FeatureCompatGreyscale, o.features)
	assert.False(t, o.alphaCapable)
	assert.Equal(t, RejectUnknownChunks, o.chunkPolicy)
	assert.Equal(t, AcceptEarlyTransparency, o.trnsOrder)
	require.NotNil(t, o.position)
	assert.Equal(t, [2]uint32{3, 4}, *o.position)
	assert.Equal(t, uint64(1<<40), o.heapLimit)
	assert.Same(t, scratch, o.scratch)
	assert.Nil(t, o.tracers)

	assert.Panics(t, func() { WithFeatures(Feature(1 << 20)) })
	assert.Panics(t, func() { WithHeapLimit(0) })
	assert.Panics(t, func() { WithUnknownChunks(ChunkPolicy(99)) })
	assert.Panics(t, func() { WithTransparencyOrder(TransparencyOrder(99)) })
}
