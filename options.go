package pngdec

import (
	"strings"

	"github.com/chronos-tachyon/assert"
)

// Feature is a bitmask of optional decoder behaviours.
type Feature uint32

const (
	// FeatureCompatGreyscale decodes 8-bit indexed, non-interlaced images
	// as 8-bit greyscale, ignoring the palette.
	FeatureCompatGreyscale Feature = 1 << iota

	// FeatureUpscale scales images that are smaller than the canvas up to
	// fit it.
	FeatureUpscale

	// FeatureVerifyAdler32 computes the Adler-32 checksum of the image
	// data and fails on a mismatch with the zlib trailer.
	FeatureVerifyAdler32

	allFeatures = FeatureCompatGreyscale | FeatureUpscale | FeatureVerifyAdler32
)

var featureNames = []string{"compat-grey", "upscale", "verify-adler32"}

// String returns the names of the set bits joined by "|".
func (f Feature) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for i, name := range featureNames {
		if (f & (1 << uint(i))) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// DefaultHeapLimit is the largest heap that Step allocates by itself when
// Begin was not called.
const DefaultHeapLimit = 64 << 20

// Option represents a configuration option for Decoder.
type Option func(*options)

type options struct {
	features     Feature
	alphaCapable bool
	chunkPolicy  ChunkPolicy
	trnsOrder    TransparencyOrder
	position     *[2]uint32
	heapLimit    uint64
	scratch      *Scratch
	tracers      []Tracer
}

func (o *options) reset() {
	*o = options{
		features:     0,
		alphaCapable: true,
		chunkPolicy:  SkipUnknownChunks,
		trnsOrder:    SkipEarlyTransparency,
		position:     nil,
		heapLimit:    DefaultHeapLimit,
		scratch:      nil,
		tracers:      nil,
	}
}

func (o *options) apply(opts []Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithFeatures specifies the set of optional behaviours to enable.
// Completely replaces any previous set.
func WithFeatures(features Feature) Option {
	assert.Assertf((features &^ allFeatures) == 0, "invalid Feature bits %#x", uint32(features&^allFeatures))
	return func(o *options) { o.features = features }
}

// WithAlphaIfAvailable specifies whether pixels may carry transparency.
// When false, every pixel is opaque regardless of the image.  Default true.
func WithAlphaIfAvailable(enabled bool) Option {
	return func(o *options) { o.alphaCapable = enabled }
}

// WithUnknownChunks specifies how chunks that are neither critical nor
// registered ancillary chunks are treated.
func WithUnknownChunks(policy ChunkPolicy) Option {
	assert.Assertf(policy.IsValid(), "invalid ChunkPolicy %d", uint(policy))
	return func(o *options) { o.chunkPolicy = policy }
}

// WithTransparencyOrder specifies how a tRNS chunk that precedes PLTE in an
// indexed image is treated.
func WithTransparencyOrder(order TransparencyOrder) Option {
	assert.Assertf(order.IsValid(), "invalid TransparencyOrder %d", uint(order))
	return func(o *options) { o.trnsOrder = order }
}

// WithImagePosition places the top-left corner of the image at (x, y) on
// the canvas instead of centring it.
func WithImagePosition(x, y uint32) Option {
	pos := &[2]uint32{x, y}
	return func(o *options) { o.position = pos }
}

// WithHeapLimit caps the heap that Step allocates when Begin was not
// called.  An image needing more fails with ResourceError.  A heap passed
// to Begin is not subject to the limit.
func WithHeapLimit(limit uint64) Option {
	assert.Assert(limit != 0, "heap limit must be non-zero")
	return func(o *options) { o.heapLimit = limit }
}

// WithScratch specifies the working memory to use.  If omitted, Init
// allocates it.  A Scratch must not be shared by Decoders in use at the
// same time.
func WithScratch(scratch *Scratch) Option {
	assert.NotNil(&scratch)
	return func(o *options) { o.scratch = scratch }
}

// WithTracers specifies the list of Tracer instances which will receive Events
// as decoding proceeds.  Completely replaces any previous list.
func WithTracers(tracers ...Tracer) Option {
	for _, tr := range tracers {
		assert.NotNil(&tr)
	}
	if len(tracers) == 0 {
		tracers = nil
	} else {
		tmp := make([]Tracer, len(tracers))
		copy(tmp, tracers)
		tracers = tmp
	}
	return func(o *options) { o.tracers = tracers }
}
