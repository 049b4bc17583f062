package pngdec

import (
	"encoding/json"
	"fmt"

	"github.com/chronos-tachyon/assert"
	"github.com/rs/zerolog"
)

// Tracer is an interface which callers can implement in order to receive
// Events.  Events provide feedback on the progress of decoding.
type Tracer interface {
	OnEvent(Event)
}

// Event is a collection of fields that provide feedback on the progress of
// decoding.  Events are provided to Tracers registered with a Decoder.
type Event struct {
	Type        EventType
	InputBytes  uint64
	OutputBytes uint64
	Rows        uint64
	Job         Job
	Chunk       *ChunkInfo
	Header      *Header
	Stream      *StreamHeader
	Block       *BlockEvent
	Trees       *TreesEvent
	Footer      *FooterEvent
	Pass        *PassEvent
}

// ChunkInfo is a sub-struct that is present for the chunk-related events.
type ChunkInfo struct {
	Type   string
	Length uint32
}

// BlockEvent is a sub-struct that is only present for BlockFooEvent.
type BlockEvent struct {
	Type    BlockType
	IsFinal bool
}

// TreesEvent is a sub-struct that is present for BlockTreesEvent of a
// dynamic block.
type TreesEvent struct {
	CodeCount          uint16
	LiteralLengthCount uint16
	DistanceCount      uint16

	CodeSizes          SizeList
	LiteralLengthSizes SizeList
	DistanceSizes      SizeList
}

// FooterEvent is a sub-struct that is only present for StreamEndEvent.
// Computed is zero unless FeatureVerifyAdler32 is enabled.
type FooterEvent struct {
	Expected Checksum32
	Computed Checksum32
}

// PassEvent is a sub-struct that is only present for PassBeginEvent.
type PassEvent struct {
	Index    uint8
	Width    uint32
	Height   uint32
	RowBytes uint64
}

// Checksum32 is a lightweight wrapper around uint32 that is used for the
// Adler-32 checksum.  It stringifies to hexadecimal format.
type Checksum32 uint32

// GoString returns the Go string representation of this Checksum32 value.
func (csum Checksum32) GoString() string {
	return fmt.Sprintf("Checksum32(%#08x)", uint32(csum))
}

// String returns the string representation of this Checksum32 value.
func (csum Checksum32) String() string {
	return fmt.Sprintf("%#08x", uint32(csum))
}

// MarshalJSON returns the JSON representation of this Checksum32 value.
func (csum Checksum32) MarshalJSON() ([]byte, error) {
	return json.Marshal(csum.String())
}

var _ fmt.GoStringer = Checksum32(0)
var _ fmt.Stringer = Checksum32(0)
var _ json.Marshaler = Checksum32(0)

// type NoOpTracer {{{

// NoOpTracer is an implementation of Tracer that does nothing.
type NoOpTracer struct{}

// OnEvent fulfills Tracer.
func (NoOpTracer) OnEvent(event Event) {}

var _ Tracer = NoOpTracer{}

// }}}

// type TracerFunc {{{

// TracerFunc is an implementation of Tracer that calls a function.
type TracerFunc func(Event)

// OnEvent fulfills Tracer.
func (tr TracerFunc) OnEvent(event Event) {
	tr(event)
}

var _ Tracer = TracerFunc(nil)

// }}}

// type captureHeaderTracer {{{

// CaptureHeader returns a Tracer implementation which will fill the pointed-to
// Header object when ImageHeaderEvent is encountered.
func CaptureHeader(ptr *Header) Tracer {
	assert.NotNil(&ptr)
	return captureHeaderTracer{ptr: ptr}
}

type captureHeaderTracer struct {
	ptr *Header
}

// OnEvent fulfills Tracer.
func (tr captureHeaderTracer) OnEvent(event Event) {
	if event.Type == ImageHeaderEvent && event.Header != nil {
		*tr.ptr = *event.Header
	}
}

var _ Tracer = captureHeaderTracer{}

// }}}

// type logTracer {{{

// Log returns a Tracer implementation which will log each Event at Trace
// priority.  Each sub-struct present on the Event becomes its own set of
// keys, so that passes, rows and chunks can be filtered on directly.
func Log(logger zerolog.Logger) Tracer {
	return logTracer{logger: logger}
}

type logTracer struct {
	logger zerolog.Logger
}

// OnEvent fulfills Tracer.
func (tr logTracer) OnEvent(event Event) {
	e := tr.logger.Trace()
	if !e.Enabled() {
		return
	}

	e = e.Str("type", event.Type.String()).
		Str("job", event.Job.String()).
		Uint64("in", event.InputBytes).
		Uint64("out", event.OutputBytes).
		Uint64("rows", event.Rows)

	if h := event.Header; h != nil {
		e = e.Uint32("width", h.Width).
			Uint32("height", h.Height).
			Uint8("depth", h.BitDepth).
			Str("color", h.ColorType.String()).
			Str("interlace", h.Interlace.String())
	}
	if c := event.Chunk; c != nil {
		e = e.Str("chunk", c.Type).Uint32("length", c.Length)
	}
	if s := event.Stream; s != nil {
		e = e.Uint8("windowBits", s.WindowBits).Str("clevel", s.CompressLevel.String())
	}
	if b := event.Block; b != nil {
		e = e.Str("block", b.Type.String()).Bool("final", b.IsFinal)
	}
	if t := event.Trees; t != nil {
		e = e.Uint16("hclen", t.CodeCount).
			Uint16("hlit", t.LiteralLengthCount).
			Uint16("hdist", t.DistanceCount)
	}
	if f := event.Footer; f != nil {
		e = e.Stringer("adler32", f.Expected)
		if f.Computed != 0 {
			e = e.Stringer("computed", f.Computed)
		}
	}
	if p := event.Pass; p != nil {
		e = e.Uint8("pass", p.Index).
			Uint32("passWidth", p.Width).
			Uint32("passHeight", p.Height).
			Uint64("rowBytes", p.RowBytes)
	}
	e.Msg("OnEvent")
}

var _ Tracer = logTracer{}

// }}}
