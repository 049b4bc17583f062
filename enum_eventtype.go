package pngdec

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// EventType indicates the type of an Event.
type EventType byte

const (
	// ImageHeaderEvent indicates that the IHDR chunk was parsed and
	// validated.
	ImageHeaderEvent EventType = iota

	// PaletteEvent indicates that the PLTE chunk was parsed.
	PaletteEvent

	// TransparencyEvent indicates that a tRNS chunk was parsed.
	TransparencyEvent

	// ChunkEvent indicates that a chunk was skipped.
	ChunkEvent

	// DataChunkEvent indicates that an IDAT chunk was located.
	DataChunkEvent

	// StreamHeaderEvent indicates that the zlib header was parsed.
	StreamHeaderEvent

	// BlockBeginEvent indicates that a DEFLATE block header was parsed.
	BlockBeginEvent

	// BlockTreesEvent indicates that the Huffman tables for the current
	// block were built.
	BlockTreesEvent

	// BlockEndEvent indicates that the current block ended.
	BlockEndEvent

	// StreamEndEvent indicates that the zlib trailer was consumed.
	StreamEndEvent

	// PassBeginEvent indicates that a new interlace pass began.
	PassBeginEvent

	// ImageEndEvent indicates that the last pixel was emitted.
	ImageEndEvent
)

var eventTypeData = []enumhelper.EnumData{
	{GoName: "ImageHeaderEvent", Name: "image-header"},
	{GoName: "PaletteEvent", Name: "palette"},
	{GoName: "TransparencyEvent", Name: "transparency"},
	{GoName: "ChunkEvent", Name: "chunk"},
	{GoName: "DataChunkEvent", Name: "data-chunk"},
	{GoName: "StreamHeaderEvent", Name: "stream-header"},
	{GoName: "BlockBeginEvent", Name: "block-begin"},
	{GoName: "BlockTreesEvent", Name: "block-trees"},
	{GoName: "BlockEndEvent", Name: "block-end"},
	{GoName: "StreamEndEvent", Name: "stream-end"},
	{GoName: "PassBeginEvent", Name: "pass-begin"},
	{GoName: "ImageEndEvent", Name: "image-end"},
}

// GoString returns the Go string representation of this EventType constant.
func (e EventType) GoString() string {
	return enumhelper.DereferenceEnumData("EventType", eventTypeData, uint(e)).GoName
}

// String returns the string representation of this EventType constant.
func (e EventType) String() string {
	return enumhelper.DereferenceEnumData("EventType", eventTypeData, uint(e)).Name
}

// MarshalJSON returns the JSON representation of this EventType constant.
func (e EventType) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("EventType", eventTypeData, uint(e))
}

var _ fmt.GoStringer = EventType(0)
var _ fmt.Stringer = EventType(0)
