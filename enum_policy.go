package pngdec

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// type ChunkPolicy {{{

// ChunkPolicy selects what happens to chunks the decoder does not recognize.
type ChunkPolicy byte

const (
	// SkipUnknownChunks discards unrecognized chunks.
	SkipUnknownChunks ChunkPolicy = iota

	// RejectUnknownChunks fails with FormatError on unrecognized chunks.
	RejectUnknownChunks
)

var chunkPolicyData = []enumhelper.EnumData{
	{GoName: "SkipUnknownChunks", Name: "skip"},
	{GoName: "RejectUnknownChunks", Name: "reject"},
}

// IsValid returns true if p is a valid ChunkPolicy constant.
func (p ChunkPolicy) IsValid() bool {
	return p <= RejectUnknownChunks
}

// GoString returns the Go string representation of this ChunkPolicy constant.
func (p ChunkPolicy) GoString() string {
	return enumhelper.DereferenceEnumData("ChunkPolicy", chunkPolicyData, uint(p)).GoName
}

// String returns the string representation of this ChunkPolicy constant.
func (p ChunkPolicy) String() string {
	return enumhelper.DereferenceEnumData("ChunkPolicy", chunkPolicyData, uint(p)).Name
}

// MarshalJSON returns the JSON representation of this ChunkPolicy constant.
func (p ChunkPolicy) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("ChunkPolicy", chunkPolicyData, uint(p))
}

// Parse parses a string representation of a ChunkPolicy constant.
func (p *ChunkPolicy) Parse(str string) error {
	value, err := enumhelper.ParseEnum("ChunkPolicy", chunkPolicyData, str)
	*p = ChunkPolicy(value)
	return err
}

var _ fmt.GoStringer = ChunkPolicy(0)
var _ fmt.Stringer = ChunkPolicy(0)

// }}}

// type TransparencyOrder {{{

// TransparencyOrder selects what happens to a tRNS chunk that precedes the
// PLTE chunk of an indexed image.
type TransparencyOrder byte

const (
	// SkipEarlyTransparency discards the early tRNS chunk.
	SkipEarlyTransparency TransparencyOrder = iota

	// AcceptEarlyTransparency parses the early tRNS chunk as if it had
	// followed PLTE.
	AcceptEarlyTransparency

	// RejectEarlyTransparency fails with FormatError.
	RejectEarlyTransparency
)

var transparencyOrderData = []enumhelper.EnumData{
	{GoName: "SkipEarlyTransparency", Name: "skip"},
	{GoName: "AcceptEarlyTransparency", Name: "accept"},
	{GoName: "RejectEarlyTransparency", Name: "reject"},
}

// IsValid returns true if o is a valid TransparencyOrder constant.
func (o TransparencyOrder) IsValid() bool {
	return o <= RejectEarlyTransparency
}

// GoString returns the Go string representation of this TransparencyOrder constant.
func (o TransparencyOrder) GoString() string {
	return enumhelper.DereferenceEnumData("TransparencyOrder", transparencyOrderData, uint(o)).GoName
}

// String returns the string representation of this TransparencyOrder constant.
func (o TransparencyOrder) String() string {
	return enumhelper.DereferenceEnumData("TransparencyOrder", transparencyOrderData, uint(o)).Name
}

// MarshalJSON returns the JSON representation of this TransparencyOrder constant.
func (o TransparencyOrder) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("TransparencyOrder", transparencyOrderData, uint(o))
}

// Parse parses a string representation of a TransparencyOrder constant.
func (o *TransparencyOrder) Parse(str string) error {
	value, err := enumhelper.ParseEnum("TransparencyOrder", transparencyOrderData, str)
	*o = TransparencyOrder(value)
	return err
}

var _ fmt.GoStringer = TransparencyOrder(0)
var _ fmt.Stringer = TransparencyOrder(0)

// }}}
