package pngdec

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// Interlace indicates the order in which scanlines are transmitted.
type Interlace byte

const (
	// NoInterlace transmits rows top to bottom.
	NoInterlace Interlace = iota

	// Adam7Interlace transmits rows in seven progressive passes.
	Adam7Interlace
)

var interlaceData = []enumhelper.EnumData{
	{GoName: "NoInterlace", Name: "none"},
	{GoName: "Adam7Interlace", Name: "adam7"},
}

// IsValid returns true if il is a valid Interlace constant.
func (il Interlace) IsValid() bool {
	return il <= Adam7Interlace
}

// GoString returns the Go string representation of this Interlace constant.
func (il Interlace) GoString() string {
	return enumhelper.DereferenceEnumData("Interlace", interlaceData, uint(il)).GoName
}

// String returns the string representation of this Interlace constant.
func (il Interlace) String() string {
	return enumhelper.DereferenceEnumData("Interlace", interlaceData, uint(il)).Name
}

// MarshalJSON returns the JSON representation of this Interlace constant.
func (il Interlace) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("Interlace", interlaceData, uint(il))
}

var _ fmt.GoStringer = Interlace(0)
var _ fmt.Stringer = Interlace(0)
