package pngdec

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// Mode is the geometric mapping from image pixels to canvas pixels.
type Mode byte

const (
	// OriginMode places the image 1:1 on the canvas at a constant offset.
	OriginMode Mode = iota

	// ResizeMode scales the image with nearest-neighbour sampling so that
	// it fits the canvas while keeping its aspect ratio.
	ResizeMode
)

var modeData = []enumhelper.EnumData{
	{GoName: "OriginMode", Name: "origin"},
	{GoName: "ResizeMode", Name: "resize"},
}

// GoString returns the Go string representation of this Mode constant.
func (m Mode) GoString() string {
	return enumhelper.DereferenceEnumData("Mode", modeData, uint(m)).GoName
}

// String returns the string representation of this Mode constant.
func (m Mode) String() string {
	return enumhelper.DereferenceEnumData("Mode", modeData, uint(m)).Name
}

// MarshalJSON returns the JSON representation of this Mode constant.
func (m Mode) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("Mode", modeData, uint(m))
}

var _ fmt.GoStringer = Mode(0)
var _ fmt.Stringer = Mode(0)
