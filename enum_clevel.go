package pngdec

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// CompressLevel is the compression effort the encoder recorded in the zlib
// FLEVEL field.  It is informational only.
type CompressLevel byte

const (
	// FastestCompression indicates that the fastest algorithm was used.
	FastestCompression CompressLevel = iota

	// FastCompression indicates that a fast algorithm was used.
	FastCompression

	// DefaultCompression indicates that the default algorithm was used.
	DefaultCompression

	// BestCompression indicates that the slowest, best-compressing
	// algorithm was used.
	BestCompression
)

var compressLevelData = []enumhelper.EnumData{
	{GoName: "FastestCompression", Name: "fastest"},
	{GoName: "FastCompression", Name: "fast"},
	{GoName: "DefaultCompression", Name: "default"},
	{GoName: "BestCompression", Name: "best"},
}

// GoString returns the Go string representation of this CompressLevel constant.
func (clevel CompressLevel) GoString() string {
	return enumhelper.DereferenceEnumData("CompressLevel", compressLevelData, uint(clevel)).GoName
}

// String returns the string representation of this CompressLevel constant.
func (clevel CompressLevel) String() string {
	return enumhelper.DereferenceEnumData("CompressLevel", compressLevelData, uint(clevel)).Name
}

// MarshalJSON returns the JSON representation of this CompressLevel constant.
func (clevel CompressLevel) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("CompressLevel", compressLevelData, uint(clevel))
}

var _ fmt.GoStringer = CompressLevel(0)
var _ fmt.Stringer = CompressLevel(0)
