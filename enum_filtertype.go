package pngdec

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// FilterType is the per-scanline delta filter applied by the encoder.
type FilterType byte

const (
	// FilterNone leaves bytes unchanged.
	FilterNone FilterType = iota

	// FilterSub predicts from the byte to the left.
	FilterSub

	// FilterUp predicts from the byte above.
	FilterUp

	// FilterAverage predicts from the mean of left and above.
	FilterAverage

	// FilterPaeth predicts from whichever of left, above, or above-left is
	// closest to left + above - above-left.
	FilterPaeth
)

const numFilterTypes = 5

var filterTypeData = []enumhelper.EnumData{
	{GoName: "FilterNone", Name: "none"},
	{GoName: "FilterSub", Name: "sub"},
	{GoName: "FilterUp", Name: "up"},
	{GoName: "FilterAverage", Name: "average", Aliases: []string{"avg"}},
	{GoName: "FilterPaeth", Name: "paeth"},
}

// IsValid returns true if ft is a valid FilterType constant.
func (ft FilterType) IsValid() bool {
	return ft < numFilterTypes
}

// GoString returns the Go string representation of this FilterType constant.
func (ft FilterType) GoString() string {
	return enumhelper.DereferenceEnumData("FilterType", filterTypeData, uint(ft)).GoName
}

// String returns the string representation of this FilterType constant.
func (ft FilterType) String() string {
	return enumhelper.DereferenceEnumData("FilterType", filterTypeData, uint(ft)).Name
}

// MarshalJSON returns the JSON representation of this FilterType constant.
func (ft FilterType) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("FilterType", filterTypeData, uint(ft))
}

var _ fmt.GoStringer = FilterType(0)
var _ fmt.Stringer = FilterType(0)
