package pngdec

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// ComponentFormat identifies the meaning of the components of a Pixel.
type ComponentFormat byte

const (
	// ComponentsYUV means Comp holds Y, Cb, Cr, and alpha.
	ComponentsYUV ComponentFormat = iota

	// ComponentsRGB means Comp holds R, G, B, and alpha.
	ComponentsRGB

	// ComponentsOther means Comp holds non-colour data.
	ComponentsOther
)

var componentFormatData = []enumhelper.EnumData{
	{GoName: "ComponentsYUV", Name: "yuv"},
	{GoName: "ComponentsRGB", Name: "rgb"},
	{GoName: "ComponentsOther", Name: "other"},
}

// GoString returns the Go string representation of this ComponentFormat constant.
func (cf ComponentFormat) GoString() string {
	return enumhelper.DereferenceEnumData("ComponentFormat", componentFormatData, uint(cf)).GoName
}

// String returns the string representation of this ComponentFormat constant.
func (cf ComponentFormat) String() string {
	return enumhelper.DereferenceEnumData("ComponentFormat", componentFormatData, uint(cf)).Name
}

// MarshalJSON returns the JSON representation of this ComponentFormat constant.
func (cf ComponentFormat) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("ComponentFormat", componentFormatData, uint(cf))
}

var _ fmt.GoStringer = ComponentFormat(0)
var _ fmt.Stringer = ComponentFormat(0)
