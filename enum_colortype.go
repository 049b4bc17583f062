package pngdec

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// ColorType indicates how the samples of a pixel are to be interpreted.
type ColorType byte

const (
	// InvalidColor is a dummy value indicating an unknown colour type.
	InvalidColor ColorType = iota

	// Greyscale pixels carry one luminance sample.
	Greyscale

	// Truecolor pixels carry red, green, and blue samples.
	Truecolor

	// Indexed pixels carry one palette index.
	Indexed

	// GreyscaleAlpha pixels carry a luminance sample and an alpha sample.
	GreyscaleAlpha

	// TruecolorAlpha pixels carry red, green, blue, and alpha samples.
	TruecolorAlpha
)

var colorTypeData = []enumhelper.EnumData{
	{GoName: "InvalidColor", Name: "invalid"},
	{GoName: "Greyscale", Name: "grey", Aliases: []string{"gray", "greyscale", "grayscale"}},
	{GoName: "Truecolor", Name: "true", Aliases: []string{"truecolor", "truecolour", "rgb"}},
	{GoName: "Indexed", Name: "indexed", Aliases: []string{"palette"}},
	{GoName: "GreyscaleAlpha", Name: "grey+alpha", Aliases: []string{"gray+alpha"}},
	{GoName: "TruecolorAlpha", Name: "true+alpha", Aliases: []string{"rgba"}},
}

var colorTypeWire = [...]ColorType{
	0: Greyscale,
	1: InvalidColor,
	2: Truecolor,
	3: Indexed,
	4: GreyscaleAlpha,
	5: InvalidColor,
	6: TruecolorAlpha,
}

var colorTypeChannels = [...]uint32{0, 1, 3, 1, 2, 4}

func colorTypeFromWire(b byte) ColorType {
	if int(b) < len(colorTypeWire) {
		return colorTypeWire[b]
	}
	return InvalidColor
}

// IsValid returns true if ct is a valid ColorType constant.
func (ct ColorType) IsValid() bool {
	return ct > InvalidColor && ct <= TruecolorAlpha
}

// Channels returns the number of samples per pixel.
func (ct ColorType) Channels() uint32 {
	if ct.IsValid() {
		return colorTypeChannels[ct]
	}
	return 0
}

// HasAlpha returns true if every pixel carries its own alpha sample.
func (ct ColorType) HasAlpha() bool {
	return ct == GreyscaleAlpha || ct == TruecolorAlpha
}

// Wire returns the value of the IHDR colour type byte.
func (ct ColorType) Wire() byte {
	switch ct {
	case Truecolor:
		return 2
	case Indexed:
		return 3
	case GreyscaleAlpha:
		return 4
	case TruecolorAlpha:
		return 6
	default:
		return 0
	}
}

// GoString returns the Go string representation of this ColorType constant.
func (ct ColorType) GoString() string {
	return enumhelper.DereferenceEnumData("ColorType", colorTypeData, uint(ct)).GoName
}

// String returns the string representation of this ColorType constant.
func (ct ColorType) String() string {
	return enumhelper.DereferenceEnumData("ColorType", colorTypeData, uint(ct)).Name
}

// MarshalJSON returns the JSON representation of this ColorType constant.
func (ct ColorType) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("ColorType", colorTypeData, uint(ct))
}

// Parse parses a string representation of a ColorType constant.
func (ct *ColorType) Parse(str string) error {
	value, err := enumhelper.ParseEnum("ColorType", colorTypeData, str)
	*ct = ColorType(value)
	return err
}

var _ fmt.GoStringer = ColorType(0)
var _ fmt.Stringer = ColorType(0)
