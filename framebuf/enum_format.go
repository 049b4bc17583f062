package framebuf

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// Format is the memory layout of a FrameBuffer.
type Format byte

const (
	// RGB565 packs each pixel into a little-endian uint16: 5 bits red,
	// 6 bits green, 5 bits blue.
	RGB565 Format = iota

	// RGB888 stores 3 bytes per pixel: red, green, blue.
	RGB888

	// RGBA8888 stores 4 bytes per pixel: red, green, blue, alpha.  Alpha is
	// not premultiplied.
	RGBA8888

	// YUV420 stores a full resolution luma plane and two chroma planes
	// subsampled by 2 in both directions.
	YUV420

	// YUV444 stores three full resolution planes.
	YUV444
)

var formatData = []enumhelper.EnumData{
	{GoName: "RGB565", Name: "rgb565"},
	{GoName: "RGB888", Name: "rgb888", Aliases: []string{"rgb"}},
	{GoName: "RGBA8888", Name: "rgba8888", Aliases: []string{"rgba", "rgb888+alpha"}},
	{GoName: "YUV420", Name: "yuv420"},
	{GoName: "YUV444", Name: "yuv444", Aliases: []string{"yuv"}},
}

// IsValid returns true if f is a valid Format constant.
func (f Format) IsValid() bool {
	return f <= YUV444
}

// HasAlpha returns true if the layout stores alpha.
func (f Format) HasAlpha() bool {
	return f == RGBA8888
}

// IsPlanar returns true if the layout stores Y, Cb and Cr planes.
func (f Format) IsPlanar() bool {
	return f == YUV420 || f == YUV444
}

// GoString returns the Go string representation of this Format constant.
func (f Format) GoString() string {
	return enumhelper.DereferenceEnumData("Format", formatData, uint(f)).GoName
}

// String returns the string representation of this Format constant.
func (f Format) String() string {
	return enumhelper.DereferenceEnumData("Format", formatData, uint(f)).Name
}

// MarshalJSON returns the JSON representation of this Format constant.
func (f Format) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("Format", formatData, uint(f))
}

// Parse parses a string representation of a Format constant.
func (f *Format) Parse(str string) error {
	value, err := enumhelper.ParseEnum("Format", formatData, str)
	*f = Format(value)
	return err
}

var _ fmt.GoStringer = Format(0)
var _ fmt.Stringer = Format(0)
