package pngdec

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// Status is the outcome of a Decoder.Step call.
type Status byte

const (
	// StatusProcessing indicates that the work budget ran out before the
	// image was complete.  Call Step again.
	StatusProcessing Status = iota

	// StatusDone indicates that the image is complete.
	StatusDone

	// StatusFailed indicates an unrecoverable error.
	StatusFailed
)

var statusData = []enumhelper.EnumData{
	{GoName: "StatusProcessing", Name: "processing"},
	{GoName: "StatusDone", Name: "done"},
	{GoName: "StatusFailed", Name: "failed"},
}

// GoString returns the Go string representation of this Status constant.
func (s Status) GoString() string {
	return enumhelper.DereferenceEnumData("Status", statusData, uint(s)).GoName
}

// String returns the string representation of this Status constant.
func (s Status) String() string {
	return enumhelper.DereferenceEnumData("Status", statusData, uint(s)).Name
}

// MarshalJSON returns the JSON representation of this Status constant.
func (s Status) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("Status", statusData, uint(s))
}

var _ fmt.GoStringer = Status(0)
var _ fmt.Stringer = Status(0)
