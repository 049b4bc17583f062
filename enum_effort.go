package pngdec

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// Effort selects how much work a single Decoder.Step call may perform before
// returning control to the caller.
type Effort byte

const (
	// EffortNone performs the smallest useful amount of work.
	EffortNone Effort = iota

	// EffortLow performs a little work per call.
	EffortLow

	// EffortMid performs a moderate amount of work per call.
	EffortMid

	// EffortHigh performs a lot of work per call.
	EffortHigh

	// EffortAll performs as much work per call as the scheduler allows.
	EffortAll
)

var effortData = []enumhelper.EnumData{
	{GoName: "EffortNone", Name: "none"},
	{GoName: "EffortLow", Name: "low"},
	{GoName: "EffortMid", Name: "mid", Aliases: []string{"medium"}},
	{GoName: "EffortHigh", Name: "high"},
	{GoName: "EffortAll", Name: "all", Aliases: []string{"max"}},
}

var effortBudget = [...]uint{2, 5, 10, 15, 100}

// IsValid returns true if e is a valid Effort constant.
func (e Effort) IsValid() bool {
	return e <= EffortAll
}

// Budget returns the number of scheduler transitions this Effort allows.
func (e Effort) Budget() uint {
	if e.IsValid() {
		return effortBudget[e]
	}
	return effortBudget[EffortAll]
}

// GoString returns the Go string representation of this Effort constant.
func (e Effort) GoString() string {
	return enumhelper.DereferenceEnumData("Effort", effortData, uint(e)).GoName
}

// String returns the string representation of this Effort constant.
func (e Effort) String() string {
	return enumhelper.DereferenceEnumData("Effort", effortData, uint(e)).Name
}

// MarshalJSON returns the JSON representation of this Effort constant.
func (e Effort) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("Effort", effortData, uint(e))
}

// Parse parses a string representation of an Effort constant.
func (e *Effort) Parse(str string) error {
	value, err := enumhelper.ParseEnum("Effort", effortData, str)
	*e = Effort(value)
	return err
}

var _ fmt.GoStringer = Effort(0)
var _ fmt.Stringer = Effort(0)
