package pngdec

import (
	"fmt"

	"github.com/chronos-tachyon/enumhelper"
)

// Job is a state of the decode scheduler.
type Job byte

const (
	// JobInit prepares the per-image heap and the first pass.
	JobInit Job = iota

	// JobSearchData walks chunks until the next IDAT or IEND.
	JobSearchData

	// JobZlibHeader parses the two-byte zlib stream header.
	JobZlibHeader

	// JobBlockHeader parses the three-bit DEFLATE block header.
	JobBlockHeader

	// JobBuildFixed builds the fixed Huffman tables.
	JobBuildFixed

	// JobBuildDynamic reads the code lengths of a dynamic block and builds
	// its Huffman tables.
	JobBuildDynamic

	// JobStoredBody copies the payload of a stored block.
	JobStoredBody

	// JobCompressedBody decodes the payload of a Huffman-compressed block.
	JobCompressedBody

	// JobImage reconstructs scanlines and emits pixels.
	JobImage

	// JobDone is the terminal success state.
	JobDone

	// JobFailed is the terminal failure state.
	JobFailed
)

var jobData = []enumhelper.EnumData{
	{GoName: "JobInit", Name: "init"},
	{GoName: "JobSearchData", Name: "header-search"},
	{GoName: "JobZlibHeader", Name: "zlib-header"},
	{GoName: "JobBlockHeader", Name: "block-header"},
	{GoName: "JobBuildFixed", Name: "build-fixed"},
	{GoName: "JobBuildDynamic", Name: "build-dynamic"},
	{GoName: "JobStoredBody", Name: "block-stored"},
	{GoName: "JobCompressedBody", Name: "block-compressed"},
	{GoName: "JobImage", Name: "image-emit"},
	{GoName: "JobDone", Name: "done"},
	{GoName: "JobFailed", Name: "failed"},
}

// IsTerminal returns true for JobDone and JobFailed.
func (j Job) IsTerminal() bool {
	return j == JobDone || j == JobFailed
}

// GoString returns the Go string representation of this Job constant.
func (j Job) GoString() string {
	return enumhelper.DereferenceEnumData("Job", jobData, uint(j)).GoName
}

// String returns the string representation of this Job constant.
func (j Job) String() string {
	return enumhelper.DereferenceEnumData("Job", jobData, uint(j)).Name
}

// MarshalJSON returns the JSON representation of this Job constant.
func (j Job) MarshalJSON() ([]byte, error) {
	return enumhelper.MarshalEnumToJSON("Job", jobData, uint(j))
}

var _ fmt.GoStringer = Job(0)
var _ fmt.Stringer = Job(0)
