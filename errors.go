package pngdec

import (
	"fmt"
)

func formatError(kind string, offset uint64, problem string, err error) string {
	if err != nil {
		return fmt.Sprintf("png: %s at/near byte offset %d: %s: %v", kind, offset, problem, err)
	}
	return fmt.Sprintf("png: %s at/near byte offset %d: %s", kind, offset, problem)
}

// StreamReadError is returned when the byte source fails, or when it runs
// out of bytes before the declared source length was consumed.
type StreamReadError struct {
	Offset  uint64
	Problem string
	Err     error
}

// Error fulfills the error interface.
func (err StreamReadError) Error() string {
	return formatError("stream read error", err.Offset, err.Problem, err.Err)
}

// Unwrap returns the underlying I/O error, if any.
func (err StreamReadError) Unwrap() error {
	return err.Err
}

// FormatError is returned when the input violates the PNG or zlib container
// format: bad signature, bad chunk sizes, illegal chunk ordering, or an
// illegal colour type / bit depth combination.
type FormatError struct {
	Offset  uint64
	Problem string
	Err     error
}

// Error fulfills the error interface.
func (err FormatError) Error() string {
	return formatError("format error", err.Offset, err.Problem, err.Err)
}

// Unwrap returns the underlying error, if any.
func (err FormatError) Unwrap() error {
	return err.Err
}

// HuffmanError is returned when a Huffman code is malformed, when the input
// contains an unassigned code, or when the table arena is exhausted.
type HuffmanError struct {
	Offset  uint64
	Problem string
	Err     error
}

// Error fulfills the error interface.
func (err HuffmanError) Error() string {
	return formatError("huffman error", err.Offset, err.Problem, err.Err)
}

// Unwrap returns the underlying error, if any.
func (err HuffmanError) Unwrap() error {
	return err.Err
}

// GeometryError is returned when the destination canvas cannot hold any
// pixel of the image.
type GeometryError struct {
	Offset  uint64
	Problem string
	Err     error
}

// Error fulfills the error interface.
func (err GeometryError) Error() string {
	return formatError("geometry error", err.Offset, err.Problem, err.Err)
}

// Unwrap returns the underlying error, if any.
func (err GeometryError) Unwrap() error {
	return err.Err
}

// ResourceError is returned when caller-provided memory is too small.
type ResourceError struct {
	Offset  uint64
	Problem string
	Err     error
}

// Error fulfills the error interface.
func (err ResourceError) Error() string {
	return formatError("resource error", err.Offset, err.Problem, err.Err)
}

// Unwrap returns the underlying error, if any.
func (err ResourceError) Unwrap() error {
	return err.Err
}

// InitError wraps any failure of Decoder.Init.  The wrapped error is one of
// the typed errors above.
type InitError struct {
	Err error
}

// Error fulfills the error interface.
func (err InitError) Error() string {
	return fmt.Sprintf("png: init failed: %v", err.Err)
}

// Unwrap returns the underlying error.
func (err InitError) Unwrap() error {
	return err.Err
}

var (
	_ error = StreamReadError{}
	_ error = FormatError{}
	_ error = HuffmanError{}
	_ error = GeometryError{}
	_ error = ResourceError{}
	_ error = InitError{}
)
