package pngdec

// Pixel is one decoded pixel, already placed on the canvas.
type Pixel struct {
	// Comp holds the components in the order given by Format.  For
	// ComponentsRGB that is R, G, B, A.
	Comp [4]uint8

	// Alpha is true if Comp[3] carries real transparency.  When false,
	// Comp[3] is 255.
	Alpha bool

	X uint32
	Y uint32

	// Offset is Y*canvas.Width + X.
	Offset uint32

	Format ComponentFormat
}

// Sink receives pixels as they are decoded.  WritePixel must not call back
// into the Decoder.
type Sink interface {
	WritePixel(Pixel)
}

// SinkFunc is an implementation of Sink that calls a function.
type SinkFunc func(Pixel)

// WritePixel fulfills Sink.
func (fn SinkFunc) WritePixel(px Pixel) {
	fn(px)
}

var _ Sink = SinkFunc(nil)
