package pngdec

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/chronos-tachyon/assert"

	"github.com/chronos-tachyon/pngdec/internal/adler32"
)

const maxInt = int(^uint(0) >> 1)

// Scratch is the fixed working memory of a Decoder: the input cache, the
// palette, the LZ77 history, and the Huffman table arena.  It may be
// supplied by the caller with WithScratch, e.g. from a static variable.
type Scratch struct {
	input   [inputCacheSize]byte
	palette paletteTable
	history [historySize]byte
	arena   [arenaSize]huffEntry
}

// ScratchSize is the size of a Scratch in bytes.
const ScratchSize = inputCacheSize + 4*maxPaletteEntries + historySize + 4*arenaSize

// Info describes the image and the memory needed to decode it.  It is
// returned by Decoder.Init.
type Info struct {
	Header Header

	Width  uint32
	Height uint32

	// BitsPerPixel counts palette entries as 24-bit colour.
	BitsPerPixel uint32

	// AlphaAvailable is true if the colour type carries alpha, or if a
	// tRNS chunk was parsed before Init returned.  A tRNS chunk after
	// PLTE can still make alpha available later.
	AlphaAvailable bool

	// HeapSize is the number of bytes Begin requires.
	HeapSize uint64

	Mode          Mode
	ResizedWidth  uint32
	ResizedHeight uint32
	OffsetX       uint32
	OffsetY       uint32
}

// Decoder is a resumable PNG decoder.  Init reads the image header, then
// repeated calls to Step perform a bounded amount of work each and deliver
// pixels to a Sink.
//
// A Decoder must not be used by more than one goroutine at a time.
type Decoder struct {
	features     Feature
	alphaCapable bool
	chunkPolicy  ChunkPolicy
	trnsOrder    TransparencyOrder
	position     *[2]uint32
	heapLimit    uint64
	tracers      []Tracer

	br    bitReader
	win   window
	arena huffArena

	palette     *paletteTable
	paletteLen  uint32
	paletteSeen bool

	header         Header
	coerced        bool
	key            colorKey
	alphaAvailable bool

	geom     geometry
	heapSize uint64
	heap     []byte
	row      []byte
	mapX     []byte
	mapY     []byte

	job         Job
	prevJob     Job
	err         error
	busy        int32
	initialized bool
	stepAlpha   bool
	useAlpha    bool
	sink        Sink

	chunkLen      uint32
	chunkUsed     uint32
	streamStarted bool
	streamEnded   bool
	iendSeen      bool
	stream        StreamHeader

	blockFinal      bool
	blockType       BlockType
	storedRemaining uint32
	copyLen         uint32
	copyDist        uint32

	ll         huffTable
	dist       huffTable
	fixedLL    huffTable
	fixedD     huffTable
	fixedBuilt bool
	lengths    [logicalNumLLCodes + logicalNumDCodes]uint8

	digest adler32.Digest
	sum    *adler32.Digest

	passes       []pass
	passIndex    int
	pass         pass
	passW        uint32
	passH        uint32
	passRowBytes uint64
	srcY         uint32
	destRow      uint32
	action       rowAction
	filterRead   bool
	filter       FilterType
	rowPos       uint64
	discardLeft  uint64
	above        [8]byte
	bpp          uint32
	imageDone    bool
	rows         uint64
}

// Init prepares d to decode the PNG image of size bytes read from src onto
// canvas.  It reads the signature, the IHDR chunk and, for indexed images,
// everything up to and including PLTE.
//
// All failures are reported as InitError.
func (d *Decoder) Init(src io.Reader, size int64, canvas Canvas, opts ...Option) (Info, error) {
	assert.NotNil(&src)

	var o options
	o.reset()
	o.apply(opts)

	*d = Decoder{
		features:     o.features,
		alphaCapable: o.alphaCapable,
		chunkPolicy:  o.chunkPolicy,
		trnsOrder:    o.trnsOrder,
		position:     o.position,
		heapLimit:    o.heapLimit,
		tracers:      o.tracers,
		job:          JobInit,
		prevJob:      JobInit,
	}

	scratch := o.scratch
	if scratch == nil {
		scratch = new(Scratch)
	}

	if size <= 0 {
		return Info{}, d.initFail(StreamReadError{
			Problem: fmt.Sprintf("declared source size %d is not positive", size),
		})
	}

	d.br.init(src, uint64(size), &scratch.input)
	d.win.init(&scratch.history)
	d.arena.init(&scratch.arena)
	d.palette = &scratch.palette
	d.palette.reset()
	if (d.features & FeatureVerifyAdler32) != 0 {
		d.digest.Reset()
		d.sum = &d.digest
	}

	if err := d.verifySignature(); err != nil {
		return Info{}, d.initFail(err)
	}
	if err := d.parseHeaderChunk(); err != nil {
		return Info{}, d.initFail(err)
	}
	d.alphaAvailable = d.header.ColorType.HasAlpha()

	header := d.header
	d.sendEvent(Event{
		Type:   ImageHeaderEvent,
		Header: &header,
	})

	if d.header.ColorType == Indexed {
		if err := d.locatePalette(); err != nil {
			return Info{}, d.initFail(err)
		}
	}

	g, err := fitGeometry(d.header.Width, d.header.Height, canvas, (d.features&FeatureUpscale) != 0, d.position)
	if err != nil {
		return Info{}, d.initFail(err)
	}
	d.geom = g
	d.bpp = d.header.BytesPerPixel()
	d.passes = passesFor(d.header.Interlace)
	d.heapSize = alignUp4(g.mapBytes() + d.header.RowBytes(d.header.Width))
	d.initialized = true

	return d.Info(), nil
}

func (d *Decoder) initFail(err error) error {
	d.job = JobFailed
	d.err = err
	return InitError{Err: err}
}

// Info returns the image description computed by Init.
func (d *Decoder) Info() Info {
	return Info{
		Header:         d.header,
		Width:          d.header.Width,
		Height:         d.header.Height,
		BitsPerPixel:   d.header.reportedDepth(),
		AlphaAvailable: d.alphaAvailable,
		HeapSize:       d.heapSize,
		Mode:           d.geom.mode,
		ResizedWidth:   d.geom.width,
		ResizedHeight:  d.geom.height,
		OffsetX:        d.geom.offX,
		OffsetY:        d.geom.offY,
	}
}

// Job returns the job the scheduler will run next.
func (d *Decoder) Job() Job {
	return d.job
}

// Err returns the error that failed the Decoder, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Begin supplies the per-image heap, which must hold at least
// Info.HeapSize bytes.  If Begin is not called, the first Step allocates
// the heap, up to the limit set by WithHeapLimit.
func (d *Decoder) Begin(heap []byte) error {
	assert.Assert(d.initialized, "Begin called before a successful Init")
	assert.Assertf(d.job == JobInit, "Begin called after decoding started (job %v)", d.job)

	if uint64(len(heap)) < d.heapSize {
		err := d.resourcef("heap of %d bytes is smaller than the %d bytes required", len(heap), d.heapSize)
		d.fail(err)
		return err
	}
	d.heap = heap[:d.heapSize]
	return nil
}

// Step performs up to effort.Budget() state transitions, delivering any
// completed pixels to sink.  useAlpha is latched on the first call.
func (d *Decoder) Step(effort Effort, sink Sink, useAlpha bool) (Status, error) {
	assert.Assertf(effort.IsValid(), "invalid Effort %d", uint(effort))
	return d.StepBudget(effort.Budget(), sink, useAlpha)
}

// StepBudget is Step with an explicit number of transitions.
func (d *Decoder) StepBudget(budget uint, sink Sink, useAlpha bool) (Status, error) {
	assert.Assert(budget >= 1, "budget must be at least 1")
	assert.NotNil(&sink)

	if !atomic.CompareAndSwapInt32(&d.busy, 0, 1) {
		assert.Raisef("Step called concurrently or re-entrantly on the same Decoder")
	}
	defer atomic.StoreInt32(&d.busy, 0)

	switch d.job {
	case JobFailed:
		return StatusFailed, d.err
	case JobDone:
		return StatusDone, nil
	}
	assert.Assert(d.initialized, "Step called before a successful Init")

	d.sink = sink
	d.stepAlpha = useAlpha
	defer func() { d.sink = nil }()

	for ; budget != 0; budget-- {
		if err := d.runJob(); err != nil {
			d.fail(err)
			return StatusFailed, err
		}
		if d.job == JobDone {
			return StatusDone, nil
		}
	}
	return StatusProcessing, nil
}

func (d *Decoder) runJob() error {
	switch d.job {
	case JobInit:
		return d.runInit()
	case JobSearchData:
		return d.runSearchData()
	case JobZlibHeader:
		return d.runZlibHeader()
	case JobBlockHeader:
		return d.runBlockHeader()
	case JobBuildFixed:
		return d.runBuildFixed()
	case JobBuildDynamic:
		return d.runBuildDynamic()
	case JobStoredBody:
		return d.runStoredBody()
	case JobCompressedBody:
		return d.runCompressedBody()
	case JobImage:
		return d.runImage()
	default:
		assert.Raisef("Job %#v is not runnable", d.job)
		return nil
	}
}

func (d *Decoder) runInit() error {
	if d.heap == nil {
		if d.heapSize > d.heapLimit {
			return d.resourcef("heap of %d bytes exceeds the limit of %d bytes; supply it with Begin", d.heapSize, d.heapLimit)
		}
		if d.heapSize > uint64(maxInt) {
			return d.resourcef("heap of %d bytes cannot be allocated", d.heapSize)
		}
		d.heap = make([]byte, d.heapSize)
	}

	mb := d.geom.mapBytes()
	if d.geom.mode == ResizeMode {
		split := 4 * uint64(d.geom.width)
		d.mapX = d.heap[:split]
		d.mapY = d.heap[split:mb]
		fillMap(d.mapX, d.header.Width, d.geom.width)
		fillMap(d.mapY, d.header.Height, d.geom.height)
	}
	d.row = d.heap[mb:]

	d.useAlpha = d.stepAlpha
	d.enterPass(0)
	d.job = JobSearchData
	return nil
}

func (d *Decoder) fail(err error) {
	d.job = JobFailed
	d.err = err
}

// Decode decodes an entire image onto canvas, delivering every pixel to
// sink.
func Decode(src io.Reader, size int64, canvas Canvas, sink Sink, opts ...Option) error {
	var d Decoder
	if _, err := d.Init(src, size, canvas, opts...); err != nil {
		return err
	}
	for {
		status, err := d.Step(EffortAll, sink, true)
		switch status {
		case StatusDone:
			return nil
		case StatusFailed:
			return err
		}
	}
}

// DecodeConfig reads the signature and IHDR chunk from r and returns the
// image header.  It may read past the header.
func DecodeConfig(r io.Reader) (Header, error) {
	assert.NotNil(&r)

	var d Decoder
	var cache [inputCacheSize]byte
	d.br.init(r, uint64(maxInt), &cache)
	if err := d.verifySignature(); err != nil {
		return Header{}, err
	}
	if err := d.parseHeaderChunk(); err != nil {
		return Header{}, err
	}
	return d.header, nil
}

func (d *Decoder) formatf(format string, v ...interface{}) error {
	return FormatError{
		Offset:  d.br.offset(),
		Problem: fmt.Sprintf(format, v...),
	}
}

func (d *Decoder) wrapFormat(err error, format string, v ...interface{}) error {
	return FormatError{
		Offset:  d.br.offset(),
		Problem: fmt.Sprintf(format, v...),
		Err:     err,
	}
}

func (d *Decoder) huffmanf(format string, v ...interface{}) error {
	return HuffmanError{
		Offset:  d.br.offset(),
		Problem: fmt.Sprintf(format, v...),
	}
}

func (d *Decoder) wrapHuffman(err error, format string, v ...interface{}) error {
	return HuffmanError{
		Offset:  d.br.offset(),
		Problem: fmt.Sprintf(format, v...),
		Err:     err,
	}
}

func (d *Decoder) resourcef(format string, v ...interface{}) error {
	return ResourceError{
		Offset:  d.br.offset(),
		Problem: fmt.Sprintf(format, v...),
	}
}

func (d *Decoder) sendEvent(event Event) {
	if len(d.tracers) == 0 {
		return
	}
	event.InputBytes = d.br.offset()
	event.OutputBytes = d.win.wr
	event.Rows = d.rows
	event.Job = d.job
	for _, tr := range d.tracers {
		tr.OnEvent(event)
	}
}
