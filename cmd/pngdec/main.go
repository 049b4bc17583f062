package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	getopt "github.com/pborman/getopt/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"

	"github.com/chronos-tachyon/pngdec"
	"github.com/chronos-tachyon/pngdec/framebuf"
)

var (
	flagVersion   = false
	flagDebug     = false
	flagTrace     = false
	flagLogStderr = false

	flagWidth   = uint(0)
	flagHeight  = uint(0)
	flagX       = uint(0)
	flagY       = uint(0)
	flagAlpha   = true
	flagUpscale = false
	flagCompat  = false
	flagVerify  = false
	flagHeap    = uint(pngdec.DefaultHeapLimit)

	flagEffort    = EffortFlag{pngdec.EffortMid}
	flagFormat    = FormatFlag{framebuf.RGBA8888}
	flagUnknown   = PolicyFlag{pngdec.SkipUnknownChunks}
	flagEarlyTRNS = OrderFlag{pngdec.SkipEarlyTransparency}

	flagOutput     = ""
	flagCPUProfile = ""

	optX getopt.Option
	optY getopt.Option
)

func init() {
	getopt.SetParameters("<input.png>")

	getopt.FlagLong(&flagVersion, "version", 'V', "print version and exit")

	getopt.FlagLong(&flagDebug, "verbose", 'v', "enable debug logging")
	getopt.FlagLong(&flagTrace, "debug", 'D', "enable debug and trace logging")
	getopt.FlagLong(&flagLogStderr, "log-stderr", 'L', "log JSON to stderr")

	getopt.FlagLong(&flagCPUProfile, "cpu-profile", 0, "CPU profile output file")

	getopt.FlagLong(&flagWidth, "width", 'W', "canvas width; default is the image width")
	getopt.FlagLong(&flagHeight, "height", 'H', "canvas height; default is the image height")
	optX = getopt.FlagLong(&flagX, "x", 'x', "place the image at this column instead of centring it")
	optY = getopt.FlagLong(&flagY, "y", 'y', "place the image at this row instead of centring it")
	getopt.FlagLong(&flagAlpha, "alpha", 'a', "use transparency if the image has any")
	getopt.FlagLong(&flagUpscale, "upscale", 'u', "scale small images up to fit the canvas")
	getopt.FlagLong(&flagCompat, "compat-grey", 0, "decode 8-bit indexed images as greyscale")
	getopt.FlagLong(&flagVerify, "verify-adler32", 0, "verify the zlib checksum")
	getopt.FlagLong(&flagHeap, "heap-limit", 0, "largest decoder heap to allocate, in bytes")

	getopt.FlagLong(&flagEffort, "effort", 'e', "work per step; one of none, low, mid, high, or all")
	getopt.FlagLong(&flagFormat, "format", 'F', "frame buffer layout; one of rgb565, rgb888, rgba8888, yuv420, or yuv444")
	getopt.FlagLong(&flagUnknown, "unknown-chunks", 0, "unknown chunk policy; one of skip or reject")
	getopt.FlagLong(&flagEarlyTRNS, "early-trns", 0, "policy for tRNS before PLTE; one of skip, accept, or reject")

	getopt.FlagLong(&flagOutput, "output", 'o', "write the frame buffer to this .png or .bmp file")
}

func main() {
	getopt.Parse()

	if flagVersion {
		fmt.Println(strings.TrimSpace(version))
		os.Exit(0)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.DurationFieldUnit = time.Second
	zerolog.DurationFieldInteger = false
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if flagDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if flagTrace {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}

	switch {
	case flagLogStderr:
		// do nothing

	default:
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	if getopt.NArgs() != 1 {
		getopt.Usage()
		os.Exit(2)
	}
	inputPath := getopt.Arg(0)

	if flagCPUProfile != "" {
		f, err := os.OpenFile(flagCPUProfile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
		if err != nil {
			log.Logger.Fatal().
				Str("filename", flagCPUProfile).
				Err(err).
				Msg("os.OpenFile(O_WRONLY|O_CREATE|O_TRUNC) failed")
		}

		defer func() {
			err := f.Close()
			if err != nil {
				log.Logger.Error().
					Str("filename", flagCPUProfile).
					Err(err).
					Msg("failed to Close CPU profiling output file")
			}
		}()

		err = pprof.StartCPUProfile(f)
		if err != nil {
			log.Logger.Fatal().
				Err(err).
				Msg("pprof.StartCPUProfile failed")
		}

		defer pprof.StopCPUProfile()
	}

	fb := doDecode(inputPath)

	if flagOutput != "" {
		err := writeImage(flagOutput, fb.Image())
		if err != nil {
			log.Logger.Fatal().
				Str("filename", flagOutput).
				Err(err).
				Msg("failed to write output image")
		}
	}
}

func doDecode(inputPath string) *framebuf.FrameBuffer {
	f, err := os.Open(inputPath)
	if err != nil {
		log.Logger.Fatal().
			Str("filename", inputPath).
			Err(err).
			Msg("os.Open failed")
	}
	defer func() {
		_ = f.Close()
	}()

	fi, err := f.Stat()
	if err != nil {
		log.Logger.Fatal().
			Str("filename", inputPath).
			Err(err).
			Msg("os.File.Stat failed")
	}

	canvas := pngdec.Canvas{Width: uint32(flagWidth), Height: uint32(flagHeight)}
	if canvas.Width == 0 || canvas.Height == 0 {
		h, err := pngdec.DecodeConfig(f)
		if err != nil {
			log.Logger.Fatal().
				Str("filename", inputPath).
				Err(err).
				Msg("pngdec.DecodeConfig failed")
		}
		if canvas.Width == 0 {
			canvas.Width = h.Width
		}
		if canvas.Height == 0 {
			canvas.Height = h.Height
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			log.Logger.Fatal().
				Str("filename", inputPath).
				Err(err).
				Msg("os.File.Seek failed")
		}
	}

	var features pngdec.Feature
	if flagUpscale {
		features |= pngdec.FeatureUpscale
	}
	if flagCompat {
		features |= pngdec.FeatureCompatGreyscale
	}
	if flagVerify {
		features |= pngdec.FeatureVerifyAdler32
	}

	if flagHeap == 0 {
		log.Logger.Fatal().
			Msg("--heap-limit must be positive")
	}

	opts := make([]pngdec.Option, 5, 7)
	opts[0] = pngdec.WithFeatures(features)
	opts[1] = pngdec.WithAlphaIfAvailable(flagAlpha)
	opts[2] = pngdec.WithUnknownChunks(flagUnknown.Value)
	opts[3] = pngdec.WithTransparencyOrder(flagEarlyTRNS.Value)
	opts[4] = pngdec.WithHeapLimit(uint64(flagHeap))
	if optX.Seen() || optY.Seen() {
		opts = append(opts, pngdec.WithImagePosition(uint32(flagX), uint32(flagY)))
	}
	if flagTrace {
		opts = append(opts, pngdec.WithTracers(pngdec.Log(log.Logger)))
	}

	fb := framebuf.New(flagFormat.Value, canvas.Width, canvas.Height)

	var d pngdec.Decoder
	info, err := d.Init(f, fi.Size(), canvas, opts...)
	if err != nil {
		log.Logger.Fatal().
			Str("filename", inputPath).
			Err(err).
			Msg("pngdec.Decoder.Init failed")
	}

	log.Logger.Info().
		Uint32("width", info.Width).
		Uint32("height", info.Height).
		Str("color", info.Header.ColorType.String()).
		Uint8("depth", info.Header.BitDepth).
		Str("interlace", info.Header.Interlace.String()).
		Uint32("bpp", info.BitsPerPixel).
		Bool("alpha", info.AlphaAvailable).
		Str("mode", info.Mode.String()).
		Uint32("resizedWidth", info.ResizedWidth).
		Uint32("resizedHeight", info.ResizedHeight).
		Uint64("heap", info.HeapSize).
		Msg("image")

	start := time.Now()
	steps := uint64(0)
	for {
		status, err := d.Step(flagEffort.Value, fb, flagAlpha)
		steps++
		log.Logger.Debug().
			Uint64("step", steps).
			Str("status", status.String()).
			Str("job", d.Job().String()).
			Uint64("pixels", fb.Written()).
			Msg("step")

		if status == pngdec.StatusDone {
			break
		}
		if status == pngdec.StatusFailed {
			log.Logger.Fatal().
				Str("filename", inputPath).
				Uint64("step", steps).
				Err(err).
				Msg("pngdec.Decoder.Step failed")
		}
	}

	log.Logger.Info().
		Uint64("steps", steps).
		Uint64("pixels", fb.Written()).
		Dur("elapsed", time.Since(start)).
		Msg("decoded")
	return fb
}

func writeImage(outputPath string, img image.Image) error {
	var encode func(io.Writer, image.Image) error
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".png":
		encode = png.Encode
	case ".bmp":
		encode = bmp.Encode
	default:
		return fmt.Errorf("unknown output file extension %q; expected .png or .bmp", filepath.Ext(outputPath))
	}

	f, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}

	var errs *multierror.Error
	errs = multierror.Append(errs, encode(f, img))
	errs = multierror.Append(errs, f.Close())
	return errs.ErrorOrNil()
}
