package main

import (
	getopt "github.com/pborman/getopt/v2"

	"github.com/chronos-tachyon/pngdec"
	"github.com/chronos-tachyon/pngdec/framebuf"
)

// type EffortFlag {{{

// EffortFlag implements getopt.Value for pngdec.Effort.
type EffortFlag struct {
	Value pngdec.Effort
}

// Set fulfills getopt.Value.
func (flag *EffortFlag) Set(str string, opt getopt.Option) error {
	return flag.Value.Parse(str)
}

// String fulfills getopt.Value.
func (flag EffortFlag) String() string {
	return flag.Value.String()
}

var _ getopt.Value = (*EffortFlag)(nil)

// }}}

// type FormatFlag {{{

// FormatFlag implements getopt.Value for framebuf.Format.
type FormatFlag struct {
	Value framebuf.Format
}

// Set fulfills getopt.Value.
func (flag *FormatFlag) Set(str string, opt getopt.Option) error {
	return flag.Value.Parse(str)
}

// String fulfills getopt.Value.
func (flag FormatFlag) String() string {
	return flag.Value.String()
}

var _ getopt.Value = (*FormatFlag)(nil)

// }}}

// type PolicyFlag {{{

// PolicyFlag implements getopt.Value for pngdec.ChunkPolicy.
type PolicyFlag struct {
	Value pngdec.ChunkPolicy
}

// Set fulfills getopt.Value.
func (flag *PolicyFlag) Set(str string, opt getopt.Option) error {
	return flag.Value.Parse(str)
}

// String fulfills getopt.Value.
func (flag PolicyFlag) String() string {
	return flag.Value.String()
}

var _ getopt.Value = (*PolicyFlag)(nil)

// }}}

// type OrderFlag {{{

// OrderFlag implements getopt.Value for pngdec.TransparencyOrder.
type OrderFlag struct {
	Value pngdec.TransparencyOrder
}

// Set fulfills getopt.Value.
func (flag *OrderFlag) Set(str string, opt getopt.Option) error {
	return flag.Value.Parse(str)
}

// String fulfills getopt.Value.
func (flag OrderFlag) String() string {
	return flag.Value.String()
}

var _ getopt.Value = (*OrderFlag)(nil)

// }}}
