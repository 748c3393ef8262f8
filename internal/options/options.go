// Package options contains the program options.
package options

import (
	"github.com/retroenv/prgrom/internal/config"
	"github.com/retroenv/prgrom/internal/rom"
)

// Parameters contains file path options.
type Parameters struct {
	Input        string `flag:"i" usage:"input PRG file"`
	Output       string `flag:"o" usage:"output ROM file, - for stdout (default: input name with .rom extension)"`
	Batch        string `flag:"batch" usage:"batch process files matching pattern (e.g. *.prg)"`
	LinkerConfig string `flag:"ldcfg" usage:"write a ld65 linker config matching the ROM layout"`
}

// Flags contains behavior options.
type Flags struct {
	Verify bool `flag:"verify" usage:"verify the written ROM file by reading it back"`
	Debug  bool `flag:"debug" usage:"enable debug logging"`
	Quiet  bool `flag:"q" usage:"quiet mode"`
	Jobs   int  `flag:"j" usage:"number of files processed concurrently in batch mode" default:"1"`
}

// Geometry contains the ROM layout options. Zero values of the optional
// fields are replaced by values derived from the bank size.
type Geometry struct {
	BankSize       int    `flag:"bank-size" usage:"size of the ROM bank" default:"0x8000"`
	PreambleOffset int    `flag:"preamble" usage:"bank offset of the PRG" default:"0x600"`
	Fill           byte   `flag:"fill" usage:"padding fill byte" default:"0xff"`
	VectorOffset   int    `flag:"vector" usage:"bank offset of the reset vector (default: mapped to 0xFFFC)"`
	EntryPoint     uint16 `flag:"entry" usage:"reset entry point address (default: address of the first PRG byte)"`

	VectorSet bool // vector offset was passed explicitly
	EntrySet  bool // entry point was passed explicitly
}

// Program options of the ROM generator.
type Program struct {
	Parameters
	Flags
	Geometry
}

// Layout returns the ROM layout described by the geometry options.
func (g Geometry) Layout() rom.Layout {
	layout := config.LayoutFor(g.BankSize, g.PreambleOffset, g.Fill)
	if g.VectorSet {
		layout.VectorOffset = g.VectorOffset
	}
	if g.EntrySet {
		layout.EntryPoint = g.EntryPoint
	}
	return layout
}
