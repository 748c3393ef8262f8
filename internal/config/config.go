// Package config handles application configuration and setup
package config

import (
	"io"

	"github.com/retroenv/prgrom/internal/rom"
	m6502 "github.com/retroenv/retrogolib/arch/cpu/cpu6502"
	"github.com/retroenv/retrogolib/arch/system/nes"
	"github.com/retroenv/retrogolib/log"
)

const (
	// BankSize is the size of the reference NES PRG bank, mapped to 0x8000-0xFFFF.
	BankSize = 0x8000
	// PreambleOffset is the offset of the PRG inside the reference bank.
	PreambleOffset = 0x600
	// Fill is the byte used for padding the reference bank.
	Fill = 0xFF
)

// CreateLogger creates a logger with appropriate settings that writes to
// the given output.
func CreateLogger(output io.Writer, debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = output
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// NESLayout returns the reference layout of a 32KB NES PRG bank with the code
// starting behind a 0x600 byte preamble at 0x8600 and the reset vector at 0xFFFC.
func NESLayout() rom.Layout {
	return rom.Layout{
		BankSize:       BankSize,
		PreambleOffset: PreambleOffset,
		Fill:           Fill,
		VectorOffset:   int(m6502.ResetAddress) - int(nes.CodeBaseAddress),
		EntryPoint:     uint16(nes.CodeBaseAddress) + PreambleOffset,
	}
}

// LayoutFor returns a layout for a bank of the given size that is mapped to
// the end of the address space, with the reset vector in the last 4 bytes of
// the bank and the entry point at the first PRG byte.
func LayoutFor(bankSize, preambleOffset int, fill byte) rom.Layout {
	layout := rom.Layout{
		BankSize:       bankSize,
		PreambleOffset: preambleOffset,
		Fill:           fill,
	}
	layout.VectorOffset = rom.DefaultVectorOffset(bankSize)
	layout.EntryPoint = layout.PRGAddress()
	return layout
}
