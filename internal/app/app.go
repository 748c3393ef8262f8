// Package app provides the main application helper for the ROM generator.
package app

import (
	"github.com/retroenv/prgrom/internal/inspect"
	"github.com/retroenv/prgrom/internal/loader"
	"github.com/retroenv/prgrom/internal/options"
	"github.com/retroenv/prgrom/internal/rom"
	"github.com/retroenv/retrogolib/log"
)

// PrintInfo prints the information about the input file and the ROM layout.
func PrintInfo(logger *log.Logger, opts options.Program, prg loader.PRG, layout rom.Layout) {
	if opts.Quiet {
		return
	}

	logger.Info("Processing PRG",
		log.String("file", opts.Input),
		log.String("entry", prg.Name),
		log.String("format", string(prg.Format)),
		log.Int("size", len(prg.Data)),
	)
	logger.Debug("ROM layout",
		log.Hex("bank_size", layout.BankSize),
		log.Hex("preamble", layout.PreambleOffset),
		log.Hex("fill", layout.Fill),
		log.Hex("vector", layout.VectorOffset),
		log.Hex("entry_point", layout.EntryPoint),
		log.Int("capacity", layout.Capacity()),
	)

	if layout.Overlaps(len(prg.Data)) {
		logger.Warn("PRG overlaps the reset vector, the vector bytes replace the PRG bytes",
			log.Hex("vector", layout.VectorOffset),
			log.Hex("prg_end", layout.PreambleOffset+len(prg.Data)),
		)
	}
}

// PrintROMInfo prints the vectors and the entry instruction of the assembled ROM.
func PrintROMInfo(logger *log.Logger, info inspect.Info) {
	logger.Debug("Reset handler",
		log.Hex("address", info.Reset),
		log.String("instruction", info.Instruction))
	if info.HasNMI {
		logger.Debug("NMI handler", log.Hex("address", info.NMI))
	}
	if info.HasIRQ {
		logger.Debug("IRQ handler", log.Hex("address", info.IRQ))
	}

	if info.EntryOffset < 0 {
		logger.Warn("Entry point is not mapped into the ROM bank", log.Hex("entry_point", info.Reset))
	}
}
