// Package linker generates ld65 linker configs that place a program so that
// the linked PRG matches a ROM layout.
package linker

import (
	"fmt"
	"strings"

	"github.com/retroenv/prgrom/internal/rom"
)

const (
	memoryConfig = `
MEMORY {
    ZP:          start = $00,    size = $100,    type = rw, file = "";
    RAM:         start = $0200,  size = $600,    type = rw, file = "";
    PRG:         start = $%04X,  size = $%04X,   type = ro, file = %%O, fill = no;
}
`

	segmentsConfig = `
SEGMENTS {
    ZEROPAGE:    load = ZP,  type = zp,  optional = yes;
    BSS:         load = RAM, type = bss, optional = yes;
    CODE:        load = PRG, type = ro,  start = $%04X;
    RODATA:      load = PRG, type = ro,  optional = yes;
    DATA:        load = PRG, type = rw,  optional = yes;
}
`
)

// Generate returns a ld65 linker config for the layout. The PRG memory area
// starts at the address of the first PRG byte and ends before the reset vector
// if the vector follows the preamble, otherwise at the end of the bank.
func Generate(layout rom.Layout) (string, error) {
	if err := layout.Validate(); err != nil {
		return "", err
	}

	size := layout.Capacity()
	if layout.VectorOffset >= layout.PreambleOffset {
		size = layout.VectorOffset - layout.PreambleOffset
	}
	start := layout.PRGAddress()

	buf := &strings.Builder{}
	if _, err := fmt.Fprintf(buf, memoryConfig, start, size); err != nil {
		return "", fmt.Errorf("writing memory config: %w", err)
	}
	if _, err := fmt.Fprintf(buf, segmentsConfig, start); err != nil {
		return "", fmt.Errorf("writing segments config: %w", err)
	}
	return buf.String(), nil
}
