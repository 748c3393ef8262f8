// Package rom assembles raw PRG images into fixed-size ROM banks.
package rom

import (
	"errors"
	"fmt"
)

// addressSpaceSize is the size of the 16 bit CPU address space. A bank is
// mapped so that its last byte sits at the top of the address space.
const addressSpaceSize = 0x10000

// vectorSize is the size of a CPU vector in bytes.
const vectorSize = 2

// ErrInvalidLayout is returned for a geometry that can not hold a bank.
var ErrInvalidLayout = errors.New("invalid layout")

// Layout describes the geometry of a ROM bank.
type Layout struct {
	BankSize       int    // total size of the bank in bytes
	PreambleOffset int    // bank offset where the PRG starts
	Fill           byte   // fill byte for the preamble and the trailing padding
	VectorOffset   int    // bank offset of the reset vector
	EntryPoint     uint16 // address written to the reset vector
}

// Validate checks that the layout describes a usable bank.
func (l Layout) Validate() error {
	switch {
	case l.BankSize <= 0:
		return fmt.Errorf("%w: bank size %d must be positive", ErrInvalidLayout, l.BankSize)
	case l.BankSize > addressSpaceSize:
		return fmt.Errorf("%w: bank size 0x%X exceeds the CPU address space of 0x%X",
			ErrInvalidLayout, l.BankSize, addressSpaceSize)
	case l.PreambleOffset < 0 || l.PreambleOffset >= l.BankSize:
		return fmt.Errorf("%w: preamble offset 0x%X outside of bank of size 0x%X",
			ErrInvalidLayout, l.PreambleOffset, l.BankSize)
	case l.VectorOffset < 0 || l.VectorOffset+vectorSize > l.BankSize:
		return fmt.Errorf("%w: vector offset 0x%X does not fit into bank of size 0x%X",
			ErrInvalidLayout, l.VectorOffset, l.BankSize)
	}
	return nil
}

// Capacity returns the maximum PRG length that fits into the bank.
func (l Layout) Capacity() int {
	return l.BankSize - l.PreambleOffset
}

// BaseAddress returns the CPU address that bank offset 0 is mapped to.
// A bank covering the whole address space maps to address 0.
func (l Layout) BaseAddress() uint16 {
	if l.BankSize >= addressSpaceSize {
		return 0
	}
	return uint16(addressSpaceSize - l.BankSize)
}

// DefaultVectorOffset returns the bank offset of the reset vector for a bank
// of the given size, the last 4 bytes hold the reset and IRQ vectors.
func DefaultVectorOffset(bankSize int) int {
	return bankSize - 2*vectorSize
}

// PRGAddress returns the CPU address of the first PRG byte.
func (l Layout) PRGAddress() uint16 {
	return l.BaseAddress() + uint16(l.PreambleOffset)
}

// VectorAddress returns the CPU address of the reset vector.
func (l Layout) VectorAddress() uint16 {
	return l.BaseAddress() + uint16(l.VectorOffset)
}

// Overlaps returns whether the reset vector patch overwrites bytes of a PRG
// of the given length. The patch always takes precedence, the same way the
// CPU reads the vector at reset regardless of what the image holds there.
func (l Layout) Overlaps(prgLength int) bool {
	start := l.PreambleOffset
	end := l.PreambleOffset + prgLength
	return l.VectorOffset < end && l.VectorOffset+vectorSize > start
}
