package rom

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrOversizeImage is returned when the PRG does not fit behind the preamble.
	ErrOversizeImage = errors.New("oversize PRG image")
	// ErrInternalLayout is returned when the assembled bank does not have the
	// configured size. It indicates a bug, not bad input.
	ErrInternalLayout = errors.New("internal layout error")
)

// OversizeError contains the geometry that an oversize PRG violated.
type OversizeError struct {
	PRGLength      int
	PreambleOffset int
	BankSize       int
}

func (e *OversizeError) Error() string {
	return fmt.Sprintf("PRG of %d bytes at offset 0x%X exceeds bank size of %d bytes, expected preamble + PRG <= %d (PRG <= %d bytes)",
		e.PRGLength, e.PreambleOffset, e.BankSize, e.BankSize, e.BankSize-e.PreambleOffset)
}

// Unwrap allows errors.Is to match ErrOversizeImage.
func (e *OversizeError) Unwrap() error {
	return ErrOversizeImage
}

// Assemble returns a bank of layout.BankSize bytes containing the PRG at the
// preamble offset, the fill byte everywhere else and the little endian entry
// point at the vector offset. The vector is written after the PRG, so it wins
// if both overlap. The PRG is never truncated.
func Assemble(prg []byte, layout Layout) ([]byte, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	if layout.PreambleOffset+len(prg) > layout.BankSize {
		return nil, &OversizeError{
			PRGLength:      len(prg),
			PreambleOffset: layout.PreambleOffset,
			BankSize:       layout.BankSize,
		}
	}

	bank := make([]byte, layout.BankSize)
	for i := range bank {
		bank[i] = layout.Fill
	}
	copy(bank[layout.PreambleOffset:], prg)

	binary.LittleEndian.PutUint16(bank[layout.VectorOffset:layout.VectorOffset+vectorSize], layout.EntryPoint)

	if len(bank) != layout.BankSize {
		return nil, fmt.Errorf("%w: assembled %d bytes, expected %d", ErrInternalLayout, len(bank), layout.BankSize)
	}
	return bank, nil
}
