// Package verification verifies that a written ROM file matches the layout it
// was assembled with.
package verification

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/retroenv/prgrom/internal/rom"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/afero"
)

// maxLoggedMismatches limits the number of logged mismatching offsets.
const maxLoggedMismatches = 10

// ErrVerificationFailed is returned when the ROM content does not match the layout.
var ErrVerificationFailed = errors.New("verification failed")

// VerifyFile reads the written ROM file back and verifies it.
func VerifyFile(fs afero.Fs, logger *log.Logger, name string, prg []byte, layout rom.Layout) error {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return fmt.Errorf("reading file '%s' for verification: %w", name, err)
	}
	return Verify(logger, data, prg, layout)
}

// Verify checks that the ROM contains the fill byte in the preamble and after
// the PRG, the unmodified PRG at the preamble offset and the entry point at the
// vector offset.
func Verify(logger *log.Logger, data, prg []byte, layout rom.Layout) error {
	if len(data) != layout.BankSize {
		return fmt.Errorf("%w: mismatched lengths, %d != %d", ErrVerificationFailed, len(data), layout.BankSize)
	}

	var vector [2]byte
	binary.LittleEndian.PutUint16(vector[:], layout.EntryPoint)

	prgStart := layout.PreambleOffset
	prgEnd := layout.PreambleOffset + len(prg)

	var diffs uint64
	for i, got := range data {
		var expected byte
		switch {
		case i == layout.VectorOffset || i == layout.VectorOffset+1:
			expected = vector[i-layout.VectorOffset]
		case i >= prgStart && i < prgEnd:
			expected = prg[i-prgStart]
		default:
			expected = layout.Fill
		}
		if got == expected {
			continue
		}

		diffs++
		if diffs <= maxLoggedMismatches {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", expected),
				log.Hex("got", got))
		}
	}

	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d offset mismatches", ErrVerificationFailed, diffs)
}
