// Package inspect describes the interrupt vectors and the entry point of an
// assembled ROM bank.
package inspect

import (
	"encoding/binary"

	"github.com/retroenv/prgrom/internal/rom"
	m6502 "github.com/retroenv/retrogolib/arch/cpu/cpu6502"
)

// Info contains the vectors of a ROM bank and the instruction that the
// processor executes first after reset.
type Info struct {
	NMI   uint16
	Reset uint16
	IRQ   uint16

	HasNMI bool // NMI vector is mapped into the bank
	HasIRQ bool // IRQ vector is mapped into the bank

	EntryOffset int    // bank offset of the entry point, -1 if outside of the bank
	Instruction string // instruction name at the entry point, empty if unknown
}

// Describe reads the vectors of the bank. The reset vector is read from the
// vector offset of the layout, NMI and IRQ from their CPU addresses if those
// are mapped into the bank.
func Describe(bank []byte, layout rom.Layout) Info {
	info := Info{EntryOffset: -1}

	if reset, ok := readWord(bank, layout.VectorOffset); ok {
		info.Reset = reset
	}
	info.NMI, info.HasNMI = readAddress(bank, layout, m6502.NMIAddress)
	info.IRQ, info.HasIRQ = readAddress(bank, layout, m6502.IrqAddress)

	offset, ok := bankOffset(layout, info.Reset)
	if !ok || offset >= len(bank) {
		return info
	}
	info.EntryOffset = offset

	opcode := m6502.Opcodes[bank[offset]]
	if opcode.Instruction != nil {
		info.Instruction = opcode.Instruction.Name
	}
	return info
}

// bankOffset converts a CPU address to an offset inside of the bank.
func bankOffset(layout rom.Layout, address uint16) (int, bool) {
	base := int(layout.BaseAddress())
	offset := int(address) - base
	if offset < 0 || offset >= layout.BankSize {
		return 0, false
	}
	return offset, true
}

func readAddress(bank []byte, layout rom.Layout, address uint16) (uint16, bool) {
	offset, ok := bankOffset(layout, address)
	if !ok {
		return 0, false
	}
	return readWord(bank, offset)
}

func readWord(bank []byte, offset int) (uint16, bool) {
	if offset < 0 || offset+2 > len(bank) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(bank[offset:]), true
}
