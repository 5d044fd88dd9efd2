package iridium

import (
	"fmt"
	"strings"
)

// Disassembler converts assembled Iridium bytecode back into a textual
// mnemonic listing. It is read-only over the program bytes it's given -
// unlike the VM, it never executes anything.
type Disassembler struct {
	Program []byte // full binary, including the 64-byte header
	Symbols *SymbolTable
}

// NewDisassembler returns a Disassembler over program. symbols may be nil;
// it is stored on the Disassembler but Disassemble does not read it, so the
// listing never shows label names.
func NewDisassembler(program []byte, symbols *SymbolTable) *Disassembler {
	return &Disassembler{Program: program, Symbols: symbols}
}

// Disassemble renders the code segment (everything past HeaderSize) as one
// mnemonic line per instruction, four bytes at a time. It does not attempt
// to verify the header; callers that care should check that themselves.
func (d *Disassembler) Disassemble() string {
	var b strings.Builder

	code := d.Program
	if len(code) >= HeaderSize {
		code = code[HeaderSize:]
	}

	for off := 0; off+instructionSize <= len(code); off += instructionSize {
		instr := code[off : off+instructionSize]
		op := OpcodeFromByte(instr[0])
		fmt.Fprintf(&b, "%08x  %s\n", off, formatInstruction(op, instr[1:]))
	}

	if rem := len(code) % instructionSize; rem != 0 {
		fmt.Fprintf(&b, "%08x  <%d trailing byte(s), truncated instruction>\n", len(code)-rem, rem)
	}

	return b.String()
}

// formatInstruction renders a single decoded opcode and its three raw
// operand bytes as Iridium assembly syntax.
func formatInstruction(op Opcode, operands []byte) string {
	ra, rb, rd := operands[0], operands[1], operands[2]

	switch op {
	case Load:
		value := uint16(operands[1])<<8 | uint16(operands[2])
		return fmt.Sprintf("load $%d #%d", ra, value)
	case Add, Sub, Mul, Div:
		return fmt.Sprintf("%s $%d $%d $%d", op, ra, rb, rd)
	case Hlt, Igl:
		return op.String()
	case Jmp, Jmpf, Jmpb, Jmpe, Aloc, Inc, Dec:
		return fmt.Sprintf("%s $%d", op, ra)
	case Eq, Neq, Gt, Lt, Gte, Lte:
		return fmt.Sprintf("%s $%d $%d", op, ra, rb)
	default:
		return op.String()
	}
}
