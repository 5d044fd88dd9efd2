package iridium

import (
	"github.com/sirupsen/logrus"
)

// AssemblerPhase tracks which of the two passes the driver is in. It
// advances monotonically: First -> Second, never back. An Assembler is
// single-use - construct a new one per assembly job.
type AssemblerPhase int

const (
	PhaseFirst AssemblerPhase = iota
	PhaseSecond
)

// Magic is the 4-byte "EPIE" signature at the start of every assembled
// binary (bytes [0,4) of the header).
var Magic = [4]byte{0x45, 0x50, 0x49, 0x45}

// HeaderSize is the size in bytes of the reserved preamble (the "PIE
// header"). Code begins at byte HeaderSize.
const HeaderSize = 64

// instructionSize is the fixed width, in bytes, of every emitted opcode
// instruction.
const instructionSize = 4

// Assembler coordinates the two-pass translation of a Program into bytes.
// It owns all assembly-time state; none of it is shared with the VM.
type Assembler struct {
	phase AssemblerPhase

	symbols *SymbolTable

	roData   []byte
	roOffset uint32

	bytecode []byte

	sections       []Section
	currentSection *SectionKind

	currentInstruction uint32

	errors []AssemblerError

	log *logrus.Logger
}

// NewAssembler returns a fresh driver ready for a single Assemble call.
func NewAssembler() *Assembler {
	return &Assembler{
		phase:   PhaseFirst,
		symbols: NewSymbolTable(),
		log:     logrus.StandardLogger(),
	}
}

// Symbols exposes the symbol table built up during assembly, for callers
// that want to inspect label offsets (e.g. a disassembler or debugger).
func (a *Assembler) Symbols() *SymbolTable {
	return a.symbols
}

// ReadOnlyData exposes the read-only data buffer built during pass one. This
// buffer is not linked into the emitted binary; callers that want to place
// it themselves (e.g. appended after the code segment) can use this
// alongside the returned bytes.
func (a *Assembler) ReadOnlyData() []byte {
	return a.roData
}

// Assemble translates source into a binary object: a 64-byte header
// followed by the code segment. If pass one accumulates any errors, they
// are returned in full and pass two never runs. A failure to parse the
// source at all is reported as a ParseError instead, since pass one can
// only run against a syntactically valid Program.
func (a *Assembler) Assemble(source string) ([]byte, []AssemblerError, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, nil, err
	}

	if errs := a.passOne(program); len(errs) > 0 {
		return nil, errs, nil
	}

	code := a.passTwo(program)

	out := make([]byte, 0, HeaderSize+len(code))
	out = append(out, a.header()...)
	out = append(out, code...)
	return out, nil, nil
}

func (a *Assembler) header() []byte {
	h := make([]byte, HeaderSize)
	copy(h[0:4], Magic[:])
	return h
}

func (a *Assembler) passOne(p Program) []AssemblerError {
	a.currentInstruction = 0
	for _, instr := range p.Instructions {
		if instr.HasLabel {
			a.processLabelDeclaration(instr)
		}
		if instr.HasDirective {
			a.processDirective(instr)
		}
		a.currentInstruction++
	}

	if len(a.sections) != 2 {
		a.errors = append(a.errors, AssemblerError{Kind: ErrInsufficientSections})
	}

	a.phase = PhaseSecond
	return a.errors
}

func (a *Assembler) processLabelDeclaration(instr AssemblerInstruction) {
	if a.currentSection == nil {
		a.errors = append(a.errors, AssemblerError{Kind: ErrNoSegmentDeclarationFound, Instruction: a.currentInstruction})
		return
	}

	name, ok := instr.LabelName()
	if !ok || name == "" {
		a.errors = append(a.errors, AssemblerError{Kind: ErrStringConstantDeclaredWithoutLabel, Instruction: a.currentInstruction})
		return
	}

	if a.symbols.Has(name) {
		a.errors = append(a.errors, AssemblerError{Kind: ErrSymbolAlreadyDeclared})
		return
	}

	a.symbols.Add(Symbol{Name: name, Type: SymbolLabel})
}

func (a *Assembler) processDirective(instr AssemblerInstruction) {
	operandCount := 0
	for _, op := range instr.Operands {
		if op != nil {
			operandCount++
		}
	}

	switch instr.Directive {
	case "data":
		a.enterSection(SectionData)
	case "code":
		a.enterSection(SectionCode)
	case "asciiz":
		if a.phase != PhaseFirst {
			// asciiz only does work during pass one; pass two re-dispatches
			// directives uniformly but has nothing left to do here.
			return
		}
		a.processAsciiz(instr)
	default:
		if operandCount > 0 {
			a.errors = append(a.errors, AssemblerError{Kind: ErrUnknownDirectiveFound, Directive: instr.Directive})
		} else {
			a.log.WithField("directive", instr.Directive).Warn("unknown section directive ignored")
		}
	}
}

func (a *Assembler) enterSection(kind SectionKind) {
	a.currentSection = &kind
	if a.phase != PhaseFirst {
		// Sections were recorded in pass one; pass two only re-enters them.
		return
	}
	start := a.currentInstruction
	a.sections = append(a.sections, Section{Kind: kind, StartingInstruction: &start})
}

func (a *Assembler) processAsciiz(instr AssemblerInstruction) {
	name, ok := instr.LabelName()
	if !ok || name == "" {
		a.log.Warn("asciiz directive missing a label, ignoring")
		return
	}

	var literal *Token
	for _, op := range instr.Operands {
		if op != nil && op.Kind == TokenString {
			literal = op
			break
		}
	}
	if literal == nil {
		a.log.WithField("label", name).Warn("asciiz directive missing a string literal, ignoring")
		return
	}

	a.symbols.SetOffset(name, a.roOffset)

	bytes := append([]byte(literal.Text), 0)
	a.roData = append(a.roData, bytes...)
	a.roOffset += uint32(len(bytes))
}

func (a *Assembler) passTwo(p Program) []byte {
	a.currentInstruction = 0
	var out []byte

	for _, instr := range p.Instructions {
		if instr.HasDirective {
			a.processDirective(instr)
		}

		if instr.HasOpcode {
			out = append(out, a.encodeInstruction(instr)...)
		}

		a.currentInstruction++
	}

	return out
}

// encodeInstruction emits the fixed 4-byte encoding of one opcode-bearing
// instruction. A LabelUsage operand in code currently emits nothing - label
// addresses are never resolved against the symbol table here, so code that
// jumps to a label depends on the caller loading the register itself.
func (a *Assembler) encodeInstruction(instr AssemblerInstruction) []byte {
	buf := make([]byte, 0, instructionSize)
	buf = append(buf, instr.Opcode.ToByte())

	for _, op := range instr.Operands {
		if op == nil {
			continue
		}
		switch op.Kind {
		case TokenRegister:
			buf = append(buf, op.Register)
		case TokenInteger:
			v := uint16(op.Integer)
			buf = append(buf, byte(v>>8), byte(v))
		case TokenLabelUsage:
			// Intentionally emits nothing; see doc comment above.
		default:
			// Not a legal operand kind in an opcode's operand slot; this
			// terminates the process rather than surfacing through the
			// accumulated error collection.
			panic(AssemblerError{Kind: ErrNonOpcodeInOpcodeField})
		}
	}

	for len(buf) < instructionSize {
		buf = append(buf, 0)
	}
	return buf[:instructionSize]
}
