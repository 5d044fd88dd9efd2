package iridium

import "fmt"

// AssemblerErrorKind tags the closed set of assembler-side failures.
type AssemblerErrorKind int

const (
	// ErrNoSegmentDeclarationFound: a label appeared before any .data/.code section.
	ErrNoSegmentDeclarationFound AssemblerErrorKind = iota
	// ErrStringConstantDeclaredWithoutLabel: a label is present but its name couldn't be extracted.
	ErrStringConstantDeclaredWithoutLabel
	// ErrSymbolAlreadyDeclared: duplicate label name.
	ErrSymbolAlreadyDeclared
	// ErrUnknownDirectiveFound: an operand-bearing directive name that isn't recognized.
	ErrUnknownDirectiveFound
	// ErrNonOpcodeInOpcodeField: an opcode's operand slot held a token kind that cannot be
	// encoded. Pass two panics with it instead of adding it to the error collection.
	ErrNonOpcodeInOpcodeField
	// ErrInsufficientSections: the source did not declare exactly two sections.
	ErrInsufficientSections
	// ErrParse: the parser did not consume the entire input cleanly.
	ErrParse
)

// AssemblerError is one entry in the closed taxonomy of assembler failures.
// The driver accumulates these during pass one and returns them all at
// once; a ParseError instead aborts before pass one ever runs.
type AssemblerError struct {
	Kind        AssemblerErrorKind
	Instruction uint32 // meaningful for ErrNoSegmentDeclarationFound / ErrStringConstantDeclaredWithoutLabel
	Directive   string // meaningful for ErrUnknownDirectiveFound
	Message     string // meaningful for ErrParse
}

func (e AssemblerError) Error() string {
	switch e.Kind {
	case ErrNoSegmentDeclarationFound:
		return fmt.Sprintf("no segment declaration found before instruction %d", e.Instruction)
	case ErrStringConstantDeclaredWithoutLabel:
		return fmt.Sprintf("string constant declared without a label at instruction %d", e.Instruction)
	case ErrSymbolAlreadyDeclared:
		return "symbol already declared"
	case ErrUnknownDirectiveFound:
		return fmt.Sprintf("unknown directive found: %s", e.Directive)
	case ErrNonOpcodeInOpcodeField:
		return "non-opcode token found in opcode field"
	case ErrInsufficientSections:
		return "insufficient sections declared (need exactly data and code)"
	case ErrParse:
		return fmt.Sprintf("parse error: %s", e.Message)
	default:
		return "unknown assembler error"
	}
}

// ParseError reports that the parser could not consume the entire input.
// It is returned on its own, ahead of and instead of an []AssemblerError,
// since pass one never runs against a program that failed to parse.
type ParseError struct {
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}
