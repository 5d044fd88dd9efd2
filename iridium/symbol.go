package iridium

import (
	"fmt"
	"strings"
)

// SymbolType is the closed set of symbol kinds. Only Label exists today.
type SymbolType int

const (
	// SymbolLabel tags a symbol introduced by a label declaration.
	SymbolLabel SymbolType = iota
)

// Symbol binds a label name to its type and, once known, a numeric offset.
type Symbol struct {
	Name   string
	Type   SymbolType
	Offset *uint32
}

// SymbolTable is an ordered, append-only collection of symbols keyed by
// name. Lookups are linear - the program's label count is small enough that
// this is never the bottleneck, and linear scan keeps insertion order
// trivially preserved for debugging output.
type SymbolTable struct {
	symbols []Symbol
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// Add appends a symbol unconditionally. Callers must check Has(name) first;
// a duplicate insertion is the caller's bug; the table itself does not
// deduplicate (mirrors the assembler driver, which uses Has explicitly to
// produce ErrSymbolAlreadyDeclared before ever calling Add).
func (t *SymbolTable) Add(s Symbol) {
	t.symbols = append(t.symbols, s)
}

// Has reports whether name has already been declared.
func (t *SymbolTable) Has(name string) bool {
	for _, s := range t.symbols {
		if s.Name == name {
			return true
		}
	}
	return false
}

// SetOffset sets the offset of an existing symbol, returning whether the
// name was found.
func (t *SymbolTable) SetOffset(name string, offset uint32) bool {
	for i := range t.symbols {
		if t.symbols[i].Name == name {
			o := offset
			t.symbols[i].Offset = &o
			return true
		}
	}
	return false
}

// Value returns the offset associated with name, if the name exists and has
// had an offset assigned.
func (t *SymbolTable) Value(name string) (uint32, bool) {
	for _, s := range t.symbols {
		if s.Name == name {
			if s.Offset == nil {
				return 0, false
			}
			return *s.Offset, true
		}
	}
	return 0, false
}

// Len reports how many symbols have been declared.
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// String renders the table in declaration order, one symbol per line, for
// debugging and log output.
func (t *SymbolTable) String() string {
	var b strings.Builder
	for _, s := range t.symbols {
		if s.Offset != nil {
			fmt.Fprintf(&b, "%s @ %d\n", s.Name, *s.Offset)
		} else {
			fmt.Fprintf(&b, "%s @ <unresolved>\n", s.Name)
		}
	}
	return b.String()
}
