package iridium

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassembleWellFormedExample(t *testing.T) {
	a := NewAssembler()
	bin, asmErrs, err := a.Assemble(wellFormedExample)
	require.NoError(t, err)
	require.Empty(t, asmErrs)

	d := NewDisassembler(bin, a.Symbols())
	out := d.Disassemble()

	assert.True(t, strings.Contains(out, "load $0 #100"))
	assert.True(t, strings.Contains(out, "inc $0"))
	assert.True(t, strings.Contains(out, "jmpe $"))
	assert.True(t, strings.Contains(out, "hlt"))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 7)
}

func TestDisassembleTruncatedTrailer(t *testing.T) {
	bin := make([]byte, HeaderSize)
	copy(bin, Magic[:])
	bin = append(bin, Load.ToByte(), 0, 0, 1)
	bin = append(bin, 0xFF, 0xFF) // two trailing bytes, not a full instruction

	d := NewDisassembler(bin, nil)
	out := d.Disassemble()
	assert.True(t, strings.Contains(out, "trailing"))
}
