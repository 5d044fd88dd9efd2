package iridium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedExample = `
.data
.code
load $0 #100
load $1 #1
load $2 #0
test: inc $0
neq $0 $2
jmpe @test
hlt
`

func TestAssembleWellFormedExample(t *testing.T) {
	a := NewAssembler()
	out, asmErrs, err := a.Assemble(wellFormedExample)
	require.NoError(t, err)
	require.Empty(t, asmErrs)

	assert.Len(t, out, 64+7*4)
	assert.Equal(t, []byte{0x45, 0x50, 0x49, 0x45}, out[0:4])

	assert.True(t, a.Symbols().Has("test"))
}

func TestAssembleInsufficientSections(t *testing.T) {
	a := NewAssembler()
	_, asmErrs, err := a.Assemble(".code\nhlt\n")
	require.NoError(t, err)
	require.Len(t, asmErrs, 1)
	assert.Equal(t, ErrInsufficientSections, asmErrs[0].Kind)
}

func TestAssembleDuplicateLabel(t *testing.T) {
	src := `
.data
.code
dup: hlt
dup: hlt
`
	a := NewAssembler()
	_, asmErrs, err := a.Assemble(src)
	require.NoError(t, err)
	require.NotEmpty(t, asmErrs)

	found := false
	for _, e := range asmErrs {
		if e.Kind == ErrSymbolAlreadyDeclared {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAssembleLabelBeforeSection(t *testing.T) {
	a := NewAssembler()
	_, asmErrs, err := a.Assemble("stray: hlt\n.data\n.code\n")
	require.NoError(t, err)
	require.NotEmpty(t, asmErrs)
	assert.Equal(t, ErrNoSegmentDeclarationFound, asmErrs[0].Kind)
}

func TestAssembleAsciizData(t *testing.T) {
	src := `
.data
msg: .asciiz 'hi'
.code
hlt
`
	a := NewAssembler()
	_, asmErrs, err := a.Assemble(src)
	require.NoError(t, err)
	require.Empty(t, asmErrs)

	offset, ok := a.Symbols().Value("msg")
	require.True(t, ok)
	assert.Equal(t, uint32(0), offset)
	assert.Equal(t, []byte("hi\x00"), a.ReadOnlyData())
}

func TestAssembleParseErrorAbortsBeforePassOne(t *testing.T) {
	a := NewAssembler()
	_, asmErrs, err := a.Assemble("$0 $1\n.data\n.code\n")
	require.Error(t, err)
	assert.Nil(t, asmErrs)
	var pe ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestAssembleUnknownDirectiveWithOperands(t *testing.T) {
	a := NewAssembler()
	_, asmErrs, err := a.Assemble(".data\n.code\n.bogus $0\nhlt\n")
	require.NoError(t, err)
	require.NotEmpty(t, asmErrs)
	assert.Equal(t, ErrUnknownDirectiveFound, asmErrs[0].Kind)
	assert.Equal(t, "bogus", asmErrs[0].Directive)
}
