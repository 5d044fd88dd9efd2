package iridium

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolTableAddHasValue(t *testing.T) {
	st := NewSymbolTable()
	assert.False(t, st.Has("test"))

	st.Add(Symbol{Name: "test", Type: SymbolLabel})
	assert.True(t, st.Has("test"))
	assert.Equal(t, 1, st.Len())

	_, ok := st.Value("test")
	assert.False(t, ok, "offset unset until SetOffset is called")

	assert.True(t, st.SetOffset("test", 64))
	v, ok := st.Value("test")
	assert.True(t, ok)
	assert.Equal(t, uint32(64), v)
}

func TestSymbolTableDoesNotDeduplicate(t *testing.T) {
	st := NewSymbolTable()
	st.Add(Symbol{Name: "dup", Type: SymbolLabel})
	st.Add(Symbol{Name: "dup", Type: SymbolLabel})
	assert.Equal(t, 2, st.Len())
}

func TestSymbolTableSetOffsetUnknownName(t *testing.T) {
	st := NewSymbolTable()
	assert.False(t, st.SetOffset("nope", 1))
}

func TestSymbolTableString(t *testing.T) {
	st := NewSymbolTable()
	st.Add(Symbol{Name: "resolved", Type: SymbolLabel})
	st.SetOffset("resolved", 12)
	st.Add(Symbol{Name: "pending", Type: SymbolLabel})

	out := st.String()
	assert.Contains(t, out, "resolved @ 12")
	assert.Contains(t, out, "pending @ <unresolved>")
}
