package iridium

import "testing"

func TestOpcodeByteRoundTrip(t *testing.T) {
	opcodes := []Opcode{
		Load, Add, Sub, Mul, Div, Hlt, Jmp, Jmpf, Jmpb,
		Eq, Neq, Gt, Lt, Gte, Lte, Jmpe, Aloc, Inc, Dec, Igl,
	}
	for _, op := range opcodes {
		if got := OpcodeFromByte(op.ToByte()); got != op {
			t.Errorf("OpcodeFromByte(%d.ToByte()) = %v, want %v", op, got, op)
		}
	}
}

func TestOpcodeFromByteUnknownIsIgl(t *testing.T) {
	for _, b := range []byte{16, 20, 50, 99, 255} {
		if got := OpcodeFromByte(b); got != Igl {
			t.Errorf("OpcodeFromByte(%d) = %v, want Igl", b, got)
		}
	}
}

func TestOpcodeFromStringRoundTrip(t *testing.T) {
	for mnemonic, op := range strToOpcodeMap {
		if got := OpcodeFromString(mnemonic); got != op {
			t.Errorf("OpcodeFromString(%q) = %v, want %v", mnemonic, got, op)
		}
		if got := op.String(); got != mnemonic {
			t.Errorf("%v.String() = %q, want %q", op, got, mnemonic)
		}
	}
}

func TestOpcodeFromStringUnknownIsIgl(t *testing.T) {
	if got := OpcodeFromString("nonsense"); got != Igl {
		t.Errorf("OpcodeFromString(nonsense) = %v, want Igl", got)
	}
}

func TestIglStringFallback(t *testing.T) {
	var bogus Opcode = 200
	if got := bogus.String(); got != "igl" {
		t.Errorf("bogus opcode String() = %q, want %q", got, "igl")
	}
}
