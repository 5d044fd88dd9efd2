package iridium

import (
	"github.com/sirupsen/logrus"
)

// numRegisters is the fixed register file size: indices [0, 32).
const numRegisters = 32

// VM is a register-based bytecode machine. It owns its register file,
// program counter, heap, and the two scalar flags the comparison and
// division opcodes update. All state is exclusively owned by the VM for
// its lifetime - there is nothing shared with the Assembler that produced
// its program bytes.
type VM struct {
	registers [numRegisters]int32
	pc        uint32

	program []byte
	heap    []byte

	remainder uint32
	equalFlag bool

	log *logrus.Logger
}

// NewVM returns a VM with all state zeroed and flags false.
func NewVM() *VM {
	return &VM{log: logrus.StandardLogger()}
}

// Register returns the current value of register i. Out-of-range indices
// are clamped into [0, 32) rather than panicking - the VM never crashes on
// a malformed or hand-crafted binary.
func (vm *VM) Register(i int) int32 {
	return vm.registers[vm.clampRegister(uint32(i))]
}

// PC returns the current program counter (a byte index into the program).
func (vm *VM) PC() uint32 {
	return vm.pc
}

// Remainder returns the scratch register holding the last div's modulo result.
func (vm *VM) Remainder() uint32 {
	return vm.remainder
}

// EqualFlag returns the flag most recently set by a comparison opcode.
func (vm *VM) EqualFlag() bool {
	return vm.equalFlag
}

// Heap returns the VM's heap buffer.
func (vm *VM) Heap() []byte {
	return vm.heap
}

// HeapByte reads a single byte from the heap at addr. Out-of-range reads
// return 0 rather than panicking, consistent with the VM's never-crash
// contract for anything driven by untrusted register values.
func (vm *VM) HeapByte(addr uint32) byte {
	if addr >= uint32(len(vm.heap)) {
		return 0
	}
	return vm.heap[addr]
}

// SetHeapByte writes a single byte to the heap at addr. Out-of-range writes
// are logged and ignored.
func (vm *VM) SetHeapByte(addr uint32, b byte) {
	if addr >= uint32(len(vm.heap)) {
		vm.log.WithField("addr", addr).Warn("heap write out of range, ignoring")
		return
	}
	vm.heap[addr] = b
}

// HeapWord reads a big-endian 32-bit value from the heap starting at addr.
func (vm *VM) HeapWord(addr uint32) uint32 {
	return uint32(vm.HeapByte(addr))<<24 | uint32(vm.HeapByte(addr+1))<<16 |
		uint32(vm.HeapByte(addr+2))<<8 | uint32(vm.HeapByte(addr+3))
}

// SetHeapWord writes a big-endian 32-bit value to the heap starting at addr.
func (vm *VM) SetHeapWord(addr uint32, v uint32) {
	vm.SetHeapByte(addr, byte(v>>24))
	vm.SetHeapByte(addr+1, byte(v>>16))
	vm.SetHeapByte(addr+2, byte(v>>8))
	vm.SetHeapByte(addr+3, byte(v))
}

// Program returns the loaded program bytes.
func (vm *VM) Program() []byte {
	return vm.program
}

// AddByte appends one byte to the program.
func (vm *VM) AddByte(b byte) {
	vm.program = append(vm.program, b)
}

// AddBytes appends bs to the program.
func (vm *VM) AddBytes(bs []byte) {
	vm.program = append(vm.program, bs...)
}

// SetRegister sets register i to v, clamping out-of-range indices the same
// way Register does. Exposed primarily for tests that need to seed state.
func (vm *VM) SetRegister(i int, v int32) {
	vm.registers[vm.clampRegister(uint32(i))] = v
}

// SetPC sets the program counter directly. Exposed for tests and a future
// single-step debugger that wants to seed execution at a specific offset.
func (vm *VM) SetPC(pc uint32) {
	vm.pc = pc
}

func (vm *VM) clampRegister(i uint32) uint32 {
	if i >= numRegisters {
		vm.log.WithField("register", i).Error("register index out of range, clamping")
		return i % numRegisters
	}
	return i
}

// checkHeader verifies the 4-byte EPIE magic at the start of the program.
func (vm *VM) checkHeader() bool {
	if len(vm.program) < len(Magic) {
		return false
	}
	for i, b := range Magic {
		if vm.program[i] != b {
			return false
		}
	}
	return true
}

// Run verifies the header, then repeatedly executes instructions starting
// at byte HeaderSize until the program halts. If the header doesn't verify,
// Run returns immediately without executing anything.
func (vm *VM) Run() {
	if !vm.checkHeader() {
		vm.log.Error("program header failed verification, refusing to run")
		return
	}

	vm.pc = HeaderSize
	for {
		if done := vm.executeInstruction(); done {
			return
		}
	}
}

// RunOnce executes exactly one instruction regardless of header state. It
// is the primitive the test suite (and a future single-step debugger) use
// to drive the VM instruction by instruction.
func (vm *VM) RunOnce() {
	vm.executeInstruction()
}

// executeInstruction runs the fetch/decode/execute cycle for a single
// instruction and reports whether the VM is done (ran past the end of the
// program, or hit hlt/igl).
func (vm *VM) executeInstruction() bool {
	if vm.pc >= uint32(len(vm.program)) {
		return true
	}

	opByte := vm.program[vm.pc]
	vm.pc++
	op := OpcodeFromByte(opByte)

	switch op {
	case Load:
		reg := vm.nextByte()
		hi, lo := vm.nextByte(), vm.nextByte()
		value := uint16(hi)<<8 | uint16(lo)
		vm.registers[vm.clampRegister(uint32(reg))] = int32(value)

	case Add:
		ra, rb, rd := vm.nextByte(), vm.nextByte(), vm.nextByte()
		vm.registers[vm.clampRegister(uint32(rd))] = vm.Register(int(ra)) + vm.Register(int(rb))

	case Sub:
		ra, rb, rd := vm.nextByte(), vm.nextByte(), vm.nextByte()
		vm.registers[vm.clampRegister(uint32(rd))] = vm.Register(int(ra)) - vm.Register(int(rb))

	case Mul:
		ra, rb, rd := vm.nextByte(), vm.nextByte(), vm.nextByte()
		vm.registers[vm.clampRegister(uint32(rd))] = vm.Register(int(ra)) * vm.Register(int(rb))

	case Div:
		ra, rb, rd := vm.nextByte(), vm.nextByte(), vm.nextByte()
		a, b := vm.Register(int(ra)), vm.Register(int(rb))
		if b == 0 {
			vm.log.WithFields(logrus.Fields{"pc": vm.pc, "ra": ra, "rb": rb}).Error("division by zero, leaving operands unchanged")
			break
		}
		vm.registers[vm.clampRegister(uint32(rd))] = a / b
		vm.remainder = uint32(a % b)

	case Hlt:
		vm.nextByte()
		vm.nextByte()
		vm.nextByte()
		return true

	case Jmp:
		reg := vm.nextByte()
		vm.nextByte()
		vm.nextByte()
		vm.pc = uint32(vm.Register(int(reg)))

	case Jmpf:
		reg := vm.nextByte()
		vm.nextByte()
		vm.nextByte()
		vm.pc += uint32(vm.Register(int(reg)))

	case Jmpb:
		reg := vm.nextByte()
		vm.nextByte()
		vm.nextByte()
		delta := uint32(vm.Register(int(reg)))
		if delta > vm.pc {
			vm.log.WithFields(logrus.Fields{"pc": vm.pc, "delta": delta}).Warn("jmpb underflowed past 0, clamping")
			vm.pc = 0
		} else {
			vm.pc -= delta
		}

	case Eq:
		ra, rb := vm.nextByte(), vm.nextByte()
		vm.nextByte()
		vm.equalFlag = vm.Register(int(ra)) == vm.Register(int(rb))

	case Neq:
		ra, rb := vm.nextByte(), vm.nextByte()
		vm.nextByte()
		vm.equalFlag = vm.Register(int(ra)) != vm.Register(int(rb))

	case Gt:
		ra, rb := vm.nextByte(), vm.nextByte()
		vm.nextByte()
		vm.equalFlag = vm.Register(int(ra)) > vm.Register(int(rb))

	case Lt:
		ra, rb := vm.nextByte(), vm.nextByte()
		vm.nextByte()
		vm.equalFlag = vm.Register(int(ra)) < vm.Register(int(rb))

	case Gte:
		ra, rb := vm.nextByte(), vm.nextByte()
		vm.nextByte()
		vm.equalFlag = vm.Register(int(ra)) >= vm.Register(int(rb))

	case Lte:
		ra, rb := vm.nextByte(), vm.nextByte()
		vm.nextByte()
		vm.equalFlag = vm.Register(int(ra)) <= vm.Register(int(rb))

	case Jmpe:
		reg := vm.nextByte()
		if vm.equalFlag {
			vm.pc = uint32(vm.Register(int(reg)))
		} else {
			vm.nextByte()
			vm.nextByte()
		}

	case Aloc:
		reg := vm.nextByte()
		vm.nextByte()
		vm.nextByte()
		count := vm.Register(int(reg))
		if count < 0 {
			vm.log.WithField("count", count).Warn("aloc with a negative size, ignoring")
			break
		}
		vm.heap = append(vm.heap, make([]byte, count)...)

	case Inc:
		reg := vm.nextByte()
		vm.nextByte()
		vm.nextByte()
		idx := vm.clampRegister(uint32(reg))
		vm.registers[idx]++

	case Dec:
		reg := vm.nextByte()
		vm.nextByte()
		vm.nextByte()
		idx := vm.clampRegister(uint32(reg))
		vm.registers[idx]--

	case Igl:
		vm.log.WithField("pc", vm.pc-1).Error("illegal instruction, halting")
		vm.skipPad(3)
		return true

	default:
		vm.log.WithField("pc", vm.pc-1).Error("unrecognized opcode, halting")
		vm.skipPad(3)
		return true
	}

	return false
}

// nextByte reads the byte at pc and advances pc by one. If pc has run past
// the end of the program (a truncated final instruction), it returns 0
// without advancing further - that keeps decoding total instead of letting
// a short trailing instruction panic.
func (vm *VM) nextByte() byte {
	if vm.pc >= uint32(len(vm.program)) {
		return 0
	}
	b := vm.program[vm.pc]
	vm.pc++
	return b
}

func (vm *VM) skipPad(n int) {
	for i := 0; i < n; i++ {
		vm.nextByte()
	}
}
