package vm

// Word is the fundamental unit of the architecture: a 16-bit cell used
// for code, data, registers and stack slots alike.
type Word uint16

const (
	// ModBase is the modulus for ADD/MULT/NOT arithmetic.
	ModBase = 1 << 15
	// NumRegisters is the register file size.
	NumRegisters = 8
	// MemSize is the number of addressable words, [0, MemSize).
	MemSize = 1 << 15
	// memBufSize over-allocates the backing array 16x past MemSize, the
	// way the original does, so that an operand fetch past a
	// near-the-top-of-memory ip, or a memory access through a register
	// holding an address/sentinel >= MemSize, indexes a real cell
	// instead of panicking.
	memBufSize = 16 * MemSize
	// regBase is the first word value that denotes a register operand.
	regBase = 0x8000
	// regMax is the last word value that denotes a register operand.
	regMax = regBase + NumRegisters - 1
)

// Opcode identifies one of the architecture's instructions.
type Opcode Word

const (
	OpHalt Opcode = 0
	OpSet  Opcode = 1
	OpPush Opcode = 2
	OpPop  Opcode = 3
	OpEq   Opcode = 4
	OpGt   Opcode = 5
	OpJmp  Opcode = 6
	OpJt   Opcode = 7
	OpJf   Opcode = 8
	OpAdd  Opcode = 9
	OpMult Opcode = 10
	OpMod  Opcode = 11
	OpAnd  Opcode = 12
	OpOr   Opcode = 13
	OpNot  Opcode = 14
	OpRmem Opcode = 15
	OpWmem Opcode = 16
	OpCall Opcode = 17
	OpRet  Opcode = 18
	OpOut  Opcode = 19
	OpIn   Opcode = 20
	OpNoop Opcode = 21

	// OpData is a disassembler-only pseudo-opcode: not dispatched by the
	// VM, but used by internal/disasm to mark a word that isn't a valid
	// instruction at its offset.
	OpData Opcode = 0xFFFF
)

var opcodeNames = map[Opcode]string{
	OpHalt: "halt",
	OpSet:  "set",
	OpPush: "push",
	OpPop:  "pop",
	OpEq:   "eq",
	OpGt:   "gt",
	OpJmp:  "jmp",
	OpJt:   "jt",
	OpJf:   "jf",
	OpAdd:  "add",
	OpMult: "mult",
	OpMod:  "mod",
	OpAnd:  "and",
	OpOr:   "or",
	OpNot:  "not",
	OpRmem: "rmem",
	OpWmem: "wmem",
	OpCall: "call",
	OpRet:  "ret",
	OpOut:  "out",
	OpIn:   "in",
	OpNoop: "noop",
	OpData: "data",
}

// String renders the opcode's mnemonic, or "(invalid)" if it is out of
// the architecture's 0..21 range.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "(invalid)"
}

// Size returns the instruction length in words (opcode + operands) for
// a valid opcode, and 1 for anything outside [0, 21] (matching the
// disassembler's one-word DATA fallback).
func (op Opcode) Size() int {
	switch op {
	case OpHalt, OpRet, OpNoop:
		return 1
	case OpPush, OpPop, OpJmp, OpCall, OpOut, OpIn:
		return 2
	case OpSet, OpJt, OpJf, OpNot, OpRmem, OpWmem:
		return 3
	case OpEq, OpGt, OpAdd, OpMult, OpMod, OpAnd, OpOr:
		return 4
	default:
		return 1
	}
}

// Valid reports whether op names one of the architecture's 22
// instructions.
func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok && op != OpData
}

// IsRegister reports whether w encodes a register operand (0x8000..0x8007).
func IsRegister(w Word) bool {
	return w >= regBase && w <= regMax
}

// IsLiteral reports whether w encodes a literal operand (< 0x8000).
func IsLiteral(w Word) bool {
	return w < regBase
}

// RegisterIndex returns the register index encoded by w. Callers must
// have already checked IsRegister(w).
func RegisterIndex(w Word) int {
	return int(w - regBase)
}
