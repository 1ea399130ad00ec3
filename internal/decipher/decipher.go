// Package decipher recovers XOR-keyed strings guarded by a fixed
// three-instruction CALL pattern.
package decipher

import (
	"fmt"
	"io"

	"synacor/internal/disasm"
	"synacor/internal/vm"
)

// Params parametrizes the operand addresses the pattern match
// expects, rather than baking in one known image's constants.
type Params struct {
	CallTarget vm.Word // CALL target identifying a decrypt-and-print routine
	LenOpA     vm.Word // op1.A: destination register id of the SET whose B is the length-prefixed buffer's offset
	BufOpA     vm.Word // op2.A: destination register id of the second SET
	BufOpB     vm.Word // op2.B: literal match value confirming the guard pattern
	KeyOpA     vm.Word // op3.A: ADD destination holding the key register id
}

// DefaultParams matches the addresses found in the one known challenge
// image carrying this guard pattern.
var DefaultParams = Params{
	CallTarget: 0x5b2,
	LenOpA:     0x8000,
	BufOpA:     0x8001,
	BufOpB:     0x5fb,
	KeyOpA:     0x8002,
}

// Found is one recovered string, keyed by the CALL site that guards it.
type Found struct {
	CallOffset vm.Word
	BufOffset  vm.Word
	Text       string
}

// Scan walks image's decoded instruction stream for CALL sites
// matching p, recovers the length-prefixed buffer at the address the
// preceding SET loads, and XORs it with the key the ADD computes.
func Scan(image []vm.Word, codeEnd vm.Word, p Params) []Found {
	ops := disasm.Decode(image, codeEnd)

	var found []Found
	for i := 3; i < len(ops); i++ {
		op := ops[i]
		if op.Opcode != vm.OpCall || op.A != p.CallTarget {
			continue
		}

		op1, op2, op3 := ops[i-3], ops[i-2], ops[i-1]

		if !(op1.Opcode == vm.OpSet && op1.A == p.LenOpA &&
			op2.Opcode == vm.OpSet && op2.A == p.BufOpA && op2.B == p.BufOpB &&
			op3.Opcode == vm.OpAdd && op3.A == p.KeyOpA) {
			continue
		}

		bufOffset := op1.B
		key := vm.Word((uint32(op3.B) + uint32(op3.C)) % vm.ModBase)

		found = append(found, Found{
			CallOffset: op.Offset,
			BufOffset:  bufOffset,
			Text:       recoverString(image, bufOffset, key),
		})
	}

	return found
}

func recoverString(image []vm.Word, offset, key vm.Word) string {
	if int(offset) >= len(image) {
		return ""
	}
	size := int(image[offset])
	start := int(offset) + 1
	if start+size > len(image) {
		size = len(image) - start
	}
	if size < 0 {
		return ""
	}
	buf := make([]byte, size)
	for i := 0; i < size; i++ {
		buf[i] = byte(image[start+i] ^ key)
	}
	return string(buf)
}

// Write prints each Found as "<call-offset> <buf-offset>: <text>", one
// per line.
func Write(w io.Writer, found []Found) {
	for _, f := range found {
		fmt.Fprintf(w, "%04x %04x: %s\n", uint16(f.CallOffset), uint16(f.BufOffset), f.Text)
	}
}
