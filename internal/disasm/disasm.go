// Package disasm implements the linear decoder and string/data
// clustering optimization that turns a raw word stream into readable
// disassembly.
package disasm

import (
	"fmt"
	"strings"

	"synacor/internal/vm"
)

// DefaultCodeEnd is the known challenge image's code/data split point,
// exposed as a parameter to every caller rather than baked in, so the
// same binary disassembles any image with a different split.
const DefaultCodeEnd = vm.Word(0x17B3)

// Operation is one decoded (possibly clustered) instruction.
type Operation struct {
	Offset vm.Word
	Opcode vm.Opcode
	Size   int // logical size: 1-4 for plain ops, 2 for clusters
	A, B, C vm.Word
	Str    string    // set for clustered OUT/DATA-ascii payloads
	Data   []vm.Word // set for clustered DATA-binary payloads
}

// Decode performs a linear sweep: every word at or above codeEnd
// decodes as a one-word DATA pseudo-op, and within the code region,
// unknown opcodes likewise decode as one-word DATA.
func Decode(image []vm.Word, codeEnd vm.Word) []Operation {
	ops := make([]Operation, 0, len(image)/2)

	for ip := 0; ip < len(image); {
		offset := vm.Word(ip)
		word := image[ip]

		if offset >= codeEnd || !vm.Opcode(word).Valid() {
			ops = append(ops, Operation{Offset: offset, Opcode: vm.OpData, Size: 1, A: word})
			ip++
			continue
		}

		op := vm.Opcode(word)
		size := op.Size()
		var a, b, c vm.Word
		if ip+1 < len(image) {
			a = image[ip+1]
		}
		if ip+2 < len(image) {
			b = image[ip+2]
		}
		if ip+3 < len(image) {
			c = image[ip+3]
		}

		ops = append(ops, Operation{Offset: offset, Opcode: op, Size: size, A: a, B: b, C: c})
		ip += size
	}

	return ops
}

// clusterState tracks which clustering mode Optimize's scan is in.
type clusterState int

const (
	stateNone clusterState = iota
	stateAsciiOut
	stateAsciiData
	stateBinaryData
)

// Optimize groups adjacent OUT/DATA operations into printable string
// and binary-data pseudo-ops. On a state change the closing instruction
// is "un-consumed" and re-examined from state 0.
func Optimize(ops []Operation) []Operation {
	res := make([]Operation, 0, len(ops))

	state := stateNone
	var group []Operation
	var groupOffset vm.Word

	flush := func() {
		switch state {
		case stateAsciiOut:
			res = append(res, Operation{Offset: groupOffset, Opcode: vm.OpOut, Size: 2, Str: extractAscii(group)})
		case stateAsciiData:
			res = append(res, Operation{Offset: groupOffset, Opcode: vm.OpData, Size: 2, Str: extractAscii(group)})
		case stateBinaryData:
			res = append(res, Operation{Offset: groupOffset, Opcode: vm.OpData, Size: 2, Data: extractData(group)})
		}
		state = stateNone
		group = nil
	}

	for i := 0; i < len(ops); i++ {
		op := ops[i]

		switch state {
		case stateNone:
			switch {
			case op.Opcode == vm.OpOut && vm.IsLiteral(op.A) && op.A < 128:
				group = []Operation{op}
				groupOffset = op.Offset
				state = stateAsciiOut
			case op.Opcode == vm.OpData && op.A < 128:
				group = []Operation{op}
				groupOffset = op.Offset
				state = stateAsciiData
			case op.Opcode == vm.OpData:
				group = []Operation{op}
				groupOffset = op.Offset
				state = stateBinaryData
			default:
				res = append(res, op)
			}

		case stateAsciiOut:
			if op.Opcode == vm.OpOut && vm.IsLiteral(op.A) && op.A < 128 {
				group = append(group, op)
			} else {
				flush()
				i--
			}

		case stateAsciiData:
			if op.Opcode == vm.OpData && op.A < 128 {
				group = append(group, op)
			} else {
				flush()
				i--
			}

		case stateBinaryData:
			if op.Opcode == vm.OpData && op.A >= 128 && len(group) < 16 {
				group = append(group, op)
			} else {
				flush()
				i--
			}
		}
	}

	flush()

	return res
}

func extractAscii(group []Operation) string {
	var sb strings.Builder
	for _, op := range group {
		sb.WriteString(charEscape(op.A))
	}
	return sb.String()
}

func extractData(group []Operation) []vm.Word {
	out := make([]vm.Word, len(group))
	for i, op := range group {
		out[i] = op.A
	}
	return out
}

// charEscape renders a single byte value using C-style escapes.
func charEscape(w vm.Word) string {
	switch w {
	case 0:
		return `\0`
	case '\a':
		return `\a`
	case '\b':
		return `\b`
	case '\f':
		return `\f`
	case '\v':
		return `\v`
	case '\t':
		return `\t`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\'':
		return `\'`
	case '"':
		return `\"`
	case '\\':
		return `\\`
	default:
		if w < 32 {
			return fmt.Sprintf(`\x%02x`, w)
		}
		return string(rune(w))
	}
}
