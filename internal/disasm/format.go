package disasm

import (
	"fmt"
	"io"
	"strings"

	"synacor/internal/vm"
)

// Format writes one line for op: `OOOO:    mnem    arg1[, arg2[, arg3]]`.
// When highlight is true the line is marked with a leading "=>" the way
// a debugger render highlights the current-ip line.
func Format(w io.Writer, op Operation, highlight bool) {
	marker := "  "
	if highlight {
		marker = "=>"
	}

	fmt.Fprintf(w, "%s%04X:    %-6s", marker, uint16(op.Offset), op.Opcode.String())

	if op.Size <= 1 {
		fmt.Fprintln(w)
		return
	}

	if op.Str != "" {
		fmt.Fprintf(w, "\"%s\"", op.Str)
	} else if len(op.Data) > 0 {
		fmt.Fprint(w, formatDataWords(op.Data))
	} else {
		fmt.Fprint(w, argName(op.A))
	}

	if op.Size > 2 && op.Str == "" && len(op.Data) == 0 {
		fmt.Fprintf(w, ", %s", argName(op.B))
	}
	if op.Size > 3 && op.Str == "" && len(op.Data) == 0 {
		fmt.Fprintf(w, ", %s", argName(op.C))
	}

	fmt.Fprintln(w)
}

// Disassemble decodes, optimizes and formats an entire image.
func Disassemble(w io.Writer, image []vm.Word, codeEnd vm.Word) {
	ops := Optimize(Decode(image, codeEnd))
	for _, op := range ops {
		Format(w, op, false)
	}
}

func argName(w vm.Word) string {
	switch {
	case vm.IsLiteral(w):
		return fmt.Sprintf("0x%02X", uint16(w))
	case vm.IsRegister(w):
		return fmt.Sprintf("reg%d", vm.RegisterIndex(w))
	default:
		return "(invalid)"
	}
}

func formatDataWords(data []vm.Word) string {
	parts := make([]string, len(data))
	for i, d := range data {
		parts[i] = fmt.Sprintf("0x%X", uint16(d))
	}
	return strings.Join(parts, " ")
}
