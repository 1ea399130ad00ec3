// Package debugger implements the inspection and control operations
// exposed to a frontend driving a running VM: disassembly, register
// and memory views, and breakpoint/step/resume commands.
package debugger

import (
	"fmt"
	"io"
	"sort"

	"synacor/internal/disasm"
	"synacor/internal/vm"
)

// Debugger issues control commands to a running VM and formats
// register/memory/stack/disassembly views from its snapshots. It
// borrows the VM only for the duration of each call: inspection
// methods call vm.Save() themselves rather than caching a snapshot
// across calls.
type Debugger struct {
	target  *vm.VM
	cmds    *vm.CommandEndpoint
	codeEnd vm.Word
}

// New binds a Debugger to a live VM and its command endpoint. codeEnd
// is forwarded to the disassembler.
func New(target *vm.VM, cmds *vm.CommandEndpoint, codeEnd vm.Word) *Debugger {
	return &Debugger{target: target, cmds: cmds, codeEnd: codeEnd}
}

// Disassemble renders a window of instructions centered on the
// current ip: up to 3 before and 6 after the selected instruction,
// which is the first operation whose offset is >= ip. If address is
// supplied, it is used as the center instead of ip.
func (d *Debugger) Disassemble(w io.Writer, address ...vm.Word) {
	snap := d.target.Save()
	center := snap.IP
	if len(address) > 0 {
		center = address[0]
	}

	ops := disasm.Optimize(disasm.Decode(snap.Mem, d.codeEnd))

	idx := sort.Search(len(ops), func(i int) bool { return ops[i].Offset >= center })
	if idx == len(ops) {
		return
	}

	from := idx - 3
	if from < 0 {
		from = 0
	}
	upto := idx + 7
	if upto > len(ops) {
		upto = len(ops)
	}

	for i := from; i < upto; i++ {
		disasm.Format(w, ops[i], ops[i].Offset == ops[idx].Offset)
	}
}

// ShowRegisters prints the 8 register values in a header+row layout.
func (d *Debugger) ShowRegisters(w io.Writer) {
	snap := d.target.Save()

	for i := range snap.Reg {
		fmt.Fprintf(w, "%3s%-2d ", "r", i)
	}
	fmt.Fprintln(w)

	for _, r := range snap.Reg {
		fmt.Fprintf(w, "%04x ", uint16(r))
	}
	fmt.Fprintln(w)
}

// DumpMemory prints size words starting at address, 8 words per row,
// with a trailing printable-ASCII gutter.
func (d *Debugger) DumpMemory(w io.Writer, address vm.Word, size int) {
	if size <= 0 {
		size = 16
	}
	snap := d.target.Save()

	for row := 0; row < size; row += 8 {
		fmt.Fprintf(w, "%04x: ", uint16(address)+uint16(row))

		rowWords := make([]vm.Word, 0, 8)
		for col := 0; col < 8 && row+col < size; col++ {
			addr := int(address) + row + col
			var val vm.Word
			if addr < len(snap.Mem) {
				val = snap.Mem[addr]
			}
			rowWords = append(rowWords, val)
			fmt.Fprintf(w, "%04x ", uint16(val))
		}

		for col := len(rowWords); col < 8; col++ {
			fmt.Fprint(w, "     ")
		}

		fmt.Fprint(w, " ")
		for _, val := range rowWords {
			if val >= 32 && val < 127 {
				fmt.Fprintf(w, "%c", byte(val))
			} else {
				fmt.Fprint(w, ".")
			}
		}
		fmt.Fprintln(w)
	}
}

// ShowStack walks down from sp-1, printing up to size live stack slots.
func (d *Debugger) ShowStack(w io.Writer, size int) {
	if size <= 0 {
		size = 8
	}
	snap := d.target.Save()

	for i := len(snap.Stack) - 1; i >= 0 && len(snap.Stack)-1-i < size; i-- {
		fmt.Fprintf(w, "%04x: %04x\n", i, uint16(snap.Stack[i]))
	}
}

// Step sends the "step" control command: advance exactly one
// instruction and stop immediately after.
func (d *Debugger) Step() { d.cmds.Send(vm.Command{Kind: vm.CmdStep}) }

// StepOut sends the "step-out" control command: run until the current
// function's RET executes, then stop.
func (d *Debugger) StepOut() { d.cmds.Send(vm.Command{Kind: vm.CmdStepOut}) }

// Resume sends the "resume" control command.
func (d *Debugger) Resume() { d.cmds.Send(vm.Command{Kind: vm.CmdResume}) }

// Stop sends the "stop" control command.
func (d *Debugger) Stop() { d.cmds.Send(vm.Command{Kind: vm.CmdStop}) }

// BreakOn sends "set breakpoint" for address.
func (d *Debugger) BreakOn(address vm.Word) {
	d.cmds.Send(vm.Command{Kind: vm.CmdSetBreakpoint, Addr: address})
}

// ClearBreakpoint sends "clear breakpoint" for address.
func (d *Debugger) ClearBreakpoint(address vm.Word) {
	d.cmds.Send(vm.Command{Kind: vm.CmdClearBreakpoint, Addr: address})
}

// ListBreakpoints sends "info breakpoints"; the reply arrives
// asynchronously as an EventBreakpoints event on the VM's event endpoint.
func (d *Debugger) ListBreakpoints() {
	d.cmds.Send(vm.Command{Kind: vm.CmdInfoBreakpoints})
}

// SetRegister queues a register write, applied on the VM's next control poll.
func (d *Debugger) SetRegister(i int, val vm.Word) {
	d.cmds.Send(vm.Command{Kind: vm.CmdWriteRegister, Reg: i, Val: val})
}

// WriteMemory queues a memory write, applied on the VM's next control poll.
func (d *Debugger) WriteMemory(addr, val vm.Word) {
	d.cmds.Send(vm.Command{Kind: vm.CmdWriteMemory, Addr: addr, Val: val})
}
