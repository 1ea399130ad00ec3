package vm

import "time"

// stoppedPollInterval is how long Run sleeps between command polls
// while stopped, to avoid a hot loop without introducing real
// scheduling latency.
const stoppedPollInterval = time.Millisecond

// Run executes until halted, servicing at most one control message per
// loop iteration and advancing at most one instruction per iteration
// when not stopped. cmds and events may both be nil, in which case Run
// behaves like a free-running interpreter with no breakpoint support.
func (v *VM) Run(cmds *CommandEndpoint, events *EventEndpoint) {
	for !v.halted.Load() {
		if cmds != nil {
			if cmd, ok := cmds.tryRecv(); ok {
				v.handleCommand(cmd, events)
			}
		}

		if v.stopped {
			time.Sleep(stoppedPollInterval)
			continue
		}

		if v.shouldBreak() {
			v.stopped = true
			if events != nil {
				events.publish(Event{Kind: EventStopped})
			}
			continue
		}

		v.Step()
	}
}

// shouldBreak evaluates the stop conditions, in order, before the next
// instruction dispatches.
func (v *VM) shouldBreak() bool {
	if v.breakNext {
		v.breakNext = false
		return true
	}
	if _, ok := v.breakpoints[v.ip]; ok {
		return true
	}
	if v.breakRet && v.lastOp == OpRet {
		v.breakRet = false
		return true
	}
	return false
}

func (v *VM) handleCommand(cmd Command, events *EventEndpoint) {
	switch cmd.Kind {
	case CmdStep:
		v.breakNext = true
		v.stopped = false
		v.Step()

	case CmdStepOut:
		v.breakRet = true
		v.stopped = false
		v.Step()

	case CmdStop:
		v.stopped = true

	case CmdResume:
		v.stopped = false
		v.Step()

	case CmdInfoBreakpoints:
		if events != nil {
			events.publish(Event{Kind: EventBreakpoints, Breakpoints: formatBreakpoints(v.Breakpoints())})
		}

	case CmdSetBreakpoint:
		v.BreakOn(cmd.Addr)

	case CmdClearBreakpoint:
		v.ClearBreakpoint(cmd.Addr)

	case CmdWriteRegister:
		v.SetRegister(cmd.Reg, cmd.Val)

	case CmdWriteMemory:
		v.WriteMemory(cmd.Addr, cmd.Val)
	}
}

func formatBreakpoints(addrs []Word) string {
	out := ""
	for i, a := range addrs {
		if i > 0 {
			out += " "
		}
		out += hex4(a)
	}
	return out
}

const hexDigits = "0123456789abcdef"

func hex4(w Word) string {
	buf := [4]byte{}
	for i := 3; i >= 0; i-- {
		buf[i] = hexDigits[w&0xF]
		w >>= 4
	}
	return string(buf[:])
}
