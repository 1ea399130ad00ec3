package vm

// Step executes exactly one instruction: fetch mem[ip..ip+3], dispatch
// on the opcode, and advance ip by exactly the instruction's size. It
// is a no-op once the VM is halted.
//
// This is considered a tight loop: instruction effects are inlined
// directly into the switch rather than split into helper functions.
func (v *VM) Step() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.halted.Load() {
		return
	}

	ip := v.ip
	opcode := Opcode(v.mem[ip])
	a, b, c := v.mem[ip+1], v.mem[ip+2], v.mem[ip+3]

	switch opcode {
	case OpHalt:
		v.halted.Store(true)
		v.stopped = true
		v.err = ErrHalted
		return

	case OpSet:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		v.reg[dst] = v.valueOf(b)
		v.ip = ip + 3

	case OpPush:
		v.push(v.valueOf(a))
		v.ip = ip + 2

	case OpPop:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		val, ok := v.pop()
		if !ok {
			v.fatal(ErrStackUnderflow)
			return
		}
		v.reg[dst] = val
		v.ip = ip + 2

	case OpEq:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		v.reg[dst] = boolWord(v.valueOf(b) == v.valueOf(c))
		v.ip = ip + 4

	case OpGt:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		v.reg[dst] = boolWord(v.valueOf(b) > v.valueOf(c))
		v.ip = ip + 4

	case OpJmp:
		v.ip = v.valueOf(a)

	case OpJt:
		if v.valueOf(a) != 0 {
			v.ip = v.valueOf(b)
		} else {
			v.ip = ip + 3
		}

	case OpJf:
		if v.valueOf(a) == 0 {
			v.ip = v.valueOf(b)
		} else {
			v.ip = ip + 3
		}

	case OpAdd:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		v.reg[dst] = Word((uint32(v.valueOf(b)) + uint32(v.valueOf(c))) % ModBase)
		v.ip = ip + 4

	case OpMult:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		// 32-bit widening multiply to avoid overflow before the modulo.
		v.reg[dst] = Word((uint32(v.valueOf(b)) * uint32(v.valueOf(c))) % ModBase)
		v.ip = ip + 4

	case OpMod:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		divisor := v.valueOf(c)
		if divisor == 0 {
			v.fatal(ErrDivideByZero)
			return
		}
		v.reg[dst] = v.valueOf(b) % divisor
		v.ip = ip + 4

	case OpAnd:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		v.reg[dst] = v.valueOf(b) & v.valueOf(c)
		v.ip = ip + 4

	case OpOr:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		v.reg[dst] = v.valueOf(b) | v.valueOf(c)
		v.ip = ip + 4

	case OpNot:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		v.reg[dst] = (^v.valueOf(b)) & 0x7FFF
		v.ip = ip + 3

	case OpRmem:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		v.reg[dst] = v.mem[v.valueOf(b)]
		v.ip = ip + 3

	case OpWmem:
		v.mem[v.valueOf(a)] = v.valueOf(b)
		v.ip = ip + 3

	case OpCall:
		v.push(ip + 2)
		v.ip = v.valueOf(a)

	case OpRet:
		target, ok := v.pop()
		if !ok {
			// Empty-stack RET halts cleanly, treated as HALT.
			v.halted.Store(true)
			v.stopped = true
			v.err = ErrHalted
			return
		}
		v.ip = target

	case OpOut:
		// Advance-then-act: ip moves past the instruction before the
		// byte is written, so a single-step lands after OUT the
		// instant the character appears (DESIGN.md Open Question #1).
		v.ip = ip + 2
		if v.stdout != nil {
			v.stdout.WriteByte(byte(v.valueOf(a) & 0xFF))
		}

	case OpIn:
		dst, ok := v.destRegister(a)
		if !ok {
			v.fatal(ErrInvalidDestination)
			return
		}
		v.ip = ip + 2
		if v.stdin == nil {
			v.reg[dst] = 0xFFFF
			break
		}
		b, err := v.stdin.ReadByte()
		if err != nil {
			// EOF sentinel: preserved intentionally (DESIGN.md Open
			// Question #3) rather than raising.
			v.reg[dst] = 0xFFFF
			break
		}
		v.reg[dst] = Word(b)

	case OpNoop:
		v.ip = ip + 1

	default:
		v.fatal(&DecodeError{IP: ip, Opcode: Word(opcode)})
		return
	}

	v.lastOp = opcode
}

func (v *VM) fatal(err error) {
	v.halted.Store(true)
	v.stopped = true
	v.err = err
}

func boolWord(b bool) Word {
	if b {
		return 1
	}
	return 0
}
