// Package runner implements the interactive play/debug loop: a
// frontend REPL bridged over a real pseudo-terminal (via
// github.com/creack/pty, so guest I/O still flows through a genuine
// tty) to a worker goroutine running the VM, the two sharing the vm
// package's in-process Command/Event endpoints instead of a
// cross-process socket.
package runner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/creack/pty"
	"github.com/sirupsen/logrus"

	"synacor/internal/debugger"
	"synacor/internal/vm"
)

// unbufferedByteWriter adapts an *os.File to vm.ByteWriter with a
// Write call per byte, keeping guest output in program order with no
// batching delay.
type unbufferedByteWriter struct{ f *os.File }

func (w unbufferedByteWriter) WriteByte(b byte) error {
	_, err := w.f.Write([]byte{b})
	return err
}

// debugCommands is the fixed set of first tokens that are routed to
// the worker instead of the PTY.
var debugCommands = map[string]bool{
	"save": true, "load": true, "restore": true,
	"restart": true, "reset": true,
	"di": true, "dis": true, "disassemble": true,
	"reg": true, "regs": true, "registers": true,
	"si": true, "step": true,
	"c": true, "cont": true,
	"b": true, "break": true, "clear": true,
	"fin": true, "finish": true,
	"m": true, "mem": true, "memory": true,
	"stack": true,
	"write": true,
	"q": true, "quit": true, "exit": true,
}

// Runner owns the frontend REPL and the worker's VM, image and PTY.
// restart/reset tear down and recreate everything rooted at the VM.
type Runner struct {
	image   []vm.Word
	codeEnd vm.Word
	log     *logrus.Logger

	rl *readline.Instance

	ptyMaster *os.File
	ptySlave  *os.File

	target *vm.VM
	dbg    *debugger.Debugger
	cmds   *vm.CommandEndpoint
	events *vm.EventEndpoint
	done   chan struct{}

	lastLine string
}

// New prepares a Runner around image, with codeEnd forwarded to
// "disassemble". It does not start the worker; call Run.
func New(image []vm.Word, codeEnd vm.Word, log *logrus.Logger) (*Runner, error) {
	rl, err := readline.New("> ")
	if err != nil {
		return nil, fmt.Errorf("runner: readline init: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}
	r := &Runner{image: image, codeEnd: codeEnd, log: log, rl: rl}
	if err := r.spawnWorker(r.image, nil); err != nil {
		rl.Close()
		return nil, err
	}
	return r, nil
}

// spawnWorker opens a fresh PTY, binds it as the VM's stdin, loads
// image into a fresh VM and starts its Run loop on a new goroutine.
// The PTY slave becomes the guest's stdin equivalent. If snap is
// non-nil, its full state (ip, registers, stack, memory) is restored
// over the freshly loaded image, so a restart from a snapshot resumes
// exactly where it left off rather than just reusing its memory.
func (r *Runner) spawnWorker(image []vm.Word, snap *vm.Snapshot) error {
	master, slave, err := pty.Open()
	if err != nil {
		return fmt.Errorf("runner: resetWorker: open pty: %w", err)
	}

	cmds, events := vm.NewEndpoints()
	target := vm.New(unbufferedByteWriter{os.Stdout}, bufio.NewReader(slave))
	target.Load(image)
	if snap != nil {
		target.Restore(*snap)
	}

	r.ptyMaster = master
	r.ptySlave = slave
	r.target = target
	r.cmds = cmds
	r.events = events
	r.dbg = debugger.New(target, cmds, r.codeEnd)
	r.done = make(chan struct{})

	go func(t *vm.VM, c *vm.CommandEndpoint, e *vm.EventEndpoint, done chan struct{}) {
		t.Run(c, e)
		close(done)
	}(target, cmds, events, r.done)

	return nil
}

// teardownWorker signals halt and waits for the VM goroutine to exit,
// then closes the PTY pair.
func (r *Runner) teardownWorker() {
	if r.target == nil {
		return
	}
	r.target.Halt()
	<-r.done

	r.ptyMaster.Close()
	r.ptySlave.Close()
}

// Close releases the readline instance and the worker's resources.
func (r *Runner) Close() error {
	r.teardownWorker()
	return r.rl.Close()
}

// Run drives the frontend loop until "quit"/"exit" or EOF.
func (r *Runner) Run() error {
	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			line = r.lastLine
		} else {
			r.lastLine = line
		}
		if line == "" {
			continue
		}

		if !r.dispatch(line) {
			break
		}
	}

	r.teardownWorker()
	return nil
}

// dispatch classifies one input line and routes it; it returns false
// when the frontend loop should exit.
func (r *Runner) dispatch(line string) bool {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	if !debugCommands[name] {
		fmt.Fprintln(r.ptyMaster, line)
		return true
	}

	switch name {
	case "q", "quit", "exit":
		return false

	case "save":
		path := argOr(args, 0, "")
		if err := r.saveSnapshot(path); err != nil {
			r.log.WithError(err).Error("save failed")
		}

	case "load", "restore":
		path := argOr(args, 0, "")
		if err := r.loadSnapshot(path); err != nil {
			r.log.WithError(err).Error("load failed")
		}

	case "restart", "reset":
		r.restart(argOr(args, 0, ""))

	case "di", "dis", "disassemble":
		if len(args) > 0 {
			if addr, ok := parseHex(args[0]); ok {
				r.dbg.Disassemble(os.Stdout, addr)
				break
			}
		}
		r.dbg.Disassemble(os.Stdout)

	case "reg", "regs", "registers":
		r.dbg.ShowRegisters(os.Stdout)

	case "si", "step":
		r.dbg.Step()

	case "c", "cont":
		r.dbg.Resume()

	case "fin", "finish":
		r.dbg.StepOut()

	case "b", "break":
		if addr, ok := parseHex(argOr(args, 0, "")); ok {
			r.dbg.BreakOn(addr)
		} else {
			r.dbg.ListBreakpoints()
		}

	case "clear":
		if addr, ok := parseHex(argOr(args, 0, "")); ok {
			r.dbg.ClearBreakpoint(addr)
		}

	case "m", "mem", "memory":
		addr, _ := parseHex(argOr(args, 0, "0"))
		size := 16
		if len(args) > 1 {
			if n, err := strconv.Atoi(args[1]); err == nil {
				size = n
			}
		}
		r.dbg.DumpMemory(os.Stdout, addr, size)

	case "stack":
		r.dbg.ShowStack(os.Stdout, 8)

	case "write":
		r.dispatchWrite(args)

	default:
		r.log.WithField("command", name).Warn("malformed debug command")
	}

	return true
}

// dispatchWrite implements "write r3 7FFF" (register) and
// "write 1234 00AB" (memory).
func (r *Runner) dispatchWrite(args []string) {
	if len(args) != 2 {
		r.log.Warn("write: expected <target> <value>")
		return
	}
	val, ok := parseHex(args[1])
	if !ok {
		r.log.Warn("write: bad value")
		return
	}
	if strings.HasPrefix(strings.ToLower(args[0]), "r") {
		n, err := strconv.Atoi(args[0][1:])
		if err != nil || n < 0 || n >= vm.NumRegisters {
			r.log.Warn("write: bad register")
			return
		}
		r.dbg.SetRegister(n, val)
		return
	}
	addr, ok := parseHex(args[0])
	if !ok {
		r.log.Warn("write: bad address")
		return
	}
	r.dbg.WriteMemory(addr, val)
}

// restart tears down the worker, then either reloads the base image or
// fully restores a named snapshot (ip, registers, stack and memory,
// not just memory), and spawns a fresh worker bound to fresh endpoints.
func (r *Runner) restart(snapshotPath string) {
	r.teardownWorker()

	var snap *vm.Snapshot
	if snapshotPath != "" {
		loaded, err := vm.LoadSnapshot(snapshotPath)
		if err != nil {
			r.log.WithError(err).Error("restart: snapshot load failed, using base image")
		} else {
			snap = &loaded
		}
	}

	if err := r.spawnWorker(r.image, snap); err != nil {
		r.log.WithError(err).Error("restart: resetWorker failed")
	}
}

func (r *Runner) saveSnapshot(path string) error {
	if path == "" {
		path = vm.NextSnapshotPath("snapshot-")
	}
	return vm.SaveSnapshot(path, r.target.Save())
}

func (r *Runner) loadSnapshot(path string) error {
	snap, err := vm.LoadSnapshot(path)
	if err != nil {
		return err
	}
	r.target.Restore(snap)
	return nil
}

func argOr(args []string, i int, fallback string) string {
	if i < len(args) {
		return args[i]
	}
	return fallback
}

func parseHex(s string) (vm.Word, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, false
	}
	return vm.Word(n), true
}
