package debugger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synacor/internal/vm"
)

func newDebugger(t *testing.T, image []vm.Word) (*Debugger, *vm.VM, *vm.CommandEndpoint, *vm.EventEndpoint, chan struct{}) {
	t.Helper()
	target := vm.New(nil, nil)
	target.Load(image)

	cmds, events := vm.NewEndpoints()
	dbg := New(target, cmds, vm.Word(len(image)))

	done := make(chan struct{})
	go func() {
		target.Run(cmds, events)
		close(done)
	}()

	return dbg, target, cmds, events, done
}

func TestShowRegistersFormatsAllEight(t *testing.T) {
	dbg, target, _, _, done := newDebugger(t, []vm.Word{0})
	defer func() { target.Halt(); <-done }()

	var buf bytes.Buffer
	dbg.ShowRegisters(&buf)

	out := buf.String()
	assert.Contains(t, out, "r0")
	assert.Contains(t, out, "r7")
}

func TestDisassembleCentersOnBreakpoint(t *testing.T) {
	image := []vm.Word{21, 21, 21, 9, 0x8000, 10, 20000, 0}
	target := vm.New(nil, nil)
	target.Load(image)
	target.BreakOn(3) // set before Run starts, so Run stops there after the three NOOPs

	cmds, events := vm.NewEndpoints()
	dbg := New(target, cmds, vm.Word(len(image)))

	done := make(chan struct{})
	go func() {
		target.Run(cmds, events)
		close(done)
	}()
	defer func() { target.Halt(); <-done }()

	ev, ok := events.Recv()
	require.True(t, ok)
	assert.Equal(t, vm.EventStopped, ev.Kind)

	var buf bytes.Buffer
	dbg.Disassemble(&buf)
	assert.Contains(t, buf.String(), "=>")
}

func TestListBreakpointsPublishesSortedAddresses(t *testing.T) {
	target := vm.New(nil, nil)
	target.Load([]vm.Word{21, 0})
	target.BreakOn(0) // stop immediately so the run loop stays put while we issue commands

	cmds, events := vm.NewEndpoints()
	dbg := New(target, cmds, 2)

	done := make(chan struct{})
	go func() {
		target.Run(cmds, events)
		close(done)
	}()
	defer func() { target.Halt(); <-done }()

	ev, ok := events.Recv()
	require.True(t, ok)
	require.Equal(t, vm.EventStopped, ev.Kind)

	dbg.BreakOn(0x10)
	dbg.BreakOn(0x02)
	dbg.ListBreakpoints()

	var got vm.Event
	for i := 0; i < 8; i++ {
		ev, ok := events.Recv()
		require.True(t, ok)
		if ev.Kind == vm.EventBreakpoints {
			got = ev
			break
		}
	}

	assert.Equal(t, "0000 0002 0010", got.Breakpoints)
}
