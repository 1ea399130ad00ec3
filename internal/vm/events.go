package vm

import "sync/atomic"

// CommandKind identifies one of the fixed debugger -> VM control
// messages.
type CommandKind int

const (
	CmdStep CommandKind = iota
	CmdStepOut
	CmdStop
	CmdResume
	CmdInfoBreakpoints
	CmdSetBreakpoint
	CmdClearBreakpoint
	CmdWriteRegister
	CmdWriteMemory
)

// Command is a single point-to-point message sent from the debugger to
// the VM's control endpoint.
type Command struct {
	Kind CommandKind
	Addr Word // SetBreakpoint / ClearBreakpoint / WriteMemory target
	Reg  int  // WriteRegister target
	Val  Word // WriteRegister / WriteMemory value
}

// EventKind identifies one of the fixed VM -> debugger publish events.
type EventKind int

const (
	EventStopped EventKind = iota
	EventBreakpoints
)

// Event is a single message published by the VM to its event endpoint.
type Event struct {
	Kind        EventKind
	Breakpoints string // space-separated hex addresses, EventBreakpoints only
}

// boundedChan is a bounded, single-sender-many-receiver channel
// wrapper: a fixed-capacity buffered channel whose sends never block
// the caller once full, used here for the debugger's command/event
// protocol.
type boundedChan[T any] struct {
	ch       chan T
	count    atomic.Int32
	capacity int32
}

func newBoundedChan[T any](capacity int32) *boundedChan[T] {
	return &boundedChan[T]{ch: make(chan T, capacity), capacity: capacity}
}

// send enqueues data, reporting false without blocking if the channel
// is already at capacity.
func (b *boundedChan[T]) send(data T) bool {
	if b.count.Add(1) > b.capacity {
		b.count.Add(-1)
		return false
	}
	b.ch <- data
	return true
}

// tryReceive returns the next queued value without blocking.
func (b *boundedChan[T]) tryReceive() (T, bool) {
	select {
	case v := <-b.ch:
		b.count.Add(-1)
		return v, true
	default:
		var zero T
		return zero, false
	}
}

func (b *boundedChan[T]) close() {
	close(b.ch)
}

// CommandEndpoint is the shared point-to-point channel carrying
// control messages: the debugger calls Send, the VM's Run loop calls
// tryRecv.
type CommandEndpoint struct {
	c *boundedChan[Command]
}

// EventEndpoint is the shared publish channel carrying VM state
// transitions: the VM calls publish, the debugger/runner calls Recv.
type EventEndpoint struct {
	c *boundedChan[Event]
}

// NewEndpoints creates a paired command/event channel set. Capacity is
// generous since commands/events are small and infrequent relative to
// instruction dispatch.
func NewEndpoints() (*CommandEndpoint, *EventEndpoint) {
	return &CommandEndpoint{c: newBoundedChan[Command](64)}, &EventEndpoint{c: newBoundedChan[Event](64)}
}

// Send delivers a command to the VM's control endpoint. Used by the debugger.
func (e *CommandEndpoint) Send(cmd Command) bool { return e.c.send(cmd) }

func (e *CommandEndpoint) tryRecv() (Command, bool) { return e.c.tryReceive() }

func (e *EventEndpoint) publish(ev Event) bool { return e.c.send(ev) }

// Recv is a blocking receive used by the debugger/runner to observe
// published events.
func (e *EventEndpoint) Recv() (Event, bool) {
	v, ok := <-e.c.ch
	if ok {
		e.c.count.Add(-1)
	}
	return v, ok
}

// TryRecv is a nonblocking receive variant for event-loop style consumers.
func (e *EventEndpoint) TryRecv() (Event, bool) { return e.c.tryReceive() }
