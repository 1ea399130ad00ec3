package runner

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synacor/internal/vm"
)

func TestArgOrFallsBackPastEnd(t *testing.T) {
	args := []string{"a", "b"}
	assert.Equal(t, "a", argOr(args, 0, "z"))
	assert.Equal(t, "b", argOr(args, 1, "z"))
	assert.Equal(t, "z", argOr(args, 2, "z"))
}

func TestParseHexAcceptsOptionalPrefix(t *testing.T) {
	v, ok := parseHex("1a")
	assert.True(t, ok)
	assert.Equal(t, vm.Word(0x1a), v)

	v, ok = parseHex("0x1A")
	assert.True(t, ok)
	assert.Equal(t, vm.Word(0x1a), v)

	_, ok = parseHex("")
	assert.False(t, ok)

	_, ok = parseHex("not-hex")
	assert.False(t, ok)
}

func TestDebugCommandsVocabularyMembership(t *testing.T) {
	assert.True(t, debugCommands["reg"])
	assert.False(t, debugCommands["walk"])
	assert.False(t, debugCommands["north"])
}

// dispatch lowercases the first token before matching debugCommands,
// so "REG"/"Reg"/"reg" all route the same way; checking only the
// boolean return (the "keep going" contract Run relies on) since the
// PTY write itself needs a live slave reader to observe.
func TestDispatchReturnsFalseOnQuit(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()

	assert.False(t, r.dispatch("quit"))
	assert.False(t, r.dispatch("q"))
	assert.False(t, r.dispatch("exit"))
}

func TestDispatchKeepsGoingOnDebugCommands(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()

	assert.True(t, r.dispatch("reg"))
	assert.True(t, r.dispatch("stack"))
	assert.True(t, r.dispatch("b 10"))
	assert.True(t, r.dispatch("clear 10"))
}

func TestDispatchMatchesDebugCommandsCaseInsensitively(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()

	assert.True(t, r.dispatch("REG"))
	assert.False(t, r.dispatch("QUIT"))
}

// restart from a named snapshot must resume from its exact ip,
// registers and stack, not merely reload its memory image from ip 0.
func TestRestartFromSnapshotRestoresFullState(t *testing.T) {
	image := []vm.Word{9, 0x8000, 10, 20000, 0} // ADD r0, 10, 20000; HALT
	r, err := New(image, 0, nil)
	if err != nil {
		t.Skipf("runner requires a real pty/readline terminal: %v", err)
	}
	defer r.Close()

	waitHalted(t, r.target)
	require.Equal(t, vm.Word(20010), r.target.Registers()[0])
	require.Equal(t, vm.Word(4), r.target.IP())

	path := filepath.Join(t.TempDir(), "snap")
	require.NoError(t, r.saveSnapshot(path))

	r.restart(path)

	waitHalted(t, r.target)
	assert.Equal(t, vm.Word(20010), r.target.Registers()[0])
	assert.Equal(t, vm.Word(4), r.target.IP())
}

func waitHalted(t *testing.T, target interface{ Halted() bool }) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !target.Halted() {
		if time.Now().After(deadline) {
			t.Fatal("vm never halted")
		}
		time.Sleep(time.Millisecond)
	}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := New([]vm.Word{0}, 0, nil)
	if err != nil {
		t.Skipf("runner requires a real pty/readline terminal: %v", err)
	}
	return r
}
