package vm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	target := New(nil, nil)
	target.Load([]Word{9, 0x8000, 10, 20000, 0})
	target.Step()

	snap := target.Save()

	path := filepath.Join(t.TempDir(), "snap0000")
	require.NoError(t, SaveSnapshot(path, snap))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)

	assert.Equal(t, snap.Reg, loaded.Reg)
	assert.Equal(t, snap.IP, loaded.IP)
	assert.Equal(t, snap.SP, loaded.SP)
	assert.Equal(t, snap.Stack, loaded.Stack)
	assert.Equal(t, snap.Mem, loaded.Mem)
}

func TestLoadSnapshotRejectsBadSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad")
	require.NoError(t, os.WriteFile(path, []byte("NOTASNAP"), 0o600))

	_, err := LoadSnapshot(path)
	assert.Error(t, err)
}

func TestLoadSnapshotRejectsShortRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short")
	body := append(append([]byte{}, snapshotSignature[:]...), 0x01, 0x02)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	_, err := LoadSnapshot(path)
	assert.Error(t, err)
}

func TestNextSnapshotPathSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "s")

	require.NoError(t, os.WriteFile(prefix+"0000", []byte{}, 0o600))
	require.NoError(t, os.WriteFile(prefix+"0001", []byte{}, 0o600))

	got := NextSnapshotPath(prefix)
	assert.Equal(t, prefix+"0002", got)
}
