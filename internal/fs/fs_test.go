package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "a.tmp")
	f, err := lfs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	require.NoError(t, err)
	assert.Equal(t, path, f.Name())

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	_, err = lfs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	assert.ErrorIs(t, err, os.ErrExist)

	final := filepath.Join(dir, "a")
	require.NoError(t, lfs.Rename(path, final))
	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, lfs.Remove(final))
	_, err = os.Stat(final)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFaultyFSWriteLimit(t *testing.T) {
	ffs := NewFaultyFS(nil)
	ffs.AddRule("limited", Fault{FailAfterBytes: 4})

	dir := t.TempDir()
	f, err := ffs.OpenFile(filepath.Join(dir, "limited.bin"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = f.Write([]byte("de"))
	assert.ErrorIs(t, err, ErrInjected)

	other, err := ffs.OpenFile(filepath.Join(dir, "free.bin"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = other.Write(make([]byte, 64))
	assert.NoError(t, err)
	require.NoError(t, other.Close())
	assert.Equal(t, 2, ffs.Opens())
}

func TestFaultyFSSyncCloseRename(t *testing.T) {
	custom := errors.New("disk on fire")
	ffs := NewFaultyFS(nil)
	ffs.AddRule("sync", Fault{FailAfterBytes: -1, FailOnSync: true, Err: custom})
	ffs.AddRule("close", Fault{FailAfterBytes: -1, FailOnClose: true})
	ffs.AddRule("rename", Fault{FailAfterBytes: -1, FailOnRename: true})

	dir := t.TempDir()

	f, err := ffs.OpenFile(filepath.Join(dir, "sync.bin"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), custom)
	require.NoError(t, f.Close())

	f, err = ffs.OpenFile(filepath.Join(dir, "close.bin"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Close(), ErrInjected)

	src := filepath.Join(dir, "rename.bin")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	assert.ErrorIs(t, ffs.Rename(src, filepath.Join(dir, "dst")), ErrInjected)
	require.NoError(t, ffs.Remove(src))
}
