package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vfs "github.com/ferortega/cf4j-sub001/internal/fs"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	name := "users/cosine.snap"
	data := []byte("CF4JSNAP similarity rows for the user side")

	w, err := store.Create(ctx, name)
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Not visible until Close.
	_, err = store.Open(ctx, name)
	require.ErrorIs(t, err, ErrNotFound)
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, names)

	require.NoError(t, w.Close())
	_, err = os.Stat(filepath.Join(tmpDir, "users", "cosine.snap"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 10)
	n, err = blob.ReadAt(ctx, buf, 9)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	require.Equal(t, "similarity", string(buf))

	mapped, err := blob.(Mappable).Bytes()
	require.NoError(t, err)
	require.Equal(t, data, mapped)

	require.NoError(t, store.Put(ctx, "items/jmsd.snap", []byte("x")))

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"items/jmsd.snap", "users/cosine.snap"}, names)

	names, err = store.List(ctx, "users/")
	require.NoError(t, err)
	require.Equal(t, []string{"users/cosine.snap"}, names)

	require.NoError(t, store.Delete(ctx, "items/jmsd.snap"))
	require.NoError(t, store.Delete(ctx, "items/jmsd.snap"))
	_, err = store.Open(ctx, "items/jmsd.snap")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_ReadRange_Boundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "boundary.bin", []byte("0123456789")))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	r, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "0123456789", string(content))
	require.NoError(t, r.Close())

	r, err = blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))

	_, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)

	n, err := blob.ReadAt(ctx, make([]byte, 4), 8)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLocalStore_MissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "absent"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_Canceled(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Create(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Open(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStore_Abort(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	w, err := store.Create(ctx, "partial.snap")
	require.NoError(t, err)
	_, err = w.Write([]byte("half a row"))
	require.NoError(t, err)
	require.NoError(t, Abort(w))

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = store.Open(ctx, "partial.snap")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_WriteFaults(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		fault vfs.Fault
	}{
		{"write", vfs.Fault{FailAfterBytes: 8}},
		{"sync", vfs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"close", vfs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"rename", vfs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			ffs := vfs.NewFaultyFS(nil)
			ffs.AddRule(".tmp-", tt.fault)
			store := newLocalStore(root, ffs)

			err := store.Put(ctx, "dir/blob", bytes.Repeat([]byte{7}, 32))
			require.ErrorIs(t, err, vfs.ErrInjected)
			assert.Equal(t, 1, ffs.Opens())

			// Neither the blob nor its temporary file survive.
			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, names)
			entries, err := os.ReadDir(filepath.Join(root, "dir"))
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}
