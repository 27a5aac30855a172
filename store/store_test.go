package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemStoreGetMissReturnsPersistMiss(t *testing.T) {
	s := NewMemStore("incrfonts/NotoSansCJK")
	_, err := s.Get(context.Background(), SlotBase)
	require.Error(t, err)
}

func TestMemStorePutGetRoundTrip(t *testing.T) {
	s := NewMemStore("incrfonts/NotoSansCJK")
	require.NoError(t, s.Put(context.Background(), SlotCharList, []byte{1, 2, 3}))
	got, err := s.Get(context.Background(), SlotCharList)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)
}

func TestFileStorePutGetRoundTrip(t *testing.T) {
	root := t.TempDir()
	fs, err := OpenFileStore(root, "incrfonts/NotoSansCJK", nil)
	require.NoError(t, err)
	defer fs.Close()

	require.NoError(t, fs.Put(context.Background(), SlotBase, []byte("base-bytes")))
	got, err := fs.Get(context.Background(), SlotBase)
	require.NoError(t, err)
	require.Equal(t, []byte("base-bytes"), got)

	_, err = fs.Get(context.Background(), SlotCharList)
	require.Error(t, err)
}

func TestFileStoreSchemaChangeDropsSlots(t *testing.T) {
	root := t.TempDir()
	fs, err := OpenFileStore(root, "incrfonts/NotoSansCJK", nil)
	require.NoError(t, err)
	require.NoError(t, fs.Put(context.Background(), SlotBase, []byte("stale")))
	require.NoError(t, fs.Close())

	versionPath := filepath.Join(root, "incrfonts/NotoSansCJK", ".version")
	require.NoError(t, os.WriteFile(versionPath, []byte("0"), 0o644))

	fs2, err := OpenFileStore(root, "incrfonts/NotoSansCJK", nil)
	require.NoError(t, err)
	_, err = fs2.Get(context.Background(), SlotBase)
	require.Error(t, err)
}
