package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Snapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put("b", []byte{1, 2, 3})

	blob, err := store.Open(ctx, "b")
	require.NoError(t, err)

	store.Append("b", []byte{4})
	store.WriteAt("b", []byte{9}, 0)

	data, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	data, err = ReadFile(ctx, store, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 2, 3, 4}, data)
}

func TestMemoryStore_WriteAtGrows(t *testing.T) {
	store := NewMemoryStore()
	store.WriteAt("b", []byte{7}, 3)

	data, err := ReadFile(context.Background(), store, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 7}, data)
}

func TestMemoryStore_ListDelete(t *testing.T) {
	store := NewMemoryStore()
	store.Put("x_sd.bmap", nil)
	store.Put("x_s.bmap", nil)
	store.Put("config.yaml", nil)

	assert.Equal(t, []string{"x_s.bmap", "x_sd.bmap"}, store.List("x_"))

	store.Delete("x_s.bmap")
	_, err := store.Open(context.Background(), "x_s.bmap")
	assert.ErrorIs(t, err, ErrNotFound)
}

// shortBlob reports more bytes than it can deliver.
type shortBlob struct {
	memoryBlob
	size int64
}

func (b *shortBlob) Size() int64 { return b.size }

func TestReadAll_ShortRead(t *testing.T) {
	b := &shortBlob{memoryBlob: memoryBlob{data: []byte{1, 2, 3}}, size: 5}

	buf := make([]byte, 5)
	n, err := b.ReadAt(context.Background(), buf, 0)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 3, n)

	data, err := ReadAll(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestNewReader(t *testing.T) {
	ctx := context.Background()
	b := &memoryBlob{data: []byte("abcdefgh")}

	data, err := io.ReadAll(NewReader(ctx, b, 5))
	require.NoError(t, err)
	assert.Equal(t, "abcde", string(data))

	data, err = io.ReadAll(NewReader(ctx, b, 100))
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", string(data))
}
