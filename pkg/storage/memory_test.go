package storage_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/storage"
)

func TestMemoryPutGet(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()

	info, err := store.Put(t.Context(), strings.NewReader("hello"), 5,
		storage.WithPrefix("uploads"),
		storage.WithContentType("text/plain"),
	)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(info.Key, "uploads/"))
	require.Equal(t, "text/plain", info.ContentType)

	body, err := store.Get(t.Context(), info.Key)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	_, err = store.Get(t.Context(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryExplicitKey(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()
	info, err := store.Put(t.Context(), strings.NewReader("x"), 1, storage.WithKey("exact/key.txt"))
	require.NoError(t, err)
	require.Equal(t, "exact/key.txt", info.Key)
}

func TestMemoryValidation(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()
	_, err := store.Put(t.Context(), strings.NewReader("data"), 4,
		storage.WithValidation(storage.MaxSize(2)))
	require.ErrorIs(t, err, storage.ErrFileTooLarge)
	require.Zero(t, store.Len())
}

func TestMemoryListAndDelete(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()
	for _, key := range []string{"a/1", "a/2", "b/1"} {
		_, err := store.Put(t.Context(), strings.NewReader("x"), 1, storage.WithKey(key))
		require.NoError(t, err)
	}

	objects, err := store.List(t.Context(), "a/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	require.Equal(t, "a/1", objects[0].Key)
	require.Equal(t, "a/2", objects[1].Key)
	require.False(t, objects[0].LastModified.IsZero())

	require.NoError(t, store.Delete(t.Context(), "a/1"))
	require.NoError(t, store.Delete(t.Context(), "a/1")) // idempotent

	objects, err = store.List(t.Context(), "a/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	require.Equal(t, "a/2", objects[0].Key)
}

func TestMemoryURL(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory(storage.WithBaseURL("https://cdn.test"))
	_, err := store.Put(t.Context(), strings.NewReader("x"), 1, storage.WithKey("k"))
	require.NoError(t, err)

	u, err := store.URL(t.Context(), "k")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/k", u)

	_, err = store.URL(t.Context(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
