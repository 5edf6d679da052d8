package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectStoreSaveStreamIsExclusive(t *testing.T) {
	store, err := NewObjectStore(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	path, err := store.SaveStream("BSCS-1st/data-structures/05_03_07.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	require.Equal(t, "BSCS-1st/data-structures/05_03_07.pdf", path)

	_, err = store.SaveStream(path, strings.NewReader("other-bytes"))
	require.Error(t, err)

	file, err := store.Open(path)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
}

func TestObjectStoreRemoveIsBestEffort(t *testing.T) {
	store, err := NewObjectStore(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	path, err := store.SaveStream("a/b.pdf", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	// second remove of a missing file stays silent
	require.NoError(t, store.Remove(path))
}

func TestObjectStorePublicURL(t *testing.T) {
	store, err := NewObjectStore(t.TempDir(), "http://localhost:8080/files/")
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8080/files/a/b.pdf", store.PublicURL("a/b.pdf"))
}
