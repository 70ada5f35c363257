package storage

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-br/chamados-service/internal/config"
)

func newTestStore(t *testing.T) BlobStore {
	t.Helper()
	store, err := NewDiskStore(config.StorageConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestNewKeyShape(t *testing.T) {
	key := NewKey(42, "Relatório Final.PDF")
	parts := strings.Split(key, "/")
	require.Len(t, parts, 3)
	assert.Equal(t, "42", parts[0])
	assert.Len(t, parts[1], 8, "yyyymmdd date segment")
	_, err := strconv.Atoi(parts[1])
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(parts[2], ".pdf"), "extension preserved lowercased: %s", parts[2])

	// Keys are opaque: two uploads of the same file never collide.
	assert.NotEqual(t, key, NewKey(42, "Relatório Final.PDF"))
}

func TestSaveOpenDeleteRoundTrip(t *testing.T) {
	store := newTestStore(t)
	content := []byte("conteúdo do anexo")
	key := NewKey(1, "nota.txt")

	written, err := store.Save(key, bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), written)

	reader, err := store.Open(key)
	require.NoError(t, err)
	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, content, got)

	require.NoError(t, store.Delete(key))
	_, err = store.Open(key)
	assert.Error(t, err)

	// Deleting a missing key is a no-op.
	assert.NoError(t, store.Delete(key))
}

func TestPathTraversalRejected(t *testing.T) {
	store := newTestStore(t)
	for _, key := range []string{"../fora.txt", "1/../../fora.txt", "/etc/passwd"} {
		_, err := store.Save(key, bytes.NewReader([]byte("x")))
		assert.Error(t, err, "key %q", key)
		_, err = store.Open(key)
		assert.Error(t, err, "key %q", key)
		assert.Error(t, store.Delete(key), "key %q", key)
	}
}
