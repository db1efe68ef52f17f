package fsstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/delimtools/store"
)

func writeDoc(t *testing.T, s *Store, doc store.Document, content string) (store.DocumentID, error) {
	t.Helper()
	id, w, err := s.Create(context.Background(), doc)
	if err != nil {
		return "", err
	}
	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	return id, w.Close()
}

func TestStore_CreateAndOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "reports"), 0o750))
	s, err := New(dir)
	require.NoError(t, err)

	id, w, err := s.Create(context.Background(), store.Document{Name: "q1", Extension: "csv", Folder: "reports"})
	require.NoError(t, err)
	assert.Equal(t, store.DocumentID("reports/q1.csv"), id)

	_, err = io.WriteString(w, "a,b\n")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "reports", "q1.csv"))
	assert.True(t, os.IsNotExist(err), "document should not exist before Close")

	require.NoError(t, w.Close())

	rc, err := s.Open(context.Background(), id)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(b))

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files should be left behind")
}

func TestStore_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := New(dir, WithUniqueNames())
	require.NoError(t, err)
	_, err = writeDoc(t, s, store.Document{Name: "taken", Extension: "csv"}, "x")
	require.NoError(t, err)

	t.Run("missing folder", func(t *testing.T) {
		t.Parallel()
		_, _, err := s.Create(context.Background(), store.Document{Name: "a", Extension: "csv", Folder: "nope"})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
	t.Run("folder escaping the root", func(t *testing.T) {
		t.Parallel()
		_, _, err := s.Create(context.Background(), store.Document{Name: "a", Extension: "csv", Folder: "../up"})
		assert.ErrorIs(t, err, store.ErrInvalidName)
	})
	t.Run("name conflict", func(t *testing.T) {
		t.Parallel()
		_, _, err := s.Create(context.Background(), store.Document{Name: "taken", Extension: "csv"})
		assert.ErrorIs(t, err, store.ErrNameConflict)
	})
	t.Run("missing document", func(t *testing.T) {
		t.Parallel()
		_, err := s.Open(context.Background(), "missing.csv")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
	t.Run("folder is not a document", func(t *testing.T) {
		t.Parallel()
		_, err := s.Open(context.Background(), ".")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.Open(ctx, "taken.csv")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStore_ReplaceAndAbort(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	_, err = writeDoc(t, s, store.Document{Name: "doc", Extension: "txt"}, "first")
	require.NoError(t, err)
	_, err = writeDoc(t, s, store.Document{Name: "doc", Extension: "txt"}, "second")
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "doc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))

	_, w, err := s.Create(context.Background(), store.Document{Name: "doc", Extension: "txt"})
	require.NoError(t, err)
	_, err = io.WriteString(w, "third")
	require.NoError(t, err)
	require.NoError(t, w.(store.Aborter).Abort())

	b, err = os.ReadFile(filepath.Join(dir, "doc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(b), "aborted content must not replace the document")
}

func TestStore_Quota(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir(), WithQuota(10))
	require.NoError(t, err)

	_, err = writeDoc(t, s, store.Document{Name: "a", Extension: "txt"}, "12345678")
	require.NoError(t, err)
	_, err = writeDoc(t, s, store.Document{Name: "b", Extension: "txt"}, "1234")
	assert.ErrorIs(t, err, store.ErrStorageLimit)

	used, err := s.Usage()
	require.NoError(t, err)
	assert.Equal(t, int64(8), used)
}

func TestNewReadOnly(t *testing.T) {
	t.Parallel()

	s := NewReadOnly(fstest.MapFS{
		"data/users.csv": &fstest.MapFile{Data: []byte("id,name\n1,alice\n")},
	})

	rc, err := s.Open(context.Background(), "data/users.csv")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,alice\n", string(b))

	_, _, err = s.Create(context.Background(), store.Document{Name: "x", Extension: "csv", Folder: "data"})
	assert.ErrorIs(t, err, store.ErrPermissionDenied)
}
