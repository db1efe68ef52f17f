// Package fsstore implements store.Store on a directory tree.
//
// Folders are directories relative to the store root and document ids are slash
// separated paths relative to the root. New documents are written to a temporary
// file that is renamed into place when the writer is closed, so readers never see
// partial content. A store built from an fs.FS is read-only.
package fsstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/nao1215/delimtools/store"
)

const defaultBufSize = 64 * 1024

// Store is a store.Store backed by a directory or an fs.FS.
type Store struct {
	root        string
	fsys        fs.FS
	readOnly    bool
	uniqueNames bool
	quota       int64
	permFile    os.FileMode
	bufSize     int
}

// Option configures a writable Store.
type Option func(*Store)

// WithUniqueNames rejects a document whose file name already exists with store.ErrNameConflict.
// Without it an existing document is replaced.
func WithUniqueNames() Option {
	return func(s *Store) {
		s.uniqueNames = true
	}
}

// WithQuota limits the total size in bytes of the files under the root.
func WithQuota(limit int64) Option {
	return func(s *Store) {
		s.quota = limit
	}
}

// WithFileMode sets the permission bits of created documents.
func WithFileMode(mode os.FileMode) Option {
	return func(s *Store) {
		s.permFile = mode
	}
}

var _ store.Store = (*Store)(nil)

// New returns a writable store rooted at dir. The directory is created if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store root: %w", mapOSError(err))
	}
	s := &Store{
		root:     dir,
		fsys:     os.DirFS(dir),
		permFile: 0o640,
		bufSize:  defaultBufSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewReadOnly returns a store serving documents from fsys. Create always fails
// with store.ErrPermissionDenied.
func NewReadOnly(fsys fs.FS) *Store {
	return &Store{fsys: fsys, readOnly: true}
}

// DocumentIDFor returns the id of the document named fileName in folder.
func DocumentIDFor(folder store.FolderID, fileName string) store.DocumentID {
	return store.DocumentID(path.Join(string(folder), fileName))
}

// Open implements store.Store.
func (s *Store) Open(ctx context.Context, id store.DocumentID) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := cleanPath(string(id))
	if err != nil {
		return nil, err
	}
	f, err := s.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", store.SanitizeForLog(name), mapOSError(err))
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", store.SanitizeForLog(name), mapOSError(err))
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a folder", store.ErrNotFound, store.SanitizeForLog(name))
	}
	return f, nil
}

// Create implements store.Store. The folder must already exist.
func (s *Store) Create(ctx context.Context, doc store.Document) (store.DocumentID, io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if s.readOnly {
		return "", nil, fmt.Errorf("%w: store is read-only", store.ErrPermissionDenied)
	}
	if err := store.ValidateDocument(doc); err != nil {
		return "", nil, err
	}

	folder := "."
	if doc.Folder != "" {
		var err error
		if folder, err = cleanPath(string(doc.Folder)); err != nil {
			return "", nil, err
		}
	}
	dir := filepath.Join(s.root, filepath.FromSlash(folder))
	info, err := os.Stat(dir)
	if err != nil {
		return "", nil, fmt.Errorf("folder %s: %w", store.SanitizeForLog(folder), mapOSError(err))
	}
	if !info.IsDir() {
		return "", nil, fmt.Errorf("%w: %s is not a folder", store.ErrNotFound, store.SanitizeForLog(folder))
	}

	dest := filepath.Join(dir, doc.FileName())
	if s.uniqueNames {
		if _, err := os.Stat(dest); err == nil {
			return "", nil, fmt.Errorf("%w: %s", store.ErrNameConflict, store.SanitizeForLog(doc.FileName()))
		}
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary file: %w", mapOSError(err))
	}
	_ = os.Chmod(tmp.Name(), s.permFile)

	w := &atomicWriter{
		store: s,
		tmp:   tmp,
		bw:    bufio.NewWriterSize(tmp, s.bufSize),
		dest:  dest,
	}
	return DocumentIDFor(store.FolderID(folder), doc.FileName()), w, nil
}

// Usage returns the total size in bytes of the regular files under the root,
// temporary files excluded.
func (s *Store) Usage() (int64, error) {
	var used int64
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || isTemp(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		used += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to compute usage: %w", mapOSError(err))
	}
	return used, nil
}

// atomicWriter writes to a temporary file and renames it over dest on Close.
type atomicWriter struct {
	store  *Store
	tmp    *os.File
	bw     *bufio.Writer
	dest   string
	size   int64
	closed bool
}

func (w *atomicWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	n, err := w.bw.Write(p)
	w.size += int64(n)
	return n, err
}

// Close flushes, syncs and renames the temporary file into place.
func (w *atomicWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	tmpPath := w.tmp.Name()

	if err := w.bw.Flush(); err != nil {
		_ = w.tmp.Close()
		_ = os.Remove(tmpPath)
		return mapOSError(err)
	}
	if err := w.tmp.Sync(); err != nil {
		_ = w.tmp.Close()
		_ = os.Remove(tmpPath)
		return mapOSError(err)
	}
	if err := w.tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return mapOSError(err)
	}

	if w.store.quota > 0 {
		used, err := w.store.Usage()
		if err != nil {
			_ = os.Remove(tmpPath)
			return err
		}
		// a replaced document frees its own size
		if info, err := os.Stat(w.dest); err == nil {
			used -= info.Size()
		}
		if used+w.size > w.store.quota {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("%w: %d bytes used, %d requested, quota %d", store.ErrStorageLimit, used, w.size, w.store.quota)
		}
	}

	if err := os.Rename(tmpPath, w.dest); err != nil {
		_ = os.Remove(tmpPath)
		return mapOSError(err)
	}
	return nil
}

// Abort discards the temporary file.
func (w *atomicWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_ = w.tmp.Close()
	if err := os.Remove(w.tmp.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func cleanPath(p string) (string, error) {
	if err := store.ValidateRelativePath(p); err != nil {
		return "", err
	}
	return path.Clean(p), nil
}

func isTemp(name string) bool {
	return len(name) > 5 && name[:5] == ".tmp-"
}

// mapOSError converts filesystem errors into store errors.
func mapOSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", store.ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrInvalid):
		return fmt.Errorf("%w: %w", store.ErrInvalidName, err)
	default:
		return err
	}
}
