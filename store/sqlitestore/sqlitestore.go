// Package sqlitestore implements store.Store on top of an SQLite database.
//
// Documents live in a single table together with their folder, name, extension,
// UUID and content. Folders may be marked read-only or require unique names, and
// the store as a whole may be given a byte quota.
//
// Content is held in memory while a document is written and read back whole on
// Open, so the store suits small documents.
package sqlitestore

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/nao1215/delimtools/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS folders (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT    NOT NULL,
	read_only    INTEGER NOT NULL DEFAULT 0,
	unique_names INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS documents (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid      TEXT    NOT NULL UNIQUE,
	folder_id INTEGER NOT NULL REFERENCES folders(id),
	name      TEXT    NOT NULL,
	extension TEXT    NOT NULL,
	content   BLOB,
	size      INTEGER NOT NULL DEFAULT 0,
	committed INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS documents_folder_name ON documents(folder_id, name, extension);
`

// Store is a store.Store backed by SQLite.
type Store struct {
	db    *sql.DB
	quota int64
}

// Option configures a Store.
type Option func(*Store)

// WithQuota limits the total size in bytes of all committed documents.
// Zero or a negative value disables the limit.
func WithQuota(limit int64) Option {
	return func(s *Store) {
		s.quota = limit
	}
}

// FolderOptions describes a folder created with CreateFolder.
type FolderOptions struct {
	// ReadOnly rejects document creation with store.ErrPermissionDenied.
	ReadOnly bool
	// UniqueNames rejects a document whose name and extension are already used in the folder.
	UniqueNames bool
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database at dsn (":memory:" for a private in-memory database).
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateFolder creates a folder and returns its id.
func (s *Store) CreateFolder(ctx context.Context, name string, opts FolderOptions) (store.FolderID, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO folders (name, read_only, unique_names) VALUES (?, ?, ?)`,
		name, opts.ReadOnly, opts.UniqueNames)
	if err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}
	return store.FolderID(strconv.FormatInt(id, 10)), nil
}

// SetReadOnly changes the read-only flag of a folder.
func (s *Store) SetReadOnly(ctx context.Context, folder store.FolderID, readOnly bool) error {
	id, err := parseID(string(folder))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE folders SET read_only = ? WHERE id = ?`, readOnly, id)
	if err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: folder %s", store.ErrNotFound, folder)
	}
	return nil
}

// Import stores content as a committed document, subject to the same rules as Create.
func (s *Store) Import(ctx context.Context, doc store.Document, content []byte) (store.DocumentID, error) {
	id, w, err := s.Create(ctx, doc)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(content); err != nil {
		_ = w.(store.Aborter).Abort()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return id, nil
}

// Lookup returns the committed document with the given file name in folder.
func (s *Store) Lookup(ctx context.Context, folder store.FolderID, fileName string) (store.DocumentID, store.Document, error) {
	fid, err := parseID(string(folder))
	if err != nil {
		return "", store.Document{}, err
	}
	var (
		id  int64
		doc store.Document
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT id, name, extension, uuid FROM documents
		 WHERE folder_id = ? AND committed = 1
		   AND (CASE extension WHEN '' THEN name ELSE name || '.' || extension END) = ?
		 ORDER BY id LIMIT 1`,
		fid, fileName).Scan(&id, &doc.Name, &doc.Extension, &doc.UUID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.Document{}, fmt.Errorf("%w: %s", store.ErrNotFound, store.SanitizeForLog(fileName))
	}
	if err != nil {
		return "", store.Document{}, fmt.Errorf("failed to look up document: %w", err)
	}
	doc.Folder = folder
	return store.DocumentID(strconv.FormatInt(id, 10)), doc, nil
}

// Usage returns the total size in bytes of all committed documents.
func (s *Store) Usage(ctx context.Context) (int64, error) {
	var used int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(size), 0) FROM documents WHERE committed = 1`).Scan(&used); err != nil {
		return 0, fmt.Errorf("failed to compute usage: %w", err)
	}
	return used, nil
}

// Open implements store.Store.
func (s *Store) Open(ctx context.Context, id store.DocumentID) (io.ReadCloser, error) {
	did, err := parseID(string(id))
	if err != nil {
		return nil, err
	}
	var content []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT content FROM documents WHERE id = ? AND committed = 1`, did).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document %s", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", id, err)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Create implements store.Store. The document is reserved immediately and its
// content is committed, subject to the quota, when the writer is closed.
func (s *Store) Create(ctx context.Context, doc store.Document) (_ store.DocumentID, _ io.WriteCloser, err error) {
	if err := store.ValidateDocument(doc); err != nil {
		return "", nil, err
	}
	fid, err := parseID(string(doc.Folder))
	if err != nil {
		return "", nil, err
	}
	if doc.UUID == "" {
		doc.UUID = uuid.NewString()
	} else if _, err := uuid.Parse(doc.UUID); err != nil {
		return "", nil, fmt.Errorf("%w: malformed uuid %q", store.ErrInvalidName, doc.UUID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var readOnly, uniqueNames bool
	err = tx.QueryRowContext(ctx,
		`SELECT read_only, unique_names FROM folders WHERE id = ?`, fid).Scan(&readOnly, &uniqueNames)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("%w: folder %s", store.ErrNotFound, doc.Folder)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read folder: %w", err)
	}
	if readOnly {
		return "", nil, fmt.Errorf("%w: folder %s is read-only", store.ErrPermissionDenied, doc.Folder)
	}

	var exists bool
	if err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE uuid = ?)`, doc.UUID).Scan(&exists); err != nil {
		return "", nil, fmt.Errorf("failed to check uuid: %w", err)
	}
	if exists {
		return "", nil, fmt.Errorf("%w: %s", store.ErrDuplicateIdentity, doc.UUID)
	}

	if uniqueNames {
		if err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM documents WHERE folder_id = ? AND name = ? AND extension = ?)`,
			fid, doc.Name, doc.Extension).Scan(&exists); err != nil {
			return "", nil, fmt.Errorf("failed to check name: %w", err)
		}
		if exists {
			return "", nil, fmt.Errorf("%w: %s", store.ErrNameConflict, store.SanitizeForLog(doc.FileName()))
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (uuid, folder_id, name, extension) VALUES (?, ?, ?, ?)`,
		doc.UUID, fid, doc.Name, doc.Extension)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", nil, fmt.Errorf("failed to create document: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return "", nil, fmt.Errorf("failed to commit document: %w", err)
	}

	return store.DocumentID(strconv.FormatInt(id, 10)), &documentWriter{ctx: ctx, store: s, id: id}, nil
}

// documentWriter buffers content until Close.
type documentWriter struct {
	ctx    context.Context
	store  *Store
	id     int64
	buf    bytes.Buffer
	closed bool
}

func (w *documentWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write to closed document %d", w.id)
	}
	return w.buf.Write(p)
}

// Close commits the buffered content. Exceeding the quota removes the document.
func (w *documentWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	size := int64(w.buf.Len())
	if w.store.quota > 0 {
		used, err := w.store.Usage(w.ctx)
		if err != nil {
			_ = w.remove()
			return err
		}
		if used+size > w.store.quota {
			_ = w.remove()
			return fmt.Errorf("%w: %d bytes used, %d requested, quota %d", store.ErrStorageLimit, used, size, w.store.quota)
		}
	}

	if _, err := w.store.db.ExecContext(w.ctx,
		`UPDATE documents SET content = ?, size = ?, committed = 1 WHERE id = ?`,
		w.buf.Bytes(), size, w.id); err != nil {
		_ = w.remove()
		return fmt.Errorf("failed to commit document %d: %w", w.id, err)
	}
	return nil
}

// Abort removes the reserved document without committing it.
func (w *documentWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.remove()
}

func (w *documentWriter) remove() error {
	// the caller's context may already be done when a write is aborted
	if _, err := w.store.db.ExecContext(context.WithoutCancel(w.ctx),
		`DELETE FROM documents WHERE id = ?`, w.id); err != nil {
		return fmt.Errorf("failed to remove document %d: %w", w.id, err)
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: malformed id %q", store.ErrNotFound, store.SanitizeForLog(s))
	}
	return id, nil
}
