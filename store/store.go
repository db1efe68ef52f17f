package store

import (
	"context"
	"io"
)

// DocumentID identifies a stored document.
type DocumentID string

// FolderID identifies a folder that documents are created in.
type FolderID string

// Document describes a document to be created.
type Document struct {
	// Name is the base name without extension.
	Name string
	// Extension is appended to Name with a dot. It may be empty.
	Extension string
	// Folder is the folder the document is created in.
	Folder FolderID
	// UUID is an optional caller-chosen identity. Stores that track identities
	// reject a UUID that is already in use with ErrDuplicateIdentity.
	UUID string
}

// FileName returns Name and Extension joined by a dot.
func (d Document) FileName() string {
	if d.Extension == "" {
		return d.Name
	}
	return d.Name + "." + d.Extension
}

// Store is the external document storage.
type Store interface {
	// Open returns the content of an existing document.
	Open(ctx context.Context, id DocumentID) (io.ReadCloser, error)
	// Create reserves a new document. Its content is committed when the returned
	// writer is closed.
	Create(ctx context.Context, doc Document) (DocumentID, io.WriteCloser, error)
}

// Aborter is implemented by writers returned from Create that can discard
// uncommitted content. After Abort the document does not exist.
type Aborter interface {
	Abort() error
}
