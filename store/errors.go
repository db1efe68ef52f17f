package store

import "errors"

// Predefined errors
var (
	// ErrNotFound is returned when a document or folder does not exist
	ErrNotFound = errors.New("store: document not found")

	// ErrStorageLimit is returned when a write would exceed the storage quota
	ErrStorageLimit = errors.New("store: storage limit exceeded")

	// ErrPermissionDenied is returned when the caller may not read or write the target
	ErrPermissionDenied = errors.New("store: permission denied")

	// ErrNameConflict is returned when a folder requires unique names and the name is taken
	ErrNameConflict = errors.New("store: name conflict")

	// ErrDuplicateIdentity is returned when a document UUID is already in use
	ErrDuplicateIdentity = errors.New("store: duplicate document identity")

	// ErrInvalidName is returned when a document name or path is invalid or dangerous
	ErrInvalidName = errors.New("store: invalid or dangerous name")
)
