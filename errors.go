package delimtools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/delimtools/domain/model"
	"github.com/nao1215/delimtools/store"
)

// Standard errors. Every failure reported by this package wraps one of them.
var (
	// ErrInvalidDialect indicates a malformed separator, quote or escape character
	ErrInvalidDialect = model.ErrInvalidDialect

	// ErrInvalidPageRequest indicates a malformed start index or batch size
	ErrInvalidPageRequest = model.ErrInvalidPageRequest

	// ErrEmptySource indicates that a header was requested from a source with no rows
	ErrEmptySource = errors.New("delimtools: empty data source")

	// ErrIO indicates an open, read, write or close failure of the underlying stream
	ErrIO = errors.New("delimtools: I/O failure")

	// ErrMalformedRow indicates characters after a closing quote under the reject policy
	ErrMalformedRow = errors.New("delimtools: malformed row")

	// ErrNestedValue indicates a composite value that cannot be written as a single field
	ErrNestedValue = errors.New("delimtools: nested values are not supported")

	// ErrAppendUnsupported indicates a write target that asks to append to an existing document
	ErrAppendUnsupported = errors.New("delimtools: appending to an existing document is not supported")

	// ErrUnsupportedFormat indicates an unsupported output format or compression
	ErrUnsupportedFormat = errors.New("delimtools: unsupported format")

	// ErrNoSourceObjects indicates an auto header requested for an empty record set
	ErrNoSourceObjects = errors.New("delimtools: sourceObjects was empty")
)

// Storage errors are passed through from the store package unchanged.
var (
	ErrNotFound          = store.ErrNotFound
	ErrStorageLimit      = store.ErrStorageLimit
	ErrPermissionDenied  = store.ErrPermissionDenied
	ErrNameConflict      = store.ErrNameConflict
	ErrDuplicateIdentity = store.ErrDuplicateIdentity
)

// ParseError reports where in the source a row failed to parse.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("delimtools: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Is.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	Document  string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation string, document store.DocumentID) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		Document:  string(document),
	}
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("delimtools: %s failed", ec.Operation))

	if ec.Document != "" {
		parts = append(parts, "document: "+ec.Document)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}

// ioError wraps err with ErrIO unless it already carries a categorized error.
func ioError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrIO, ErrMalformedRow, ErrEmptySource, ErrInvalidDialect, ErrInvalidPageRequest} {
		if errors.Is(err, known) {
			return err
		}
	}
	if isStorageError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

func isStorageError(err error) bool {
	for _, known := range []error{ErrNotFound, ErrStorageLimit, ErrPermissionDenied, ErrNameConflict, ErrDuplicateIdentity, store.ErrInvalidName} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

// describeError renders err as the user-visible message of a failed result. Storage
// failures are given distinct prefixes and the collaborator's own text verbatim.
func describeError(err error) string {
	switch {
	case errors.Is(err, ErrStorageLimit):
		return "storage limit exceeded: " + err.Error()
	case errors.Is(err, ErrPermissionDenied):
		return "permission denied: " + err.Error()
	case errors.Is(err, ErrNameConflict):
		return "name conflict: " + err.Error()
	case errors.Is(err, ErrDuplicateIdentity):
		return "duplicate document identity: " + err.Error()
	case errors.Is(err, ErrNotFound), errors.Is(err, store.ErrInvalidName):
		return "invalid document: " + err.Error()
	default:
		return err.Error()
	}
}
