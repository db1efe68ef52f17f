// Package model provides the value types shared by the delimtools reader and writer.
package model

import "errors"

var (
	// ErrInvalidDialect is returned when a separator, quote or escape character is malformed.
	ErrInvalidDialect = errors.New("delimtools: invalid dialect")

	// ErrInvalidPageRequest is returned when a start index or batch size is out of range.
	ErrInvalidPageRequest = errors.New("delimtools: invalid page request")
)
