package model

import "fmt"

// PageRequest selects a window of data rows. StartIndex is 1-based.
// A negative BatchSize means every row from StartIndex to the end of the stream.
type PageRequest struct {
	StartIndex int
	BatchSize  int
}

// NewPageRequest create new PageRequest.
func NewPageRequest(startIndex, batchSize int) PageRequest {
	return PageRequest{StartIndex: startIndex, BatchSize: batchSize}
}

// Validate checks the start index and batch size.
func (p PageRequest) Validate() error {
	if p.StartIndex < 1 {
		return fmt.Errorf("%w: the pagingInfo.startIndex must be greater than or equal to 1", ErrInvalidPageRequest)
	}
	if p.BatchSize == 0 {
		return fmt.Errorf("%w: the pagingInfo.batchSize must be greater than or equal to 1", ErrInvalidPageRequest)
	}
	return nil
}

// Skip returns the number of rows in front of the window.
func (p PageRequest) Skip() int {
	return p.StartIndex - 1
}

// Unbounded reports whether the window runs to the end of the stream.
func (p PageRequest) Unbounded() bool {
	return p.BatchSize < 0
}
