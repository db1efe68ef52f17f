package delimtools

import (
	"encoding/json"

	"github.com/nao1215/delimtools/domain/model"
	"github.com/nao1215/delimtools/store"
)

// ParseResult is the outcome of a read. On failure only ErrorMessage and Err are set.
type ParseResult struct {
	Success      bool
	Records      []model.Record
	RowsReturned int
	// TotalRows is set when a total count was requested.
	TotalRows    *int
	ErrorMessage string
	// Err is the underlying error for errors.Is. It is not serialized.
	Err error
}

func newParseResult(records []model.Record, total *int) *ParseResult {
	if records == nil {
		records = []model.Record{}
	}
	return &ParseResult{
		Success:      true,
		Records:      records,
		RowsReturned: len(records),
		TotalRows:    total,
	}
}

// failedParse reports err to the host and keeps wrapped for errors.Is.
func failedParse(err, wrapped error) *ParseResult {
	return &ParseResult{ErrorMessage: describeError(err), Err: wrapped}
}

// ToMap returns the host representation of the result.
func (r *ParseResult) ToMap() map[string]any {
	m := map[string]any{"success": r.Success}
	if !r.Success {
		m["errorMessage"] = r.ErrorMessage
		return m
	}
	m["values"] = r.Records
	m["linesParsed"] = r.RowsReturned
	if r.TotalRows != nil {
		m["totalLines"] = *r.TotalRows
	}
	return m
}

// MarshalJSON encodes ToMap.
func (r *ParseResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// WriteResult is the outcome of WriteDocument.
type WriteResult struct {
	Success        bool
	OutputDocument store.DocumentID
	ErrorMessage   string
	Err            error
}

func failedWrite(err, wrapped error) *WriteResult {
	return &WriteResult{ErrorMessage: describeError(err), Err: wrapped}
}

// ToMap returns the host representation of the result.
func (r *WriteResult) ToMap() map[string]any {
	m := map[string]any{"success": r.Success}
	if !r.Success {
		m["errorMessage"] = r.ErrorMessage
		return m
	}
	m["outputDocument"] = string(r.OutputDocument)
	return m
}

// MarshalJSON encodes ToMap.
func (r *WriteResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// TextResult is the outcome of ObjectsToDelimitedText.
type TextResult struct {
	Success      bool
	Value        string
	ErrorMessage string
	Err          error
}

// ToMap returns the host representation of the result.
func (r *TextResult) ToMap() map[string]any {
	m := map[string]any{"success": r.Success}
	if !r.Success {
		m["errorMessage"] = r.ErrorMessage
		return m
	}
	m["value"] = r.Value
	return m
}

// MarshalJSON encodes ToMap.
func (r *TextResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// LinesResult is the outcome of ReadLines.
type LinesResult struct {
	Success      bool
	Values       []string
	ErrorMessage string
	Err          error
}

// ToMap returns the host representation of the result.
func (r *LinesResult) ToMap() map[string]any {
	m := map[string]any{"success": r.Success}
	if !r.Success {
		m["errorMessage"] = r.ErrorMessage
		return m
	}
	m["values"] = r.Values
	return m
}

// MarshalJSON encodes ToMap.
func (r *LinesResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}
