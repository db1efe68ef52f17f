package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Header is the ordered list of field names mapped to column positions.
// Names are unique by position only.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// SyntheticHeader returns c1..cN.
func SyntheticHeader(width int) Header {
	h := make(Header, width)
	for i := range h {
		h[i] = "c" + strconv.Itoa(i+1)
	}
	return h
}

// NormalizeHeader returns a copy of names with every name normalized by NormalizeFieldName.
func NormalizeHeader(names []string) Header {
	h := make(Header, len(names))
	for i, name := range names {
		h[i] = NormalizeFieldName(name)
	}
	return h
}

// NormalizeFieldName replaces every rune outside [A-Za-z0-9] with an underscore.
func NormalizeFieldName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, r)
			continue
		}
		out = append(out, '_')
	}
	return string(out)
}

// Row is one line of delimited content. Rows may be ragged.
type Row []string

// NewRow create new Row.
func NewRow(r []string) Row {
	return Row(r)
}

// Equal compare Row.
func (r Row) Equal(r2 Row) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if v != r2[i] {
			return false
		}
	}
	return true
}

// Field is a single named value of a Record.
type Field struct {
	Name  string
	Value string
}

// Record is a header-keyed view of one data row. A Record is never mutated after it is built.
type Record struct {
	fields []Field
}

// NewRecord builds a Record from fields in the given order.
func NewRecord(fields ...Field) Record {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return Record{fields: cp}
}

// MapRow zips header and row positionally. Header names beyond the row width are absent
// from the result and row values beyond the header width are dropped.
func MapRow(header Header, row Row) Record {
	n := min(len(header), len(row))
	fields := make([]Field, n)
	for i := range n {
		fields[i] = Field{Name: header[i], Value: row[i]}
	}
	return Record{fields: fields}
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Get returns the value of the first field called name.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Values returns the field values in order.
func (r Record) Values() []string {
	values := make([]string, len(r.fields))
	for i, f := range r.fields {
		values[i] = f.Value
	}
	return values
}

// Fields returns a copy of the ordered fields.
func (r Record) Fields() []Field {
	cp := make([]Field, len(r.fields))
	copy(cp, r.fields)
	return cp
}

// Project implements the write-side projection contract.
func (r Record) Project() ([]Field, error) {
	return r.Fields(), nil
}

// Map returns the record as a map. When names repeat the last value wins.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}
	return m
}

// Equal compare Record.
func (r Record) Equal(r2 Record) bool {
	if len(r.fields) != len(r2.fields) {
		return false
	}
	for i, f := range r.fields {
		if f != r2.fields[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the record as a JSON object that keeps field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
