package delimtools

import (
	"bufio"
	"io"

	"github.com/nao1215/delimtools/domain/model"
)

// RowWriter encodes rows under a Dialect.
// Output is buffered; call Flush and check Error once all rows are written.
type RowWriter struct {
	w       *bufio.Writer
	dialect model.Dialect
	rows    int
	err     error
}

// NewRowWriter creates a RowWriter writing to w.
func NewRowWriter(w io.Writer, dialect model.Dialect) *RowWriter {
	if dialect.LineEnding == "" {
		dialect.LineEnding = model.LineEndingUnix
	}
	return &RowWriter{
		w:       bufio.NewWriter(w),
		dialect: dialect,
	}
}

// Write encodes one row followed by the line ending.
func (w *RowWriter) Write(row model.Row) error {
	if w.err != nil {
		return w.err
	}
	for i, field := range row {
		if i > 0 {
			if _, err := w.w.WriteRune(w.dialect.Separator); err != nil {
				return w.fail(err)
			}
		}
		if err := w.writeField(field); err != nil {
			return w.fail(err)
		}
	}
	if _, err := w.w.WriteString(string(w.dialect.LineEnding)); err != nil {
		return w.fail(err)
	}
	w.rows++
	return nil
}

// WriteAll writes every row and flushes.
func (w *RowWriter) WriteAll(rows []model.Row) error {
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes buffered data to the underlying writer.
func (w *RowWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		return w.fail(err)
	}
	return nil
}

// Error reports the first error encountered by Write or Flush.
func (w *RowWriter) Error() error {
	return w.err
}

// Rows returns the number of rows written.
func (w *RowWriter) Rows() int {
	return w.rows
}

func (w *RowWriter) fail(err error) error {
	w.err = ioError(err)
	return w.err
}

func (w *RowWriter) writeField(field string) error {
	if !w.needsQuotes(field) {
		_, err := w.w.WriteString(field)
		return err
	}

	d := w.dialect
	if _, err := w.w.WriteRune(d.Quote); err != nil {
		return err
	}
	for _, c := range field {
		if c == d.Quote || (c == d.Escape && d.Escape != model.NoChar) {
			escape := d.Escape
			if escape == model.NoChar {
				escape = d.Quote
			}
			if _, err := w.w.WriteRune(escape); err != nil {
				return err
			}
		}
		if _, err := w.w.WriteRune(c); err != nil {
			return err
		}
	}
	_, err := w.w.WriteRune(d.Quote)
	return err
}

func (w *RowWriter) needsQuotes(field string) bool {
	d := w.dialect
	if !d.QuotingEnabled() {
		return false
	}
	if d.QuoteMode == model.QuoteAll {
		return true
	}
	for _, c := range field {
		switch {
		case c == d.Separator, c == d.Quote, c == '\r', c == '\n':
			return true
		case c == d.Escape && d.Escape != model.NoChar:
			return true
		}
	}
	return false
}
