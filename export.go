package delimtools

import (
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/delimtools/domain/model"
)

// xlsxSheetName is the sheet of a new workbook
const xlsxSheetName = "Sheet1"

// encodeOutput writes header and rows to w in the format and compression of opts.
func encodeOutput(w io.Writer, p projection, dialect model.Dialect, opts WriteOptions) (err error) {
	cw, err := compressingWriter(w, opts.Compression)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cw.Close(); cerr != nil && err == nil {
			err = ioError(cerr)
		}
	}()

	switch opts.Format {
	case OutputFormatDelimited:
		return writeDelimited(cw, p, dialect)
	case OutputFormatXLSX:
		return writeXLSX(cw, p)
	case OutputFormatParquet:
		return writeParquet(cw, p)
	default:
		return fmt.Errorf("%w: output format %v", ErrUnsupportedFormat, opts.Format)
	}
}

func writeDelimited(w io.Writer, p projection, dialect model.Dialect) error {
	rw := NewRowWriter(w, dialect)
	if p.header != nil {
		if err := rw.Write(model.Row(p.header)); err != nil {
			return err
		}
	}
	return rw.WriteAll(p.rows)
}

// writeXLSX writes the header and rows to the first sheet of a new workbook.
// Every cell is a string.
func writeXLSX(w io.Writer, p projection) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sw, err := f.NewStreamWriter(xlsxSheetName)
	if err != nil {
		return fmt.Errorf("failed to create xlsx stream writer: %w", err)
	}

	line := 1
	setRow := func(values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		line++
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		return sw.SetRow(cell, cells)
	}

	if p.header != nil {
		if err := setRow(p.header); err != nil {
			return fmt.Errorf("failed to write xlsx header: %w", err)
		}
	}
	for _, row := range p.rows {
		if err := setRow(row); err != nil {
			return fmt.Errorf("failed to write xlsx row %d: %w", line-1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush xlsx rows: %w", err)
	}
	if err := f.Write(w); err != nil {
		return ioError(err)
	}
	return nil
}

// writeParquet writes the rows as one nullable string column per field. Without a
// header, and for rows wider than the header, columns are named c1..cN. Cells missing
// from short rows are null.
func writeParquet(w io.Writer, p projection) error {
	width := len(p.header)
	for _, row := range p.rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return fmt.Errorf("%w: parquet output needs at least one column", ErrUnsupportedFormat)
	}

	names := model.SyntheticHeader(width)
	copy(names, p.header)
	fields := make([]arrow.Field, width)
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()
	for _, row := range p.rows {
		for i := range width {
			sb, ok := builder.Field(i).(*array.StringBuilder)
			if !ok {
				return errors.New("unexpected parquet column builder")
			}
			if i < len(row) {
				sb.Append(row[i])
			} else {
				sb.AppendNull()
			}
		}
	}
	rec := builder.NewRecord()
	defer rec.Release()

	// hide Close so the parquet writer does not close the destination
	fw, err := pqarrow.NewFileWriter(schema, struct{ io.Writer }{w}, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return ioError(err)
	}
	if err := fw.Close(); err != nil {
		return ioError(err)
	}
	return nil
}
