package delimtools

import (
	"fmt"
	"strings"

	"github.com/nao1215/delimtools/domain/model"
)

// OutputFormat represents the output document format
type OutputFormat int

const (
	// OutputFormatDelimited represents delimited text under the configured dialect
	OutputFormatDelimited OutputFormat = iota
	// OutputFormatXLSX represents an Excel XLSX workbook with one sheet
	OutputFormatXLSX
	// OutputFormatParquet represents Apache Parquet with one string column per field
	OutputFormatParquet
)

// String returns the string representation of OutputFormat
func (f OutputFormat) String() string {
	switch f {
	case OutputFormatDelimited:
		return "delimited"
	case OutputFormatXLSX:
		return "xlsx"
	case OutputFormatParquet:
		return "parquet"
	default:
		return "delimited"
	}
}

// ParseOutputFormat maps a name such as "xlsx" to an OutputFormat.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch strings.ToLower(name) {
	case "", "delimited", "csv", "txt":
		return OutputFormatDelimited, nil
	case "xlsx":
		return OutputFormatXLSX, nil
	case "parquet":
		return OutputFormatParquet, nil
	default:
		return OutputFormatDelimited, fmt.Errorf("%w: output format %q", ErrUnsupportedFormat, name)
	}
}

// WriteOptions configures how records are written.
//
// Example:
//
//	options := NewWriteOptions().
//		WithSeparator("\t").
//		WithAutoHeader(true).
//		WithCompression(CompressionGZ)
type WriteOptions struct {
	// HeaderMode selects whether and how a header row is written
	HeaderMode HeaderMode
	// Header holds the names written and extracted in HeaderExplicit mode
	Header []string
	// AutoHeaderSpacing turns "_" into " " in automatic header names
	AutoHeaderSpacing bool
	// Separator, Quote and Escape are single characters
	Separator string
	Quote     string
	Escape    string
	// QuoteAll quotes every field instead of only those that need it
	QuoteAll bool
	// IgnoreQuotes writes every field verbatim
	IgnoreQuotes bool
	// LineEnding terminates every row
	LineEnding model.LineEnding
	// Format specifies the output document format
	Format OutputFormat
	// Compression specifies the compression of the output document
	Compression CompressionType
}

// NewWriteOptions creates default write options: comma separator, double quote,
// backslash escape, selective quoting, unix line endings, no header.
func NewWriteOptions() WriteOptions {
	return WriteOptions{
		HeaderMode:  HeaderNone,
		Separator:   ",",
		Quote:       `"`,
		Escape:      `\`,
		LineEnding:  model.LineEndingUnix,
		Format:      OutputFormatDelimited,
		Compression: CompressionNone,
	}
}

// WithAutoHeader writes the field names of the first record as header.
func (o WriteOptions) WithAutoHeader(auto bool) WriteOptions {
	if auto {
		o.HeaderMode = HeaderAuto
		o.Header = nil
	} else if o.HeaderMode == HeaderAuto {
		o.HeaderMode = HeaderNone
	}
	return o
}

// WithHeader writes names as header and extracts record values by these names.
func (o WriteOptions) WithHeader(names ...string) WriteOptions {
	o.HeaderMode = HeaderExplicit
	o.Header = append([]string(nil), names...)
	return o
}

// WithAutoHeaderSpacing turns "_" into " " in automatic header names.
func (o WriteOptions) WithAutoHeaderSpacing(spacing bool) WriteOptions {
	o.AutoHeaderSpacing = spacing
	return o
}

// WithSeparator sets the field separator.
func (o WriteOptions) WithSeparator(separator string) WriteOptions {
	o.Separator = separator
	return o
}

// WithQuote sets the quote character.
func (o WriteOptions) WithQuote(quote string) WriteOptions {
	o.Quote = quote
	return o
}

// WithEscape sets the escape character.
func (o WriteOptions) WithEscape(escape string) WriteOptions {
	o.Escape = escape
	return o
}

// WithQuoteAll quotes every field.
func (o WriteOptions) WithQuoteAll(all bool) WriteOptions {
	o.QuoteAll = all
	return o
}

// WithIgnoreQuotes writes every field verbatim.
func (o WriteOptions) WithIgnoreQuotes(ignore bool) WriteOptions {
	o.IgnoreQuotes = ignore
	return o
}

// WithLineEnding sets the row terminator.
func (o WriteOptions) WithLineEnding(le model.LineEnding) WriteOptions {
	o.LineEnding = le
	return o
}

// WithFormat sets the output document format.
func (o WriteOptions) WithFormat(format OutputFormat) WriteOptions {
	o.Format = format
	return o
}

// WithCompression compresses the output document.
func (o WriteOptions) WithCompression(compression CompressionType) WriteOptions {
	o.Compression = compression
	return o
}

// Dialect validates the characters and returns the writer dialect.
func (o WriteOptions) Dialect() (model.Dialect, error) {
	mode := model.QuoteSelective
	switch {
	case o.IgnoreQuotes:
		mode = model.QuoteNone
	case o.QuoteAll:
		mode = model.QuoteAll
	}
	d, err := model.NewDialect(o.Separator, o.Quote, o.Escape, mode)
	if err != nil {
		return model.Dialect{}, err
	}
	if o.LineEnding != "" {
		d.LineEnding = o.LineEnding
	}
	return d, nil
}

// FileExtension returns the extension of an output document without a dot,
// compression included. Delimited output uses "csv" for a comma separator and
// "txt" otherwise.
func (o WriteOptions) FileExtension() string {
	var ext string
	switch o.Format {
	case OutputFormatXLSX:
		ext = "xlsx"
	case OutputFormatParquet:
		ext = "parquet"
	default:
		ext = "txt"
		if o.Separator == "," {
			ext = "csv"
		}
	}
	if c := o.Compression.Extension(); c != "" {
		ext += "." + c
	}
	return ext
}
