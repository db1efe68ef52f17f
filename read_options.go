package delimtools

import "github.com/nao1215/delimtools/domain/model"

// TotalCountMode selects what the total count of a read measures.
type TotalCountMode int

const (
	// TotalCountRows counts parsed data rows, the header row excluded
	TotalCountRows TotalCountMode = iota
	// TotalCountLines counts physical lines of the source
	TotalCountLines
)

// String returns the string representation of TotalCountMode
func (m TotalCountMode) String() string {
	if m == TotalCountLines {
		return "lines"
	}
	return "rows"
}

// ReadOptions configures how a delimited document is parsed.
//
// Example:
//
//	options := NewReadOptions().
//		WithSeparator(";").
//		WithHeaderRow(true).
//		WithPage(model.NewPageRequest(1, 100)).
//		WithTotalCount(true)
type ReadOptions struct {
	// Separator, Quote and Escape are single characters
	Separator string
	Quote     string
	Escape    string
	// IgnoreQuotes disables quote and escape interpretation
	IgnoreQuotes bool
	// StrictQuotes discards characters between a closing quote and the next separator
	StrictQuotes bool
	// RejectTrailing fails the read on characters between a closing quote and the next separator
	RejectTrailing bool
	// IgnoreLeadingWhitespace skips spaces and tabs in front of an opening quote
	IgnoreLeadingWhitespace bool
	// HasHeaderRow takes the field names from the first row
	HasHeaderRow bool
	// Header, when set, names the fields verbatim and no row is consumed as header
	Header []string
	// IncludeTotalCount counts the whole source in a second pass
	IncludeTotalCount bool
	// TotalCountMode selects what the total count measures
	TotalCountMode TotalCountMode
	// Page selects a window of data rows. Nil reads every row.
	Page *model.PageRequest
	// RowLimit caps the rows of a read without an explicit batch size. Zero means no cap.
	RowLimit int
}

// DefaultRowLimit is the row cap used by hosts that bound unpaged reads.
const DefaultRowLimit = 10000

// NewReadOptions creates default read options: comma separator, double quote and
// backslash escape, no header row, no paging.
func NewReadOptions() ReadOptions {
	return ReadOptions{
		Separator: ",",
		Quote:     `"`,
		Escape:    `\`,
	}
}

// NewRFC4180ReadOptions creates read options for RFC4180 documents, where a quote
// inside a quoted field is escaped by doubling it.
func NewRFC4180ReadOptions() ReadOptions {
	return ReadOptions{
		Separator: ",",
		Quote:     `"`,
		Escape:    `"`,
	}
}

// WithSeparator sets the field separator.
func (o ReadOptions) WithSeparator(separator string) ReadOptions {
	o.Separator = separator
	return o
}

// WithQuote sets the quote character.
func (o ReadOptions) WithQuote(quote string) ReadOptions {
	o.Quote = quote
	return o
}

// WithEscape sets the escape character.
func (o ReadOptions) WithEscape(escape string) ReadOptions {
	o.Escape = escape
	return o
}

// WithIgnoreQuotes disables quote and escape interpretation.
func (o ReadOptions) WithIgnoreQuotes(ignore bool) ReadOptions {
	o.IgnoreQuotes = ignore
	return o
}

// WithStrictQuotes discards characters after a closing quote.
func (o ReadOptions) WithStrictQuotes(strict bool) ReadOptions {
	o.StrictQuotes = strict
	return o
}

// WithRejectTrailing fails rows that have characters after a closing quote.
func (o ReadOptions) WithRejectTrailing(reject bool) ReadOptions {
	o.RejectTrailing = reject
	return o
}

// WithIgnoreLeadingWhitespace skips whitespace in front of an opening quote.
func (o ReadOptions) WithIgnoreLeadingWhitespace(ignore bool) ReadOptions {
	o.IgnoreLeadingWhitespace = ignore
	return o
}

// WithHeaderRow takes the field names from the first row.
func (o ReadOptions) WithHeaderRow(hasHeader bool) ReadOptions {
	o.HasHeaderRow = hasHeader
	return o
}

// WithHeader names the fields verbatim. The first row is read as data.
func (o ReadOptions) WithHeader(names ...string) ReadOptions {
	o.Header = append([]string(nil), names...)
	return o
}

// WithTotalCount counts the whole source in a second pass.
func (o ReadOptions) WithTotalCount(include bool) ReadOptions {
	o.IncludeTotalCount = include
	return o
}

// WithTotalCountMode selects what the total count measures.
func (o ReadOptions) WithTotalCountMode(mode TotalCountMode) ReadOptions {
	o.TotalCountMode = mode
	return o
}

// WithPage selects a window of data rows.
func (o ReadOptions) WithPage(page model.PageRequest) ReadOptions {
	o.Page = &page
	return o
}

// WithRowLimit caps reads that have no explicit batch size.
func (o ReadOptions) WithRowLimit(limit int) ReadOptions {
	o.RowLimit = limit
	return o
}

// Dialect validates the characters and flags and returns the reader dialect.
func (o ReadOptions) Dialect() (model.Dialect, error) {
	mode := model.QuoteSelective
	if o.IgnoreQuotes {
		mode = model.QuoteNone
	}
	d, err := model.NewDialect(o.Separator, o.Quote, o.Escape, mode)
	if err != nil {
		return model.Dialect{}, err
	}
	d.IgnoreLeadingWhitespace = o.IgnoreLeadingWhitespace
	switch {
	case o.RejectTrailing:
		d.TrailingQuote = model.TrailingQuoteReject
	case o.StrictQuotes:
		d.TrailingQuote = model.TrailingQuoteDiscard
	}
	return d, nil
}

// HeaderResolver returns the header policy of the options.
func (o ReadOptions) HeaderResolver() HeaderResolver {
	switch {
	case len(o.Header) > 0:
		return HeaderResolver{Mode: HeaderExplicit, Names: o.Header}
	case o.HasHeaderRow:
		return HeaderResolver{Mode: HeaderAuto}
	default:
		return HeaderResolver{Mode: HeaderNone}
	}
}
