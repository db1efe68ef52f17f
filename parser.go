package delimtools

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"

	"github.com/nao1215/delimtools/domain/model"
)

// RowSource is anything that yields rows until io.EOF.
type RowSource interface {
	Read() (model.Row, error)
}

// parser states, reset at every separator and line ending
type parseState int

const (
	stateUnquoted parseState = iota
	stateQuoted
	stateAfterQuote
)

// RowParser turns a character stream into rows under a Dialect.
// It is single-pass; reading again requires a new stream.
type RowParser struct {
	r       *bufio.Reader
	dialect model.Dialect

	skipLines int
	skipped   bool

	line    int
	column  int
	rowLine int

	pendingErr error
	done       bool
}

// ParserOption configures a RowParser.
type ParserOption func(*RowParser)

// WithSkipLines discards the first n rows before the first Read returns.
func WithSkipLines(n int) ParserOption {
	return func(p *RowParser) {
		if n > 0 {
			p.skipLines = n
		}
	}
}

// NewRowParser creates a RowParser reading from r.
func NewRowParser(r io.Reader, dialect model.Dialect, opts ...ParserOption) *RowParser {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	p := &RowParser{
		r:       br,
		dialect: dialect,
		line:    1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Line returns the physical line on which the most recently returned row started.
func (p *RowParser) Line() int {
	return p.rowLine
}

// Read returns the next row, or io.EOF once the stream is exhausted.
func (p *RowParser) Read() (model.Row, error) {
	if !p.skipped {
		p.skipped = true
		if _, err := p.Skip(p.skipLines); err != nil {
			return nil, err
		}
	}
	return p.readRow()
}

// Skip discards up to n rows without retaining them and reports how many were skipped.
// Reaching the end of the stream is not an error.
func (p *RowParser) Skip(n int) (int, error) {
	for i := range n {
		if _, err := p.readRow(); err != nil {
			if errors.Is(err, io.EOF) {
				return i, nil
			}
			return i, err
		}
	}
	return n, nil
}

// All returns an iterator over the remaining rows. Iteration stops after the first error.
func (p *RowParser) All() iter.Seq2[model.Row, error] {
	return func(yield func(model.Row, error) bool) {
		for {
			row, err := p.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

func (p *RowParser) readRow() (model.Row, error) {
	if p.done {
		return nil, io.EOF
	}

	d := p.dialect
	quoting := d.QuotingEnabled()
	escaping := quoting && d.Escape != model.NoChar

	var (
		row       model.Row
		field     strings.Builder
		state     = stateUnquoted
		onlySpace = true
		consumed  = false
	)
	p.rowLine = p.line

	endField := func() {
		row = append(row, field.String())
		field.Reset()
		state = stateUnquoted
		onlySpace = true
	}

	for {
		c, err := p.next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.done = true
				return nil, ioError(err)
			}
			p.done = true
			if !consumed {
				return nil, io.EOF
			}
			// an unterminated quoted field keeps what was accumulated
			endField()
			return row, nil
		}
		consumed = true

		if state == stateQuoted {
			switch {
			case escaping && c == d.Escape && d.Escape != d.Quote:
				if n, ok := p.peek(); ok && (n == d.Quote || n == d.Escape) {
					_, _ = p.next()
					field.WriteRune(n)
					continue
				}
				field.WriteRune(c)
			case c == d.Quote:
				if n, ok := p.peek(); ok && n == d.Quote {
					_, _ = p.next()
					field.WriteRune(c)
					continue
				}
				state = stateAfterQuote
			default:
				field.WriteRune(c)
			}
			continue
		}

		switch c {
		case d.Separator:
			endField()
			continue
		case '\n':
			endField()
			return row, nil
		case '\r':
			if n, ok := p.peek(); ok && n == '\n' {
				_, _ = p.next()
			}
			endField()
			return row, nil
		}

		if state == stateAfterQuote {
			switch d.TrailingQuote {
			case model.TrailingQuoteDiscard:
			case model.TrailingQuoteReject:
				column := p.column
				p.discardRestOfLine()
				return nil, &ParseError{Line: p.rowLine, Column: column, Err: ErrMalformedRow}
			default:
				field.WriteRune(c)
			}
			continue
		}

		if quoting {
			if c == d.Quote && onlySpace {
				state = stateQuoted
				onlySpace = false
				if d.IgnoreLeadingWhitespace {
					field.Reset()
				}
				continue
			}
			// with RFC4180 style dialects the escape is the quote and only matters inside quotes
			if escaping && c == d.Escape && d.Escape != d.Quote {
				if n, ok := p.peek(); ok && (n == d.Separator || n == d.Quote || n == d.Escape) {
					_, _ = p.next()
					field.WriteRune(n)
					onlySpace = false
					continue
				}
			}
		}

		if c != ' ' && c != '\t' {
			onlySpace = false
		}
		field.WriteRune(c)
	}
}

// discardRestOfLine consumes characters up to and including the next line ending.
func (p *RowParser) discardRestOfLine() {
	for {
		c, err := p.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.done = true
			}
			return
		}
		switch c {
		case '\n':
			return
		case '\r':
			if n, ok := p.peek(); ok && n == '\n' {
				_, _ = p.next()
			}
			return
		}
	}
}

func (p *RowParser) next() (rune, error) {
	if p.pendingErr != nil {
		return 0, p.pendingErr
	}
	c, _, err := p.r.ReadRune()
	if err != nil {
		p.pendingErr = err
		return 0, err
	}
	p.column++
	switch c {
	case '\n':
		p.line++
		p.column = 0
	case '\r':
		if n, ok := p.peek(); !ok || n != '\n' {
			p.line++
			p.column = 0
		}
	}
	return c, nil
}

func (p *RowParser) peek() (rune, bool) {
	if p.pendingErr != nil {
		return 0, false
	}
	c, _, err := p.r.ReadRune()
	if err != nil {
		p.pendingErr = err
		return 0, false
	}
	_ = p.r.UnreadRune()
	return c, true
}
