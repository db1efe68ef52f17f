package model

import (
	"fmt"
	"unicode/utf8"
)

// NoChar marks an unset quote or escape character.
const NoChar rune = 0

// QuoteMode controls how the quote character is interpreted on read and applied on write.
type QuoteMode int

const (
	// QuoteSelective quotes a field only when it contains a special character
	QuoteSelective QuoteMode = iota
	// QuoteAll quotes every field on write
	QuoteAll
	// QuoteNone disables quote and escape interpretation for both read and write
	QuoteNone
)

// String returns the string representation of QuoteMode
func (m QuoteMode) String() string {
	switch m {
	case QuoteSelective:
		return "selective"
	case QuoteAll:
		return "all"
	case QuoteNone:
		return "none"
	default:
		return "selective"
	}
}

// TrailingQuotePolicy decides what happens to characters between a closing quote and the
// next separator or line ending.
type TrailingQuotePolicy int

const (
	// TrailingQuoteKeep appends the trailing characters to the field
	TrailingQuoteKeep TrailingQuotePolicy = iota
	// TrailingQuoteDiscard drops the trailing characters (strict quotes)
	TrailingQuoteDiscard
	// TrailingQuoteReject fails the row with a malformed row error
	TrailingQuoteReject
)

// LineEnding is the row terminator used on write.
type LineEnding string

const (
	// LineEndingUnix terminates rows with "\n"
	LineEndingUnix LineEnding = "\n"
	// LineEndingDOS terminates rows with "\r\n"
	LineEndingDOS LineEnding = "\r\n"
)

// ParseLineEnding maps the "unix" and "dos" style names to a LineEnding.
// Anything other than "dos" is treated as unix.
func ParseLineEnding(style string) LineEnding {
	if style == "dos" {
		return LineEndingDOS
	}
	return LineEndingUnix
}

// Dialect describes how a delimited text variant is encoded and decoded.
// Use NewDialect to build one; the zero value is not valid.
type Dialect struct {
	Separator rune
	Quote     rune
	Escape    rune
	QuoteMode QuoteMode
	// LineEnding is only used when writing. Readers accept "\n", "\r\n" and "\r".
	LineEnding LineEnding
	// IgnoreLeadingWhitespace skips spaces and tabs in front of an opening quote.
	IgnoreLeadingWhitespace bool
	TrailingQuote           TrailingQuotePolicy
}

// NewDialect validates the raw separator, quote and escape strings and returns a Dialect
// terminated by LineEndingUnix. Quote and escape may be empty when mode is QuoteNone.
func NewDialect(separator, quote, escape string, mode QuoteMode) (Dialect, error) {
	sep, err := singleChar(separator, "delimited separator", "e.g. a comma or a tab")
	if err != nil {
		return Dialect{}, err
	}

	d := Dialect{
		Separator:  sep,
		Quote:      NoChar,
		Escape:     NoChar,
		QuoteMode:  mode,
		LineEnding: LineEndingUnix,
	}
	if mode == QuoteNone && quote == "" && escape == "" {
		return d, nil
	}

	if mode != QuoteNone || escape != "" {
		if d.Escape, err = singleChar(escape, "escape character", `e.g. \`); err != nil {
			return Dialect{}, err
		}
	}
	if mode != QuoteNone || quote != "" {
		if d.Quote, err = singleChar(quote, "quote character", `e.g. "`); err != nil {
			return Dialect{}, err
		}
	}
	return d, nil
}

// RFC4180Dialect returns the comma separated dialect with doubled-quote escaping.
func RFC4180Dialect() Dialect {
	return Dialect{
		Separator:  ',',
		Quote:      '"',
		Escape:     '"',
		QuoteMode:  QuoteSelective,
		LineEnding: LineEndingDOS,
	}
}

// QuotingEnabled reports whether quote and escape characters are interpreted.
func (d Dialect) QuotingEnabled() bool {
	return d.QuoteMode != QuoteNone && d.Quote != NoChar
}

// WithLineEnding returns a copy of d terminated by le.
func (d Dialect) WithLineEnding(le LineEnding) Dialect {
	d.LineEnding = le
	return d
}

func singleChar(s, field, hint string) (rune, error) {
	switch utf8.RuneCountInString(s) {
	case 0:
		return NoChar, fmt.Errorf("%w: you must supply a %s, %s", ErrInvalidDialect, field, hint)
	case 1:
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	default:
		return NoChar, fmt.Errorf("%w: you must supply a single character as the %s", ErrInvalidDialect, field)
	}
}
