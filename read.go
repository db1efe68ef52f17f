package delimtools

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/nao1215/delimtools/domain/model"
	"github.com/nao1215/delimtools/store"
)

// ParseDocument parses a stored document under the dialect of opts.
func (c *Codec) ParseDocument(ctx context.Context, id store.DocumentID, opts ReadOptions) *ParseResult {
	return c.parse(ctx, NewErrorContext("parse", id), c.documentOpener(id), opts)
}

// ParseRFC4180Document parses a stored RFC4180 document: comma separated, double
// quoted, with quotes inside quoted fields doubled. A nil page reads every row.
func (c *Codec) ParseRFC4180Document(ctx context.Context, id store.DocumentID, hasHeaderRow, includeTotalCount bool, page *model.PageRequest) *ParseResult {
	opts := NewRFC4180ReadOptions().
		WithHeaderRow(hasHeaderRow).
		WithTotalCount(includeTotalCount)
	opts.Page = page
	return c.parse(ctx, NewErrorContext("parse rfc4180", id), c.documentOpener(id), opts)
}

// ParseReader parses the stream returned by open. open is called a second time
// when a total count is requested.
func (c *Codec) ParseReader(ctx context.Context, open OpenFunc, opts ReadOptions) *ParseResult {
	decoded := func(ctx context.Context) (io.ReadCloser, error) {
		rc, err := open(ctx)
		if err != nil {
			return nil, err
		}
		return c.decodeSource(rc)
	}
	return c.parse(ctx, NewErrorContext("parse", ""), decoded, opts)
}

func (c *Codec) parse(ctx context.Context, ec *ErrorContext, open OpenFunc, opts ReadOptions) *ParseResult {
	c.logger.DebugContext(ctx, "parsing document",
		slog.String("document", store.SanitizeForLog(ec.Document)),
		slog.Bool("headerRow", opts.HasHeaderRow),
		slog.Bool("totalCount", opts.IncludeTotalCount))

	dialect, err := newValidator().validateReadOptions(opts)
	if err != nil {
		return failedParse(err, c.logFailure(ctx, ec, err))
	}

	var total *int
	if opts.IncludeTotalCount {
		n, err := c.countTotal(ctx, open, dialect, opts)
		if err != nil {
			return failedParse(err, c.logFailure(ctx, ec.WithDetails("total count"), err))
		}
		total = &n
	}

	records, err := c.readWindow(ctx, open, dialect, opts)
	if err != nil {
		return failedParse(err, c.logFailure(ctx, ec, err))
	}

	c.logger.DebugContext(ctx, "parsed document",
		slog.String("document", store.SanitizeForLog(ec.Document)),
		slog.Int("rows", len(records)))
	return newParseResult(records, total)
}

// readWindow makes the single pass that resolves the header and maps the page to records.
func (c *Codec) readWindow(ctx context.Context, open OpenFunc, dialect model.Dialect, opts ReadOptions) (records []model.Record, err error) {
	rc, err := open(ctx)
	if err != nil {
		return nil, ioError(err)
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = ioError(cerr)
		}
	}()

	parser := NewRowParser(rc, dialect)
	header, pending, err := opts.HeaderResolver().Resolve(parser)
	if err != nil {
		return nil, err
	}

	var src RowSource = parser
	if pending != nil {
		src = &prependRow{row: pending, src: parser}
	}
	window := Window(src, opts.Page, opts.RowLimit)

	for {
		if err := ctx.Err(); err != nil {
			return nil, ioError(err)
		}
		row, err := window.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, model.MapRow(header, row))
	}
}

// countTotal makes a separate pass over a fresh stream.
func (c *Codec) countTotal(ctx context.Context, open OpenFunc, dialect model.Dialect, opts ReadOptions) (n int, err error) {
	rc, err := open(ctx)
	if err != nil {
		return 0, ioError(err)
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = ioError(cerr)
		}
	}()

	if opts.TotalCountMode == TotalCountLines {
		return countLines(ctx, rc)
	}

	parser := NewRowParser(rc, dialect)
	for {
		if err := ctx.Err(); err != nil {
			return 0, ioError(err)
		}
		_, err := parser.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		n++
	}
	if opts.HeaderResolver().Mode == HeaderAuto && n > 0 {
		n--
	}
	return n, nil
}
