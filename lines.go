package delimtools

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/delimtools/store"
)

// maxLineLength bounds a single line of the line interfaces
const maxLineLength = 64 * 1024 * 1024

// CountLines returns the number of lines of a stored document as ReadLines would
// return them, or -1 when the document cannot be read.
func (c *Codec) CountLines(ctx context.Context, id store.DocumentID) int {
	ec := NewErrorContext("count lines", id)
	c.logger.DebugContext(ctx, "counting lines", slog.String("document", store.SanitizeForLog(string(id))))

	n, err := c.countDocumentLines(ctx, id)
	if err != nil {
		_ = c.logFailure(ctx, ec, err)
		return -1
	}
	return n
}

func (c *Codec) countDocumentLines(ctx context.Context, id store.DocumentID) (n int, err error) {
	rc, err := c.documentOpener(id)(ctx)
	if err != nil {
		return 0, ioError(err)
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = ioError(cerr)
		}
	}()
	return countLines(ctx, rc)
}

// ReadLines returns lineCount lines of a stored document starting at the 1-based
// startLine, without line terminators. A negative lineCount reads to the end.
func (c *Codec) ReadLines(ctx context.Context, id store.DocumentID, startLine, lineCount int) *LinesResult {
	ec := NewErrorContext("read lines", id)
	c.logger.DebugContext(ctx, "reading lines",
		slog.String("document", store.SanitizeForLog(string(id))),
		slog.Int("start", startLine),
		slog.Int("count", lineCount))

	lines, err := c.readDocumentLines(ctx, id, startLine, lineCount)
	if err != nil {
		return &LinesResult{ErrorMessage: describeError(err), Err: c.logFailure(ctx, ec, err)}
	}
	return &LinesResult{Success: true, Values: lines}
}

func (c *Codec) readDocumentLines(ctx context.Context, id store.DocumentID, startLine, lineCount int) (lines []string, err error) {
	if startLine < 1 {
		return nil, fmt.Errorf("%w: the start line must be greater than or equal to 1", ErrInvalidPageRequest)
	}

	rc, err := c.documentOpener(id)(ctx)
	if err != nil {
		return nil, ioError(err)
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = ioError(cerr)
		}
	}()

	lines = []string{}
	scanner := newLineScanner(rc)
	for line := 1; scanner.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return nil, ioError(err)
		}
		if line < startLine {
			continue
		}
		if lineCount >= 0 && len(lines) >= lineCount {
			break
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, ioError(err)
	}
	return lines, nil
}

// countLines counts the lines of r. A final line without terminator counts.
func countLines(ctx context.Context, r io.Reader) (int, error) {
	n := 0
	scanner := newLineScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return 0, ioError(err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return 0, ioError(err)
	}
	return n, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	scanner.Split(scanAnyLines)
	return scanner
}

// scanAnyLines is a bufio.SplitFunc that ends lines at "\n", "\r\n" or a lone "\r".
func scanAnyLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// a "\r" at the end of the buffer may be followed by "\n"
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
