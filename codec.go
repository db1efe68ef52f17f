package delimtools

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/text/encoding"

	"github.com/nao1215/delimtools/store"
)

// OpenFunc opens a fresh stream over the same source on every call.
// Reads that count totals call it twice.
type OpenFunc func(ctx context.Context) (io.ReadCloser, error)

// Codec reads and writes delimited documents held in a store.Store.
//
// The typical usage pattern is:
//
//	st, err := fsstore.New("./data")
//	if err != nil {
//		return err
//	}
//	codec := delimtools.New(st, delimtools.WithLogger(logger))
//	result := codec.ParseDocument(ctx, "users.csv",
//		delimtools.NewReadOptions().WithHeaderRow(true))
//	if !result.Success {
//		return result.Err
//	}
//
// Every operation returns a result value instead of an error; the Err field of a
// failed result holds the categorized error for errors.Is.
type Codec struct {
	// store holds the documents, nil for store-free use through ParseReader
	store store.Store
	// logger receives operation traces, discarded by default
	logger *slog.Logger
	// sourceEncoding decodes sources to UTF-8, nil for UTF-8 sources
	sourceEncoding encoding.Encoding
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger used for operation traces.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSourceEncoding decodes every source from enc before parsing.
func WithSourceEncoding(enc encoding.Encoding) Option {
	return func(c *Codec) {
		c.sourceEncoding = enc
	}
}

// New creates a Codec over st. st may be nil when only ParseReader and
// ObjectsToDelimitedText are used.
func New(st store.Store, opts ...Option) *Codec {
	c := &Codec{
		store:  st,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errNoStore is returned by document operations of a Codec built without a store
var errNoStore = errors.New("delimtools: codec has no document store")

// documentOpener returns an OpenFunc for a stored document. The stream is
// decompressed when it starts with a known magic number and decoded from the
// source encoding.
func (c *Codec) documentOpener(id store.DocumentID) OpenFunc {
	return func(ctx context.Context) (io.ReadCloser, error) {
		if c.store == nil {
			return nil, errNoStore
		}
		rc, err := c.store.Open(ctx, id)
		if err != nil {
			return nil, err
		}
		return c.decodeSource(rc)
	}
}

// decodeSource layers decompression and charset decoding over rc.
func (c *Codec) decodeSource(rc io.ReadCloser) (io.ReadCloser, error) {
	dr, err := decompressingReader(rc)
	if err != nil {
		_ = rc.Close()
		return nil, ioError(err)
	}
	return &sourceReader{
		Reader:       decodeCharset(dr, c.sourceEncoding),
		decompressor: dr,
		closer:       rc,
	}, nil
}

// sourceReader closes the decompressor then the underlying handle.
type sourceReader struct {
	io.Reader
	decompressor io.Closer
	closer       io.Closer
}

func (s *sourceReader) Close() error {
	err := s.decompressor.Close()
	if cerr := s.closer.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// logFailure records a failed operation and returns err.
func (c *Codec) logFailure(ctx context.Context, ec *ErrorContext, err error) error {
	c.logger.ErrorContext(ctx, "operation failed",
		slog.String("operation", ec.Operation),
		slog.String("document", store.SanitizeForLog(ec.Document)),
		slog.Any("error", err))
	return ec.Error(err)
}
