package delimtools

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/nao1215/delimtools/domain/model"
	"github.com/nao1215/delimtools/store"
)

// WriteTarget names the document created by WriteDocument.
type WriteTarget struct {
	// Folder is the folder the document is created in.
	Folder store.FolderID
	// Name is the document name. An extension in the name is kept, otherwise
	// one is derived from the write options.
	Name string
	// UUID optionally fixes the identity of the new document.
	UUID string
	// AppendToExisting is not supported and fails the write.
	AppendToExisting bool
}

// WriteDocument creates a document from sources. Nothing is committed unless the
// whole output was encoded.
func (c *Codec) WriteDocument(ctx context.Context, target WriteTarget, sources []Projector, opts WriteOptions) *WriteResult {
	ec := NewErrorContext("write", store.DocumentID(target.Name))
	c.logger.DebugContext(ctx, "writing document",
		slog.String("document", store.SanitizeForLog(target.Name)),
		slog.Int("records", len(sources)),
		slog.String("format", opts.Format.String()),
		slog.String("compression", opts.Compression.String()))

	dialect, p, err := prepareWrite(target, sources, opts)
	if err != nil {
		return failedWrite(err, c.logFailure(ctx, ec, err))
	}
	if c.store == nil {
		return failedWrite(errNoStore, c.logFailure(ctx, ec, errNoStore))
	}

	doc := resolveDocument(target, opts)
	id, err := c.commit(ctx, doc, p, dialect, opts)
	if err != nil {
		return failedWrite(err, c.logFailure(ctx, ec, err))
	}

	c.logger.DebugContext(ctx, "wrote document",
		slog.String("document", store.SanitizeForLog(doc.FileName())),
		slog.String("id", string(id)),
		slog.Int("rows", len(p.rows)))
	return &WriteResult{Success: true, OutputDocument: id}
}

// commit encodes p into a new document. A failed encode aborts the document when the
// store supports it.
func (c *Codec) commit(ctx context.Context, doc store.Document, p projection, dialect model.Dialect, opts WriteOptions) (store.DocumentID, error) {
	if err := ctx.Err(); err != nil {
		return "", ioError(err)
	}
	id, w, err := c.store.Create(ctx, doc)
	if err != nil {
		return "", err
	}

	if err := encodeOutput(w, p, dialect, opts); err != nil {
		if a, ok := w.(store.Aborter); ok {
			_ = a.Abort()
		} else {
			_ = w.Close()
		}
		return "", ioError(err)
	}
	if err := w.Close(); err != nil {
		return "", ioError(err)
	}
	return id, nil
}

// ObjectsToDelimitedText encodes sources to delimited text in memory.
func (c *Codec) ObjectsToDelimitedText(sources []Projector, opts WriteOptions) *TextResult {
	ctx := context.Background()
	ec := NewErrorContext("objects to delimited text", "")

	fail := func(err error) *TextResult {
		return &TextResult{ErrorMessage: describeError(err), Err: c.logFailure(ctx, ec, err)}
	}

	if opts.Format != OutputFormatDelimited {
		return fail(fmt.Errorf("%w: in-memory text requires delimited output, not %v", ErrUnsupportedFormat, opts.Format))
	}
	if opts.Compression != CompressionNone {
		return fail(fmt.Errorf("%w: in-memory text cannot be compressed", ErrUnsupportedFormat))
	}
	dialect, p, err := prepareWrite(WriteTarget{}, sources, opts)
	if err != nil {
		return fail(err)
	}

	buf := getBuffer()
	defer putBuffer(buf)
	if err := writeDelimited(buf, p, dialect); err != nil {
		return fail(err)
	}
	return &TextResult{Success: true, Value: buf.String()}
}

// prepareWrite validates everything a write needs before the store is touched.
func prepareWrite(target WriteTarget, sources []Projector, opts WriteOptions) (model.Dialect, projection, error) {
	dialect, err := newValidator().validateWrite(target, opts)
	if err != nil {
		return model.Dialect{}, projection{}, err
	}
	p, err := project(sources, opts)
	if err != nil {
		return model.Dialect{}, projection{}, err
	}
	return dialect, p, nil
}

// resolveDocument splits the target name into name and extension. A name without
// extension gets the extension implied by opts; compression is always appended.
func resolveDocument(target WriteTarget, opts WriteOptions) store.Document {
	doc := store.Document{Name: target.Name, Folder: target.Folder, UUID: target.UUID}

	ext := strings.TrimPrefix(path.Ext(target.Name), ".")
	if isWordExtension(ext) && len(ext) < len(target.Name)-1 {
		doc.Name = strings.TrimSuffix(target.Name, "."+ext)
		doc.Extension = ext
		if c := opts.Compression.Extension(); c != "" && !strings.EqualFold(ext, c) {
			doc.Extension += "." + c
		}
		return doc
	}
	doc.Extension = opts.FileExtension()
	return doc
}

func isWordExtension(ext string) bool {
	if ext == "" {
		return false
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
