// Command delimtools parses and writes delimited documents from the command line.
//
// Usage:
//
//	delimtools parse [flags] <document>
//	delimtools write [flags] <name>   < records.json
//	delimtools text  [flags]          < records.json
//	delimtools count [flags] <document>
//	delimtools lines [flags] <document>
//
// Documents are paths relative to -root. Results are printed as JSON on stdout and
// diagnostics go to stderr. The exit code is 0 on success, 1 when the operation
// failed and 2 on a usage error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/nao1215/delimtools"
	"github.com/nao1215/delimtools/domain/model"
	"github.com/nao1215/delimtools/store"
	"github.com/nao1215/delimtools/store/fsstore"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env carries the streams of one invocation.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	e := env{stdin: stdin, stdout: stdout, stderr: stderr}
	if len(args) == 0 {
		e.usage()
		return exitUsage
	}

	var err error
	switch args[0] {
	case "parse":
		err = e.parse(ctx, args[1:])
	case "write":
		err = e.write(ctx, args[1:])
	case "text":
		err = e.text(args[1:])
	case "count":
		err = e.count(ctx, args[1:])
	case "lines":
		err = e.lines(ctx, args[1:])
	case "-h", "-help", "--help", "help":
		e.usage()
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		e.usage()
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		return exitUsage
	default:
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
}

func (e env) usage() {
	fmt.Fprint(e.stderr, `usage: delimtools <command> [flags] [args]

commands:
  parse <document>   parse a document and print its records
  write <name>       write the JSON records read from stdin to a new document
  text               encode the JSON records read from stdin to delimited text
  count <document>   print the number of lines of a document
  lines <document>   print a range of lines of a document

run "delimtools <command> -h" for the flags of a command
`)
}

// common holds the flags shared by every command.
type common struct {
	root     string
	logLevel string
	encoding string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.root, "root", ".", "directory holding the documents")
	fs.StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.StringVar(&c.encoding, "encoding", "utf-8", "character set of source documents, e.g. windows-1252")
}

func (c *common) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		return nil, fmt.Errorf("%w: -log-level: %w", errUsage, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// readCodec returns a codec that can only read documents under the root.
func (c *common) readCodec(logOutput io.Writer) (*delimtools.Codec, error) {
	logger, err := c.logger(logOutput)
	if err != nil {
		return nil, err
	}
	enc, err := delimtools.LookupEncoding(c.encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: -encoding: %w", errUsage, err)
	}
	st := fsstore.NewReadOnly(os.DirFS(c.root))
	return delimtools.New(st, delimtools.WithLogger(logger), delimtools.WithSourceEncoding(enc)), nil
}

func newFlagSet(e env, name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "usage: delimtools %s [flags] %s\n\nflags:\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses args and checks the number of positional arguments.
func parseArgs(fs *flag.FlagSet, args []string, positional int) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != positional {
		return fmt.Errorf("%w: %s expects %d argument(s), got %d", errUsage, fs.Name(), positional, fs.NArg())
	}
	return nil
}

func (e env) parse(ctx context.Context, args []string) error {
	var (
		c              common
		opts           = delimtools.NewReadOptions()
		names          string
		start, batch   int
		rfc4180, lines bool
	)
	fs := newFlagSet(e, "parse", "<document>")
	c.register(fs)
	fs.StringVar(&opts.Separator, "sep", opts.Separator, "field separator")
	fs.StringVar(&opts.Quote, "quote", opts.Quote, "quote character")
	fs.StringVar(&opts.Escape, "escape", opts.Escape, "escape character")
	fs.BoolVar(&opts.IgnoreQuotes, "ignore-quotes", false, "treat quote and escape characters literally")
	fs.BoolVar(&opts.StrictQuotes, "strict-quotes", false, "drop characters between a closing quote and the next separator")
	fs.BoolVar(&opts.RejectTrailing, "reject-trailing", false, "fail on characters between a closing quote and the next separator")
	fs.BoolVar(&opts.IgnoreLeadingWhitespace, "trim-leading", false, "ignore whitespace in front of an opening quote")
	fs.BoolVar(&opts.HasHeaderRow, "header", false, "take field names from the first row")
	fs.StringVar(&names, "names", "", "comma separated field names; the first row is data")
	fs.BoolVar(&opts.IncludeTotalCount, "total", false, "include the total number of data rows")
	fs.BoolVar(&lines, "total-lines", false, "count physical lines instead of rows for -total")
	fs.IntVar(&start, "start", 1, "1-based index of the first data row")
	fs.IntVar(&batch, "batch", -1, "number of rows to return, negative for all")
	fs.IntVar(&opts.RowLimit, "limit", delimtools.DefaultRowLimit, "row cap when -batch is negative, 0 for none")
	fs.BoolVar(&rfc4180, "rfc4180", false, "RFC4180 mode: quotes inside quoted fields are doubled")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}

	codec, err := c.readCodec(e.stderr)
	if err != nil {
		return err
	}
	id := store.DocumentID(fs.Arg(0))
	page := model.NewPageRequest(start, batch)

	var result *delimtools.ParseResult
	if rfc4180 {
		result = codec.ParseRFC4180Document(ctx, id, opts.HasHeaderRow, opts.IncludeTotalCount, &page)
	} else {
		if names != "" {
			opts = opts.WithHeader(strings.Split(names, ",")...)
		}
		if lines {
			opts = opts.WithTotalCountMode(delimtools.TotalCountLines)
		}
		result = codec.ParseDocument(ctx, id, opts.WithPage(page))
	}
	return e.emit(result, result.Success, result.Err)
}

// writeFlags registers the encoding flags of write and text.
type writeFlags struct {
	opts       delimtools.WriteOptions
	header     string
	lineEnding string
	format     string
	compress   string
}

func (w *writeFlags) register(fs *flag.FlagSet) {
	w.opts = delimtools.NewWriteOptions()
	fs.StringVar(&w.opts.Separator, "sep", w.opts.Separator, "field separator")
	fs.StringVar(&w.opts.Quote, "quote", w.opts.Quote, "quote character")
	fs.StringVar(&w.opts.Escape, "escape", w.opts.Escape, "escape character")
	fs.BoolVar(&w.opts.QuoteAll, "quote-all", false, "quote every field")
	fs.BoolVar(&w.opts.IgnoreQuotes, "ignore-quotes", false, "write every field verbatim")
	fs.BoolVar(&w.opts.AutoHeaderSpacing, "spacing", false, `turn "_" into " " in automatic header names`)
	fs.StringVar(&w.header, "header", "", `"auto" for the first record's names, or comma separated names`)
	fs.StringVar(&w.lineEnding, "line-ending", "unix", "row terminator: unix or dos")
	fs.StringVar(&w.format, "format", "delimited", "output format: delimited, xlsx or parquet")
	fs.StringVar(&w.compress, "compress", "", "output compression: gz, xz or zst")
}

func (w *writeFlags) options() (delimtools.WriteOptions, error) {
	opts := w.opts.WithLineEnding(model.ParseLineEnding(w.lineEnding))
	switch w.header {
	case "":
	case "auto":
		opts = opts.WithAutoHeader(true)
	default:
		opts = opts.WithHeader(strings.Split(w.header, ",")...)
	}

	format, err := delimtools.ParseOutputFormat(w.format)
	if err != nil {
		return opts, fmt.Errorf("%w: -format: %w", errUsage, err)
	}
	compression, err := delimtools.ParseCompressionType(w.compress)
	if err != nil {
		return opts, fmt.Errorf("%w: -compress: %w", errUsage, err)
	}
	return opts.WithFormat(format).WithCompression(compression), nil
}

func (e env) write(ctx context.Context, args []string) error {
	var (
		c      common
		w      writeFlags
		folder string
		unique bool
		quota  int64
	)
	fs := newFlagSet(e, "write", "<name>")
	c.register(fs)
	w.register(fs)
	fs.StringVar(&folder, "folder", "", "folder below -root that receives the document")
	fs.BoolVar(&unique, "unique", false, "fail instead of replacing an existing document")
	fs.Int64Var(&quota, "quota", 0, "maximum total size in bytes of the documents under -root, 0 for none")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}

	opts, err := w.options()
	if err != nil {
		return err
	}
	logger, err := c.logger(e.stderr)
	if err != nil {
		return err
	}
	sources, err := decodeSources(e.stdin)
	if err != nil {
		return err
	}

	storeOpts := []fsstore.Option{fsstore.WithQuota(quota)}
	if unique {
		storeOpts = append(storeOpts, fsstore.WithUniqueNames())
	}
	st, err := fsstore.New(c.root, storeOpts...)
	if err != nil {
		return err
	}

	result := delimtools.New(st, delimtools.WithLogger(logger)).WriteDocument(ctx,
		delimtools.WriteTarget{Folder: store.FolderID(folder), Name: fs.Arg(0)}, sources, opts)
	return e.emit(result, result.Success, result.Err)
}

func (e env) text(args []string) error {
	var w writeFlags
	fs := newFlagSet(e, "text", "")
	w.register(fs)
	if err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	opts, err := w.options()
	if err != nil {
		return err
	}
	sources, err := decodeSources(e.stdin)
	if err != nil {
		return err
	}

	result := delimtools.New(nil).ObjectsToDelimitedText(sources, opts)
	if !result.Success {
		return result.Err
	}
	_, err = io.WriteString(e.stdout, result.Value)
	return err
}

func (e env) count(ctx context.Context, args []string) error {
	var c common
	fs := newFlagSet(e, "count", "<document>")
	c.register(fs)
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	codec, err := c.readCodec(e.stderr)
	if err != nil {
		return err
	}

	n := codec.CountLines(ctx, store.DocumentID(fs.Arg(0)))
	fmt.Fprintln(e.stdout, n)
	if n < 0 {
		return fmt.Errorf("cannot count the lines of %s", fs.Arg(0))
	}
	return nil
}

func (e env) lines(ctx context.Context, args []string) error {
	var (
		c            common
		start, count int
	)
	fs := newFlagSet(e, "lines", "<document>")
	c.register(fs)
	fs.IntVar(&start, "start", 1, "1-based number of the first line")
	fs.IntVar(&count, "count", -1, "number of lines, negative for all")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	codec, err := c.readCodec(e.stderr)
	if err != nil {
		return err
	}

	result := codec.ReadLines(ctx, store.DocumentID(fs.Arg(0)), start, count)
	return e.emit(result, result.Success, result.Err)
}

// emit prints v as indented JSON and returns err when the operation failed.
func (e env) emit(v any, success bool, err error) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(v); encErr != nil {
		return encErr
	}
	if success {
		return nil
	}
	if err == nil {
		err = errors.New("operation failed")
	}
	return err
}
