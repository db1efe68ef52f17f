// Package delimtools converts between tabular records and delimited text such as
// CSV, TSV or any other single-character separated format.
//
// A Dialect describes the separator, quote and escape characters, the quoting
// policy used on write and the line ending. RowParser turns a character stream into
// rows under a dialect and RowWriter does the reverse. On top of these the Codec
// reads and writes documents held in a store.Store.
//
// # Features
//
//   - Quoted fields with embedded separators, quotes and line breaks
//   - Quotes inside quoted fields escaped with an escape character or doubled
//   - "\n", "\r\n" and "\r" line endings, ragged rows
//   - Header rows with normalized names, explicit headers or synthetic c1..cN names
//   - Paged reads with an optional total count
//   - Transparent decompression of gzip, bzip2, xz and zstd sources
//   - Optional decoding of legacy character sets such as Windows-1252
//   - Output as delimited text, Excel XLSX or Apache Parquet, optionally compressed
//
// # Basic Usage
//
//	st, err := fsstore.New("./data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	codec := delimtools.New(st)
//
//	result := codec.ParseDocument(ctx, "users.csv",
//	    delimtools.NewReadOptions().WithHeaderRow(true))
//	if !result.Success {
//	    log.Fatal(result.Err)
//	}
//	for _, record := range result.Records {
//	    name, _ := record.Get("name")
//	    fmt.Println(name)
//	}
//
// # Paging
//
// A PageRequest selects a window of data rows. The header row, when present, is
// never counted:
//
//	opts := delimtools.NewReadOptions().
//	    WithHeaderRow(true).
//	    WithPage(model.NewPageRequest(101, 100)).
//	    WithTotalCount(true)
//
// # Writing
//
// Anything implementing Projector can be written. model.Record, Pairs and Values
// are provided:
//
//	rows := []delimtools.Projector{
//	    delimtools.Pairs{{Name: "id", Value: 1}, {Name: "name", Value: "alice"}},
//	}
//	result := codec.WriteDocument(ctx,
//	    delimtools.WriteTarget{Name: "users"},
//	    rows,
//	    delimtools.NewWriteOptions().WithAutoHeader(true))
//
// # Errors
//
// Operations return result values. A failed result carries a human readable
// ErrorMessage and an Err that wraps one of the package sentinel errors, so
// errors.Is(result.Err, delimtools.ErrInvalidDialect) and friends work.
package delimtools
