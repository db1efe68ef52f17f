package delimtools

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// CompressionType is the compression of a source or output document.
type CompressionType int

const (
	// CompressionNone leaves the stream as is
	CompressionNone CompressionType = iota
	// CompressionGZ is gzip
	CompressionGZ
	// CompressionBZ2 is bzip2, read only
	CompressionBZ2
	// CompressionXZ is xz
	CompressionXZ
	// CompressionZSTD is Zstandard
	CompressionZSTD
)

// compressionCodec describes one compression format.
type compressionCodec struct {
	name      string
	extension string
	// sniff reports whether a stream starting with header uses the format
	sniff     func(header []byte) bool
	newReader func(r io.Reader) (io.ReadCloser, error)
	// newWriter is nil for formats that can only be read
	newWriter func(w io.Writer) (io.WriteCloser, error)
}

// sniffOrder lists formats in the order their magic numbers are tried
var sniffOrder = []CompressionType{CompressionGZ, CompressionXZ, CompressionZSTD, CompressionBZ2}

// sniffLen is the number of bytes needed to recognize every format
const sniffLen = 6

var compressionCodecs = map[CompressionType]compressionCodec{
	CompressionGZ: {
		name:      "gz",
		extension: "gz",
		sniff:     hasMagic(0x1f, 0x8b),
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			gr, err := gzip.NewReader(r)
			if err != nil {
				return nil, err
			}
			return gr, nil
		},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriter(w), nil
		},
	},
	CompressionBZ2: {
		name:      "bz2",
		extension: "bz2",
		// "BZh" followed by the block size digit
		sniff: func(header []byte) bool {
			return len(header) >= 4 && bytes.HasPrefix(header, []byte("BZh")) && header[3] >= '1' && header[3] <= '9'
		},
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(bzip2.NewReader(r)), nil
		},
	},
	CompressionXZ: {
		name:      "xz",
		extension: "xz",
		sniff:     hasMagic(0xfd, '7', 'z', 'X', 'Z', 0x00),
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			xr, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(xr), nil
		},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			xw, err := xz.NewWriter(w)
			if err != nil {
				return nil, err
			}
			return xw, nil
		},
	},
	CompressionZSTD: {
		name:      "zstd",
		extension: "zst",
		sniff:     hasMagic(0x28, 0xb5, 0x2f, 0xfd),
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return dec.IOReadCloser(), nil
		},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			enc, err := zstd.NewWriter(w)
			if err != nil {
				return nil, err
			}
			return enc, nil
		},
	},
}

func hasMagic(magic ...byte) func([]byte) bool {
	return func(header []byte) bool {
		return bytes.HasPrefix(header, magic)
	}
}

// String returns the name accepted by ParseCompressionType.
func (c CompressionType) String() string {
	if codec, ok := compressionCodecs[c]; ok {
		return codec.name
	}
	return "none"
}

// Extension returns the document extension of c without the dot, "" for CompressionNone.
func (c CompressionType) Extension() string {
	return compressionCodecs[c].extension
}

// ParseCompressionType maps a name such as "gz" or "zstd" to a CompressionType.
func ParseCompressionType(name string) (CompressionType, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "gzip":
		return CompressionGZ, nil
	case "bzip2":
		return CompressionBZ2, nil
	case "zst":
		return CompressionZSTD, nil
	}
	for ct, codec := range compressionCodecs {
		if strings.EqualFold(name, codec.name) {
			return ct, nil
		}
	}
	return CompressionNone, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, name)
}

// detectCompression recognizes a compressed stream by its first bytes.
func detectCompression(header []byte) CompressionType {
	for _, ct := range sniffOrder {
		if compressionCodecs[ct].sniff(header) {
			return ct
		}
	}
	return CompressionNone
}

// decompressingReader decompresses r when it starts with a known magic number.
// Closing the result releases the decompressor, not r.
func decompressingReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	ct := detectCompression(header)
	if ct == CompressionNone {
		return io.NopCloser(br), nil
	}
	rc, err := compressionCodecs[ct].newReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s stream: %w", ct, err)
	}
	return rc, nil
}

// compressingWriter wraps w with the encoder of ct. Closing the result flushes the
// encoder but leaves w open.
func compressingWriter(w io.Writer, ct CompressionType) (io.WriteCloser, error) {
	if ct == CompressionNone {
		return nopWriteCloser{w}, nil
	}
	codec, ok := compressionCodecs[ct]
	if !ok {
		return nil, fmt.Errorf("%w: compression type %d", ErrUnsupportedFormat, int(ct))
	}
	if codec.newWriter == nil {
		return nil, fmt.Errorf("%w: %s compression is not supported for writing", ErrUnsupportedFormat, ct)
	}
	wc, err := codec.newWriter(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s writer: %w", ct, err)
	}
	return wc, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
