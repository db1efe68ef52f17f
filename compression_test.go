package delimtools

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func compressed(t *testing.T, ct CompressionType, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := compressingWriter(&buf, ct)
	if err != nil {
		t.Fatalf("compressingWriter() error = %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func TestCompressionRoundTrip(t *testing.T) {
	t.Parallel()

	data := []byte("id,name\n1,alice\n2,bob\n")
	for _, ct := range []CompressionType{CompressionNone, CompressionGZ, CompressionXZ, CompressionZSTD} {
		t.Run(ct.String(), func(t *testing.T) {
			t.Parallel()

			encoded := compressed(t, ct, data)
			if got := detectCompression(encoded); got != ct {
				t.Errorf("detectCompression() = %v, want %v", got, ct)
			}

			r, err := decompressingReader(bytes.NewReader(encoded))
			if err != nil {
				t.Fatalf("decompressingReader() error = %v", err)
			}
			defer r.Close() //nolint:errcheck

			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("read %q, want %q", got, data)
			}
		})
	}
}

func TestDetectCompression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   CompressionType
	}{
		{"plain text", []byte("a,b,c\n"), CompressionNone},
		{"empty", nil, CompressionNone},
		{"gzip", []byte{0x1f, 0x8b, 0x08}, CompressionGZ},
		{"bzip2", []byte("BZh91AY"), CompressionBZ2},
		{"text starting like bzip2", []byte("BZh,1\n"), CompressionNone},
		{"xz", []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, CompressionXZ},
		{"truncated xz magic", []byte{0xfd, '7', 'z'}, CompressionNone},
		{"zstd", []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, CompressionZSTD},
	}
	for _, tt := range tests {
		if got := detectCompression(tt.header); got != tt.want {
			t.Errorf("%s: detectCompression() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDecompressingReader(t *testing.T) {
	t.Parallel()

	t.Run("short plain input", func(t *testing.T) {
		t.Parallel()

		r, err := decompressingReader(bytes.NewReader([]byte("a")))
		if err != nil {
			t.Fatalf("decompressingReader() error = %v", err)
		}
		got, _ := io.ReadAll(r)
		if string(got) != "a" {
			t.Errorf("read %q, want %q", got, "a")
		}
	})

	t.Run("gzip magic with a broken header", func(t *testing.T) {
		t.Parallel()

		if _, err := decompressingReader(bytes.NewReader([]byte{0x1f, 0x8b, 'x'})); err == nil {
			t.Error("decompressingReader() error = nil, want error")
		}
	})

	t.Run("truncated zstd stream", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = w.Write(bytes.Repeat([]byte("abc,def\n"), 1000))
		_ = w.Close()

		r, err := decompressingReader(bytes.NewReader(buf.Bytes()[:buf.Len()/2]))
		if err != nil {
			return
		}
		defer r.Close() //nolint:errcheck
		if _, err := io.ReadAll(r); err == nil {
			t.Error("ReadAll() error = nil, want error for truncated stream")
		}
	})

	t.Run("read failure", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		if _, err := decompressingReader(failingReader{boom}); !errors.Is(err, boom) {
			t.Errorf("decompressingReader() error = %v, want %v", err, boom)
		}
	})
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestCompressingWriter(t *testing.T) {
	t.Parallel()

	if _, err := compressingWriter(&bytes.Buffer{}, CompressionBZ2); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("bz2 error = %v, want %v", err, ErrUnsupportedFormat)
	}
	if _, err := compressingWriter(&bytes.Buffer{}, CompressionType(99)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unknown type error = %v, want %v", err, ErrUnsupportedFormat)
	}
}

func TestCompressionType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		compressionType CompressionType
		name            string
		extension       string
		aliases         []string
	}{
		{CompressionNone, "none", "", []string{"", "NONE"}},
		{CompressionGZ, "gz", "gz", []string{"gzip", "GZ"}},
		{CompressionBZ2, "bz2", "bz2", []string{"bzip2"}},
		{CompressionXZ, "xz", "xz", nil},
		{CompressionZSTD, "zstd", "zst", []string{"zst"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.compressionType.String(); got != tt.name {
				t.Errorf("String() = %v, want %v", got, tt.name)
			}
			if got := tt.compressionType.Extension(); got != tt.extension {
				t.Errorf("Extension() = %v, want %v", got, tt.extension)
			}
			for _, name := range append([]string{tt.name}, tt.aliases...) {
				parsed, err := ParseCompressionType(name)
				if err != nil || parsed != tt.compressionType {
					t.Errorf("ParseCompressionType(%q) = %v, %v", name, parsed, err)
				}
			}
		})
	}

	if _, err := ParseCompressionType("rar"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseCompressionType(rar) error = %v, want %v", err, ErrUnsupportedFormat)
	}
}
