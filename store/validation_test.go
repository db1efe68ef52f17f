package store

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     Document
		wantErr bool
	}{
		{name: "Valid name with extension", doc: Document{Name: "report", Extension: "csv"}},
		{name: "Valid name without extension", doc: Document{Name: "report"}},
		{name: "Empty name", doc: Document{Extension: "csv"}, wantErr: true},
		{name: "Whitespace only name", doc: Document{Name: "   ", Extension: "csv"}, wantErr: true},
		{name: "Hidden file", doc: Document{Name: ".hidden", Extension: "csv"}, wantErr: true},
		{name: "Path separator", doc: Document{Name: "a/b", Extension: "csv"}, wantErr: true},
		{name: "Backslash", doc: Document{Name: `a\b`, Extension: "csv"}, wantErr: true},
		{name: "Null byte", doc: Document{Name: "a\x00b", Extension: "csv"}, wantErr: true},
		{name: "Windows reserved name", doc: Document{Name: "CON", Extension: "csv"}, wantErr: true},
		{name: "Too long", doc: Document{Name: strings.Repeat("a", MaxNameLength), Extension: "csv"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateDocument(tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocument() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidName) {
				t.Errorf("ValidateDocument() error = %v, expected %v", err, ErrInvalidName)
			}
		})
	}
}

func TestValidateRelativePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "Valid relative path", path: "reports/q1.csv"},
		{name: "Inner parent reference stays inside", path: "reports/../q1.csv"},
		{name: "Empty path", path: "", wantErr: true},
		{name: "Whitespace only path", path: "  ", wantErr: true},
		{name: "Null byte", path: "q1\x00.csv", wantErr: true},
		{name: "Absolute path", path: "/etc/passwd", wantErr: true},
		{name: "Path traversal attempt", path: "../../etc/passwd", wantErr: true},
		{name: "Backslash separated", path: `reports\q1.csv`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateRelativePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRelativePath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidName) {
				t.Errorf("ValidateRelativePath() error = %v, expected %v", err, ErrInvalidName)
			}
		})
	}
}

func TestSanitizeForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Plain name", input: "reports/q1.csv", want: "reports/q1.csv"},
		{name: "Sensitive pattern", input: "my_password.csv", want: "[REDACTED]"},
		{name: "Sensitive pattern in upper case", input: "SECRET.txt", want: "[REDACTED]"},
		{name: "Long input is truncated", input: strings.Repeat("x", 250), want: strings.Repeat("x", 200) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeForLog(tt.input); got != tt.want {
				t.Errorf("SanitizeForLog() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocumentFileName(t *testing.T) {
	t.Parallel()

	if got := (Document{Name: "a", Extension: "csv"}).FileName(); got != "a.csv" {
		t.Errorf("FileName() = %q, want %q", got, "a.csv")
	}
	if got := (Document{Name: "a"}).FileName(); got != "a" {
		t.Errorf("FileName() = %q, want %q", got, "a")
	}
}
