package store

import (
	"fmt"
	"path"
	"strings"
)

// MaxNameLength defines the maximum length of a document file name
const MaxNameLength = 255

// ValidateDocument checks the name and extension of doc.
func ValidateDocument(doc Document) error {
	if strings.TrimSpace(doc.Name) == "" {
		return fmt.Errorf("%w: document name is empty", ErrInvalidName)
	}
	fileName := doc.FileName()
	if len(fileName) > MaxNameLength {
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidName, SanitizeForLog(fileName), MaxNameLength)
	}
	if !IsValidFileName(fileName) {
		return fmt.Errorf("%w: %q", ErrInvalidName, SanitizeForLog(fileName))
	}
	if isReservedName(doc.Name) {
		return fmt.Errorf("%w: %q is a reserved name", ErrInvalidName, doc.Name)
	}
	return nil
}

// IsValidFileName checks if a file name is safe to store
func IsValidFileName(fileName string) bool {
	// Skip hidden files
	if strings.HasPrefix(fileName, ".") {
		return false
	}

	// Check for null bytes
	if strings.Contains(fileName, "\x00") {
		return false
	}

	// Check for suspicious characters and path separators
	suspiciousChars := []string{"<", ">", ":", "\"", "|", "?", "*", "/", "\\"}
	for _, char := range suspiciousChars {
		if strings.Contains(fileName, char) {
			return false
		}
	}

	return true
}

// ValidateRelativePath checks that p is a slash separated path that stays inside its root.
func ValidateRelativePath(p string) error {
	// Check for empty or whitespace-only paths
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidName)
	}

	// Check for null byte injection
	if strings.Contains(p, "\x00") {
		return fmt.Errorf("%w: path contains a null byte", ErrInvalidName)
	}

	if strings.Contains(p, "\\") || path.IsAbs(p) {
		return fmt.Errorf("%w: %q is not a relative slash separated path", ErrInvalidName, SanitizeForLog(p))
	}

	// Check for path traversal attempts
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: %q escapes the store root", ErrInvalidName, SanitizeForLog(p))
	}
	return nil
}

// SanitizeForLog removes sensitive information from strings before logging
func SanitizeForLog(input string) string {
	// Remove common sensitive patterns
	sensitive := []string{
		"password", "passwd", "secret", "token",
		"credential", "private", "ssh", "rsa",
	}

	lower := strings.ToLower(input)
	for _, pattern := range sensitive {
		if strings.Contains(lower, pattern) {
			return "[REDACTED]"
		}
	}

	// Limit length to prevent log flooding
	const maxLogLength = 200
	if len(input) > maxLogLength {
		return input[:maxLogLength] + "..."
	}
	return input
}

// isReservedName reports Windows device names, which cannot be used as file names there.
func isReservedName(name string) bool {
	switch strings.ToLower(name) {
	case "con", "prn", "aux", "nul",
		"com1", "com2", "com3", "com4", "com5", "com6", "com7", "com8", "com9",
		"lpt1", "lpt2", "lpt3", "lpt4", "lpt5", "lpt6", "lpt7", "lpt8", "lpt9":
		return true
	}
	return false
}
