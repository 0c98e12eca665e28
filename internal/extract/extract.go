// Package extract reads document text for indexing. Only plain text
// formats are handled here; richer formats (PDF, DOCX) belong to an
// external extraction collaborator.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Text returns the raw text of the file at path along with its format
// tag. Unsupported formats are rejected rather than half-parsed.
func Text(path string) (text, format string, err error) {
	format = Format(path)
	switch format {
	case "txt", "md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), format, nil
	default:
		return "", "", fmt.Errorf("unsupported document format %q (only .txt and .md are extracted natively)", filepath.Ext(path))
	}
}

// Format maps a file extension to its format tag.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return "txt"
	case ".md", ".markdown":
		return "md"
	default:
		return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
}
