// Package extract pulls plain text out of report files in common
// document formats.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor extracts report text from files on disk.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content. The
// format is chosen by extension; unknown extensions are treated as
// plain text.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ExtractBytes extracts text from content based on ext, which includes
// the leading dot (e.g. ".pdf"). Anything not recognized as a binary
// document format is treated as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractWord(content)
	case ".pptx":
		return extractSlides(content)
	case ".xlsx":
		return extractWorkbook(content)
	case ".odt", ".odp", ".ods":
		return extractOpenDoc(content)
	default:
		return extractPlain(content)
	}
}
