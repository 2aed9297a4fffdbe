package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
)

// Parser converts raw document bytes into criteria sections.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// Options tune the parser returned by ForFile.
type Options struct {
	// DefaultKind labels lines that appear before any criteria heading.
	DefaultKind criteria.SectionKind
	// FallbackPdftotext shells out to pdftotext when the Go PDF reader fails.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	kind := opts.DefaultKind
	if !kind.Valid() {
		kind = criteria.Eligibility
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{DefaultKind: kind}, nil
	case ".md", ".markdown":
		return &MarkdownParser{DefaultKind: kind}, nil
	case ".csv":
		return &CSVParser{DefaultKind: kind}, nil
	case ".html", ".htm":
		return &HTMLParser{DefaultKind: kind}, nil
	case ".pdf":
		return &PDFParser{DefaultKind: kind, FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{DefaultKind: kind}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFor strips the directory and extension from a filename.
func titleFor(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
