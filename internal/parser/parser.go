package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
)

// Parser decodes a statement file into pages of raw tables.
type Parser interface {
	Parse(r io.Reader, filename string) (*ledger.Document, error)
}

// Options tunes the backends that have fallbacks.
type Options struct {
	PDFFallbackRows      bool
	PDFFallbackPdftotext bool
}

// DefaultOptions enables every PDF fallback.
func DefaultOptions() Options {
	return Options{PDFFallbackRows: true, PDFFallbackPdftotext: true}
}

// SupportedExtensions lists statement file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".xlsx":     true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// ForFile returns the parser for a filename with default options.
func ForFile(filename string) (Parser, error) {
	return ForFileWith(filename, DefaultOptions())
}

// ForFileWith returns the parser for a filename.
func ForFileWith(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackRows: opts.PDFFallbackRows, FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".xlsx":
		return &XLSXParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func trimExt(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}
