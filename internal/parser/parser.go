package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// ErrUnsupported is returned for unknown dialects and file extensions.
var ErrUnsupported = errors.New("unsupported document type")

// Scanner finds the heading occurrences of a full document text, in order.
type Scanner interface {
	Scan(text string) ([]doctree.RawHeading, error)
}

// Dialect names a heading syntax.
type Dialect string

const (
	DialectMarkdown Dialect = "markdown"
	DialectHTML     Dialect = "html"
	DialectAsciiDoc Dialect = "asciidoc"
	DialectNumbered Dialect = "numbered"
)

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".adoc":     true,
	".asciidoc": true,
	".txt":      true,
	".pdf":      true,
	".docx":     true,
}

// ForDialect returns the scanner for a dialect.
func ForDialect(d Dialect) (Scanner, error) {
	switch d {
	case DialectMarkdown:
		return &MarkdownScanner{}, nil
	case DialectHTML:
		return &HTMLScanner{}, nil
	case DialectAsciiDoc:
		return AsciiDocScanner(), nil
	case DialectNumbered:
		return NumberedScanner(), nil
	default:
		return nil, fmt.Errorf("%w: dialect %q", ErrUnsupported, d)
	}
}

// DialectForFile picks the dialect for a filename. Converted formats report the
// dialect of their converted text.
func DialectForFile(filename string) (Dialect, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown", ".docx":
		return DialectMarkdown, nil
	case ".html", ".htm":
		return DialectHTML, nil
	case ".adoc", ".asciidoc":
		return DialectAsciiDoc, nil
	case ".txt", ".pdf":
		return DialectNumbered, nil
	default:
		return "", fmt.Errorf("%w: extension %q", ErrUnsupported, ext)
	}
}

// ForFile returns the scanner and dialect for a filename.
func ForFile(filename string) (Scanner, Dialect, error) {
	d, err := DialectForFile(filename)
	if err != nil {
		return nil, "", err
	}
	s, err := ForDialect(d)
	if err != nil {
		return nil, "", err
	}
	return s, d, nil
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Converter turns a binary document into text a Scanner can read.
type Converter interface {
	Convert(r io.Reader, filename string) (string, error)
}

// ConverterForFile returns the converter for binary formats, or nil when the file
// is already text.
func ConverterForFile(filename string, pdfFallback bool) Converter {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return &PDFConverter{FallbackPdftotext: pdfFallback}
	case ".docx":
		return &DOCXConverter{}
	}
	return nil
}

// ReadText returns the scannable text of a document, converting it if needed.
func ReadText(r io.Reader, filename string, pdfFallback bool) (string, error) {
	if c := ConverterForFile(filename, pdfFallback); c != nil {
		return c.Convert(r, filename)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return string(b), nil
}
