package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     Dialect
	}{
		{"readme.md", DialectMarkdown},
		{"notes.MARKDOWN", DialectMarkdown},
		{"page.htm", DialectHTML},
		{"book.adoc", DialectAsciiDoc},
		{"report.pdf", DialectNumbered},
		{"manual.txt", DialectNumbered},
		{"letter.docx", DialectMarkdown},
	}
	for _, tt := range tests {
		s, d, err := ForFile(tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if d != tt.want {
			t.Errorf("filename=%q: expected dialect %q, got %q", tt.filename, tt.want, d)
		}
		if s == nil {
			t.Errorf("filename=%q: expected a scanner", tt.filename)
		}
		if !IsSupportedExtension(tt.filename) {
			t.Errorf("filename=%q: expected supported extension", tt.filename)
		}
	}
}

func TestForFile_Unsupported(t *testing.T) {
	_, _, err := ForFile("data.csv")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if IsSupportedExtension("data.csv") {
		t.Error("expected .csv to be unsupported")
	}
	if _, err := ForDialect("rst"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for unknown dialect, got %v", err)
	}
}

func TestReadText_PlainFiles(t *testing.T) {
	text, err := ReadText(strings.NewReader("# Hi\n"), "a.md", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "# Hi\n" {
		t.Errorf("expected text unchanged, got %q", text)
	}
	if ConverterForFile("a.md", false) != nil {
		t.Error("expected no converter for markdown")
	}
	if _, ok := ConverterForFile("a.PDF", true).(*PDFConverter); !ok {
		t.Error("expected PDF converter")
	}
	if _, ok := ConverterForFile("a.docx", false).(*DOCXConverter); !ok {
		t.Error("expected DOCX converter")
	}
}

func TestDOCXConverter_InvalidInput(t *testing.T) {
	_, err := (&DOCXConverter{}).Convert(strings.NewReader("not a zip"), "broken.docx")
	if err == nil {
		t.Fatal("expected error for invalid docx")
	}
}

func TestDocxMarkdown_Empty(t *testing.T) {
	if got := docxMarkdown(nil); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
