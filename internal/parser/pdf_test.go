package parser

import (
	"os"
	"strings"
	"testing"
)

func TestPDFConverter_InvalidInput(t *testing.T) {
	c := &PDFConverter{FallbackPdftotext: false}
	_, err := c.Convert(strings.NewReader("not a pdf"), "broken.pdf")
	if err == nil {
		t.Fatal("expected error for invalid pdf")
	}
	if !strings.Contains(err.Error(), "broken.pdf") {
		t.Errorf("expected filename in error, got %v", err)
	}
}

func TestSpoolTemp(t *testing.T) {
	path, cleanup, err := spoolTemp(strings.NewReader("payload"), "docoutline-test-*")
	if err != nil {
		t.Fatalf("spoolTemp: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read spooled file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("expected payload, got %q", data)
	}
	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected spooled file to be removed, got %v", err)
	}
}
