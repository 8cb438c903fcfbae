package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// pageBreak separates pages in converted text so a heading at the top of a page
// always starts its own line.
const pageBreak = "\n\n"

// PDFConverter turns a PDF into plain text for the numbered heading scanner.
// Pages are read with ledongthuc/pdf; pdftotext is tried when that fails and
// FallbackPdftotext is set.
type PDFConverter struct {
	FallbackPdftotext bool
}

func (c *PDFConverter) Convert(r io.Reader, filename string) (string, error) {
	// The PDF reader needs random access, so the upload is spooled to disk.
	path, cleanup, err := spoolTemp(r, "docoutline-pdf-*.pdf")
	if err != nil {
		return "", err
	}
	defer cleanup()

	pages, err := pdfPages(path)
	if err != nil && c.FallbackPdftotext {
		pages, err = pdftotextPages(path)
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text from %s: %w", filename, err)
	}
	return strings.Join(pages, pageBreak), nil
}

func spoolTemp(r io.Reader, pattern string) (string, func(), error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { os.Remove(tmp.Name()) }
	_, err = io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	return tmp.Name(), cleanup, nil
}

// pdfPages returns the plain text of every readable page. Pages that fail to
// decode are skipped rather than failing the document.
func pdfPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, strings.TrimRight(text, "\n"))
	}
	return pages, nil
}

// pdftotextPages runs poppler's pdftotext, which marks page ends with a form feed.
func pdftotextPages(path string) ([]string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	pages := strings.Split(strings.TrimRight(string(out), "\f"), "\f")
	for i, p := range pages {
		pages[i] = strings.TrimRight(p, "\n")
	}
	return pages, nil
}
