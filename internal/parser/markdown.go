package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/lineindex"
)

// MarkdownScanner finds ATX and setext headings using goldmark.
// Headings nested in lists or block quotes are not part of the outline.
type MarkdownScanner struct{}

func (s *MarkdownScanner) Scan(src string) ([]doctree.RawHeading, error) {
	source := []byte(src)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))
	idx := lineindex.New(src)

	var out []doctree.RawHeading
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		lines := h.Lines()
		if lines.Len() == 0 {
			continue
		}
		label := strings.TrimSpace(string(h.Text(source)))
		if label == "" {
			continue
		}
		start := idx.Position(lines.At(0).Start)
		end := idx.Position(lines.At(lines.Len() - 1).Stop)
		out = append(out, doctree.RawHeading{
			Level: h.Level,
			Label: label,
			HeadingRange: doctree.Range{
				Start: doctree.Point{Row: start.Row},
				End:   end,
			},
		})
	}
	return out, nil
}
