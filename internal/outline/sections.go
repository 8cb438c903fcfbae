package outline

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Section is the text a heading owns, with its structural context.
type Section struct {
	Label      string        `json:"label"`
	Level      int           `json:"level"`
	Breadcrumb []string      `json:"breadcrumb"` // Labels from the top-level ancestor down to this heading
	Range      doctree.Range `json:"range"`      // Owned range, resolved to the document end
	Text       string        `json:"text"`
	Tokens     int           `json:"tokens"`
}

// Sections walks the forest in document order and cuts the owned text of every
// heading out of lines. Open ranges end at docEnd.
func Sections(headings []*doctree.Heading, lines []string, docEnd doctree.Point) []Section {
	var sections []Section
	for _, h := range headings {
		sections = walkHeading(h, nil, lines, docEnd, sections)
	}
	return sections
}

func walkHeading(h *doctree.Heading, breadcrumb []string, lines []string, docEnd doctree.Point, sections []Section) []Section {
	bc := make([]string, 0, len(breadcrumb)+1)
	bc = append(bc, breadcrumb...)
	bc = append(bc, h.Label)

	r := h.Range.Resolve(docEnd)
	text := sliceLines(lines, r)
	sections = append(sections, Section{
		Label:      h.Label,
		Level:      h.Level,
		Breadcrumb: bc,
		Range:      r,
		Text:       text,
		Tokens:     EstimateTokens(text),
	})

	for _, child := range h.Children {
		sections = walkHeading(child, bc, lines, docEnd, sections)
	}
	return sections
}

// sliceLines returns the whole rows covered by r. A range that ends before it
// starts owns only its heading line.
func sliceLines(lines []string, r doctree.Range) string {
	first := r.Start.Row
	last := r.End.Row
	if last < first {
		last = first
	}
	if first < 0 {
		first = 0
	}
	if last >= len(lines) {
		last = len(lines) - 1
	}
	if first > last {
		return ""
	}
	return strings.TrimRight(strings.Join(lines[first:last+1], "\n"), "\n ")
}
