// Package lineindex maps byte offsets in a text to row/column points.
package lineindex

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Index holds the start offset of every line of a text.
type Index struct {
	text   string
	starts []int
}

// New indexes text. Lines are separated by '\n'; a trailing '\r' belongs to its line.
func New(text string) *Index {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{text: text, starts: starts}
}

// LineCount returns the number of lines. An empty text has one empty line.
func (x *Index) LineCount() int {
	return len(x.starts)
}

// Position converts a byte offset into a point. Offsets outside the text are
// clamped to its bounds.
func (x *Index) Position(offset int) doctree.Point {
	if offset < 0 {
		offset = 0
	}
	if offset > len(x.text) {
		offset = len(x.text)
	}
	row := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	col := utf8.RuneCountInString(x.text[x.starts[row]:offset])
	return doctree.Point{Row: row, Column: col}
}

// Line returns the text of row without its line terminator.
func (x *Index) Line(row int) string {
	if row < 0 || row >= len(x.starts) {
		return ""
	}
	end := len(x.text)
	if row+1 < len(x.starts) {
		end = x.starts[row+1] - 1
	}
	return strings.TrimSuffix(x.text[x.starts[row]:end], "\r")
}

// Lines returns every line of the text.
func (x *Index) Lines() []string {
	out := make([]string, len(x.starts))
	for i := range x.starts {
		out[i] = x.Line(i)
	}
	return out
}

// End is the point just past the last character of the text.
func (x *Index) End() doctree.Point {
	last := len(x.starts) - 1
	return doctree.Point{Row: last, Column: utf8.RuneCountInString(x.Line(last))}
}
