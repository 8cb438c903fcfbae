package doctree

import (
	"math"
	"time"
)

// Point is a 0-based row and rune column in a document.
type Point struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Infinity marks a range end that has not been closed yet. It is resolved to the
// real document end only when the range is read.
var Infinity = Point{Row: math.MaxInt, Column: math.MaxInt}

// Compare returns -1, 0 or 1 as p is before, equal to or after o.
func (p Point) Compare(o Point) int {
	switch {
	case p.Row < o.Row:
		return -1
	case p.Row > o.Row:
		return 1
	case p.Column < o.Column:
		return -1
	case p.Column > o.Column:
		return 1
	}
	return 0
}

// IsInfinity reports whether p is the open-end sentinel.
func (p Point) IsInfinity() bool {
	return p == Infinity
}

// Range is a span between two points, both inclusive of their rows.
type Range struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// IsOpen reports whether the range still extends to the end of the document.
func (r Range) IsOpen() bool {
	return r.End.IsInfinity()
}

// Resolve replaces an open end with docEnd.
func (r Range) Resolve(docEnd Point) Range {
	if r.IsOpen() {
		r.End = docEnd
	}
	return r
}

// Contains reports whether o lies within r.
func (r Range) Contains(o Range) bool {
	return r.Start.Compare(o.Start) <= 0 && o.End.Compare(r.End) <= 0
}

// RawHeading is a heading occurrence as found by a scanner, before nesting.
type RawHeading struct {
	Level        int    // 1 is the outermost level
	Label        string // Display text
	HeadingRange Range  // Span of the heading marker and text
}

// Heading is a node of a built outline.
type Heading struct {
	Level        int        `json:"level"`
	Label        string     `json:"label"`
	HeadingRange Range      `json:"heading_range"`
	Range        Range      `json:"range"` // Owned span; End is Infinity until closed
	Children     []*Heading `json:"children"`
}

// Outline is one published forest of headings for a document revision.
type Outline struct {
	DocID       string     `json:"doc_id"`
	Revision    uint64     `json:"revision"`
	Dialect     string     `json:"dialect"`
	MaxDepth    int        `json:"max_depth"`
	ContentHash string     `json:"content_hash"`
	DocumentEnd Point      `json:"document_end"`
	BuiltAt     time.Time  `json:"built_at"`
	Headings    []*Heading `json:"headings"`
}

// Walk visits every heading depth-first in document order. Returning false from
// fn skips the heading's children.
func Walk(headings []*Heading, fn func(h *Heading, depth int) bool) {
	var walk func(nodes []*Heading, depth int)
	walk = func(nodes []*Heading, depth int) {
		for _, h := range nodes {
			if fn(h, depth) {
				walk(h.Children, depth+1)
			}
		}
	}
	walk(headings, 0)
}

// Flatten returns all headings in document order.
func Flatten(headings []*Heading) []*Heading {
	var out []*Heading
	Walk(headings, func(h *Heading, _ int) bool {
		out = append(out, h)
		return true
	})
	return out
}

// Count returns the number of headings in the forest.
func Count(headings []*Heading) int {
	n := 0
	Walk(headings, func(*Heading, int) bool {
		n++
		return true
	})
	return n
}

// Resolved returns a deep copy of the forest with open ranges closed at docEnd.
func Resolved(headings []*Heading, docEnd Point) []*Heading {
	out := make([]*Heading, 0, len(headings))
	for _, h := range headings {
		out = append(out, &Heading{
			Level:        h.Level,
			Label:        h.Label,
			HeadingRange: h.HeadingRange,
			Range:        h.Range.Resolve(docEnd),
			Children:     Resolved(h.Children, docEnd),
		})
	}
	return out
}
