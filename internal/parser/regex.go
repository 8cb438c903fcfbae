package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/lineindex"
)

// maxLabelLen bounds heading labels; longer matches are body text.
const maxLabelLen = 120

// RegexScanner finds line-oriented headings. Pattern must run in multi-line mode
// and capture the level marker as group 1 and the label as group 2.
type RegexScanner struct {
	Pattern *regexp.Regexp
	Level   func(marker string) int
	// Reject optionally filters out labels that match the pattern but are not
	// headings.
	Reject func(label string) bool
}

var (
	asciiDocRe = regexp.MustCompile(`(?m)^(={1,6})[ \t]+(\S[^\r\n]*?)[ \t\r]*$`)
	numberedRe = regexp.MustCompile(`(?m)^[ \t]*(\d{1,3}(?:\.\d{1,3})*)\.?[ \t]+(\p{Lu}[^\r\n]*?)[ \t\r]*$`)
	// Table of contents lines: dot leaders or a trailing page number.
	tocLineRe = regexp.MustCompile(`(?:\.{3,}|…|\s{2,})\s*\d+$`)
)

// AsciiDocScanner finds "== Title" style headings; the level is the number of '='.
func AsciiDocScanner() *RegexScanner {
	return &RegexScanner{
		Pattern: asciiDocRe,
		Level:   func(marker string) int { return len(marker) },
	}
}

// NumberedScanner finds "1.2 Title" style headings; the level is the number of
// dotted components.
func NumberedScanner() *RegexScanner {
	return &RegexScanner{
		Pattern: numberedRe,
		Level:   func(marker string) int { return strings.Count(marker, ".") + 1 },
		Reject:  tocLineRe.MatchString,
	}
}

func (s *RegexScanner) Scan(src string) ([]doctree.RawHeading, error) {
	idx := lineindex.New(src)
	var out []doctree.RawHeading
	for _, m := range s.Pattern.FindAllStringSubmatchIndex(src, -1) {
		if len(m) < 6 || m[2] < 0 || m[4] < 0 {
			continue
		}
		marker := src[m[2]:m[3]]
		label := strings.TrimSpace(src[m[4]:m[5]])
		if label == "" || utf8.RuneCountInString(label) > maxLabelLen {
			continue
		}
		if s.Reject != nil && s.Reject(label) {
			continue
		}
		start := idx.Position(m[0])
		out = append(out, doctree.RawHeading{
			Level: s.Level(marker),
			Label: label,
			HeadingRange: doctree.Range{
				Start: doctree.Point{Row: start.Row},
				End:   idx.Position(m[5]),
			},
		})
	}
	return out, nil
}
