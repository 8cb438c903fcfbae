package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/lineindex"
)

// HTMLScanner finds <h1>..<h6> elements. It tokenizes rather than parses so
// every heading keeps its source offset.
type HTMLScanner struct{}

func (s *HTMLScanner) Scan(src string) ([]doctree.RawHeading, error) {
	idx := lineindex.New(src)
	z := html.NewTokenizer(strings.NewReader(src))

	type openHeading struct {
		level int
		start int
		text  strings.Builder
	}
	var (
		out    []doctree.RawHeading
		cur    *openHeading
		skip   string // raw-text element being skipped
		offset int
	)

	for {
		tt := z.Next()
		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return out, nil
			}
			return nil, fmt.Errorf("tokenize html: %w", z.Err())

		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				skip = tag
			case cur == nil && headingLevel(tag) > 0:
				cur = &openHeading{level: headingLevel(tag), start: start}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == skip {
				skip = ""
				continue
			}
			if cur == nil || headingLevel(tag) != cur.level {
				continue
			}
			label := strings.Join(strings.Fields(cur.text.String()), " ")
			if label != "" {
				out = append(out, doctree.RawHeading{
					Level: cur.level,
					Label: label,
					HeadingRange: doctree.Range{
						Start: idx.Position(cur.start),
						End:   idx.Position(offset),
					},
				})
			}
			cur = nil

		case html.TextToken:
			if cur != nil && skip == "" {
				cur.text.Write(z.Text())
			}
		}
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}
