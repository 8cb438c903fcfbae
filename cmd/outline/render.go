package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/lineindex"
	"github.com/dgallion1/docoutline/internal/outline"
)

func render(w io.Writer, o *doctree.Outline, text string, opts outputOptions) error {
	switch {
	case opts.sections && opts.json:
		return writeJSON(w, outline.Sections(o.Headings, lineindex.New(text).Lines(), o.DocumentEnd))
	case opts.sections:
		printSections(w, o, text)
	case opts.json:
		resolved := *o
		resolved.Headings = doctree.Resolved(o.Headings, o.DocumentEnd)
		return writeJSON(w, resolved)
	default:
		printTree(w, o)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// printTree prints one heading per line, indented by depth, with its 1-based
// owned line span.
func printTree(w io.Writer, o *doctree.Outline) {
	if len(o.Headings) == 0 {
		fmt.Fprintln(w, "(no headings)")
		return
	}
	doctree.Walk(o.Headings, func(h *doctree.Heading, depth int) bool {
		r := h.Range.Resolve(o.DocumentEnd)
		end := r.End.Row
		if end < r.Start.Row {
			end = r.Start.Row
		}
		fmt.Fprintf(w, "%s%s  [%d-%d]\n", strings.Repeat("  ", depth), h.Label, r.Start.Row+1, end+1)
		return true
	})
}

func printSections(w io.Writer, o *doctree.Outline, text string) {
	for _, s := range outline.Sections(o.Headings, lineindex.New(text).Lines(), o.DocumentEnd) {
		fmt.Fprintf(w, "== %s (%d tokens)\n%s\n\n", strings.Join(s.Breadcrumb, " > "), s.Tokens, s.Text)
	}
}
