package parser

import (
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func TestAsciiDocScanner(t *testing.T) {
	input := "= Document Title\n\nPreamble.\n\n== Section One\r\ntext\n=== Deeper ===\n==NoSpace\n"
	headings, err := AsciiDocScanner().Scan(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		level int
		label string
		row   int
	}{
		{1, "Document Title", 0},
		{2, "Section One", 4},
		{3, "Deeper ===", 6},
	}
	if len(headings) != len(want) {
		t.Fatalf("expected %d headings, got %d: %+v", len(want), len(headings), headings)
	}
	for i, w := range want {
		h := headings[i]
		if h.Level != w.level || h.Label != w.label || h.HeadingRange.Start.Row != w.row {
			t.Errorf("heading %d: expected %d %q row %d, got %d %q row %d",
				i, w.level, w.label, w.row, h.Level, h.Label, h.HeadingRange.Start.Row)
		}
	}
	if headings[0].HeadingRange.End != (doctree.Point{Row: 0, Column: 16}) {
		t.Errorf("unexpected end %+v", headings[0].HeadingRange.End)
	}
}

func TestNumberedScanner(t *testing.T) {
	input := `Contents
1 Introduction ........ 3
2 Methods    9

1 Introduction
Some text about 3 things.
1.1 Background
  1.2. Scope
2 Methods
2.1.3 Deep Detail
12 apples were eaten
`
	headings, err := NumberedScanner().Scan(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		level int
		label string
		row   int
	}{
		{1, "Introduction", 4},
		{2, "Background", 6},
		{2, "Scope", 7},
		{1, "Methods", 8},
		{3, "Deep Detail", 9},
	}
	if len(headings) != len(want) {
		t.Fatalf("expected %d headings, got %d: %+v", len(want), len(headings), headings)
	}
	for i, w := range want {
		h := headings[i]
		if h.Level != w.level || h.Label != w.label || h.HeadingRange.Start.Row != w.row {
			t.Errorf("heading %d: expected %d %q row %d, got %d %q row %d",
				i, w.level, w.label, w.row, h.Level, h.Label, h.HeadingRange.Start.Row)
		}
	}
}
