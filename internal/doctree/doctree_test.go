package doctree

import (
	"encoding/json"
	"testing"
)

func pt(row, col int) Point { return Point{Row: row, Column: col} }

func sampleForest() []*Heading {
	return []*Heading{
		{
			Level: 1, Label: "A",
			Range: Range{Start: pt(0, 0), End: pt(3, 0)},
			Children: []*Heading{
				{Level: 2, Label: "A.1", Range: Range{Start: pt(1, 0), End: pt(3, 0)}},
			},
		},
		{Level: 1, Label: "B", Range: Range{Start: pt(4, 0), End: Infinity}},
	}
}

func TestPointCompare(t *testing.T) {
	tests := []struct {
		a, b Point
		want int
	}{
		{pt(0, 0), pt(0, 0), 0},
		{pt(0, 5), pt(1, 0), -1},
		{pt(2, 0), pt(1, 9), 1},
		{pt(1, 2), pt(1, 3), -1},
		{pt(1, 3), pt(1, 2), 1},
		{pt(1, 3), Infinity, -1},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%+v.Compare(%+v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRangeResolve(t *testing.T) {
	end := pt(9, 4)
	open := Range{Start: pt(2, 0), End: Infinity}
	if !open.IsOpen() {
		t.Fatal("expected open range")
	}
	if got := open.Resolve(end); got.End != end || got.Start != open.Start {
		t.Errorf("unexpected resolved range %+v", got)
	}
	if !open.IsOpen() {
		t.Error("Resolve must not modify the receiver")
	}

	closed := Range{Start: pt(2, 0), End: pt(5, 0)}
	if got := closed.Resolve(end); got != closed {
		t.Errorf("closed range changed to %+v", got)
	}
}

func TestRangeContains(t *testing.T) {
	outer := Range{Start: pt(0, 0), End: pt(10, 0)}
	if !outer.Contains(Range{Start: pt(1, 0), End: pt(10, 0)}) {
		t.Error("expected containment")
	}
	if outer.Contains(Range{Start: pt(1, 0), End: pt(11, 0)}) {
		t.Error("did not expect containment past the end")
	}
	if !(Range{Start: pt(0, 0), End: Infinity}).Contains(Range{Start: pt(3, 0), End: Infinity}) {
		t.Error("expected open ranges to nest")
	}
}

func TestWalkAndFlatten(t *testing.T) {
	forest := sampleForest()

	var labels []string
	Walk(forest, func(h *Heading, depth int) bool {
		labels = append(labels, h.Label)
		if h.Label == "A.1" && depth != 1 {
			t.Errorf("expected depth 1 for A.1, got %d", depth)
		}
		return true
	})
	if len(labels) != 3 || labels[0] != "A" || labels[1] != "A.1" || labels[2] != "B" {
		t.Errorf("unexpected walk order %v", labels)
	}

	var top []string
	Walk(forest, func(h *Heading, _ int) bool {
		top = append(top, h.Label)
		return false
	})
	if len(top) != 2 {
		t.Errorf("expected children to be skipped, got %v", top)
	}

	if n := len(Flatten(forest)); n != 3 {
		t.Errorf("expected 3 flattened headings, got %d", n)
	}
	if n := Count(forest); n != 3 {
		t.Errorf("expected count 3, got %d", n)
	}
	if n := Count(nil); n != 0 {
		t.Errorf("expected count 0, got %d", n)
	}
}

func TestResolvedIsDeepCopy(t *testing.T) {
	forest := sampleForest()
	end := pt(7, 2)

	resolved := Resolved(forest, end)
	if resolved[1].Range.End != end {
		t.Errorf("expected open end resolved to %+v, got %+v", end, resolved[1].Range.End)
	}
	if !forest[1].Range.IsOpen() {
		t.Error("original forest must stay open")
	}
	resolved[0].Children[0].Label = "changed"
	if forest[0].Children[0].Label != "A.1" {
		t.Error("expected a deep copy")
	}

	b, err := json.Marshal(resolved[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Heading
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Range.End != pt(3, 0) || len(back.Children) != 1 {
		t.Errorf("unexpected round trip %+v", back)
	}
}
