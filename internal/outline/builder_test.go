package outline

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// raw builds headings on consecutive rows spaced two apart, starting at row 0.
func raw(specs ...any) []doctree.RawHeading {
	var out []doctree.RawHeading
	for i := 0; i+1 < len(specs); i += 2 {
		level := specs[i].(int)
		label := specs[i+1].(string)
		row := len(out) * 2
		out = append(out, doctree.RawHeading{
			Level: level,
			Label: label,
			HeadingRange: doctree.Range{
				Start: doctree.Point{Row: row},
				End:   doctree.Point{Row: row, Column: len(label)},
			},
		})
	}
	return out
}

func labels(hs []*doctree.Heading) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.Label)
	}
	return out
}

func TestBuild_SiblingsAndAscend(t *testing.T) {
	in := raw(1, "A", 2, "B", 2, "C", 1, "D")
	forest, err := Build(in, 4)
	require.NoError(t, err)

	require.Equal(t, []string{"A", "D"}, labels(forest))
	a, d := forest[0], forest[1]
	require.Equal(t, []string{"B", "C"}, labels(a.Children))
	b, c := a.Children[0], a.Children[1]

	assert.Equal(t, doctree.Point{Row: 5}, a.Range.End, "A ends the line before D")
	assert.Equal(t, doctree.Point{Row: 3}, b.Range.End, "B ends the line before C")
	assert.Equal(t, doctree.Point{Row: 5}, c.Range.End, "C is closed by D")
	assert.True(t, d.Range.IsOpen())
	assert.Empty(t, d.Children)
}

func TestBuild_OverDepthHeadingDropped(t *testing.T) {
	forest, err := Build(raw(1, "A", 3, "B"), 2)
	require.NoError(t, err)

	require.Len(t, forest, 1)
	assert.Equal(t, "A", forest[0].Label)
	assert.Empty(t, forest[0].Children)
	assert.True(t, forest[0].Range.IsOpen())
}

func TestBuild_EmptyInput(t *testing.T) {
	forest, err := Build(nil, 4)
	require.NoError(t, err)
	assert.Empty(t, forest)
}

func TestBuild_FirstHeadingBelowTopLevel(t *testing.T) {
	forest, err := Build(raw(2, "X"), 4)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, "X", forest[0].Label)
	assert.Equal(t, 2, forest[0].Level)
}

func TestBuild_AscendKeepsParentOpen(t *testing.T) {
	forest, err := Build(raw(1, "A", 2, "B", 3, "C", 2, "D"), 4)
	require.NoError(t, err)

	require.Len(t, forest, 1)
	a := forest[0]
	assert.True(t, a.Range.IsOpen(), "A still owns D")
	require.Equal(t, []string{"B", "D"}, labels(a.Children))
	b := a.Children[0]
	assert.Equal(t, doctree.Point{Row: 5}, b.Range.End)
	assert.Equal(t, doctree.Point{Row: 5}, b.Children[0].Range.End)
}

func TestBuild_OverDepthDoesNotCloseRanges(t *testing.T) {
	// The level-5 heading sits between two level-2 headings but must not close B.
	forest, err := Build(raw(1, "A", 2, "B", 5, "deep", 2, "C"), 4)
	require.NoError(t, err)

	b := forest[0].Children[0]
	assert.Equal(t, doctree.Point{Row: 5}, b.Range.End)
	assert.Empty(t, b.Children)
}

func TestBuild_HeadingAfterDroppedAttachesToKeptAncestor(t *testing.T) {
	forest, err := Build(raw(1, "A", 3, "dropped", 2, "B"), 2)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, []string{"B"}, labels(forest[0].Children))
}

func TestBuild_AdjacentSiblingsProduceEmptySpan(t *testing.T) {
	in := []doctree.RawHeading{
		{Level: 1, Label: "A", HeadingRange: doctree.Range{Start: doctree.Point{Row: 3}, End: doctree.Point{Row: 3, Column: 1}}},
		{Level: 1, Label: "B", HeadingRange: doctree.Range{Start: doctree.Point{Row: 3, Column: 4}, End: doctree.Point{Row: 3, Column: 5}}},
	}
	forest, err := Build(in, 4)
	require.NoError(t, err)
	assert.Equal(t, doctree.Point{Row: 2, Column: 4}, forest[0].Range.End)
}

func TestBuild_NonMonotonicLevels(t *testing.T) {
	forest, err := Build(raw(1, "A", 3, "B", 2, "C"), 4)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, []string{"B", "C"}, labels(forest[0].Children))
	assert.Equal(t, doctree.Point{Row: 3}, forest[0].Children[0].Range.End)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := raw(1, "A", 1, "B")
	before := in[1].HeadingRange
	_, err := Build(in, 4)
	require.NoError(t, err)
	assert.Equal(t, before, in[1].HeadingRange)
}

func TestBuild_ContractViolations(t *testing.T) {
	unsorted := raw(1, "A", 1, "B")
	unsorted[0], unsorted[1] = unsorted[1], unsorted[0]

	badLevel := raw(1, "A")
	badLevel[0].Level = 0

	badLabel := raw(1, "A")
	badLabel[0].Label = ""

	badRange := raw(1, "A")
	badRange[0].HeadingRange.End = doctree.Point{}
	badRange[0].HeadingRange.Start = doctree.Point{Row: 1}

	tests := []struct {
		name     string
		in       []doctree.RawHeading
		maxDepth int
		index    int
	}{
		{"unsorted", unsorted, 4, 1},
		{"level zero", badLevel, 4, 0},
		{"empty label", badLabel, 4, 0},
		{"inverted range", badRange, 4, 0},
		{"zero max depth", raw(1, "A"), 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest, err := Build(tt.in, tt.maxDepth)
			require.Error(t, err)
			assert.Nil(t, forest)
			assert.True(t, errors.Is(err, ErrContractViolation))
			var ce *ContractError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.index, ce.Index)
		})
	}
}

// randomHeadings returns a sorted stream with random levels in [1, 6].
func randomHeadings(r *rand.Rand, n int) []doctree.RawHeading {
	out := make([]doctree.RawHeading, 0, n)
	row := 0
	for i := 0; i < n; i++ {
		row += 1 + r.IntN(3)
		out = append(out, doctree.RawHeading{
			Level:        1 + r.IntN(6),
			Label:        "h",
			HeadingRange: doctree.Range{Start: doctree.Point{Row: row}, End: doctree.Point{Row: row, Column: 1}},
		})
	}
	return out
}

// containsRows compares ranges line by line; owned ranges are line-granular.
func containsRows(outer, inner doctree.Range) bool {
	return outer.Start.Row <= inner.Start.Row && inner.End.Row <= outer.End.Row
}

func TestBuild_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 200; iter++ {
		in := randomHeadings(r, r.IntN(40))
		maxDepth := 1 + r.IntN(6)

		forest, err := Build(in, maxDepth)
		require.NoError(t, err)

		// Coverage: kept headings appear exactly once, in input order.
		flat := doctree.Flatten(forest)
		var kept []doctree.RawHeading
		for _, h := range in {
			if h.Level <= maxDepth {
				kept = append(kept, h)
			}
		}
		require.Len(t, flat, len(kept))
		for i, h := range flat {
			assert.Equal(t, kept[i].HeadingRange, h.HeadingRange)
			assert.Equal(t, kept[i].Level, h.Level)
		}

		// Range closure for consecutive kept headings.
		for i := 0; i+1 < len(flat); i++ {
			a, b := flat[i], flat[i+1]
			if b.Level <= a.Level {
				assert.Equal(t, b.HeadingRange.Start.Row-1, a.Range.End.Row)
			}
		}

		// Ordering and containment.
		doctree.Walk(forest, func(h *doctree.Heading, _ int) bool {
			assert.Equal(t, h.HeadingRange.Start, h.Range.Start)
			for i, c := range h.Children {
				assert.Greater(t, c.Level, h.Level)
				assert.True(t, containsRows(h.Range, c.Range), "parent range contains child range")
				assert.True(t, containsRows(h.Range, c.HeadingRange), "parent range contains child heading")
				if i > 0 {
					assert.Less(t, h.Children[i-1].HeadingRange.Start.Compare(c.HeadingRange.Start), 1)
				}
			}
			return true
		})

		// Determinism.
		again, err := Build(in, maxDepth)
		require.NoError(t, err)
		assert.Equal(t, forest, again)
	}
}
