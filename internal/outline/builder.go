// Package outline nests a flat stream of headings into a forest and computes the
// span each heading owns.
package outline

import (
	"errors"
	"fmt"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// DefaultMaxDepth is used when no depth limit is configured.
const DefaultMaxDepth = 4

// ErrContractViolation is matched by every *ContractError.
var ErrContractViolation = errors.New("outline contract violation")

// ContractError reports input that breaks Build's preconditions. It is a caller
// bug: the build is aborted and must not be retried with the same input.
type ContractError struct {
	Index  int // Position in the raw heading sequence, -1 for arguments
	Reason string
}

func (e *ContractError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("outline: %s", e.Reason)
	}
	return fmt.Sprintf("outline: heading %d: %s", e.Index, e.Reason)
}

func (e *ContractError) Is(target error) bool {
	return target == ErrContractViolation
}

// Build nests raw headings into a forest of top-level headings. Headings deeper
// than maxDepth are skipped entirely. raw must be sorted by heading start.
func Build(raw []doctree.RawHeading, maxDepth int) ([]*doctree.Heading, error) {
	if maxDepth < 1 {
		return nil, &ContractError{Index: -1, Reason: fmt.Sprintf("max depth %d is below 1", maxDepth)}
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	root := &doctree.Heading{
		Level:        0,
		HeadingRange: doctree.Range{Start: doctree.Point{}, End: doctree.Infinity},
		Range:        doctree.Range{Start: doctree.Point{}, End: doctree.Infinity},
		Children:     []*doctree.Heading{},
	}
	stack := []*doctree.Heading{root}

	for _, r := range raw {
		if r.Level > maxDepth {
			continue
		}
		h := &doctree.Heading{
			Level:        r.Level,
			Label:        r.Label,
			HeadingRange: r.HeadingRange,
			Range:        doctree.Range{Start: r.HeadingRange.Start, End: doctree.Infinity},
			Children:     []*doctree.Heading{},
		}
		end := closingPoint(h.HeadingRange.Start)

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch {
		case h.Level > top.Level:
			// Descend: top stays open and becomes the parent.
			stack = append(stack, top)
		case h.Level == top.Level:
			top.Range.End = end
			top = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack = append(stack, top)
		default:
			// Ascend: close every open heading at or below h's level. The root has
			// level 0, so the loop always stops at a parent.
			top.Range.End = end
			for {
				top = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Level < h.Level {
					break
				}
				top.Range.End = end
			}
			stack = append(stack, top)
		}
		top.Children = append(top.Children, h)
		stack = append(stack, h)
	}

	return root.Children, nil
}

// closingPoint is where a heading closed by a heading starting at start ends:
// the same column, one row earlier.
func closingPoint(start doctree.Point) doctree.Point {
	return doctree.Point{Row: start.Row - 1, Column: start.Column}
}

func validate(raw []doctree.RawHeading) error {
	for i, r := range raw {
		if r.Level < 1 {
			return &ContractError{Index: i, Reason: fmt.Sprintf("level %d is below 1", r.Level)}
		}
		if r.Label == "" {
			return &ContractError{Index: i, Reason: "empty label"}
		}
		if r.HeadingRange.End.Compare(r.HeadingRange.Start) < 0 {
			return &ContractError{Index: i, Reason: "heading range ends before it starts"}
		}
		if i > 0 && r.HeadingRange.Start.Compare(raw[i-1].HeadingRange.Start) < 0 {
			return &ContractError{Index: i, Reason: "headings are not sorted by position"}
		}
	}
	return nil
}
