// Package render turns an annotation result into display artifacts: an
// annotated copy of the checked text and a list of claim records.
package render

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/ppiankov/factview/internal/model"
)

// ErrMalformedSpan marks a span whose range does not fit the text
var ErrMalformedSpan = errors.New("malformed span")

// Placement is the position of a span in the rendering pass. Placements
// produced by Normalize are ordered and never overlap.
type Placement struct {
	Start    int            // First code point, possibly clamped
	End      int            // One past the last code point
	Index    int            // Position of the span in the original list
	Category model.Category // Display category derived from the label
}

// Rejection records a span that was excluded from rendering because its
// bounds are invalid.
type Rejection struct {
	Index int
	Span  model.Span
	Err   error
}

// Normalized is the outcome of Normalize
type Normalized struct {
	Placements []Placement
	Rejected   []Rejection // malformed bounds
	Subsumed   []int       // fully covered by earlier placements
	Clamped    []int       // start moved forward to resolve an overlap
}

// Placed reports which original span indices received a placement
func (n Normalized) Placed() map[int]bool {
	placed := make(map[int]bool, len(n.Placements))
	for _, p := range n.Placements {
		placed[p.Index] = true
	}
	return placed
}

// TextLen returns the length of text as counted by span offsets
func TextLen(text string) int {
	return utf8.RuneCountInString(text)
}

// Normalize validates spans against a text of textLen code points and
// resolves them into ordered, disjoint placements.
//
// Spans are sorted by start, longer spans first on equal starts, input order
// last. Each span's start is clamped to the end of the previous placement;
// spans left empty by the clamp are dropped from rendering.
func Normalize(spans []model.Span, textLen int) Normalized {
	var out Normalized

	candidates := make([]Placement, 0, len(spans))
	for i, span := range spans {
		if err := checkBounds(span, textLen); err != nil {
			out.Rejected = append(out.Rejected, Rejection{Index: i, Span: span, Err: err})
			continue
		}
		candidates = append(candidates, Placement{
			Start:    span.Start,
			End:      span.End,
			Index:    i,
			Category: span.Label.Category(),
		})
	}

	// Stable, so equal (start, end) pairs keep input order
	slices.SortStableFunc(candidates, func(a, b Placement) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(b.End, a.End)
	})

	cursor := 0
	for _, p := range candidates {
		start := max(p.Start, cursor)
		if start >= p.End {
			out.Subsumed = append(out.Subsumed, p.Index)
			continue
		}
		if start != p.Start {
			out.Clamped = append(out.Clamped, p.Index)
			p.Start = start
		}
		out.Placements = append(out.Placements, p)
		cursor = p.End
	}

	return out
}

func checkBounds(span model.Span, textLen int) error {
	switch {
	case span.Start >= span.End:
		return fmt.Errorf("%w: empty or inverted range [%d,%d)", ErrMalformedSpan, span.Start, span.End)
	case span.Start < 0:
		return fmt.Errorf("%w: negative start %d", ErrMalformedSpan, span.Start)
	case span.End > textLen:
		return fmt.Errorf("%w: range [%d,%d) exceeds text length %d", ErrMalformedSpan, span.Start, span.End, textLen)
	}
	return nil
}
