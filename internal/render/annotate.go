package render

import (
	"iter"
	"strings"

	"github.com/ppiankov/factview/internal/model"
)

// Segment is a contiguous piece of the annotated text. Plain segments carry
// no category; styled segments carry the category of the span they cover and
// the 1-based number of its claim.
type Segment struct {
	Text     string
	Styled   bool
	Category model.Category
	Claim    int
}

// Plain returns an unstyled segment
func Plain(text string) Segment {
	return Segment{Text: text}
}

// Styled returns a segment highlighted with category
func Styled(text string, category model.Category) Segment {
	return Segment{Text: text, Styled: true, Category: category}
}

// Annotate splits text around the placements. The returned sequence can be
// ranged over any number of times and always yields the same segments.
//
// Concatenating the Text of every segment gives back text unchanged.
// Placements are expected to come from Normalize; any placement that is out
// of order or out of range is clamped or skipped so the guarantee holds for
// arbitrary input too.
func Annotate(text string, placements []Placement) iter.Seq[Segment] {
	offsets := runeOffsets(text)
	n := len(offsets) - 1

	return func(yield func(Segment) bool) {
		cursor := 0
		for _, p := range placements {
			start := max(p.Start, cursor)
			if start >= p.End || p.End > n {
				continue
			}
			if start > cursor {
				if !yield(Plain(text[offsets[cursor]:offsets[start]])) {
					return
				}
			}
			seg := Styled(text[offsets[start]:offsets[p.End]], p.Category)
			seg.Claim = p.Index + 1
			if !yield(seg) {
				return
			}
			cursor = p.End
		}
		if cursor < n {
			yield(Plain(text[offsets[cursor]:]))
		}
	}
}

// Join concatenates the raw text of the segments
func Join(segments iter.Seq[Segment]) string {
	var sb strings.Builder
	for seg := range segments {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// runeOffsets maps code point positions to byte positions. The final entry
// is len(text). Invalid UTF-8 bytes count as one code point each, matching
// utf8.RuneCountInString, so slicing never drops them.
func runeOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}
