package model

import "strings"

// Span ties a range of the checked text to a claim verdict and its evidence.
// Start and End are code point offsets into AnnotationResult.InputText.
type Span struct {
	Start      int        `json:"start"`
	End        int        `json:"end"`
	Label      Label      `json:"label"`
	Confidence float64    `json:"confidence"`
	Claim      string     `json:"claim"`
	Evidence   []Evidence `json:"evidence"`
}

// Len returns the number of code points covered by the span
func (s Span) Len() int {
	return s.End - s.Start
}

// Label is the verdict the checking service assigned to a claim
type Label string

const (
	LabelSupported    Label = "SUPPORTED"
	LabelContradicted Label = "CONTRADICTED"
	LabelNEI          Label = "NOT_ENOUGH_INFO"
)

// Known reports whether the label is one of the three verdicts.
func (l Label) Known() bool {
	switch l {
	case LabelSupported, LabelContradicted, LabelNEI:
		return true
	default:
		return false
	}
}

// Normalize maps the label onto a known verdict. Case and surrounding
// whitespace are ignored; anything unrecognized becomes NOT_ENOUGH_INFO.
func (l Label) Normalize() Label {
	n := Label(strings.ToUpper(strings.TrimSpace(string(l))))
	if n.Known() {
		return n
	}
	return LabelNEI
}

// Category returns the display category for the label
func (l Label) Category() Category {
	switch l.Normalize() {
	case LabelSupported:
		return CategorySupported
	case LabelContradicted:
		return CategoryContradicted
	default:
		return CategoryNEI
	}
}

// Category is the visual class used when a span is highlighted
type Category string

const (
	CategorySupported    Category = "supported"
	CategoryContradicted Category = "contradicted"
	CategoryNEI          Category = "nei"
)

func (c Category) String() string {
	return string(c)
}
