package render

import (
	"io"
	"iter"
	"strings"

	"github.com/ppiankov/factview/internal/model"
)

const ansiReset = "\x1b[0m"

var ansiColors = map[model.Category]string{
	model.CategorySupported:    "\x1b[32m",
	model.CategoryContradicted: "\x1b[31m",
	model.CategoryNEI:          "\x1b[33m",
}

// WriteText writes segments for a terminal. With color, styled segments are
// coloured by category; without, they are bracketed and numbered.
func WriteText(w io.Writer, segments iter.Seq[Segment], color bool) error {
	ew := &errWriter{w: w}
	for seg := range segments {
		switch {
		case !seg.Styled:
			ew.write(seg.Text)
		case color:
			ew.write(ansiColors[seg.Category] + seg.Text + ansiReset)
		default:
			ew.write("<<" + seg.Text + ">>")
			if seg.Claim > 0 {
				ew.printf("[%d]", seg.Claim)
			}
		}
		if ew.err != nil {
			return ew.err
		}
	}
	return nil
}

// WriteTerminal writes the annotated text followed by the claim list
func WriteTerminal(w io.Writer, v View, color bool) error {
	ew := &errWriter{w: w}
	rule := strings.Repeat("═", 59)

	ew.printf("%s\n  Annotated Text\n%s\n\n", rule, rule)
	if ew.err == nil {
		ew.err = WriteText(w, v.Segments, color)
	}
	ew.printf("\n\n%s\n  Claims (%d supported, %d contradicted, %d not enough info)\n%s\n\n",
		rule, v.Summary.Supported, v.Summary.Contradicted, v.Summary.NEI, rule)

	if len(v.Claims) == 0 {
		ew.write("  No claims detected.\n")
	}
	for _, c := range v.Claims {
		label := string(c.Label)
		if color {
			label = ansiColors[c.Category] + label + ansiReset
		}
		ew.printf("Claim %d: %s\n", c.Index, c.Claim)
		ew.printf("  Label: %s  Confidence: %s  Evidence: %d\n", label, c.Confidence, c.EvidenceCount)
		if !c.Highlighted {
			ew.write("  (not highlighted in the text)\n")
		}
		for _, ev := range c.Evidence {
			ew.printf("  - %s · %s · score %s\n", ev.SourceFile, ev.ChunkID, ev.Score)
			ew.printf("    %s\n", strings.ReplaceAll(ev.Text, "\n", "\n    "))
		}
		ew.write("\n")
	}
	return ew.err
}
