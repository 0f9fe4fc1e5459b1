package render

import (
	"io"
	"strings"
	"unicode"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
	"&", `\&`,
)

// EscapeMarkdown backslash-escapes characters that Markdown would interpret
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// WriteMarkdown writes the view as a Markdown report
func WriteMarkdown(w io.Writer, v View, title string) error {
	ew := &errWriter{w: w}

	ew.printf("# %s\n\n", EscapeMarkdown(title))
	ew.printf("**Summary:** %d supported · %d contradicted · %d not enough info\n\n",
		v.Summary.Supported, v.Summary.Contradicted, v.Summary.NEI)

	ew.write("## Annotated Text\n\n")
	for seg := range v.Segments {
		if !seg.Styled {
			ew.write(EscapeMarkdown(seg.Text))
			continue
		}
		lead, body, trail := splitSpace(seg.Text)
		ew.write(EscapeMarkdown(lead))
		if body != "" {
			ew.printf("**%s**", EscapeMarkdown(body))
		}
		if seg.Claim > 0 {
			ew.printf("\\[%d\\]", seg.Claim)
		}
		ew.write(EscapeMarkdown(trail))
	}
	ew.write("\n\n## Claims\n\n")

	if len(v.Claims) == 0 {
		ew.write("No claims detected.\n")
	}
	for _, c := range v.Claims {
		ew.printf("### Claim %d: %s\n\n", c.Index, EscapeMarkdown(c.Claim))
		ew.printf("- Label: %s\n", c.Label)
		ew.printf("- Confidence: %s\n", c.Confidence)
		ew.printf("- Evidence: %d\n", c.EvidenceCount)
		if !c.Highlighted {
			ew.write("- Not highlighted in the text\n")
		}
		ew.write("\n")
		for _, ev := range c.Evidence {
			ew.printf("> *%s · %s · score %s*\n>\n> %s\n\n",
				EscapeMarkdown(ev.SourceFile), EscapeMarkdown(ev.ChunkID), ev.Score,
				strings.ReplaceAll(EscapeMarkdown(ev.Text), "\n", "\n> "))
		}
	}
	return ew.err
}

// splitSpace separates leading and trailing whitespace so emphasis markers
// hug the text; Markdown ignores "** text **".
func splitSpace(s string) (lead, body, trail string) {
	body = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(body)]
	trimmed := strings.TrimRightFunc(body, unicode.IsSpace)
	trail = body[len(trimmed):]
	return lead, trimmed, trail
}
