package render

import (
	"io"
	"iter"
	"strings"
)

// WriteHTML serializes segments as an HTML fragment. Plain segments become
// escaped text; styled segments are wrapped in a mark element whose class is
// the segment category.
func WriteHTML(w io.Writer, segments iter.Seq[Segment]) error {
	ew := &errWriter{w: w}
	for seg := range segments {
		writeSegmentHTML(ew, seg)
		if ew.err != nil {
			return ew.err
		}
	}
	return nil
}

// HTML is WriteHTML into a string
func HTML(segments iter.Seq[Segment]) string {
	var sb strings.Builder
	_ = WriteHTML(&sb, segments)
	return sb.String()
}

func writeSegmentHTML(ew *errWriter, seg Segment) {
	if !seg.Styled {
		ew.write(Escape(seg.Text))
		return
	}
	if seg.Claim > 0 {
		ew.printf(`<mark class="%s" data-claim="%d">`, Escape(seg.Category.String()), seg.Claim)
	} else {
		ew.printf(`<mark class="%s">`, Escape(seg.Category.String()))
	}
	ew.write(Escape(seg.Text))
	ew.write("</mark>")
}

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:60rem;margin:2rem auto;line-height:1.5}
.highlighted{white-space:pre-wrap;border:1px solid #ddd;padding:1rem}
mark.supported{background:#c8f0c8}
mark.contradicted{background:#f6c4c4}
mark.nei{background:#f3e7b3}
.claim-card{border:1px solid #ddd;padding:.5rem 1rem;margin:1rem 0}
.claim-meta span{margin-right:1rem}
.evidence{border-top:1px dashed #ddd;padding:.5rem 0}
.unplaced{color:#888;font-style:italic}`

// WritePage writes a standalone HTML document with the highlighted text,
// the verdict summary and one card per claim.
func WritePage(w io.Writer, v View, title string) error {
	ew := &errWriter{w: w}

	ew.write("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	ew.printf("<title>%s</title>\n<style>%s</style>\n</head>\n<body>\n", Escape(title), pageStyle)
	ew.printf("<h1>%s</h1>\n", Escape(title))
	ew.printf("<p class=\"summary\">Supported: %d &middot; Contradicted: %d &middot; Not enough info: %d</p>\n",
		v.Summary.Supported, v.Summary.Contradicted, v.Summary.NEI)

	ew.write("<div class=\"highlighted\">")
	for seg := range v.Segments {
		writeSegmentHTML(ew, seg)
	}
	ew.write("</div>\n<section class=\"claims\">\n")

	for _, c := range v.Claims {
		ew.printf("<div class=\"claim-card %s\" id=\"claim-%d\">\n", Escape(c.Category.String()), c.Index)
		ew.printf("<h3>Claim %d: %s</h3>\n", c.Index, Escape(c.Claim))
		ew.printf("<div class=\"claim-meta\"><span>Label: %s</span><span>Confidence: %s</span><span>Evidence: %d</span>",
			Escape(string(c.Label)), Escape(c.Confidence), c.EvidenceCount)
		if !c.Highlighted {
			ew.write("<span class=\"unplaced\">not highlighted</span>")
		}
		ew.write("</div>\n")
		for _, ev := range c.Evidence {
			ew.printf("<div class=\"evidence\"><small>%s &middot; %s &middot; score %s</small><div>%s</div></div>\n",
				Escape(ev.SourceFile), Escape(ev.ChunkID), Escape(ev.Score), Escape(ev.Text))
		}
		ew.write("</div>\n")
	}

	ew.write("</section>\n</body>\n</html>\n")
	return ew.err
}
