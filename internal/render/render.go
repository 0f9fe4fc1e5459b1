package render

import (
	"fmt"
	"io"
	"iter"

	"github.com/rs/zerolog"

	"github.com/ppiankov/factview/internal/model"
)

// View is everything needed to display one annotation result
type View struct {
	Text     string
	Segments iter.Seq[Segment]
	Claims   []ClaimRecord
	Summary  model.Summary
	Rejected []Rejection
	Subsumed []int
}

// Renderer builds views and reports span defects to its logger
type Renderer struct {
	log zerolog.Logger
}

// NewRenderer creates a renderer logging to log
func NewRenderer(log zerolog.Logger) *Renderer {
	return &Renderer{log: log.With().Str("component", "render").Logger()}
}

// Render normalizes the spans of result, annotates its text and aggregates
// its claims. Defective spans are logged and skipped for highlighting; they
// never fail the render.
func (r *Renderer) Render(result model.AnnotationResult) View {
	norm := Normalize(result.Spans, TextLen(result.InputText))

	for _, rej := range norm.Rejected {
		r.log.Warn().
			Err(rej.Err).
			Int("claim", rej.Index+1).
			Int("start", rej.Span.Start).
			Int("end", rej.Span.End).
			Msg("span excluded from highlighting")
	}
	for _, idx := range norm.Clamped {
		r.log.Debug().Int("claim", idx+1).Msg("overlapping span clamped")
	}
	for _, idx := range norm.Subsumed {
		r.log.Debug().Int("claim", idx+1).Msg("span fully covered by an earlier span")
	}
	for i, span := range result.Spans {
		if !span.Label.Known() {
			r.log.Debug().Int("claim", i+1).Str("label", string(span.Label)).Msg("unknown label shown as not enough info")
		}
	}

	claims := Aggregate(result.Spans)
	placed := norm.Placed()
	for i := range claims {
		claims[i].Highlighted = placed[i]
	}

	return View{
		Text:     result.InputText,
		Segments: Annotate(result.InputText, norm.Placements),
		Claims:   claims,
		Summary:  Tally(result.Spans),
		Rejected: norm.Rejected,
		Subsumed: norm.Subsumed,
	}
}

// HTML returns the highlighted text as an HTML fragment
func (v View) HTML() string {
	return HTML(v.Segments)
}

// errWriter keeps the first write error so serializers can write
// unconditionally and check once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) write(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) printf(format string, a ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}
