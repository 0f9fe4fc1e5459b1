package render

import (
	"strconv"

	"github.com/ppiankov/factview/internal/model"
)

// ClaimRecord is the display form of one span
type ClaimRecord struct {
	Index         int              `json:"index"` // 1-based position in the span list
	Claim         string           `json:"claim"`
	Label         model.Label      `json:"label"`
	Category      model.Category   `json:"category"`
	Confidence    string           `json:"confidence"`
	EvidenceCount int              `json:"evidence_count"`
	Evidence      []EvidenceRecord `json:"evidence"`
	Highlighted   bool             `json:"highlighted"` // false when the span has no region in the text
}

// EvidenceRecord is the display form of one evidence item
type EvidenceRecord struct {
	SourceFile string `json:"source_file"`
	ChunkID    string `json:"chunk_id"`
	Score      string `json:"score"`
	Text       string `json:"text"`
}

// Aggregate builds one claim record per span, in the order the spans were
// produced. Nothing is filtered, sorted or merged; text positions play no
// part, so spans that cannot be highlighted are still listed.
func Aggregate(spans []model.Span) []ClaimRecord {
	records := make([]ClaimRecord, len(spans))
	for i, span := range spans {
		evidence := make([]EvidenceRecord, len(span.Evidence))
		for j, ev := range span.Evidence {
			evidence[j] = EvidenceRecord{
				SourceFile: ev.SourceFile,
				ChunkID:    ev.ChunkID,
				Score:      twoDecimals(ev.Score),
				Text:       ev.Text,
			}
		}
		records[i] = ClaimRecord{
			Index:         i + 1,
			Claim:         span.Claim,
			Label:         span.Label.Normalize(),
			Category:      span.Label.Category(),
			Confidence:    twoDecimals(span.Confidence),
			EvidenceCount: len(span.Evidence),
			Evidence:      evidence,
		}
	}
	return records
}

// Tally counts spans per category
func Tally(spans []model.Span) model.Summary {
	var s model.Summary
	for _, span := range spans {
		switch span.Label.Category() {
		case model.CategorySupported:
			s.Supported++
		case model.CategoryContradicted:
			s.Contradicted++
		default:
			s.NEI++
		}
	}
	return s
}

func twoDecimals(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
