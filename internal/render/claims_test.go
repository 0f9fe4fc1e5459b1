package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/factview/internal/model"
)

func TestAggregate_KeepsInputOrderAndFormats(t *testing.T) {
	spans := []model.Span{
		{
			Start: 20, End: 30, Label: model.LabelContradicted, Confidence: 0.876,
			Claim: "Water is dry.",
			Evidence: []model.Evidence{
				{SourceFile: "water.md", ChunkID: "water.md::0", Score: 0.9149, Text: "Water is wet."},
				{SourceFile: "physics.txt", ChunkID: "physics.txt::3", Score: 0.5, Text: "Liquids flow."},
			},
		},
		{Start: 0, End: 10, Label: model.LabelSupported, Confidence: 1, Claim: "Sky is blue."},
	}

	got := Aggregate(spans)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, "Water is dry.", got[0].Claim)
	assert.Equal(t, model.LabelContradicted, got[0].Label)
	assert.Equal(t, "0.88", got[0].Confidence)
	assert.Equal(t, 2, got[0].EvidenceCount)
	assert.Equal(t, []EvidenceRecord{
		{SourceFile: "water.md", ChunkID: "water.md::0", Score: "0.91", Text: "Water is wet."},
		{SourceFile: "physics.txt", ChunkID: "physics.txt::3", Score: "0.50", Text: "Liquids flow."},
	}, got[0].Evidence)

	assert.Equal(t, 2, got[1].Index)
	assert.Equal(t, "1.00", got[1].Confidence)
	assert.Equal(t, 0, got[1].EvidenceCount)
	assert.NotNil(t, got[1].Evidence)
}

func TestAggregate_IncludesMalformedAndOverlappingSpans(t *testing.T) {
	spans := []model.Span{
		{Start: 12, End: 20, Label: model.LabelSupported, Evidence: []model.Evidence{{SourceFile: "a"}, {SourceFile: "b"}}},
		{Start: 0, End: 5, Label: model.LabelSupported},
		{Start: 0, End: 5, Label: model.LabelSupported},
	}

	got := Aggregate(spans)

	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].EvidenceCount)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Index, got[1].Index, got[2].Index})
}

func TestAggregate_UnknownLabel(t *testing.T) {
	got := Aggregate([]model.Span{{Label: "MAYBE"}, {Label: " supported "}})

	assert.Equal(t, model.LabelNEI, got[0].Label)
	assert.Equal(t, model.CategoryNEI, got[0].Category)
	assert.Equal(t, model.LabelSupported, got[1].Label)
	assert.Equal(t, model.CategorySupported, got[1].Category)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestTally(t *testing.T) {
	spans := []model.Span{
		{Label: model.LabelSupported},
		{Label: model.LabelSupported},
		{Label: model.LabelContradicted},
		{Label: "bogus"},
		{Label: model.LabelNEI},
	}

	got := Tally(spans)

	assert.Equal(t, model.Summary{Supported: 2, Contradicted: 1, NEI: 2}, got)
	assert.Equal(t, 5, got.Total())
}
