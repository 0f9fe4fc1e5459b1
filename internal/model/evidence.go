package model

// Evidence is one knowledge-base excerpt retrieved for a claim
type Evidence struct {
	SourceFile string  `json:"source_file"` // File the chunk was indexed from
	ChunkID    string  `json:"chunk_id"`    // Chunk identifier within the index
	Score      float64 `json:"score"`       // Retrieval score
	Text       string  `json:"text"`        // Excerpt
}

// SourceFiles returns the distinct source files cited by the spans, in first
// appearance order.
func SourceFiles(spans []Span) []string {
	seen := make(map[string]bool)
	var files []string
	for _, span := range spans {
		for _, ev := range span.Evidence {
			if ev.SourceFile == "" || seen[ev.SourceFile] {
				continue
			}
			seen[ev.SourceFile] = true
			files = append(files, ev.SourceFile)
		}
	}
	return files
}
