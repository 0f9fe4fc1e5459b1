package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DefaultExportName is the file name used when a result is downloaded
const DefaultExportName = "fact_check_results.json"

// AnnotationResult is the outcome of one check: the text that was checked
// and every span the service produced for it. It is treated as immutable;
// renderers and exporters read it but never modify it.
type AnnotationResult struct {
	InputText string `json:"input_text"`
	Spans     []Span `json:"spans"`
}

// Clone returns a deep copy so callers can hand out results without sharing
// the underlying slices.
func (r AnnotationResult) Clone() AnnotationResult {
	out := AnnotationResult{InputText: r.InputText}
	if r.Spans == nil {
		return out
	}
	out.Spans = make([]Span, len(r.Spans))
	for i, span := range r.Spans {
		span.Evidence = append([]Evidence(nil), span.Evidence...)
		out.Spans[i] = span
	}
	return out
}

// WriteJSON serializes the result unchanged, indented with two spaces
func (r AnnotationResult) WriteJSON(w io.Writer) error {
	return writeJSON(w, r)
}

// Export writes the result as JSON to path
func (r AnnotationResult) Export(path string) error {
	return exportJSON(path, r)
}

// WriteJSON serializes the full response, summary and debug included
func (r CheckResponse) WriteJSON(w io.Writer) error {
	return writeJSON(w, r)
}

// Export writes the full response as JSON to path
func (r CheckResponse) Export(path string) error {
	return exportJSON(path, r)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func exportJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", closeErr)
		}
	}()
	return writeJSON(f, v)
}

// LoadResult reads a previously exported result. Both a bare
// AnnotationResult and a full check response are accepted.
func LoadResult(path string) (AnnotationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AnnotationResult{}, fmt.Errorf("read result: %w", err)
	}
	var result AnnotationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return AnnotationResult{}, fmt.Errorf("decode result: %w", err)
	}
	return result, nil
}
