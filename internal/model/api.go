package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyText is returned when a check is requested for blank text
	ErrEmptyText = errors.New("text is empty")
	// ErrTextTooLong is returned when text exceeds check.max_input_chars
	ErrTextTooLong = errors.New("text too long")
)

// Check modes accepted by the service
const (
	ModeLocal     = "local"
	ModeHeuristic = "heuristic"
	ModeOpenAI    = "openai"
)

// ValidMode reports whether mode is accepted by POST /api/check
func ValidMode(mode string) bool {
	switch mode {
	case ModeLocal, ModeHeuristic, ModeOpenAI:
		return true
	default:
		return false
	}
}

// CheckRequest is the body of POST /api/check
type CheckRequest struct {
	Text        string `json:"text"`
	TopK        int    `json:"top_k"`
	Mode        string `json:"mode"`
	ReturnDebug bool   `json:"return_debug"`
}

// Request builds a check request for text from the configured defaults.
// Length is counted in code points, zero MaxInputChars means unlimited.
func (c CheckConfig) Request(text string) (CheckRequest, error) {
	if strings.TrimSpace(text) == "" {
		return CheckRequest{}, ErrEmptyText
	}
	if n := utf8.RuneCountInString(text); c.MaxInputChars > 0 && n > c.MaxInputChars {
		return CheckRequest{}, fmt.Errorf("%w: %d characters, limit is %d", ErrTextTooLong, n, c.MaxInputChars)
	}
	return CheckRequest{
		Text:        text,
		TopK:        c.TopK,
		Mode:        c.Mode,
		ReturnDebug: c.ReturnDebug,
	}, nil
}

// CheckResponse is the successful body of POST /api/check
type CheckResponse struct {
	InputText string         `json:"input_text"`
	Spans     []Span         `json:"spans"`
	Summary   *Summary       `json:"summary,omitempty"`
	Debug     map[string]any `json:"debug,omitempty"`
}

// Result strips the response down to the annotation result
func (r CheckResponse) Result() AnnotationResult {
	return AnnotationResult{InputText: r.InputText, Spans: r.Spans}
}

// Summary counts spans per verdict
type Summary struct {
	Supported    int `json:"supported"`
	Contradicted int `json:"contradicted"`
	NEI          int `json:"nei"`
}

// Total returns the number of counted spans
func (s Summary) Total() int {
	return s.Supported + s.Contradicted + s.NEI
}

// KBStatus is the body of GET /api/kb/status and POST /api/kb/rebuild
type KBStatus struct {
	FileCount      int     `json:"file_count"`
	ChunkCount     int     `json:"chunk_count"`
	EmbeddingModel *string `json:"embedding_model"`
	LastIndexed    *string `json:"last_indexed"`
}

// KBFile is one entry of GET /api/kb/list
type KBFile struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
}

// UploadResult is the body of POST /api/kb/upload
type UploadResult struct {
	Saved []string `json:"saved"`
	Count int      `json:"count"`
}

// APIError is the error body the service returns
type APIError struct {
	Detail string `json:"detail"`
}
