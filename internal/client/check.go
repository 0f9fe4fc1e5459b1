package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ppiankov/factview/internal/model"
)

// checkResponseSchema describes the top-level shape of a check response.
// Span bounds and label values are not constrained here; the renderer
// handles them per span.
const checkResponseSchema = `{
  "type": "object",
  "required": ["input_text", "spans"],
  "properties": {
    "input_text": {"type": "string"},
    "spans": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["start", "end", "label"],
        "properties": {
          "start": {"type": "integer"},
          "end": {"type": "integer"},
          "label": {"type": "string"},
          "confidence": {"type": "number"},
          "claim": {"type": "string"},
          "evidence": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "properties": {
                "source_file": {"type": "string"},
                "chunk_id": {"type": "string"},
                "score": {"type": "number"},
                "text": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "summary": {"type": ["object", "null"]},
    "debug": {"type": ["object", "null"]}
  }
}`

var checkSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(checkResponseSchema))
})

// Check submits text to POST /api/check
func (c *Client) Check(ctx context.Context, req model.CheckRequest) (*model.CheckResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text is empty", ErrInvalidRequest)
	}
	if req.TopK < 1 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidRequest, req.TopK)
	}
	if !model.ValidMode(req.Mode) {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, req.Mode)
	}

	var raw jsonBody
	if err := c.sendJSON(ctx, "check", http.MethodPost, "/api/check", req, &raw); err != nil {
		return nil, err
	}
	if err := validateCheckResponse(raw); err != nil {
		return nil, &UpstreamError{Op: "check", Err: err}
	}

	var resp model.CheckResponse
	if err := decode("check", raw, &resp); err != nil {
		return nil, err
	}
	if resp.Spans == nil {
		resp.Spans = []model.Span{}
	}
	return &resp, nil
}

// jsonBody keeps a response undecoded so it can be validated first
type jsonBody []byte

func (b *jsonBody) UnmarshalJSON(data []byte) error {
	*b = append((*b)[:0], data...)
	return nil
}

func validateCheckResponse(data []byte) error {
	schema, err := checkSchema()
	if err != nil {
		return fmt.Errorf("compile response schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(errs, "; "))
	}
	return nil
}
