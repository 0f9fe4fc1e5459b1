package client

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned before any network call when a request
// cannot be valid
var ErrInvalidRequest = errors.New("invalid request")

// ErrMalformedResponse marks a response whose top-level shape is wrong
var ErrMalformedResponse = errors.New("malformed response")

// UpstreamError describes a failed call to the fact-checking service
type UpstreamError struct {
	Op         string // Operation name, e.g. "check" or "kb rebuild"
	StatusCode int    // HTTP status, zero when no response was received
	Detail     string // "detail" field of the error body, if any
	Err        error  // Underlying transport or decoding error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": upstream failure"
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the call may succeed
func (e *UpstreamError) Retryable() bool {
	if e.StatusCode != 0 {
		return e.StatusCode >= 500 || e.StatusCode == 429
	}
	return e.Err != nil && isRetryableNetworkError(e.Err)
}
