// Package client talks to the fact-checking service over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ppiankov/factview/internal/cache"
	"github.com/ppiankov/factview/internal/model"
	"github.com/ppiankov/factview/internal/util"
)

// clientSleepFunc is the sleep function used between retries (injectable for tests)
var clientSleepFunc = time.Sleep

// Client is a typed client for the fact-checking service
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxBytes   int64
	maxRetries int
	limiter    *rate.Limiter
	status     cache.Cache
	statusTTL  time.Duration
	log        zerolog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithStatusCache caches knowledge-base status responses for ttl
func WithStatusCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.status = c
		cl.statusTTL = ttl
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(log zerolog.Logger) Option {
	return func(cl *Client) {
		cl.log = log.With().Str("component", "client").Logger()
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = hc
	}
}

// New creates a client for the service described by cfg
func New(cfg model.APIConfig, limits model.RateLimitingConfig, opts ...Option) *Client {
	limit := rate.Inf
	if limits.RequestsPerSecond > 0 {
		limit = rate.Limit(limits.RequestsPerSecond)
	}
	burst := limits.BurstSize
	if burst <= 0 {
		burst = 1
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
		maxRetries: maxRetries,
		limiter:    rate.NewLimiter(limit, burst),
		status:     cache.NopCache{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request is one API call; body is re-read on every attempt
type request struct {
	op          string
	method      string
	path        string
	body        []byte
	contentType string
}

// do sends req, retrying transient failures with exponential backoff, and
// returns the body of the first 2xx response.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	var lastErr *UpstreamError
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		body, err := c.doOnce(ctx, req)
		if err == nil {
			return body, nil
		}
		var upErr *UpstreamError
		if !errors.As(err, &upErr) || !upErr.Retryable() || ctx.Err() != nil {
			return nil, err
		}
		lastErr = upErr
		if attempt < c.maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			c.log.Debug().Str("op", req.op).Int("attempt", attempt+1).Dur("backoff", backoff).Err(err).Msg("retrying")
			clientSleepFunc(backoff)
		}
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, req request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Op: req.op, Err: fmt.Errorf("rate limit: %w", err)}
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UpstreamError{Op: req.op, Err: fmt.Errorf("fetch: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := c.readBody(resp.Body)
	c.log.Debug().
		Str("op", req.op).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")
	if err != nil {
		return nil, &UpstreamError{Op: req.op, StatusCode: statusIfError(resp.StatusCode), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Op: req.op, StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}
	return data, nil
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("read body: response exceeds %d bytes", c.maxBytes)
	}
	return data, nil
}

// getJSON and sendJSON decode a successful response into out
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	data, err := c.do(ctx, request{op: op, method: http.MethodGet, path: path})
	if err != nil {
		return err
	}
	return decode(op, data, out)
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, in, out any) error {
	req := request{op: op, method: method, path: path}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		req.body = body
		req.contentType = "application/json"
	}
	data, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(op, data, out)
}

func decode(op string, data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return nil
}

// errorDetail extracts the "detail" message of an error body. FastAPI
// validation errors carry a list there; those are flattened to their msg
// fields.
func errorDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func statusIfError(code int) int {
	if code >= 200 && code < 300 {
		return 0
	}
	return code
}

// isRetryableNetworkError reports transient transport failures
func isRetryableNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
