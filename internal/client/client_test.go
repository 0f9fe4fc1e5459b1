package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/factview/internal/cache"
	"github.com/ppiankov/factview/internal/model"
)

func noSleep(t *testing.T) {
	t.Helper()
	orig := clientSleepFunc
	clientSleepFunc = func(time.Duration) {}
	t.Cleanup(func() { clientSleepFunc = orig })
}

func newTestClient(url string, opts ...Option) *Client {
	cfg := model.DefaultConfig()
	cfg.API.BaseURL = url
	cfg.API.Timeout = 5 * time.Second
	cfg.API.UserAgent = "test-agent"
	return New(cfg.API, model.RateLimitingConfig{}, opts...)
}

func checkRequest(text string) model.CheckRequest {
	return model.CheckRequest{Text: text, TopK: 5, Mode: model.ModeLocal}
}

const okCheckBody = `{"input_text":"Water boils at 100C.","spans":[{"start":0,"end":19,"label":"SUPPORTED","confidence":0.9,"claim":"Water boils at 100C.","evidence":[{"source_file":"physics.md","chunk_id":"c1","score":0.8,"text":"boils"}]}],"summary":{"supported":1,"contradicted":0,"nei":0}}`

func TestCheck_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/check" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q", ua)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"top_k":5`) || !strings.Contains(string(body), `"mode":"local"`) {
			t.Errorf("unexpected request body %s", body)
		}
		_, _ = fmt.Fprint(w, okCheckBody)
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Check(context.Background(), checkRequest("Water boils at 100C."))
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if len(resp.Spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(resp.Spans))
	}
	sp := resp.Spans[0]
	if sp.Start != 0 || sp.End != 19 || sp.Label != model.LabelSupported {
		t.Errorf("unexpected span %+v", sp)
	}
	if len(sp.Evidence) != 1 || sp.Evidence[0].SourceFile != "physics.md" {
		t.Errorf("unexpected evidence %+v", sp.Evidence)
	}
	if resp.Summary == nil || resp.Summary.Supported != 1 {
		t.Errorf("unexpected summary %+v", resp.Summary)
	}
}

func TestCheck_EmptySpansNeverNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"input_text":"abc","spans":[]}`)
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Check(context.Background(), checkRequest("abc"))
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if resp.Spans == nil {
		t.Error("expected non-nil spans")
	}
}

func TestCheck_InvalidRequestMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	tests := []struct {
		name string
		req  model.CheckRequest
	}{
		{"empty text", checkRequest("")},
		{"whitespace text", checkRequest("  \n\t")},
		{"zero top_k", model.CheckRequest{Text: "x", TopK: 0, Mode: model.ModeLocal}},
		{"unknown mode", model.CheckRequest{Text: "x", TopK: 1, Mode: "magic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Check(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("expected no calls, got %d", n)
	}
}

func TestCheck_MalformedResponse(t *testing.T) {
	bodies := map[string]string{
		"not json":          `<html>oops</html>`,
		"missing spans":     `{"input_text":"abc"}`,
		"missing text":      `{"spans":[]}`,
		"spans not array":   `{"input_text":"abc","spans":{}}`,
		"span without end":  `{"input_text":"abc","spans":[{"start":0,"label":"SUPPORTED"}]}`,
		"start is a string": `{"input_text":"abc","spans":[{"start":"0","end":1,"label":"SUPPORTED"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = fmt.Fprint(w, body)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Check(context.Background(), checkRequest("abc"))
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestCheck_OutOfRangeSpanIsNotMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"input_text":"abc","spans":[{"start":2,"end":99,"label":"weird","evidence":null}]}`)
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Check(context.Background(), checkRequest("abc"))
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if len(resp.Spans) != 1 || resp.Spans[0].End != 99 {
		t.Errorf("unexpected spans %+v", resp.Spans)
	}
}

func TestCheck_TransientThenSuccess(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, okCheckBody)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Check(context.Background(), checkRequest("x")); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if n := attempts.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestCheck_AllRetriesFail(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Check(context.Background(), checkRequest("x"))
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d", upErr.StatusCode)
	}
	if n := attempts.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestCheck_ClientErrorNotRetried(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, `{"detail":"Text is too long."}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Check(context.Background(), checkRequest("x"))
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.Detail != "Text is too long." {
		t.Errorf("Detail = %q", upErr.Detail)
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("expected 1 attempt, got %d", n)
	}
}

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"boom"}`, "boom"},
		{`{"detail":[{"msg":"field required"},{"msg":"too short"}]}`, "field required; too short"},
		{`{"detail":42}`, ""},
		{`{}`, ""},
		{`Internal Server Error`, ""},
	}
	for _, tt := range tests {
		if got := errorDetail([]byte(tt.body)); got != tt.want {
			t.Errorf("errorDetail(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestCheck_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, okCheckBody)
	}))
	defer server.Close()

	cfg := model.DefaultConfig().API
	cfg.BaseURL = server.URL
	cfg.MaxBodyBytes = 16
	cfg.MaxRetries = 1
	_, err := New(cfg, model.RateLimitingConfig{}).Check(context.Background(), checkRequest("x"))
	if err == nil || !strings.Contains(err.Error(), "exceeds 16 bytes") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestCheck_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, okCheckBody)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(server.URL).Check(ctx, checkRequest("x"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer server.Close()

	status, err := newTestClient(server.URL + "/").Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if status != "ok" {
		t.Errorf("status = %q", status)
	}
}

// kbServer fakes the knowledge-base endpoints and counts status calls
type kbServer struct {
	statusCalls atomic.Int32
	uploads     atomic.Int32

	mu    sync.Mutex
	files []string
}

func (s *kbServer) uploaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.files...)
}

func (s *kbServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/kb/status", func(w http.ResponseWriter, r *http.Request) {
		n := s.statusCalls.Add(1)
		_, _ = fmt.Fprintf(w, `{"file_count":%d,"chunk_count":10,"embedding_model":null,"last_indexed":null}`, n)
	})
	mux.HandleFunc("GET /api/kb/list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[{"filename":"a.md","size_bytes":12}]`)
	})
	mux.HandleFunc("POST /api/kb/upload", func(w http.ResponseWriter, r *http.Request) {
		s.uploads.Add(1)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		for _, fh := range r.MultipartForm.File["files"] {
			s.files = append(s.files, fh.Filename)
		}
		saved := strings.Join(s.files, `","`)
		count := len(s.files)
		s.mu.Unlock()
		_, _ = fmt.Fprintf(w, `{"saved":["%s"],"count":%d}`, saved, count)
	})
	mux.HandleFunc("POST /api/kb/rebuild", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"file_count":7,"chunk_count":70,"embedding_model":"mini","last_indexed":"2026-01-01T00:00:00"}`)
	})
	mux.HandleFunc("DELETE /api/kb/clear", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"status":"cleared"}`)
	})
	return mux
}

func TestStatus_CachedUntilInvalidated(t *testing.T) {
	kb := &kbServer{}
	server := httptest.NewServer(kb.handler(t))
	defer server.Close()

	c := newTestClient(server.URL, WithStatusCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute))
	ctx := context.Background()

	first, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	second, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if first.FileCount != second.FileCount || kb.statusCalls.Load() != 1 {
		t.Errorf("expected cached status, got %d calls", kb.statusCalls.Load())
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := c.Status(ctx); err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if n := kb.statusCalls.Load(); n != 2 {
		t.Errorf("expected refetch after clear, got %d calls", n)
	}

	refreshed, err := c.RefreshStatus(ctx)
	if err != nil {
		t.Fatalf("RefreshStatus() error: %v", err)
	}
	if refreshed.FileCount != 3 {
		t.Errorf("RefreshStatus() FileCount = %d, want 3", refreshed.FileCount)
	}
}

func TestRebuild_StoresStatus(t *testing.T) {
	kb := &kbServer{}
	server := httptest.NewServer(kb.handler(t))
	defer server.Close()

	c := newTestClient(server.URL, WithStatusCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute))
	ctx := context.Background()

	st, err := c.Rebuild(ctx)
	if err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if st.FileCount != 7 || st.EmbeddingModel == nil || *st.EmbeddingModel != "mini" {
		t.Errorf("unexpected rebuild status %+v", st)
	}
	cached, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if cached.FileCount != 7 || kb.statusCalls.Load() != 0 {
		t.Errorf("expected status from rebuild, got %+v after %d calls", cached, kb.statusCalls.Load())
	}
}

func TestUpload(t *testing.T) {
	kb := &kbServer{}
	server := httptest.NewServer(kb.handler(t))
	defer server.Close()

	c := newTestClient(server.URL)
	res, err := c.Upload(context.Background(), []UploadFile{
		{Name: "docs/a.md", Content: strings.NewReader("alpha")},
		{Name: "b.txt", Content: strings.NewReader("beta")},
	})
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if res.Count != 2 {
		t.Errorf("Count = %d, want 2", res.Count)
	}
	if got := kb.uploaded(); len(got) != 2 || got[0] != "a.md" || got[1] != "b.txt" {
		t.Errorf("unexpected uploaded names %v", got)
	}
}

func TestUpload_NoFiles(t *testing.T) {
	kb := &kbServer{}
	server := httptest.NewServer(kb.handler(t))
	defer server.Close()

	_, err := newTestClient(server.URL).Upload(context.Background(), nil)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	if kb.uploads.Load() != 0 {
		t.Error("expected no upload call")
	}
}

func TestList(t *testing.T) {
	kb := &kbServer{}
	server := httptest.NewServer(kb.handler(t))
	defer server.Close()

	files, err := newTestClient(server.URL).List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(files) != 1 || files[0].Filename != "a.md" || files[0].SizeBytes != 12 {
		t.Errorf("unexpected files %+v", files)
	}
}
