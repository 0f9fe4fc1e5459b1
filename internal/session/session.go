// Package session holds the state of one interactive fact-checking session:
// the latest accepted result and the token that guards it against stale
// responses.
package session

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ppiankov/factview/internal/client"
	"github.com/ppiankov/factview/internal/model"
	"github.com/ppiankov/factview/internal/render"
)

// Token identifies one check request. Tokens increase monotonically.
type Token uint64

// Backend is the part of the service a session drives
type Backend interface {
	Check(ctx context.Context, req model.CheckRequest) (*model.CheckResponse, error)
	Upload(ctx context.Context, files []client.UploadFile) (*model.UploadResult, error)
	Rebuild(ctx context.Context) (*model.KBStatus, error)
	Clear(ctx context.Context) error
}

// State is an accepted check result. It is never modified after it is
// published.
type State struct {
	Token    Token
	Response model.CheckResponse
	View     render.View
}

// Session serializes acceptance of check results
type Session struct {
	backend   Backend
	check     model.CheckConfig
	renderer  *render.Renderer
	clipboard io.Writer
	log       zerolog.Logger

	latest  atomic.Uint64
	mu      sync.Mutex // guards the check-and-publish step of Accept
	current atomic.Pointer[State]
}

// Option customizes a Session
type Option func(*Session)

// WithClipboard sets where CopyPlainText writes
func WithClipboard(w io.Writer) Option {
	return func(s *Session) {
		s.clipboard = w
	}
}

// WithLogger sets the session logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log.With().Str("component", "session").Logger()
	}
}

// New creates a session over backend
func New(backend Backend, check model.CheckConfig, opts ...Option) *Session {
	s := &Session{
		backend:   backend,
		check:     check,
		clipboard: io.Discard,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.renderer = render.NewRenderer(s.log)
	return s
}

// Begin issues the token for a new check. Any response for an earlier
// token will be discarded.
func (s *Session) Begin() Token {
	return Token(s.latest.Add(1))
}

// Latest returns the most recently issued token
func (s *Session) Latest() Token {
	return Token(s.latest.Load())
}

// Accept publishes resp if token is still the latest one issued and
// reports whether it did.
func (s *Session) Accept(token Token, resp model.CheckResponse) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if latest := s.Latest(); token != latest {
		s.log.Debug().Uint64("token", uint64(token)).Uint64("latest", uint64(latest)).Msg("discarding stale response")
		return false
	}
	st := &State{
		Token:    token,
		Response: resp,
		View:     s.renderer.Render(resp.Result()),
	}
	s.current.Store(st)
	return true
}

// Current returns the latest accepted state, or nil before the first
// accepted check
func (s *Session) Current() *State {
	return s.current.Load()
}

// Reset drops the current state
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Store(nil)
}
