package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/factview/internal/client"
	"github.com/ppiankov/factview/internal/model"
)

// Tone classifies a hint for display
type Tone string

// Hint tones
const (
	ToneInfo    Tone = ""
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// Outcome is what the user is told after a command
type Outcome struct {
	Hint  string
	Tone  Tone
	Stale bool            // check response arrived after a newer request
	State *State          // set by an accepted Check
	KB    *model.KBStatus // set by Rebuild
}

// Command is one user action. The set is closed.
type Command interface {
	command()
}

// Check submits text for fact-checking
type Check struct {
	Text string
}

// Upload adds files to the knowledge base
type Upload struct {
	Files []client.UploadFile
}

// Rebuild rebuilds the knowledge-base index
type Rebuild struct{}

// Clear empties the knowledge base and the current result
type Clear struct{}

// Download exports the current result. An empty Path means
// model.DefaultExportName.
type Download struct {
	Path string
}

// CopyPlainText copies the draft text to the clipboard
type CopyPlainText struct {
	Text string
}

func (Check) command()         {}
func (Upload) command()        {}
func (Rebuild) command()       {}
func (Clear) command()         {}
func (Download) command()      {}
func (CopyPlainText) command() {}

// Dispatch runs cmd. The Outcome is always usable; the error, when set,
// carries the technical cause for logs.
func (s *Session) Dispatch(ctx context.Context, cmd Command) (Outcome, error) {
	switch c := cmd.(type) {
	case Check:
		return s.runCheck(ctx, c)
	case Upload:
		return s.runUpload(ctx, c)
	case Rebuild:
		return s.runRebuild(ctx)
	case Clear:
		return s.runClear(ctx)
	case Download:
		return s.runDownload(c)
	case CopyPlainText:
		return s.runCopy(c)
	default:
		return failure("Unknown command."), fmt.Errorf("unknown command %T", cmd)
	}
}

func (s *Session) runCheck(ctx context.Context, c Check) (Outcome, error) {
	req, err := s.check.Request(strings.TrimSpace(c.Text))
	switch {
	case errors.Is(err, model.ErrEmptyText):
		return failure("Please paste some text."), err
	case errors.Is(err, model.ErrTextTooLong):
		return failure(fmt.Sprintf("Text is too long (limit %d characters).", s.check.MaxInputChars)), err
	case err != nil:
		return failure("Check failed."), err
	}

	token := s.Begin()
	resp, err := s.backend.Check(ctx, req)
	if token != s.Latest() {
		s.log.Debug().Uint64("token", uint64(token)).Msg("discarding stale check outcome")
		return Outcome{Stale: true}, nil
	}
	if err != nil {
		hint := "Check failed."
		var upErr *client.UpstreamError
		if errors.As(err, &upErr) && upErr.Detail != "" {
			hint = upErr.Detail
		}
		s.log.Warn().Err(err).Msg("check failed")
		return failure(hint), fmt.Errorf("check: %w", err)
	}
	if !s.Accept(token, *resp) {
		return Outcome{Stale: true}, nil
	}
	return Outcome{Hint: "Done.", Tone: ToneSuccess, State: s.Current()}, nil
}

func (s *Session) runUpload(ctx context.Context, c Upload) (Outcome, error) {
	res, err := s.backend.Upload(ctx, c.Files)
	if err != nil {
		s.log.Warn().Err(err).Int("files", len(c.Files)).Msg("upload failed")
		return failure("Upload failed."), fmt.Errorf("upload: %w", err)
	}
	return Outcome{
		Hint: fmt.Sprintf("Uploaded %d files. Rebuild index to apply.", res.Count),
		Tone: ToneSuccess,
	}, nil
}

func (s *Session) runRebuild(ctx context.Context) (Outcome, error) {
	st, err := s.backend.Rebuild(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("index rebuild failed")
		return failure("Index rebuild failed."), fmt.Errorf("rebuild: %w", err)
	}
	return Outcome{Hint: "Index rebuilt.", Tone: ToneSuccess, KB: st}, nil
}

func (s *Session) runClear(ctx context.Context) (Outcome, error) {
	if err := s.backend.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("clear failed")
		return failure("Clear failed."), fmt.Errorf("clear: %w", err)
	}
	s.Reset()
	return Outcome{Hint: "KB cleared.", Tone: ToneSuccess}, nil
}

func (s *Session) runDownload(c Download) (Outcome, error) {
	st := s.Current()
	if st == nil {
		return failure("No results to download."), nil
	}
	path := c.Path
	if path == "" {
		path = model.DefaultExportName
	}
	if err := st.Response.Export(path); err != nil {
		return failure("Download failed."), fmt.Errorf("download: %w", err)
	}
	return Outcome{Hint: "Saved " + path + ".", Tone: ToneSuccess}, nil
}

func (s *Session) runCopy(c CopyPlainText) (Outcome, error) {
	if _, err := s.clipboard.Write([]byte(c.Text)); err != nil {
		return failure("Copy failed."), fmt.Errorf("copy plain text: %w", err)
	}
	return Outcome{Hint: "Copied plain text.", Tone: ToneSuccess}, nil
}

func failure(hint string) Outcome {
	return Outcome{Hint: hint, Tone: ToneError}
}
