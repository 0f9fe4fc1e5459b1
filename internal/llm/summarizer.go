package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppiankov/factview/internal/model"
	"github.com/ppiankov/factview/internal/render"
)

// Summary is the narrative summary shown next to a rendered result. It is
// never merged into the result itself.
type Summary struct {
	Enabled       bool     `json:"enabled"`
	Provider      string   `json:"provider,omitempty"`
	Model         string   `json:"model,omitempty"`
	StrictSources bool     `json:"strict_sources"`
	Text          string   `json:"text,omitempty"`
	CitedSources  []string `json:"cited_sources,omitempty"`
	TokensUsed    int      `json:"tokens_used,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Summarizer wraps a provider. A nil provider disables summaries.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer from configuration
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// NewSummarizerWithProvider creates a summarizer around an existing provider
func NewSummarizerWithProvider(provider Provider, config Config) *Summarizer {
	return &Summarizer{provider: provider, config: config}
}

// SetLogger passes log to providers that report diagnostics
func (s *Summarizer) SetLogger(log zerolog.Logger) {
	if p, ok := s.provider.(interface{ SetLogger(zerolog.Logger) }); ok {
		p.SetLogger(log)
	}
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary summarizes the claims of result. It returns nil, nil when
// summaries are disabled. Provider failures, including citation leaks, are
// reported as warnings so the caller can still show the rendered result.
func (s *Summarizer) GenerateSummary(ctx context.Context, result model.AnnotationResult) (*Summary, error) {
	if s.provider == nil {
		return nil, nil
	}

	summary := &Summary{
		Enabled:       true,
		Provider:      s.provider.Name(),
		StrictSources: s.config.StrictSources,
	}

	if !s.provider.IsAvailable(ctx) {
		summary.Enabled = false
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM provider %s is not available", s.provider.Name()))
		return summary, nil
	}

	if len(result.Spans) == 0 {
		summary.Warnings = append(summary.Warnings, "no claims to summarize")
		return summary, nil
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Claims:    render.Aggregate(result.Spans),
		Sources:   model.SourceFiles(result.Spans),
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("summary failed: %v", err))
		return summary, nil
	}

	summary.Model = resp.Model
	summary.Text = resp.Summary
	summary.CitedSources = resp.CitedSources
	summary.TokensUsed = resp.TokensUsed
	return summary, nil
}

// RenderSeparateMarkdown renders the summary as a standalone markdown
// section. It returns "" for a nil or disabled summary without warnings.
func RenderSeparateMarkdown(summary *Summary) string {
	if summary == nil {
		return ""
	}
	if !summary.Enabled && len(summary.Warnings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Summary\n\n")
	if summary.Provider != "" {
		fmt.Fprintf(&b, "_Generated by %s", summary.Provider)
		if summary.Model != "" {
			fmt.Fprintf(&b, " (%s)", summary.Model)
		}
		if summary.StrictSources {
			b.WriteString(", knowledge-base sources only")
		}
		b.WriteString("_\n\n")
	}
	if summary.Text != "" {
		b.WriteString(summary.Text)
		b.WriteString("\n\n")
	} else {
		b.WriteString("_No summary generated._\n\n")
	}
	if len(summary.CitedSources) > 0 {
		b.WriteString("Sources cited:\n")
		for _, src := range summary.CitedSources {
			fmt.Fprintf(&b, "- %s\n", render.EscapeMarkdown(src))
		}
		b.WriteString("\n")
	}
	for _, w := range summary.Warnings {
		fmt.Fprintf(&b, "> Warning: %s\n", w)
	}
	return b.String()
}
