// Package llm produces an optional narrative summary of fact-check claims
// through a chat model. The model may only cite knowledge-base files that
// the service itself returned as evidence.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/factview/internal/render"
)

// ErrCitationLeak is returned when a summary cites a source outside the
// evidence allowlist
var ErrCitationLeak = errors.New("citation leak")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a summary of the claims with strict source mode
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	Claims []render.ClaimRecord

	// Sources is the allowlist of knowledge-base files the model may cite
	Sources []string

	// Prompt overrides the default prompt when set
	Prompt string

	Model     string
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary      string
	CitedSources []string
	Model        string
	TokensUsed   int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	Model   string
	APIKey  string
	BaseURL string
	Timeout int // seconds

	// StrictSources rejects summaries citing files outside the allowlist
	StrictSources bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:       30,
		StrictSources: true,
		MaxTokens:     600,
	}
}

// maxPromptClaims caps how many claims are listed in the prompt
const maxPromptClaims = 40

// BuildPrompt constructs the default summarization prompt
func BuildPrompt(claims []render.ClaimRecord, sources []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are summarizing the output of a fact-checking tool. Each claim was compared against a private knowledge base and labeled SUPPORTED, CONTRADICTED or NOT_ENOUGH_INFO.

RULES:
1. Cite knowledge-base files only as [file name], and ONLY files from this list:
%s

2. Do not cite URLs or any other source.
3. Report what the knowledge base says about the claims. Do not add your own judgement of truth.
4. Claims marked NOT_ENOUGH_INFO must be described as unverified.

Verdicts: %d supported, %d contradicted, %d not enough info.

Claims:
`, joinSources(sources), countLabel(claims, "SUPPORTED"), countLabel(claims, "CONTRADICTED"), countLabel(claims, "NOT_ENOUGH_INFO"))

	for i, c := range claims {
		if i >= maxPromptClaims {
			fmt.Fprintf(&b, "... and %d more claims\n", len(claims)-maxPromptClaims)
			break
		}
		fmt.Fprintf(&b, "%d. %q: %s (confidence %s)", c.Index, c.Claim, c.Label, c.Confidence)
		if len(c.Evidence) > 0 {
			files := make([]string, 0, len(c.Evidence))
			for _, ev := range c.Evidence {
				files = append(files, ev.SourceFile)
			}
			fmt.Fprintf(&b, " evidence: %s", strings.Join(files, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nProvide a 3-4 sentence summary.")
	return b.String()
}

func joinSources(sources []string) string {
	if len(sources) == 0 {
		return "(No knowledge-base files available)"
	}
	var b strings.Builder
	for i, s := range sources {
		if i >= 20 {
			fmt.Fprintf(&b, "\n... and %d more files", len(sources)-20)
			break
		}
		fmt.Fprintf(&b, "\n- %s", s)
	}
	return b.String()
}

func countLabel(claims []render.ClaimRecord, label string) int {
	n := 0
	for _, c := range claims {
		if string(c.Label) == label {
			n++
		}
	}
	return n
}

// checkCitations returns the first cited source not in the allowlist
func checkCitations(cited, allowed []string) error {
	ok := make(map[string]bool, len(allowed))
	for _, s := range allowed {
		ok[s] = true
	}
	for _, c := range cited {
		if !ok[c] {
			return fmt.Errorf("%w: model cited %q", ErrCitationLeak, c)
		}
	}
	return nil
}
