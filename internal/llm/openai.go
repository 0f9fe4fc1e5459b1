package llm

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/factview/internal/util"
)

// OpenAIProvider implements Provider for OpenAI-compatible chat APIs
type OpenAIProvider struct {
	client *openai.Client
	config Config
	log    zerolog.Logger
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		log:    zerolog.Nop(),
	}, nil
}

// SetLogger sets the logger used for availability diagnostics
func (p *OpenAIProvider) SetLogger(log zerolog.Logger) {
	p.log = log.With().Str("component", "llm").Logger()
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.ListModels(ctx); err != nil {
		p.log.Warn().Err(err).Msg("OpenAI API check failed")
		return false
	}
	return true
}

// Summarize generates a summary using the Chat Completions API
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Claims, req.Sources)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 600
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You summarize fact-check results and cite only the knowledge-base files you are given.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	cited := extractCitations(summary)

	if p.config.StrictSources {
		if err := checkCitations(cited, req.Sources); err != nil {
			return nil, err
		}
	}

	return &SummarizeResponse{
		Summary:      summary,
		CitedSources: cited,
		Model:        model,
		TokensUsed:   resp.Usage.TotalTokens,
	}, nil
}

var (
	citationPattern = regexp.MustCompile(`\[([^\[\]\n]+)\]`)
	urlPattern      = regexp.MustCompile(`https?://[^\s\)\]]+`)
	claimRefPattern = regexp.MustCompile(`^\d+$`)
)

// extractCitations returns the distinct sources cited in text: bracketed
// names and bare URLs. Bracketed numbers refer to claims and are skipped.
func extractCitations(text string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, m := range citationPattern.FindAllStringSubmatch(text, -1) {
		for _, name := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == ';' }) {
			name = strings.TrimSpace(name)
			if claimRefPattern.MatchString(name) {
				continue
			}
			add(name)
		}
	}
	for _, u := range urlPattern.FindAllString(text, -1) {
		add(strings.TrimRight(u, ".,;:!?"))
	}
	return out
}
