package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factview/internal/model"
)

// NewProvider creates a provider from configuration. It returns nil, nil
// when no provider is configured.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}

// ConfigFromModel converts the application config to llm.Config. Proxy
// settings follow the API client.
func ConfigFromModel(llm model.LLMConfig, api model.APIConfig) Config {
	return Config{
		Provider:      llm.Provider,
		Model:         llm.Model,
		APIKey:        llm.APIKey,
		BaseURL:       llm.BaseURL,
		Timeout:       llm.Timeout,
		StrictSources: llm.StrictSources,
		MaxTokens:     llm.MaxTokens,
		HTTPProxy:     api.HTTPProxy,
		HTTPSProxy:    api.HTTPSProxy,
		NoProxy:       api.NoProxy,
	}
}
