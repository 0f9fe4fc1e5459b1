package model

import "time"

// Config holds the complete factview configuration
type Config struct {
	API          APIConfig          `yaml:"api" mapstructure:"api"`
	Check        CheckConfig        `yaml:"check" mapstructure:"check"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// APIConfig configures the connection to the fact-checking service
type APIConfig struct {
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CheckConfig holds the defaults sent with every check request
type CheckConfig struct {
	TopK          int    `yaml:"top_k" mapstructure:"top_k"`
	Mode          string `yaml:"mode" mapstructure:"mode"` // local, heuristic, openai
	ReturnDebug   bool   `yaml:"return_debug" mapstructure:"return_debug"`
	MaxInputChars int    `yaml:"max_input_chars" mapstructure:"max_input_chars"`
}

// RateLimitingConfig throttles outgoing calls to the service
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig controls the knowledge-base status cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	StatusTTL time.Duration `yaml:"status_ttl" mapstructure:"status_ttl"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format"` // text, html, markdown, json
	Color   bool   `yaml:"color" mapstructure:"color"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LLMConfig configures the optional claim summary
type LLMConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"` // openai or empty
	Model         string `yaml:"model" mapstructure:"model"`
	APIKey        string `yaml:"-" mapstructure:"api_key"`
	BaseURL       string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout       int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens     int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	StrictSources bool   `yaml:"strict_sources" mapstructure:"strict_sources"`
}

// LogConfig configures zerolog output
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// Output formats
const (
	FormatText     = "text"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "http://localhost:8000",
			Timeout:      60 * time.Second,
			UserAgent:    "factview/0.1 (+https://github.com/ppiankov/factview)",
			MaxBodyBytes: 8 << 20,
			MaxRetries:   3,
		},
		Check: CheckConfig{
			TopK:          5,
			Mode:          ModeLocal,
			ReturnDebug:   false,
			MaxInputChars: 20000,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 4,
			BurstSize:         2,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			StatusTTL: 30 * time.Second,
		},
		Output: OutputConfig{
			Format: FormatText,
			Color:  true,
		},
		LLM: LLMConfig{
			Timeout:       30,
			MaxTokens:     600,
			StrictSources: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
