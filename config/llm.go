package config

import (
	"log/slog"
	"time"
)

const (
	defaultPerplexityBaseURL = "https://api.perplexity.ai"
	defaultPerplexityModel   = "sonar"
	defaultLLMTimeout        = 30 * time.Second
	defaultLLMMaxRetries     = 3
)

// PerplexityCfg configures the upstream LLM client. The Perplexity API is
// OpenAI-compatible, so only base URL, key and model are needed.
type PerplexityCfg struct {
	APIKey     string   `yaml:"api_key"`
	BaseURL    string   `yaml:"base_url"`
	Model      string   `yaml:"model"`
	MaxTokens  int      `yaml:"max_tokens"`
	Timeout    Duration `yaml:"timeout"`
	MaxRetries int      `yaml:"max_retries"`

	// RequestsPerSec paces outbound API calls. Zero disables pacing.
	RequestsPerSec int `yaml:"requests_per_sec"`
}

func (cfg *PerplexityCfg) Enabled() bool {
	return cfg != nil && cfg.APIKey != ""
}

func (cfg *PerplexityCfg) adjust(logger *slog.Logger) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultPerplexityBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultPerplexityModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = Duration(defaultLLMTimeout)
	}
	if cfg.MaxRetries <= 0 {
		logger.Debug("perplexity.max_retries invalid, using default", "got", cfg.MaxRetries, "default", defaultLLMMaxRetries)
		cfg.MaxRetries = defaultLLMMaxRetries
	}
}
