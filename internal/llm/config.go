// Package llm provides the classification and summarization capability
// behind a provider-neutral client, with Gemini and OpenAI-compatible backends.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for binary classification
	TierLite ModelTier = "lite"
	// TierStandard is for single-sentence extraction
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form audits and tables
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderDeepSeek is DeepSeek's OpenAI-compatible chat completions API
	ProviderDeepSeek Provider = "deepseek"
)

// Config holds the model configuration for a client.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// Endpoint is the API base URL for OpenAI-compatible providers.
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return DefaultDeepSeekConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Timeout: 60 * time.Second,
	}
}

// DefaultDeepSeekConfig returns the default DeepSeek configuration.
func DefaultDeepSeekConfig() *Config {
	return &Config{
		Provider: ProviderDeepSeek,
		Models: map[ModelTier]string{
			TierLite:     "deepseek-chat",
			TierStandard: "deepseek-chat",
			TierAdvanced: "deepseek-chat",
		},
		Endpoint: "https://api.deepseek.com",
		Timeout:  60 * time.Second,
	}
}

// ForProvider returns the defaults for a provider name, or nil if unknown.
func ForProvider(name string) *Config {
	switch Provider(name) {
	case ProviderGemini:
		return DefaultGeminiConfig()
	case ProviderDeepSeek:
		return DefaultDeepSeekConfig()
	default:
		return nil
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

// WithAllModels returns a new Config that uses model for every tier.
func (c *Config) WithAllModels(model string) *Config {
	out := c
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		out = out.WithModel(tier, model)
	}
	return out
}
