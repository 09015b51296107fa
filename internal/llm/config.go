// Package llm provides centralized model configuration and a client
// abstraction over the Gemini API.
package llm

import "maps"

// ModelTier names a capability level rather than a concrete model, so call
// sites pick "how much reasoning" and the config maps that to a model name.
type ModelTier string

const (
	// TierLite handles simple tasks such as search query planning.
	TierLite ModelTier = "lite"
	// TierStandard handles moderate structured-output work.
	TierStandard ModelTier = "standard"
	// TierAdvanced handles the final selection and narrative.
	TierAdvanced ModelTier = "advanced"
)

// Provider identifies an LLM provider.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI and ProviderAnthropic are reserved for a future
	// multi-provider setup.
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config maps model tiers to concrete model names for one provider.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default configuration, currently Gemini.
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini tier mapping.
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel resolves a tier to a model name, falling back to standard and
// then lite when the requested tier is not configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of the config with one tier overridden.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string, len(c.Models)+1),
	}
	maps.Copy(next.Models, c.Models)
	next.Models[tier] = model
	return next
}
