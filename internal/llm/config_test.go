package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultGeminiConfig(t *testing.T) {
	cfg := DefaultGeminiConfig()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", cfg.GetModel(TierAdvanced))
}

func TestGetModelFallbackChain(t *testing.T) {
	t.Run("unknown tier falls back to standard", func(t *testing.T) {
		cfg := DefaultGeminiConfig()
		assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(ModelTier("experimental")))
	})

	t.Run("then to lite", func(t *testing.T) {
		cfg := &Config{
			Provider: ProviderGemini,
			Models:   map[ModelTier]string{TierLite: "gemini-2.5-flash-lite"},
		}
		assert.Equal(t, "gemini-2.5-flash-lite", cfg.GetModel(TierAdvanced))
	})

	t.Run("empty when nothing configured", func(t *testing.T) {
		cfg := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
		assert.Equal(t, "", cfg.GetModel(TierLite))
	})
}

func TestWithModel(t *testing.T) {
	base := DefaultGeminiConfig()
	custom := base.WithModel(TierAdvanced, "gemini-3.0-pro")

	assert.Equal(t, "gemini-3.0-pro", custom.GetModel(TierAdvanced))
	assert.Equal(t, base.GetModel(TierLite), custom.GetModel(TierLite))
	// The original is untouched.
	assert.Equal(t, "gemini-2.5-pro", base.GetModel(TierAdvanced))
}
