package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierDraft))
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierClassify))
	assert.InDelta(t, 0.7, config.DefaultTemperature, 0.0001)
}

func TestGetModel_UnknownTierUsesDraftModel(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{TierDraft: "drafter"},
	}

	assert.Equal(t, "drafter", config.GetModel("summarize"))
	assert.Equal(t, "drafter", config.GetModel(TierClassify))
	assert.Equal(t, "", (&Config{}).GetModel(TierClassify))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	custom := config.WithModel(TierClassify, "gemini-2.0-flash")

	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierClassify))
	assert.Equal(t, "gemini-2.0-flash", custom.GetModel(TierClassify))
	assert.Equal(t, "gemini-2.5-flash", custom.GetModel(TierDraft))
	assert.Equal(t, config.DefaultTemperature, custom.DefaultTemperature)
}

func TestWithModel_EmptyKeepsDefault(t *testing.T) {
	config := DefaultConfig().WithModel(TierDraft, "")
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierDraft))
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "other"}, "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestTemp(t *testing.T) {
	p := Temp(0.6)
	require.NotNil(t, p)
	assert.InDelta(t, 0.6, *p, 0.0001)
}
