// Package llm provides the text-generation client used to draft and refine
// outreach messages and to classify notes.
package llm

// ModelTier names the kind of work a request does; each tier maps to a model.
type ModelTier string

const (
	// TierDraft writes and refines outreach messages.
	TierDraft ModelTier = "draft"
	// TierClassify files short notes into categories.
	TierClassify ModelTier = "classify"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Config maps tiers to provider models.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// DefaultTemperature applies when a Request does not set one.
	DefaultTemperature float32
}

// DefaultConfig returns the Gemini models the agent ships with.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierDraft:    "gemini-2.5-flash",
			TierClassify: "gemini-2.5-flash-lite",
		},
		DefaultTemperature: 0.7,
	}
}

// GetModel returns the model for a tier. An unmapped tier uses the draft
// model, since any tier can do drafting work.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	return c.Models[TierDraft]
}

// WithModel returns a copy of c with tier mapped to model. An empty model
// leaves the mapping unchanged.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := &Config{
		Provider:           c.Provider,
		Models:             make(map[ModelTier]string, len(c.Models)+1),
		DefaultTemperature: c.DefaultTemperature,
	}
	for k, v := range c.Models {
		out.Models[k] = v
	}
	if model != "" {
		out.Models[tier] = model
	}
	return out
}
