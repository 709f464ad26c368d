package translate

import (
	"slices"
)

// selectable model
type Model struct {
	ID          string
	Provider    Provider
	Description string
	Default     bool
}

var models = []Model{
	{ID: "gpt-4o", Provider: ProviderOpenAI, Description: "High quality, slower", Default: true},
	{ID: "gpt-4o-mini", Provider: ProviderOpenAI, Description: "Fast and inexpensive"},
	{ID: "gpt-4.1", Provider: ProviderOpenAI, Description: "Long context, strong instruction following"},
	{ID: "gpt-4.1-mini", Provider: ProviderOpenAI, Description: "Balanced cost and quality"},
	{ID: "claude-sonnet-4-5", Provider: ProviderAnthropic, Description: "High quality"},
	{ID: "claude-haiku-4-5", Provider: ProviderAnthropic, Description: "Fast and inexpensive", Default: true},
	{ID: "gemini-2.5-pro", Provider: ProviderGemini, Description: "High quality"},
	{ID: "gemini-2.5-flash", Provider: ProviderGemini, Description: "Fast and inexpensive", Default: true},
}

// Models returns the selectable models, optionally filtered by provider.
func Models(provider Provider) []Model {
	if provider == "" {
		return slices.Clone(models)
	}
	var out []Model
	for _, m := range models {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	return out
}

// DefaultModel returns the provider's default model ID.
func DefaultModel(provider Provider) string {
	for _, m := range models {
		if m.Provider == provider && m.Default {
			return m.ID
		}
	}
	return ""
}

// ValidModel reports whether id is a selectable model for provider.
func ValidModel(provider Provider, id string) bool {
	for _, m := range models {
		if m.Provider == provider && m.ID == id {
			return true
		}
	}
	return false
}

// Providers lists the supported providers.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini}
}

// IsProvider reports whether p names a supported provider.
func IsProvider(p Provider) bool {
	return slices.Contains(Providers(), p)
}
