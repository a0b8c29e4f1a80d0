package llm

import "strings"

// modelProviders maps well-known model id prefixes to their provider. Used to
// infer routing when a request names a model but no provider.
var modelProviders = []struct {
	prefix   string
	provider string
}{
	{"gpt-", "openai"},
	{"o1", "openai"},
	{"o3", "openai"},
	{"o4", "openai"},
	{"claude-", "anthropic"},
}

// ProviderForModel returns the provider identifier for a model id, or "" when
// the model is not in the catalog.
func ProviderForModel(model string) string {
	for _, mp := range modelProviders {
		if strings.HasPrefix(model, mp.prefix) {
			return mp.provider
		}
	}
	return ""
}

// DefaultModel returns a sensible default model id for a provider.
func DefaultModel(provider string) string {
	switch provider {
	case "anthropic":
		return "claude-sonnet-4-5"
	default:
		return "gpt-4.1"
	}
}
