package assess

import (
	"context"
	"fmt"
)

// Provider names accepted by Select.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Select builds the assessor for provider. It returns nil without error
// when the provider's API key is not set, which disables condition checks.
func Select(ctx context.Context, provider string, anthropic AnthropicConfig, gemini GeminiConfig) (Assessor, error) {
	switch provider {
	case ProviderAnthropic, "":
		if anthropic.APIKey == "" {
			return nil, nil
		}
		a, err := NewAnthropic(anthropic)
		if err != nil {
			return nil, err
		}
		return a, nil
	case ProviderGemini:
		if gemini.APIKey == "" {
			return nil, nil
		}
		g, err := NewGemini(ctx, gemini)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, fmt.Errorf("unknown assessor provider %q", provider)
}
