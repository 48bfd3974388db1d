package enricher

import "fmt"

// ChainConfig describes the ordered provider chain. Providers without a
// credential are still constructed; they report unavailable and get skipped.
type ChainConfig struct {
	ProviderOrder   []string
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string
	MaxTokens       int
}

// BuildChain constructs providers in the configured order.
func BuildChain(cfg ChainConfig) ([]Provider, error) {
	if len(cfg.ProviderOrder) == 0 {
		return nil, fmt.Errorf("provider order is empty")
	}

	providers := make([]Provider, 0, len(cfg.ProviderOrder))
	for _, name := range cfg.ProviderOrder {
		switch name {
		case "anthropic":
			providers = append(providers,
				NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.MaxTokens))
		case "openai":
			providers = append(providers,
				NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.MaxTokens))
		default:
			return nil, fmt.Errorf("unsupported context provider: %s", name)
		}
	}
	return providers, nil
}
