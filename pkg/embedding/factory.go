package embedding

import (
	"fmt"
	"strings"
)

// NewEmbeddingProvider builds an EmbeddingProvider for the configured backend.
func NewEmbeddingProvider(providerType string, apiKey string, baseURL string, model string) (EmbeddingProvider, error) {
	switch strings.ToLower(providerType) {
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires an API key")
		}
		return NewGeminiProvider(apiKey), nil
	case "ollama":
		return NewOllamaProvider(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider type: %s", providerType)
	}
}
