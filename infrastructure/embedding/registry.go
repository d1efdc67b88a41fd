package embedding

import (
	"fmt"

	"github.com/rios0rios0/terradex/config"
	"github.com/rios0rios0/terradex/domain"
)

// NewEmbedder creates the configured text-to-vector strategy. The variant set
// is closed; adding a strategy means adding an implementation here, call
// sites never change.
func NewEmbedder(cfg config.EmbeddingConfig) (domain.Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = "nomic-embed-text"
		}
		return NewOllamaEmbedder(baseURL, model), nil
	case "openai":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com"
		}
		model := cfg.Model
		if model == "" {
			model = "text-embedding-3-small"
		}
		return NewOpenAIEmbedder(baseURL, cfg.APIKey, model), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (supported: ollama, openai)", cfg.Provider)
	}
}
