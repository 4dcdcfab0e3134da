package rag

import (
	"context"
	"fmt"

	"github.com/sandevgo/docqa/internal/config"
	"github.com/sandevgo/docqa/internal/core"
	"github.com/sandevgo/docqa/pkg/log"
)

// NewEmbedder creates the appropriate Embedder based on configuration. Ollama
// credentials are shared with the LLM config since both point at the same
// server.
func NewEmbedder(ctx context.Context, cfg *config.RAGConfig, llmCfg *config.LLMConfig) (core.Embedder, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Int("dimensions", cfg.Dimensions).
		Msg("starting embedding provider")

	switch cfg.Provider {
	case "openai":
		return NewHTTPEmbedder("https://api.openai.com", llmCfg.OpenAIAPIKey, cfg.Model, cfg.Dimensions, cfg.BatchSize), nil
	case "ollama":
		return NewHTTPEmbedder(llmCfg.OllamaBaseURL, llmCfg.OllamaAPIKey, cfg.Model, cfg.Dimensions, cfg.BatchSize), nil
	case "custom":
		return NewHTTPEmbedder(llmCfg.CustomBaseURL, llmCfg.CustomAPIKey, cfg.Model, cfg.Dimensions, cfg.BatchSize), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
