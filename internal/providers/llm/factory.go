package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/docqa/internal/config"
	"github.com/sandevgo/docqa/internal/core"
	"github.com/sandevgo/docqa/pkg/log"
)

// NewProvider creates the appropriate AIProvider based on configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, cfg.MaxTokens, cfg.Temperature, cfg.Timeout), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Model, cfg.MaxTokens, cfg.Temperature, cfg.Timeout), nil
	case "custom":
		return NewCustomOpenAI(cfg.CustomBaseURL, cfg.CustomAPIKey, cfg.Model, cfg.MaxTokens, cfg.Temperature, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
