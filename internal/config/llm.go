package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/docqa/pkg/log"
)

type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"ollama"`
	Model    string `env:"LLM_MODEL" envDefault:"mistral"`

	MaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"1000"`
	Temperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.1"`
	Timeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	OllamaBaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaAPIKey  string `env:"OLLAMA_API_KEY"`

	CustomBaseURL string `env:"CUSTOM_OPENAI_BASE_URL"`
	CustomAPIKey  string `env:"CUSTOM_OPENAI_API_KEY"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
