package llm

import "time"

// Ollama exposes an OpenAI-compatible API at /v1/, so the provider is a thin
// wrapper around OpenAICompatible pointed at the local server.
type Ollama struct {
	*OpenAICompatible
}

func NewOllama(baseURL, apiKey, model string, maxTokens int, temperature float64, timeout time.Duration) *Ollama {
	return &Ollama{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:     baseURL,
			APIKey:      apiKey,
			Model:       model,
			AuthHeader:  "Authorization",
			AuthPrefix:  "Bearer ",
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Timeout:     timeout,
		}),
	}
}
