package llm

import "time"

// CustomOpenAI targets any self-hosted OpenAI-compatible endpoint.
type CustomOpenAI struct {
	*OpenAICompatible
}

func NewCustomOpenAI(baseURL, apiKey, model string, maxTokens int, temperature float64, timeout time.Duration) *CustomOpenAI {
	return &CustomOpenAI{
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
