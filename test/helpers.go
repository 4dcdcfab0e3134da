package test

import (
	"os"
	"testing"
)

// GetOllamaBaseURL returns the address of a live Ollama server for
// integration tests, skipping the test when none is configured.
func GetOllamaBaseURL(t *testing.T) string {
	url := os.Getenv("DOCQA_TEST_OLLAMA_URL")
	if url == "" {
		t.Skip("DOCQA_TEST_OLLAMA_URL not set, skipping integration test")
	}
	return url
}

// GetOllamaModel returns the chat model to use against the live server.
func GetOllamaModel(t *testing.T) string {
	model := os.Getenv("DOCQA_TEST_OLLAMA_MODEL")
	if model == "" {
		return "mistral"
	}
	return model
}

// GetOllamaEmbedModel returns the embedding model to use against the live
// server.
func GetOllamaEmbedModel(t *testing.T) string {
	model := os.Getenv("DOCQA_TEST_OLLAMA_EMBED_MODEL")
	if model == "" {
		return "nomic-embed-text"
	}
	return model
}
