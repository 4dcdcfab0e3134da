//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/sandevgo/docqa/internal/core"
	"github.com/sandevgo/docqa/internal/providers/llm"
	"github.com/sandevgo/docqa/internal/providers/rag"
	"github.com/sandevgo/docqa/test"
)

func TestOllamaEmbedder(t *testing.T) {
	baseURL := test.GetOllamaBaseURL(t)

	embedder := rag.NewHTTPEmbedder(baseURL, "", test.GetOllamaEmbedModel(t), 0, 16)

	vectors, err := embedder.Embed(context.Background(), []string{"Hello DocQA", "Another sentence"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}

	t.Logf("Vector dimensions: %d", len(vectors[0]))

	// Sanity check: ensure not all zeros
	allZeros := true
	for _, v := range vectors[0] {
		if v != 0 {
			allZeros = false
			break
		}
	}
	if allZeros {
		t.Fatal("Vector contains all zeros")
	}
}

func TestOllamaChat(t *testing.T) {
	baseURL := test.GetOllamaBaseURL(t)

	provider := llm.NewOllama(baseURL, "", test.GetOllamaModel(t), 100, 0.1, 0)

	msg, err := provider.Chat(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: "Reply with the single word: pong"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if msg.Content == "" {
		t.Fatal("empty response from model")
	}

	t.Logf("Model replied: %s", msg.Content)
}
