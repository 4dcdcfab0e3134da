package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/docqa/pkg/log"
	"github.com/sandevgo/docqa/pkg/retry"
)

// HTTPEmbedder talks to an OpenAI-compatible /v1/embeddings endpoint.
// Both OpenAI and Ollama expose this shape.
type HTTPEmbedder struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	model     string
	dims      int
	batchSize int
	retrier   *retry.Retrier
}

func NewHTTPEmbedder(baseURL, apiKey, model string, dims, batchSize int) *HTTPEmbedder {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &HTTPEmbedder{
		client:    &http.Client{Timeout: 120 * time.Second},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		model:     model,
		dims:      dims,
		batchSize: batchSize,
		retrier:   retry.NewDefaultRetrier(),
	}
}

func (e *HTTPEmbedder) Dims() int {
	return e.dims
}

// Embed returns one vector per input text, in input order. Inputs are sent in
// batches to stay within provider request limits.
func (e *HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	logger := log.FromCtx(ctx)
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		var batchVectors [][]float32
		err := e.retrier.Do(ctx, func() error {
			var err error
			batchVectors, err = e.embedBatch(ctx, batch)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}

		logger.Debug().
			Int("batch_size", len(batch)).
			Int("offset", start).
			Msg("Embedded batch")

		vectors = append(vectors, batchVectors...)
	}

	return vectors, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (e *HTTPEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("embeddings API error: %s", parsed.Error.Message)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(parsed.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings API returned out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	for i, v := range vectors {
		if e.dims > 0 && len(v) != e.dims {
			return nil, fmt.Errorf("vector %d has %d dimensions, expected %d", i, len(v), e.dims)
		}
	}

	return vectors, nil
}
