package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/docqa/pkg/log"
)

type RAGConfig struct {
	Provider   string `env:"EMBEDDING_PROVIDER" envDefault:"openai"`
	Model      string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	Dimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`

	// Chunk budgets are measured in cl100k_base tokens.
	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"500"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"100"`

	// Max texts sent to the embeddings endpoint per request.
	BatchSize int `env:"EMBEDDING_BATCH_SIZE" envDefault:"64"`
}

func NewRAGConfig(ctx context.Context) *RAGConfig {
	c := &RAGConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse RAG config")
	}
	return c
}
