package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/docqa/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"DOCQA_RUNTIME_PATH" envDefault:".docqa"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "docqa.db")
}

func (c AppConfig) GetDocumentsPath() string {
	return filepath.Join(c.RuntimePath, "documents")
}
