package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/docqa/internal/config"
	"github.com/sandevgo/docqa/internal/ingest"
	"github.com/sandevgo/docqa/internal/providers/llm"
	"github.com/sandevgo/docqa/internal/providers/rag"
	"github.com/sandevgo/docqa/internal/service/chat"
	"github.com/sandevgo/docqa/internal/session"
	"github.com/sandevgo/docqa/internal/storage/sqlite"
	"github.com/sandevgo/docqa/internal/transport/httpapi"
	"github.com/sandevgo/docqa/pkg/log"
	"github.com/sandevgo/docqa/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	ragCfg := config.NewRAGConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	chatCfg := config.NewChatConfig(ctx)
	serverCfg := config.NewServerConfig(ctx)

	docsDir := appCfg.GetDocumentsPath()
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("path", docsDir).Msg("failed to create documents directory")
	}

	// 2. Storage
	db, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	if err := sqlite.ValidateVectorDims(ctx, db, ragCfg.Dimensions); err != nil {
		logger.Fatal().Err(err).Msg("embedding dimensions do not match the vector index")
	}

	orgsRepo := sqlite.NewOrganizationsRepo(db)
	documentsRepo := sqlite.NewDocumentsRepo(db)
	chunksRepo := sqlite.NewChunksRepo(db)
	searchLogRepo := sqlite.NewSearchLogRepo(db)

	// 3. AI Provider
	aiProvider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 4. Embedder
	embedder, err := rag.NewEmbedder(ctx, ragCfg, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}

	// 5. Document processing worker
	processor := ingest.NewProcessor(documentsRepo, chunksRepo, embedder, rag.ChunkerConfig{
		MaxTokens:     ragCfg.ChunkSize,
		OverlapTokens: ragCfg.ChunkOverlap,
	})
	services = append(services, processor)

	// 6. Chat sessions
	sessions := session.NewStore(session.Config{
		MaxSessions:           chatCfg.MaxSessions,
		MaxMessagesPerSession: chatCfg.MaxMessagesPerSession,
		TTL:                   chatCfg.SessionTTL(),
	})
	services = append(services, session.NewSweeper(sessions, chatCfg.SweepInterval))

	chatSvc := chat.NewService(chatCfg, embedder, chunksRepo, searchLogRepo, aiProvider, sessions)

	// 7. Transport
	server := httpapi.NewServer(serverCfg, chatCfg, orgsRepo, documentsRepo, chatSvc, sessions, processor, docsDir)
	services = append(services, server)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, error) {
	if err := os.MkdirAll(cfg.GetRuntimePath(), 0o755); err != nil {
		return nil, err
	}
	return sqlite.NewDB(ctx, cfg.GetDatabasePath())
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
