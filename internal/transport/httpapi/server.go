package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/sandevgo/docqa/internal/config"
	"github.com/sandevgo/docqa/internal/core"
	"github.com/sandevgo/docqa/internal/ingest"
	"github.com/sandevgo/docqa/internal/service/chat"
	"github.com/sandevgo/docqa/internal/session"
	"github.com/sandevgo/docqa/pkg/log"
)

// Server exposes the REST API. It implements the service lifecycle so it can
// be started and shut down alongside the other background workers.
type Server struct {
	cfg       *config.ServerConfig
	chatCfg   *config.ChatConfig
	orgs      core.OrganizationsRepository
	documents core.DocumentsRepository
	chat      *chat.Service
	sessions  *session.Store
	processor *ingest.Processor
	docsDir   string

	httpServer *http.Server
}

func NewServer(
	cfg *config.ServerConfig,
	chatCfg *config.ChatConfig,
	orgs core.OrganizationsRepository,
	documents core.DocumentsRepository,
	chatSvc *chat.Service,
	sessions *session.Store,
	processor *ingest.Processor,
	docsDir string,
) *Server {
	s := &Server{
		cfg:       cfg,
		chatCfg:   chatCfg,
		orgs:      orgs,
		documents: documents,
		chat:      chatSvc,
		sessions:  sessions,
		processor: processor,
		docsDir:   docsDir,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health/{$}", s.handleHealth)

	mux.HandleFunc("POST /api/v1/documents/{$}", s.requireOrg(s.handleUploadDocument))
	mux.HandleFunc("GET /api/v1/documents/{$}", s.requireOrg(s.handleListDocuments))
	mux.HandleFunc("GET /api/v1/documents/{id}/{$}", s.requireOrg(s.handleGetDocument))

	mux.HandleFunc("POST /api/v1/chat/{$}", s.requireOrg(s.handleChat))
	mux.HandleFunc("POST /api/v1/chat/search/{$}", s.requireOrg(s.handleSearch))
	mux.HandleFunc("GET /api/v1/chat/stats/{$}", s.requireOrg(s.handleChatStats))

	return s.withRequestLog(mux)
}

func (s *Server) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Str("addr", s.cfg.Addr).Msg("starting http server")

	// Handlers log through the startup context.
	s.httpServer.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("shutting down http server")

	// The parent context is already cancelled when shutdown begins, so the
	// drain deadline gets its own context.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}
